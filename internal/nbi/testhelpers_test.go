package nbi

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/signalsfoundry/polageo/catalog"
	"github.com/signalsfoundry/polageo/kb"
)

const stationsDoc = `ISS (ZARYA)
1 25544U 98067A   08264.51782528 -.00002182  00000-0 -11606-4 0  2927
2 25544  51.6416 247.4627 0006703 130.5360 325.0288 15.72125391563537
TIANHE
1 48274U 21035A   21275.50000000  .00002182  00000-0  31906-4 0  9994
2 48274  41.4700 120.0000 0005000  90.0000 270.0000 15.61940000 25002
`

func init() {
	gin.SetMode(gin.TestMode)
}

// stubCatalog serves stationsDoc at /stations.txt. When failing is set it
// answers 503 instead.
type stubCatalog struct {
	srv     *httptest.Server
	hits    atomic.Int32
	failing atomic.Bool
}

func newStubCatalog(t *testing.T) *stubCatalog {
	t.Helper()
	sc := &stubCatalog{}
	sc.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sc.hits.Add(1)
		if sc.failing.Load() {
			http.Error(w, "maintenance", http.StatusServiceUnavailable)
			return
		}
		if r.URL.Path != "/stations.txt" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(stationsDoc))
	}))
	t.Cleanup(sc.srv.Close)
	return sc
}

func (sc *stubCatalog) fetcher() *catalog.Fetcher {
	return catalog.NewFetcher(catalog.Config{
		URLTemplate: sc.srv.URL + "/{group}.txt",
		Group:       "stations",
		Target:      "TIANHE",
	}, catalog.WithHTTPClient(sc.srv.Client()))
}

func newTestServer(t *testing.T, opts Options) *Server {
	t.Helper()
	if opts.Registry == nil {
		opts.Registry = kb.NewRegistry(nil)
	}
	if opts.Fetcher == nil {
		opts.Fetcher = newStubCatalog(t).fetcher()
	}
	s, err := NewServer(opts)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	return s
}
