// Package nbi serves the polageo HTTP API and the gRPC health endpoint.
package nbi

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/signalsfoundry/polageo/catalog"
	"github.com/signalsfoundry/polageo/core"
	"github.com/signalsfoundry/polageo/internal/logging"
	"github.com/signalsfoundry/polageo/internal/nbi/types"
	"github.com/signalsfoundry/polageo/internal/observability"
	"github.com/signalsfoundry/polageo/kb"
	"github.com/signalsfoundry/polageo/model"
)

// Descriptor build sources, used as the satellites_built_total label.
const (
	SourceElements = "elements"
	SourceCatalog  = "catalog"
)

// Options wires the API server. Fetcher and Registry are required; the rest
// default to no-ops.
type Options struct {
	Fetcher     *catalog.Fetcher
	Registry    *kb.Registry
	Metrics     *observability.Collector
	Logger      logging.Logger
	CORSOrigins []string
}

// Server exposes descriptors over HTTP.
type Server struct {
	fetcher  *catalog.Fetcher
	registry *kb.Registry
	metrics  *observability.Collector
	log      logging.Logger
	engine   *gin.Engine
}

// NewServer builds the gin engine and registers every route.
func NewServer(opts Options) (*Server, error) {
	if opts.Fetcher == nil {
		return nil, errors.New("nbi: catalog fetcher is required")
	}
	if opts.Registry == nil {
		return nil, errors.New("nbi: registry is required")
	}
	if opts.Logger == nil {
		opts.Logger = logging.Noop()
	}

	s := &Server{
		fetcher:  opts.Fetcher,
		registry: opts.Registry,
		metrics:  opts.Metrics,
		log:      opts.Logger,
	}

	r := gin.New()
	r.Use(gin.Recovery(), RequestIDMiddleware(s.log), TracingMiddleware(), MetricsMiddleware(s.metrics))
	if mw := CORSMiddleware(opts.CORSOrigins); mw != nil {
		r.Use(mw)
	}

	r.GET("/healthz", s.getHealth)
	r.GET("/metrics", gin.WrapH(s.metrics.Handler()))

	v1 := r.Group("/v1")
	{
		v1.GET("/bodies", s.listBodies)
		v1.POST("/satellites/position", s.computePosition)
		v1.GET("/satellites", s.listSatellites)
		v1.GET("/satellites/:name", s.getSatellite)
		v1.GET("/catalog/current", s.currentFromCatalog)
	}

	s.engine = r
	return s, nil
}

// Handler returns the HTTP handler serving the API.
func (s *Server) Handler() http.Handler { return s.engine }

func (s *Server) getHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":     "ok",
		"satellites": s.registry.Len(),
	})
}

func (s *Server) listBodies(c *gin.Context) {
	bodies := types.BodiesToView(model.Bodies())
	c.JSON(http.StatusOK, gin.H{
		"data":  bodies,
		"count": len(bodies),
	})
}

func (s *Server) computePosition(c *gin.Context) {
	var req types.ElementsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, fmt.Errorf("%w: %v", ErrInvalidRequest, err))
		return
	}
	el, err := req.ToModel()
	if err != nil {
		s.fail(c, err)
		return
	}

	_, span := StartChildSpan(c.Request.Context(), "core.NewSatellite", "satellite", el.Name,
		attribute.String("angle_unit", el.Unit.String()),
		attribute.String("focus_body", el.Body()),
	)
	sat, err := core.NewSatellite(el)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "build failed")
		span.End()
		s.fail(c, err)
		return
	}
	span.End()

	s.metrics.IncSatellitesBuilt(SourceElements)
	c.JSON(http.StatusOK, gin.H{"data": types.SatelliteToView(sat)})
}

func (s *Server) currentFromCatalog(c *gin.Context) {
	cfg := s.fetcher.Config()
	group := c.DefaultQuery("group", cfg.Group)
	name := c.DefaultQuery("name", cfg.Target)

	sat, err := core.CurrentSatellite(c.Request.Context(), s.fetcher.Source(group, name))
	if err != nil {
		s.fail(c, err)
		return
	}
	s.metrics.IncSatellitesBuilt(SourceCatalog)
	c.JSON(http.StatusOK, gin.H{"data": types.SatelliteToView(sat)})
}

func (s *Server) listSatellites(c *gin.Context) {
	entries := s.registry.List()
	views := make([]types.SatelliteView, 0, len(entries))
	for _, e := range entries {
		views = append(views, types.SatelliteEntryToView(e.Satellite, e.UpdatedAt))
	}
	c.JSON(http.StatusOK, gin.H{
		"data":  views,
		"count": len(views),
	})
}

func (s *Server) getSatellite(c *gin.Context) {
	// Registry keys are sanitized; accept catalog spellings too.
	name := core.SanitizeName(c.Param("name"))
	e, ok := s.registry.Get(name)
	if !ok {
		s.fail(c, fmt.Errorf("%w: satellite %q", ErrNotFound, name))
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": types.SatelliteEntryToView(e.Satellite, e.UpdatedAt)})
}

func (s *Server) fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.AbortWithStatusJSON(ToHTTPStatus(err), gin.H{"error": err.Error()})
}
