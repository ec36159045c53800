// Package catalog downloads and decodes NORAD element sets from a public
// catalog such as CelesTrak.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"

	"github.com/signalsfoundry/polageo/core"
	"github.com/signalsfoundry/polageo/internal/logging"
	"github.com/signalsfoundry/polageo/internal/observability"
)

const (
	DefaultURLTemplate = "https://www.celestrak.com/NORAD/elements/{group}.txt"
	DefaultGroup       = "stations"
	DefaultTarget      = "TIANHE"

	tracerName   = "github.com/signalsfoundry/polageo/catalog"
	maxBodyBytes = 16 << 20
	userAgent    = "polageo/1.0"
)

// Config selects the catalog document and the satellite to track. The
// "{group}" placeholder in URLTemplate is replaced by the group name.
// A zero Timeout means the request is bounded only by the caller's context.
type Config struct {
	URLTemplate string
	Group       string
	Target      string
	Timeout     time.Duration
}

// DefaultConfig returns the CelesTrak stations group tracking TIANHE.
func DefaultConfig() Config {
	return Config{
		URLTemplate: DefaultURLTemplate,
		Group:       DefaultGroup,
		Target:      DefaultTarget,
	}
}

// URL returns the document URL for group.
func (c Config) URL(group string) string {
	return strings.ReplaceAll(c.URLTemplate, "{group}", url.PathEscape(group))
}

// MetricsRecorder receives one observation per download attempt.
type MetricsRecorder interface {
	ObserveCatalogFetch(group, outcome string, d time.Duration, records int)
}

// Option customises a Fetcher.
type Option func(*Fetcher)

func WithHTTPClient(c *http.Client) Option { return func(f *Fetcher) { f.client = c } }
func WithLogger(l logging.Logger) Option   { return func(f *Fetcher) { f.log = l } }
func WithMetrics(m MetricsRecorder) Option { return func(f *Fetcher) { f.metrics = m } }

// Fetcher performs one unauthenticated GET per call. It never retries and
// keeps no cache; every call sees the catalog as it is now.
type Fetcher struct {
	cfg     Config
	client  *http.Client
	log     logging.Logger
	metrics MetricsRecorder
	maxBody int64
}

// NewFetcher fills empty Config fields from DefaultConfig.
func NewFetcher(cfg Config, opts ...Option) *Fetcher {
	def := DefaultConfig()
	if cfg.URLTemplate == "" {
		cfg.URLTemplate = def.URLTemplate
	}
	if cfg.Group == "" {
		cfg.Group = def.Group
	}
	if cfg.Target == "" {
		cfg.Target = def.Target
	}

	f := &Fetcher{cfg: cfg, client: http.DefaultClient, log: logging.Noop(), maxBody: maxBodyBytes}
	for _, opt := range opts {
		opt(f)
	}
	if f.client == nil {
		f.client = http.DefaultClient
	}
	if f.log == nil {
		f.log = logging.Noop()
	}
	return f
}

// Config returns the effective configuration.
func (f *Fetcher) Config() Config { return f.cfg }

// FetchAll downloads and decodes the configured group.
func (f *Fetcher) FetchAll(ctx context.Context) ([]Record, error) {
	return f.FetchGroup(ctx, f.cfg.Group)
}

// FetchGroup downloads and decodes one catalog group.
func (f *Fetcher) FetchGroup(ctx context.Context, group string) ([]Record, error) {
	records, _, err := f.fetch(ctx, group, "")
	return records, err
}

// Fetch returns the configured target from the configured group.
func (f *Fetcher) Fetch(ctx context.Context) (*Record, error) {
	return f.Find(ctx, f.cfg.Group, f.cfg.Target)
}

// Find downloads group and returns the first record whose name equals name
// exactly. A missing record is reported as a *NotFoundError.
func (f *Fetcher) Find(ctx context.Context, group, name string) (*Record, error) {
	_, rec, err := f.fetch(ctx, group, name)
	return rec, err
}

// fetch downloads group and, when name is set, picks that record out of it.
// Each call records exactly one metrics observation.
func (f *Fetcher) fetch(ctx context.Context, group, name string) ([]Record, *Record, error) {
	if f.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.cfg.Timeout)
		defer cancel()
	}

	// Request-scoped when called from an HTTP handler.
	log := logging.FromContext(ctx, f.log)
	target := f.cfg.URL(group)
	ctx, span := otel.Tracer(tracerName).Start(ctx, "catalog.FetchGroup")
	defer span.End()
	span.SetAttributes(
		attribute.String("catalog.group", group),
		attribute.String("http.url", target),
	)

	start := time.Now()
	records, outcome, err := f.download(ctx, target)
	elapsed := time.Since(start)

	var rec *Record
	if err == nil && name != "" {
		var ok bool
		if rec, ok = Lookup(records, name); !ok {
			outcome = observability.OutcomeNotFound
			err = &NotFoundError{Group: group, Name: name}
		}
	}
	if f.metrics != nil {
		f.metrics.ObserveCatalogFetch(group, outcome, elapsed, len(records))
	}

	switch {
	case outcome == observability.OutcomeNotFound:
		span.SetAttributes(attribute.Int("catalog.records", len(records)))
		log.Info(ctx, "element set not in catalog",
			logging.String("group", group),
			logging.String("name", name),
			logging.Int("records", len(records)),
		)
		return records, nil, err
	case err != nil:
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
		log.Warn(ctx, "catalog fetch failed",
			logging.String("group", group),
			logging.String("url", target),
			logging.Duration("elapsed", elapsed),
			logging.Err(err),
		)
		return nil, nil, err
	}

	span.SetAttributes(attribute.Int("catalog.records", len(records)))
	log.Debug(ctx, "catalog fetched",
		logging.String("group", group),
		logging.Int("records", len(records)),
		logging.Duration("elapsed", elapsed),
	)
	return records, rec, nil
}

func (f *Fetcher) download(ctx context.Context, target string) ([]Record, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, observability.OutcomeTransport, &TransportError{URL: target, Err: err}
	}
	req.Header.Set("User-Agent", userAgent)
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, observability.OutcomeTransport, &TransportError{URL: target, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, observability.OutcomeTransport, &TransportError{
			URL:        target,
			StatusCode: resp.StatusCode,
			Err:        errors.New(http.StatusText(resp.StatusCode)),
		}
	}

	// One byte past the cap tells a document that fits from one that was cut.
	body := &io.LimitedReader{R: resp.Body, N: f.maxBody + 1}
	records, err := Parse(body)
	if body.N <= 0 {
		err = fmt.Errorf("%w: document exceeds %d bytes", ErrTooLarge, f.maxBody)
	}
	if err != nil {
		var perr *ParseError
		if errors.As(err, &perr) || errors.Is(err, ErrTooLarge) {
			return nil, observability.OutcomeParse, fmt.Errorf("decode %s: %w", target, err)
		}
		// Body read failures are transport failures.
		return nil, observability.OutcomeTransport, &TransportError{URL: target, Err: err}
	}
	return records, observability.OutcomeOK, nil
}

// Lookup returns the first record in records named name.
func Lookup(records []Record, name string) (*Record, bool) {
	for i := range records {
		if records[i].Name == name {
			return &records[i], true
		}
	}
	return nil, false
}

// Lookup satisfies core.ElementSource for the configured target.
func (f *Fetcher) Lookup(ctx context.Context) (core.ElementSet, error) {
	return f.Source(f.cfg.Group, f.cfg.Target).Lookup(ctx)
}

// Source returns an element source tracking name in group.
func (f *Fetcher) Source(group, name string) core.ElementSource {
	if group == "" {
		group = f.cfg.Group
	}
	if name == "" {
		name = f.cfg.Target
	}
	return targetSource{f: f, group: group, name: name}
}

type targetSource struct {
	f     *Fetcher
	group string
	name  string
}

func (s targetSource) Lookup(ctx context.Context) (core.ElementSet, error) {
	rec, err := s.f.Find(ctx, s.group, s.name)
	if err != nil {
		return nil, err
	}
	return rec, nil
}
