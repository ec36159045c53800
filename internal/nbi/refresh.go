package nbi

import (
	"context"
	"errors"
	"fmt"
	"time"

	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/signalsfoundry/polageo/catalog"
	"github.com/signalsfoundry/polageo/core"
	"github.com/signalsfoundry/polageo/internal/logging"
	"github.com/signalsfoundry/polageo/internal/observability"
	"github.com/signalsfoundry/polageo/kb"
)

// HealthSetter is satisfied by *health.Server.
type HealthSetter interface {
	SetServingStatus(service string, status healthpb.HealthCheckResponse_ServingStatus)
}

// RefresherOptions wires a Refresher. Fetcher and Registry are required.
type RefresherOptions struct {
	Fetcher  *catalog.Fetcher
	Registry *kb.Registry
	// Track limits the registry to these catalog names; empty keeps all.
	Track          []string
	Health         HealthSetter
	Metrics        *observability.Collector
	RefreshMetrics *observability.RefreshCollector
	Logger         logging.Logger
}

// Refresher downloads the configured catalog group and replaces the
// registry content with freshly built descriptors.
type Refresher struct {
	fetcher  *catalog.Fetcher
	registry *kb.Registry
	track    []string
	health   HealthSetter
	metrics  *observability.Collector
	rmetrics *observability.RefreshCollector
	log      logging.Logger
}

// NewRefresher validates opts.
func NewRefresher(opts RefresherOptions) (*Refresher, error) {
	if opts.Fetcher == nil || opts.Registry == nil {
		return nil, errors.New("nbi: refresher needs a fetcher and a registry")
	}
	if opts.Logger == nil {
		opts.Logger = logging.Noop()
	}
	return &Refresher{
		fetcher:  opts.Fetcher,
		registry: opts.Registry,
		track:    opts.Track,
		health:   opts.Health,
		metrics:  opts.Metrics,
		rmetrics: opts.RefreshMetrics,
		log:      opts.Logger,
	}, nil
}

// Refresh performs one download and registry swap. On failure the
// registry keeps its previous content and the catalog health service
// reports NOT_SERVING.
func (r *Refresher) Refresh(ctx context.Context) (err error) {
	ctx, span := StartChildSpan(ctx, "nbi.Refresh", "catalog_group", r.fetcher.Config().Group)
	defer span.End()

	start := time.Now()
	defer func() {
		r.rmetrics.ObserveRefresh(start, err)
		r.setHealth(err == nil)
		if err != nil {
			span.RecordError(err)
		}
	}()

	records, err := r.fetcher.FetchAll(ctx)
	if err != nil {
		return fmt.Errorf("refresh: %w", err)
	}

	selected, missing := r.selectRecords(records)
	if len(missing) > 0 {
		r.log.Warn(ctx, "tracked satellites missing from catalog",
			logging.Strings("names", missing),
			logging.String("group", r.fetcher.Config().Group),
		)
	}

	sats := make([]*core.Satellite, 0, len(selected))
	for _, rec := range selected {
		sat, err := core.NewSatelliteFromElementSet(rec)
		if err != nil {
			r.log.Warn(ctx, "skipping element set",
				logging.String("name", rec.Name),
				logging.Int("satellite_number", rec.SatelliteNumber),
				logging.Err(err),
			)
			continue
		}
		r.metrics.IncSatellitesBuilt(SourceCatalog)
		sats = append(sats, sat)
	}
	if len(sats) == 0 {
		if len(r.track) > 0 {
			return fmt.Errorf("refresh: %w", &catalog.NotFoundError{Group: r.fetcher.Config().Group, Name: r.track[0]})
		}
		return errors.New("refresh: no usable element sets in catalog")
	}

	r.registry.Replace(sats)
	r.log.Info(ctx, "registry refreshed",
		logging.Int("satellites", len(sats)),
		logging.Int("records", len(records)),
		logging.Duration("elapsed", time.Since(start)),
	)
	return nil
}

// OnTick adapts Refresh to timectrl.Listener.
func (r *Refresher) OnTick(ctx context.Context, _ time.Time) {
	if err := r.Refresh(ctx); err != nil {
		r.log.Error(ctx, "catalog refresh failed", logging.Err(err))
	}
}

func (r *Refresher) selectRecords(records []catalog.Record) (selected []*catalog.Record, missing []string) {
	if len(r.track) == 0 {
		for i := range records {
			selected = append(selected, &records[i])
		}
		return selected, nil
	}
	for _, name := range r.track {
		rec, ok := catalog.Lookup(records, name)
		if !ok {
			missing = append(missing, name)
			continue
		}
		selected = append(selected, rec)
	}
	return selected, missing
}

func (r *Refresher) setHealth(ok bool) {
	if r.health == nil {
		return
	}
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if ok {
		status = healthpb.HealthCheckResponse_SERVING
	}
	r.health.SetServingStatus(CatalogHealthService, status)
}
