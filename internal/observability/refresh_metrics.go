package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// RefreshCollector exposes metrics for the periodic catalog refresh loop and
// the satellite registry it feeds.
type RefreshCollector struct {
	gatherer prometheus.Gatherer

	RefreshRuns        *prometheus.CounterVec
	RefreshDuration    prometheus.Histogram
	LastSuccess        prometheus.Gauge
	RegistrySatellites prometheus.Gauge
}

// NewRefreshCollector registers refresh metrics against the provided registerer.
func NewRefreshCollector(reg prometheus.Registerer) (*RefreshCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "refresh_runs_total",
		Help: "Catalog refresh runs, labeled by outcome (ok or error).",
	}, []string{"outcome"})
	runs, err := registerCounterVec(reg, runs, "refresh_runs_total")
	if err != nil {
		return nil, err
	}

	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "refresh_duration_seconds",
		Help:    "Duration of one refresh run including the catalog fetch.",
		Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
	})
	duration, err = registerHistogram(reg, duration, "refresh_duration_seconds")
	if err != nil {
		return nil, err
	}

	last := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "refresh_last_success_timestamp_seconds",
		Help: "Unix time of the last successful refresh.",
	})
	last, err = registerGauge(reg, last, "refresh_last_success_timestamp_seconds")
	if err != nil {
		return nil, err
	}

	size := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "registry_satellites",
		Help: "Number of satellite descriptors currently held by the registry.",
	})
	size, err = registerGauge(reg, size, "registry_satellites")
	if err != nil {
		return nil, err
	}

	return &RefreshCollector{
		gatherer:           gatherer,
		RefreshRuns:        runs,
		RefreshDuration:    duration,
		LastSuccess:        last,
		RegistrySatellites: size,
	}, nil
}

// Gatherer returns the Prometheus gatherer associated with the collector.
func (c *RefreshCollector) Gatherer() prometheus.Gatherer {
	if c == nil {
		return nil
	}
	return c.gatherer
}

// ObserveRefresh records a finished refresh run that started at start.
func (c *RefreshCollector) ObserveRefresh(start time.Time, err error) {
	if c == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	if c.RefreshRuns != nil {
		c.RefreshRuns.WithLabelValues(outcome).Inc()
	}
	if c.RefreshDuration != nil {
		c.RefreshDuration.Observe(time.Since(start).Seconds())
	}
	if err == nil && c.LastSuccess != nil {
		c.LastSuccess.Set(float64(time.Now().Unix()))
	}
}

// SetRegistrySize satisfies kb.MetricsRecorder.
func (c *RefreshCollector) SetRegistrySize(n int) {
	if c == nil || c.RegistrySatellites == nil {
		return
	}
	c.RegistrySatellites.Set(float64(n))
}
