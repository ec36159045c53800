// Command polageo-server serves satellite descriptors over HTTP and keeps a
// registry of tracked satellites refreshed from the element-set catalog.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/signalsfoundry/polageo/catalog"
	"github.com/signalsfoundry/polageo/internal/config"
	"github.com/signalsfoundry/polageo/internal/logging"
	"github.com/signalsfoundry/polageo/internal/nbi"
	"github.com/signalsfoundry/polageo/internal/observability"
	"github.com/signalsfoundry/polageo/kb"
	"github.com/signalsfoundry/polageo/timectrl"
)

const shutdownTimeout = 5 * time.Second

func main() {
	configPath := flag.String("config", "", "Path to a YAML config file (default: polageo.yaml in . or ./configs)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "polageo-server: %v\n", err)
		os.Exit(2)
	}
	log := logging.New(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	httpLis, err := net.Listen("tcp", cfg.Server.HTTPAddr)
	if err != nil {
		log.Error(ctx, "failed to listen for HTTP", logging.String("addr", cfg.Server.HTTPAddr), logging.Err(err))
		os.Exit(1)
	}
	grpcLis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
	if err != nil {
		log.Error(ctx, "failed to listen for gRPC", logging.String("addr", cfg.Server.GRPCAddr), logging.Err(err))
		os.Exit(1)
	}

	if err := run(ctx, cfg, log, httpLis, grpcLis); err != nil {
		log.Error(ctx, "server exited", logging.Err(err))
		os.Exit(1)
	}
}

// run serves until ctx is cancelled or a listener fails. It takes ownership
// of both listeners.
func run(ctx context.Context, cfg config.Config, log logging.Logger, httpLis, grpcLis net.Listener) error {
	tracing, err := observability.StartTracing(ctx, cfg.Tracing, log)
	if err != nil {
		return fmt.Errorf("start tracing: %w", err)
	}
	defer tracing.Shutdown(context.Background())

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics, err := observability.NewCollector(reg)
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}
	refreshMetrics, err := observability.NewRefreshCollector(reg)
	if err != nil {
		return fmt.Errorf("init refresh metrics: %w", err)
	}

	fetcher := catalog.NewFetcher(cfg.Catalog,
		catalog.WithLogger(log),
		catalog.WithMetrics(metrics),
	)
	registry := kb.NewRegistry(refreshMetrics)
	registry.Subscribe(func(ev kb.Event) {
		log.Debug(context.Background(), "registry event",
			logging.String("name", ev.Name),
			logging.String("type", ev.Type.String()),
		)
	})

	grpcSrv, healthSrv := nbi.NewGRPCServer(log, metrics)

	refresher, err := nbi.NewRefresher(nbi.RefresherOptions{
		Fetcher:        fetcher,
		Registry:       registry,
		Track:          cfg.Server.Track,
		Health:         healthSrv,
		Metrics:        metrics,
		RefreshMetrics: refreshMetrics,
		Logger:         log,
	})
	if err != nil {
		return err
	}

	api, err := nbi.NewServer(nbi.Options{
		Fetcher:     fetcher,
		Registry:    registry,
		Metrics:     metrics,
		Logger:      log,
		CORSOrigins: cfg.Server.CORSOrigins,
	})
	if err != nil {
		return err
	}
	httpSrv := &http.Server{
		Handler:           api.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 2)
	go func() {
		log.Info(ctx, "starting HTTP API", logging.String("addr", httpLis.Addr().String()))
		if err := httpSrv.Serve(httpLis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http: %w", err)
		}
	}()
	go func() {
		log.Info(ctx, "starting gRPC health server", logging.String("addr", grpcLis.Addr().String()))
		if err := grpcSrv.Serve(grpcLis); err != nil {
			errCh <- fmt.Errorf("grpc: %w", err)
		}
	}()

	tickCtx, cancelTicks := context.WithCancel(ctx)
	defer cancelTicks()
	ctrl := timectrl.NewController(cfg.Server.RefreshInterval)
	ctrl.AddListener(refresher.OnTick)
	ticksDone := ctrl.Start(tickCtx)

	var runErr error
	select {
	case <-ctx.Done():
		log.Info(context.Background(), "shutting down polageo-server")
	case runErr = <-errCh:
		log.Error(context.Background(), "listener failed", logging.Err(runErr))
	}

	cancelTicks()
	<-ticksDone

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	healthSrv.Shutdown()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Warn(shutdownCtx, "http shutdown", logging.Err(err))
	}
	grpcSrv.GracefulStop()

	return runErr
}
