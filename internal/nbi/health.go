package nbi

import (
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/signalsfoundry/polageo/internal/logging"
	"github.com/signalsfoundry/polageo/internal/observability"
)

// CatalogHealthService is the health-check service name reflecting whether
// the last catalog refresh succeeded.
const CatalogHealthService = "polageo.catalog"

// NewGRPCServer returns a gRPC server exposing grpc.health.v1.Health. The
// catalog service starts NOT_SERVING until the first successful refresh;
// the overall ("") service is SERVING.
func NewGRPCServer(log logging.Logger, metrics *observability.Collector) (*grpc.Server, *health.Server) {
	srv := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(
			RequestIDUnaryServerInterceptor(log),
			TracingUnaryServerInterceptor(),
			metrics.UnaryServerInterceptor(),
		),
	)

	hs := health.NewServer()
	hs.SetServingStatus(CatalogHealthService, healthpb.HealthCheckResponse_NOT_SERVING)
	healthpb.RegisterHealthServer(srv, hs)
	return srv, hs
}
