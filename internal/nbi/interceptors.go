package nbi

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/signalsfoundry/polageo/internal/logging"
)

const requestIDMetadataKey = "x-request-id"

// RequestIDUnaryServerInterceptor is the gRPC twin of RequestIDMiddleware.
// The request ID comes from x-request-id metadata when present and is sent
// back as a response header; failed health RPCs are logged with it.
func RequestIDUnaryServerInterceptor(base logging.Logger) grpc.UnaryServerInterceptor {
	if base == nil {
		base = logging.Noop()
	}
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		var incoming string
		if vals := metadata.ValueFromIncomingContext(ctx, requestIDMetadataKey); len(vals) > 0 {
			incoming = vals[0]
		}
		ctx, reqLog, id := logging.ForRequest(ctx, base, incoming)
		// No transport stream when called outside a server; nothing to echo.
		_ = grpc.SetHeader(ctx, metadata.Pairs(requestIDMetadataKey, id))

		start := time.Now()
		resp, err := handler(ctx, req)
		if err != nil {
			reqLog.Warn(ctx, "rpc failed",
				logging.String("rpc", info.FullMethod),
				logging.String("code", status.Code(err).String()),
				logging.Duration("elapsed", time.Since(start)),
				logging.Err(err),
			)
		}
		return resp, err
	}
}
