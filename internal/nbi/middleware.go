package nbi

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/signalsfoundry/polageo/internal/logging"
	"github.com/signalsfoundry/polageo/internal/observability"
)

const requestIDHeader = "X-Request-ID"

// RequestIDMiddleware mirrors RequestIDUnaryServerInterceptor for HTTP: it
// honours an inbound X-Request-ID, echoes the ID on the response and logs
// one line per request.
func RequestIDMiddleware(base logging.Logger) gin.HandlerFunc {
	if base == nil {
		base = logging.Noop()
	}
	return func(c *gin.Context) {
		ctx, reqLog, id := logging.ForRequest(c.Request.Context(), base, c.GetHeader(requestIDHeader))
		c.Request = c.Request.WithContext(ctx)
		c.Header(requestIDHeader, id)

		start := time.Now()
		c.Next()

		fields := []logging.Field{
			logging.String("method", c.Request.Method),
			logging.String("route", c.FullPath()),
			logging.String("path", c.Request.URL.Path),
			logging.Int("status", c.Writer.Status()),
			logging.Duration("elapsed", time.Since(start)),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, logging.String("error", c.Errors.String()))
		}
		if c.Writer.Status() >= 500 {
			reqLog.Warn(ctx, "http request", fields...)
			return
		}
		reqLog.Info(ctx, "http request", fields...)
	}
}

// MetricsMiddleware records request counts and latencies by route template.
func MetricsMiddleware(m *observability.Collector) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		m.ObserveHTTPRequest(c.FullPath(), c.Request.Method, c.Writer.Status(), time.Since(start))
	}
}

// CORSMiddleware allows cross-origin reads from origins. "*" allows any
// origin. It returns nil when origins is empty.
func CORSMiddleware(origins []string) gin.HandlerFunc {
	if len(origins) == 0 {
		return nil
	}
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", requestIDHeader, "traceparent", "tracestate"},
		ExposeHeaders: []string{requestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cors.New(cfg)
		}
	}
	cfg.AllowOrigins = origins
	return cors.New(cfg)
}
