package middlewares

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

// LoggingMiddleware logs HTTP requests with OpenTelemetry trace context.
func LoggingMiddleware(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		statusCode := c.Writer.Status()
		logEvent := logger.Info()
		if statusCode >= 500 {
			logEvent = logger.Error()
		} else if statusCode >= 400 {
			logEvent = logger.Warn()
		}

		span := trace.SpanFromContext(c.Request.Context())
		if span.SpanContext().IsValid() {
			logEvent = logEvent.
				Str("trace_id", span.SpanContext().TraceID().String()).
				Str("span_id", span.SpanContext().SpanID().String())
		}
		if requestID := RequestIDFromContext(c); requestID != "" {
			logEvent = logEvent.Str("request_id", requestID)
		}
		if errs := c.Errors.ByType(gin.ErrorTypePrivate); len(errs) > 0 {
			logEvent = logEvent.Str("error", errs.String())
		}

		logEvent.
			Str("client_ip", c.ClientIP()).
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", statusCode).
			Dur("latency", time.Since(start)).
			Str("user_agent", c.Request.UserAgent()).
			Msg("http request")
	}
}
