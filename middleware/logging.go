package middleware

import (
	"log/slog"
	"strconv"
	"time"

	"postboard/observability"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-ID"

// RequestLogger tags each request with an id, logs it once it is handled and
// records the HTTP metrics.
func RequestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		rid := c.GetHeader(requestIDHeader)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Header(requestIDHeader, rid)
		c.Request = c.Request.WithContext(observability.WithRequestID(c.Request.Context(), rid))

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		latency := time.Since(start)
		observability.HTTPRequests.WithLabelValues(route, c.Request.Method, strconv.Itoa(status)).Inc()
		observability.HTTPLatency.WithLabelValues(route, c.Request.Method).Observe(latency.Seconds())

		fields := []any{
			slog.Int("status", status),
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.String("ip", c.ClientIP()),
			slog.Duration("latency", latency),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, slog.String("error", c.Errors.String()))
			logger.ErrorContext(c.Request.Context(), "request failed", fields...)
			return
		}
		logger.InfoContext(c.Request.Context(), "request processed", fields...)
	}
}
