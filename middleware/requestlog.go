package middleware

import (
	"log/slog"
	"time"

	"newsdesk/metrics"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	RequestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
)

// RequestID returns the id assigned by RequestLog, or "" outside a logged request.
func RequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

// RequestLog assigns each request an id (reusing a well-formed incoming
// X-Request-ID), logs it when it completes and records request metrics.
func RequestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		id := c.GetHeader(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(RequestIDHeader, id)

		c.Next()

		dur := time.Since(start)
		path := c.Request.URL.Path
		status := c.Writer.Status()

		attrs := []any{
			"request_id", id,
			"method", c.Request.Method,
			"path", path,
			"status", status,
			"duration_ms", dur.Milliseconds(),
			"size", c.Writer.Size(),
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, "errors", c.Errors.String())
		}
		slog.Info("request", attrs...)

		if path != "/metrics" {
			metrics.RecordRequest(c.Request.Method, path, status, dur.Seconds())
		}
	}
}
