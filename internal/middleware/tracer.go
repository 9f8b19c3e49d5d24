package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type traceIDKey struct{}

const traceIDGinKey = "traceId"

// TraceMiddlewareWithConfig attaches a trace ID to every request, reusing
// the inbound header when present.
func TraceMiddlewareWithConfig(enabled bool, header string) gin.HandlerFunc {
	if header == "" {
		header = "X-Trace-Id"
	}
	return func(c *gin.Context) {
		if !enabled {
			c.Next()
			return
		}
		traceID := c.GetHeader(header)
		if traceID == "" {
			traceID = uuid.NewString()
		}
		c.Set(traceIDGinKey, traceID)
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), traceIDKey{}, traceID))
		c.Header(header, traceID)
		c.Next()
	}
}

// GetTraceID reads the trace ID from a request context.
func GetTraceID(ctx context.Context) string {
	if v, ok := ctx.Value(traceIDKey{}).(string); ok {
		return v
	}
	return ""
}

// GetTraceIDFromGin reads the trace ID from the gin context.
func GetTraceIDFromGin(c *gin.Context) string {
	if v, ok := c.Get(traceIDGinKey); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
