package middleware

import (
	"net/http"

	"github.com/callwise/flow-version-service/pkg/limiter"

	"github.com/gin-gonic/gin"
)

// RateLimiter rejects requests when the matched route bucket is drained.
func RateLimiter(l limiter.LimiterIface) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := l.Key(c)
		if bucket, ok := l.GetBucket(key); ok {
			if bucket.TakeAvailable(1) == 0 {
				c.AbortWithStatus(http.StatusTooManyRequests)
				return
			}
		}
		c.Next()
	}
}
