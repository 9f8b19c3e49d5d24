package middleware

import (
	"fmt"
	"runtime/debug"

	"github.com/callwise/flow-version-service/pkg/app"
	"github.com/callwise/flow-version-service/pkg/code"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RecoveryWithLogger turns panics into a 500 envelope and logs the stack.
func RecoveryWithLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		defer func() {
			if err := recover(); err != nil {
				var errorMsg string
				switch v := err.(type) {
				case error:
					errorMsg = v.Error()
				default:
					errorMsg = fmt.Sprintf("%v", v)
				}
				logger.Error("recovered from panic",
					zap.String("router", path),
					zap.String("method", c.Request.Method),
					zap.String("ip", c.ClientIP()),
					zap.String("panic", errorMsg),
					zap.String("stack", string(debug.Stack())),
				)
				app.NewResponse(c).ToResponse(code.ErrorServerInternal.WithDetails(errorMsg))
				c.Abort()
			}
		}()
		c.Next()
	}
}
