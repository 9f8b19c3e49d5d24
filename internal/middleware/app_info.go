package middleware

import "github.com/gin-gonic/gin"

// AppInfoWithConfig stamps service identity headers on every response.
func AppInfoWithConfig(name, version string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Service-Name", name)
		c.Header("X-Service-Version", version)
		c.Next()
	}
}
