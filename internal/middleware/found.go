package middleware

import (
	"github.com/callwise/flow-version-service/pkg/app"
	"github.com/callwise/flow-version-service/pkg/code"

	"github.com/gin-gonic/gin"
)

// NoFound handles unmatched routes.
func NoFound() gin.HandlerFunc {
	return func(c *gin.Context) {
		response := app.NewResponse(c)
		response.ToResponse(code.ErrorNotFoundAPI)
		c.Abort()
	}
}
