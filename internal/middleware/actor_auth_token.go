package middleware

import (
	"strings"

	pkgapp "github.com/callwise/flow-version-service/pkg/app"
	"github.com/callwise/flow-version-service/pkg/code"

	"github.com/gin-gonic/gin"
)

// ActorAuthToken resolves the acting identity from the bearer token. Token
// issuance belongs to the external identity resolver; this only validates.
func ActorAuthToken(tm *pkgapp.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader("Authorization")
		if token == "" {
			token = c.GetHeader("token")
		}
		token = strings.TrimPrefix(token, "Bearer ")

		if token == "" {
			pkgapp.NewResponse(c).ToResponse(code.ErrorInvalidActorToken)
			c.Abort()
			return
		}

		actor, err := tm.ParseToken(token)
		if err != nil || actor == "" {
			pkgapp.NewResponse(c).ToResponse(code.ErrorInvalidActorToken.WithDetails("token validation failed"))
			c.Abort()
			return
		}

		pkgapp.SetActor(c, actor)
		c.Next()
	}
}
