// Package routers assembles the gin engine: middleware chain and API routes.
package routers

import (
	"time"

	"github.com/callwise/flow-version-service/internal/app"
	"github.com/callwise/flow-version-service/internal/middleware"
	"github.com/callwise/flow-version-service/internal/routers/api_router"
	"github.com/callwise/flow-version-service/pkg/limiter"

	"github.com/gin-gonic/gin"
	ut "github.com/go-playground/universal-translator"
)

// write endpoints share one token bucket; reads are unthrottled
var methodLimiters = limiter.NewMethodLimiter().AddBuckets(
	limiter.BucketRule{
		Key:          "/api/flow/version",
		FillInterval: time.Second,
		Capacity:     50,
		Quantum:      50,
	},
)

// NewRouter builds the gin engine with the full middleware chain and every
// API route wired to its handler.
func NewRouter(appContainer *app.App, uni *ut.UniversalTranslator) *gin.Engine {
	cfg := appContainer.Config()

	r := gin.New()

	api := r.Group("/api")
	{
		api.Use(middleware.AppInfoWithConfig(app.Name, appContainer.Version().Version))
		api.Use(middleware.TraceMiddlewareWithConfig(cfg.Tracer.Enabled, cfg.Tracer.Header))
		api.Use(middleware.RateLimiter(methodLimiters))
		api.Use(middleware.ContextTimeout(time.Duration(cfg.App.DefaultContextTimeout) * time.Second))
		api.Use(middleware.Cors())
		api.Use(middleware.LangWithTranslator(uni))
		api.Use(middleware.AccessLogWithLogger(appContainer.Logger()))
		api.Use(middleware.RecoveryWithLogger(appContainer.Logger()))
		api.Use(api_router.RequestMetrics())

		versionHandler := api_router.NewVersionHandler(appContainer)
		rollbackHandler := api_router.NewRollbackHandler(appContainer)
		archiveHandler := api_router.NewArchiveHandler(appContainer)
		healthHandler := api_router.NewHealthHandler(appContainer)

		// unauthenticated system endpoints
		api.GET("/health", healthHandler.Check)
		api.GET("/version", healthHandler.Version)

		if cfg.Security.AuthEnabled {
			api.Use(middleware.ActorAuthToken(appContainer.TokenManager))
		}

		api.GET("/flow/versions", versionHandler.List)
		api.POST("/flow/version", versionHandler.Create)
		api.GET("/flow/version", versionHandler.Get)
		api.GET("/flow/version/compare", versionHandler.Compare)

		api.POST("/flow/version/rollback", rollbackHandler.Rollback)
		api.GET("/flow/rollbacks", rollbackHandler.History)

		api.POST("/flow/versions/archive", archiveHandler.Archive)
		api.POST("/flow/version/purge", archiveHandler.Purge)
	}

	r.GET("/metrics", api_router.Metrics())

	r.Use(middleware.Cors())
	r.NoRoute(middleware.NoFound())

	return r
}
