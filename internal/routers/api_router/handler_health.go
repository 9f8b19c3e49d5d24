package api_router

import (
	"time"

	"github.com/callwise/flow-version-service/internal/app"
	pkgapp "github.com/callwise/flow-version-service/pkg/app"
	"github.com/callwise/flow-version-service/pkg/code"

	"github.com/gin-gonic/gin"
)

// HealthHandler reports service liveness.
type HealthHandler struct {
	*Handler
}

// NewHealthHandler creates a HealthHandler instance.
func NewHealthHandler(a *app.App) *HealthHandler {
	return &HealthHandler{Handler: NewHandler(a)}
}

// HealthResponse is the health check body.
type HealthResponse struct {
	Status   string  `json:"status"`   // "healthy" or "unhealthy"
	Version  string  `json:"version"`  // build version
	Uptime   float64 `json:"uptime"`   // seconds since start
	Database string  `json:"database"` // "connected" or "error"
}

// Check reports service health including database connectivity.
// @Summary Health check
// @Tags system
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /api/health [get]
func (h *HealthHandler) Check(c *gin.Context) {
	response := HealthResponse{
		Status:   "healthy",
		Version:  h.App.Version().Version,
		Uptime:   time.Since(h.App.StartTime).Seconds(),
		Database: "connected",
	}

	if err := h.App.DB.Raw("SELECT 1").Error; err != nil {
		response.Status = "unhealthy"
		response.Database = "error"
		pkgapp.NewResponse(c).ToResponse(code.ErrorDBQuery.WithData(response))
		return
	}

	pkgapp.NewResponse(c).ToResponse(code.Success.WithData(response))
}

// Version reports the running build.
// @Summary Service version
// @Tags system
// @Produce json
// @Success 200 {object} pkgapp.Res{data=pkgapp.VersionInfo}
// @Router /api/version [get]
func (h *HealthHandler) Version(c *gin.Context) {
	pkgapp.NewResponse(c).ToResponse(code.Success.WithData(h.App.Version()))
}
