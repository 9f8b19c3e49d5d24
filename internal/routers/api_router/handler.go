// Package api_router provides the HTTP API route handlers.
package api_router

import (
	"context"

	"github.com/callwise/flow-version-service/internal/app"
	"github.com/callwise/flow-version-service/internal/middleware"

	"go.uber.org/zap"
)

// Handler is the base handler embedding the app container. Every API handler
// embeds it to get its dependencies injected.
type Handler struct {
	App *app.App
}

// NewHandler creates a base Handler instance.
func NewHandler(a *app.App) *Handler {
	return &Handler{App: a}
}

// logError logs a handler failure with the request trace ID attached.
func (h *Handler) logError(ctx context.Context, method string, err error) {
	h.App.Logger().Error(method,
		zap.Error(err),
		zap.String("traceId", middleware.GetTraceID(ctx)),
	)
}
