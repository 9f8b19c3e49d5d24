package api_router

import (
	"github.com/callwise/flow-version-service/internal/app"
	"github.com/callwise/flow-version-service/internal/dto"
	pkgapp "github.com/callwise/flow-version-service/pkg/app"
	"github.com/callwise/flow-version-service/pkg/code"
	apperrors "github.com/callwise/flow-version-service/pkg/errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RollbackHandler serves rollback execution and the rollback history view.
type RollbackHandler struct {
	*Handler
}

// NewRollbackHandler creates a RollbackHandler instance.
func NewRollbackHandler(a *app.App) *RollbackHandler {
	return &RollbackHandler{Handler: NewHandler(a)}
}

// Rollback restores a prior version by appending it as the new head.
// @Summary Roll back a flow
// @Description Replays the target version's payload as a new version
// @Tags rollback
// @Accept json
// @Produce json
// @Param params body dto.RollbackRequest true "rollback params"
// @Success 200 {object} pkgapp.Res{data=dto.VersionDTO}
// @Router /api/flow/version/rollback [post]
func (h *RollbackHandler) Rollback(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.RollbackRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("RollbackHandler.Rollback.BindAndValid err", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	ctx := c.Request.Context()
	actor := pkgapp.GetActor(c)

	version, err := h.App.RollbackService.Rollback(ctx, params, actor)
	if err != nil {
		h.logError(ctx, "RollbackHandler.Rollback", err)
		apperrors.ErrorResponse(c, err)
		return
	}
	rollbacksTotal.Inc()

	response.ToResponse(code.Success.WithData(version))
}

// History returns the rollback records of a flow, most recent first.
// @Summary List rollbacks of a flow
// @Tags rollback
// @Produce json
// @Param flowId query string true "flow ID"
// @Success 200 {object} pkgapp.Res{data=[]dto.RollbackRecordDTO}
// @Router /api/flow/rollbacks [get]
func (h *RollbackHandler) History(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.RollbackHistoryRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("RollbackHandler.History.BindAndValid err", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	ctx := c.Request.Context()

	records, err := h.App.RollbackService.History(ctx, params)
	if err != nil {
		h.logError(ctx, "RollbackHandler.History", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.Success.WithData(records))
}
