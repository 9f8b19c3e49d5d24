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

// ArchiveHandler serves on-demand archival runs and payload purges.
type ArchiveHandler struct {
	*Handler
}

// NewArchiveHandler creates an ArchiveHandler instance.
func NewArchiveHandler(a *app.App) *ArchiveHandler {
	return &ArchiveHandler{Handler: NewHandler(a)}
}

// Archive runs the supplied archival policy against one flow.
// @Summary Archive old flow versions
// @Description Applies the retention policy and reports archived and skipped versions
// @Tags archive
// @Accept json
// @Produce json
// @Param params body dto.ArchiveRequest true "archive params"
// @Success 200 {object} pkgapp.Res{data=dto.ArchiveReportDTO}
// @Router /api/flow/versions/archive [post]
func (h *ArchiveHandler) Archive(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.ArchiveRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("ArchiveHandler.Archive.BindAndValid err", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	ctx := c.Request.Context()

	report, err := h.App.ArchiveService.Archive(ctx, params)
	if err != nil {
		h.logError(ctx, "ArchiveHandler.Archive", err)
		apperrors.ErrorResponse(c, err)
		return
	}
	versionsArchived.Add(float64(report.ArchivedCount))

	response.ToResponse(code.Success.WithData(report))
}

// Purge irreversibly drops the payload of an archived version.
// @Summary Purge an archived flow version
// @Tags archive
// @Accept json
// @Produce json
// @Param params body dto.PurgeRequest true "purge params"
// @Success 200 {object} pkgapp.Res
// @Router /api/flow/version/purge [post]
func (h *ArchiveHandler) Purge(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.PurgeRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("ArchiveHandler.Purge.BindAndValid err", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	ctx := c.Request.Context()

	if err := h.App.ArchiveService.Purge(ctx, params); err != nil {
		h.logError(ctx, "ArchiveHandler.Purge", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.Success)
}
