package api_router

import (
	"time"

	"github.com/callwise/flow-version-service/internal/app"
	"github.com/callwise/flow-version-service/internal/dto"
	pkgapp "github.com/callwise/flow-version-service/pkg/app"
	"github.com/callwise/flow-version-service/pkg/code"
	apperrors "github.com/callwise/flow-version-service/pkg/errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// VersionHandler serves version creation, retrieval, history and comparison.
type VersionHandler struct {
	*Handler
}

// NewVersionHandler creates a VersionHandler instance.
func NewVersionHandler(a *app.App) *VersionHandler {
	return &VersionHandler{Handler: NewHandler(a)}
}

// Create registers a new version of a flow.
// @Summary Create a flow version
// @Description Validates the payload and appends it as the next version
// @Tags version
// @Accept json
// @Produce json
// @Param params body dto.CreateVersionRequest true "version payload"
// @Success 200 {object} pkgapp.Res{data=dto.VersionDTO}
// @Router /api/flow/version [post]
func (h *VersionHandler) Create(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.CreateVersionRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("VersionHandler.Create.BindAndValid err", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	ctx := c.Request.Context()
	actor := pkgapp.GetActor(c)

	version, err := h.App.VersionService.Create(ctx, params, actor)
	if err != nil {
		h.logError(ctx, "VersionHandler.Create", err)
		apperrors.ErrorResponse(c, err)
		return
	}
	versionsCreated.WithLabelValues(version.Origin).Inc()

	response.ToResponse(code.Success.WithData(version))
}

// Get returns one version including its payload.
// @Summary Get a flow version
// @Tags version
// @Produce json
// @Param flowId query string true "flow ID"
// @Param version query int64 true "version number"
// @Success 200 {object} pkgapp.Res{data=dto.VersionDTO}
// @Router /api/flow/version [get]
func (h *VersionHandler) Get(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.GetVersionRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("VersionHandler.Get.BindAndValid err", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	ctx := c.Request.Context()

	version, err := h.App.VersionService.Get(ctx, params.FlowID, params.Version)
	if err != nil {
		h.logError(ctx, "VersionHandler.Get", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.Success.WithData(version))
}

// List returns the version history of a flow, latest first.
// @Summary List flow versions
// @Tags version
// @Produce json
// @Param params query dto.HistoryListRequest true "query params"
// @Success 200 {object} pkgapp.Res{data=[]dto.VersionSummaryDTO}
// @Router /api/flow/versions [get]
func (h *VersionHandler) List(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.HistoryListRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("VersionHandler.List.BindAndValid err", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	ctx := c.Request.Context()
	pager := &pkgapp.Pager{
		Page:     pkgapp.GetPage(c),
		PageSize: pkgapp.GetPageSizeWithConfig(c, h.App.PaginationConfig()),
	}

	list, count, err := h.App.VersionService.History(ctx, params, pager)
	if err != nil {
		h.logError(ctx, "VersionHandler.List", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponseList(code.Success, list, int(count))
}

// Compare returns the structural delta between two versions.
// @Summary Compare two flow versions
// @Tags version
// @Produce json
// @Param params query dto.CompareRequest true "query params"
// @Success 200 {object} pkgapp.Res{data=flowgraph.Delta}
// @Router /api/flow/version/compare [get]
func (h *VersionHandler) Compare(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.CompareRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("VersionHandler.Compare.BindAndValid err", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	ctx := c.Request.Context()

	start := time.Now()
	delta, err := h.App.VersionService.Compare(ctx, params.FlowID, params.VersionA, params.VersionB)
	diffDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		h.logError(ctx, "VersionHandler.Compare", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.Success.WithData(delta))
}
