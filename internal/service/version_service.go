// Package service implements the business logic layer.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"

	"github.com/callwise/flow-version-service/internal/domain"
	"github.com/callwise/flow-version-service/internal/dto"
	"github.com/callwise/flow-version-service/pkg/app"
	"github.com/callwise/flow-version-service/pkg/code"
	"github.com/callwise/flow-version-service/pkg/flowgraph"
	"github.com/callwise/flow-version-service/pkg/logger"
	"github.com/callwise/flow-version-service/pkg/timex"
	"github.com/callwise/flow-version-service/pkg/util"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// VersionService is the version manager: validation, creation, history and
// comparison of flow snapshots.
type VersionService interface {
	// Create validates the payload and persists a new MANUAL version,
	// advancing the head.
	Create(ctx context.Context, params *dto.CreateVersionRequest, actor string) (*dto.VersionDTO, error)

	// CreateRollback persists a new ROLLBACK version replaying target's
	// payload. Callers (the rollback coordinator) have already validated it.
	CreateRollback(ctx context.Context, target *domain.FlowVersion, actor, reason string) (*dto.VersionDTO, error)

	// Get returns one version with payload.
	Get(ctx context.Context, flowID string, version int64) (*dto.VersionDTO, error)

	// History returns version summaries, latest first.
	History(ctx context.Context, params *dto.HistoryListRequest, pager *app.Pager) ([]*dto.VersionSummaryDTO, int64, error)

	// Head returns the reconciled current head version. The newest stored
	// version number is ground truth; a stale head pointer is repaired here.
	Head(ctx context.Context, flowID string) (*domain.FlowVersion, error)

	// Compare diffs versionA against versionB.
	Compare(ctx context.Context, flowID string, versionA, versionB int64) (*flowgraph.Delta, error)
}

type versionService struct {
	versionRepo domain.FlowVersionRepository
	flowRepo    domain.FlowRepository
	sf          *singleflight.Group
	logger      *zap.Logger
}

// NewVersionService creates a VersionService instance.
func NewVersionService(versionRepo domain.FlowVersionRepository, flowRepo domain.FlowRepository, lg *zap.Logger) VersionService {
	return &versionService{
		versionRepo: versionRepo,
		flowRepo:    flowRepo,
		sf:          &singleflight.Group{},
		logger:      lg,
	}
}

func (s *versionService) domainToDTO(v *domain.FlowVersion) *dto.VersionDTO {
	if v == nil {
		return nil
	}
	d := &dto.VersionDTO{
		FlowID:         v.FlowID,
		VersionNumber:  v.VersionNumber,
		PayloadHash:    v.PayloadHash,
		CreatedBy:      v.CreatedBy,
		Label:          v.Label,
		Origin:         string(v.Origin),
		RolledBackFrom: v.RolledBackFrom,
		Archived:       v.Archived,
		ArchivedAt:     timex.Time(v.ArchivedAt),
		Purged:         v.Purged,
		CreatedAt:      timex.Time(v.CreatedAt),
	}
	if v.Payload != "" {
		d.Payload = json.RawMessage(v.Payload)
	}
	return d
}

func (s *versionService) domainToSummaryDTO(v *domain.FlowVersion) *dto.VersionSummaryDTO {
	if v == nil {
		return nil
	}
	return &dto.VersionSummaryDTO{
		FlowID:         v.FlowID,
		VersionNumber:  v.VersionNumber,
		PayloadHash:    v.PayloadHash,
		CreatedBy:      v.CreatedBy,
		Label:          v.Label,
		Origin:         string(v.Origin),
		RolledBackFrom: v.RolledBackFrom,
		Archived:       v.Archived,
		Purged:         v.Purged,
		CreatedAt:      timex.Time(v.CreatedAt),
	}
}

func (s *versionService) Create(ctx context.Context, params *dto.CreateVersionRequest, actor string) (*dto.VersionDTO, error) {
	if _, err := flowgraph.ParseAndValidate(params.Payload); err != nil {
		var verr *flowgraph.ValidationError
		if errors.As(err, &verr) {
			return nil, code.ErrorInvalidPayload.WithDetails(verr.Reason)
		}
		return nil, code.ErrorInvalidPayload.WithDetails(err.Error())
	}

	created, err := s.createWithRetry(ctx, &domain.FlowVersionSet{
		FlowID:      params.FlowID,
		Payload:     string(params.Payload),
		PayloadHash: util.EncodeHash(string(params.Payload)),
		CreatedBy:   actor,
		Label:       params.Label,
		Origin:      domain.OriginManual,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("flow version created",
		zap.String(logger.FieldFlowID, created.FlowID),
		zap.Int64(logger.FieldVersion, created.VersionNumber),
		zap.String(logger.FieldActor, actor),
	)
	return s.domainToDTO(created), nil
}

func (s *versionService) CreateRollback(ctx context.Context, target *domain.FlowVersion, actor, reason string) (*dto.VersionDTO, error) {
	created, err := s.createWithRetry(ctx, &domain.FlowVersionSet{
		FlowID:         target.FlowID,
		Payload:        target.Payload,
		PayloadHash:    target.PayloadHash,
		CreatedBy:      actor,
		Label:          reason,
		Origin:         domain.OriginRollback,
		RolledBackFrom: target.VersionNumber,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("flow version rolled back",
		zap.String(logger.FieldFlowID, created.FlowID),
		zap.Int64(logger.FieldVersion, created.VersionNumber),
		zap.Int64("rolledBackFrom", target.VersionNumber),
		zap.String(logger.FieldActor, actor),
	)
	return s.domainToDTO(created), nil
}

// createWithRetry retries exactly once on an allocation conflict before
// surfacing it; anything beyond that is the caller's retry policy.
func (s *versionService) createWithRetry(ctx context.Context, set *domain.FlowVersionSet) (*domain.FlowVersion, error) {
	created, err := s.versionRepo.Create(ctx, set)
	if errors.Is(err, domain.ErrVersionConflict) {
		s.logger.Warn("version allocation conflict, retrying once",
			zap.String(logger.FieldFlowID, set.FlowID))
		created, err = s.versionRepo.Create(ctx, set)
	}
	if err != nil {
		if errors.Is(err, domain.ErrVersionConflict) {
			return nil, code.ErrorVersionConflict
		}
		return nil, code.ErrorDBQuery.WithDetails(err.Error())
	}
	return created, nil
}

func (s *versionService) Get(ctx context.Context, flowID string, version int64) (*dto.VersionDTO, error) {
	v, err := s.versionRepo.Get(ctx, flowID, version)
	if err != nil {
		if errors.Is(err, domain.ErrVersionNotFound) {
			return nil, code.ErrorVersionNotFound
		}
		return nil, code.ErrorDBQuery.WithDetails(err.Error())
	}
	return s.domainToDTO(v), nil
}

func (s *versionService) History(ctx context.Context, params *dto.HistoryListRequest, pager *app.Pager) ([]*dto.VersionSummaryDTO, int64, error) {
	// repair a stale head pointer before reporting history
	if _, err := s.Head(ctx, params.FlowID); err != nil {
		return nil, 0, err
	}

	offset := app.GetPageOffset(pager.Page, pager.PageSize)
	versions, count, err := s.versionRepo.ListPage(ctx, params.FlowID, params.IncludeArchived, pager.PageSize, offset)
	if err != nil {
		return nil, 0, code.ErrorDBQuery.WithDetails(err.Error())
	}

	results := make([]*dto.VersionSummaryDTO, 0, len(versions))
	for _, v := range versions {
		results = append(results, s.domainToSummaryDTO(v))
	}
	return results, count, nil
}

func (s *versionService) Head(ctx context.Context, flowID string) (*domain.FlowVersion, error) {
	v, err, _ := s.sf.Do("head#"+flowID, func() (interface{}, error) {
		latest, err := s.versionRepo.GetLatest(ctx, flowID)
		if err != nil {
			if errors.Is(err, domain.ErrVersionNotFound) {
				return nil, code.ErrorFlowNotFound
			}
			return nil, code.ErrorDBQuery.WithDetails(err.Error())
		}

		flow, err := s.flowRepo.Get(ctx, flowID)
		if err != nil && !errors.Is(err, domain.ErrFlowNotFound) {
			return nil, code.ErrorDBQuery.WithDetails(err.Error())
		}

		if flow != nil && flow.CurrentVersion != latest.VersionNumber {
			// a crash between snapshot write and head update left the pointer
			// stale; the newest version number wins
			s.logger.Warn("head pointer out of sync, reconciling",
				zap.String(logger.FieldFlowID, flowID),
				zap.Int64("head", flow.CurrentVersion),
				zap.Int64("latest", latest.VersionNumber),
			)
			if err := s.flowRepo.UpdateHead(ctx, flowID, flow.CurrentVersion, latest.VersionNumber); err != nil &&
				!errors.Is(err, domain.ErrHeadConflict) {
				return nil, code.ErrorDBQuery.WithDetails(err.Error())
			}
		}
		return latest, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.FlowVersion), nil
}

func (s *versionService) Compare(ctx context.Context, flowID string, versionA, versionB int64) (*flowgraph.Delta, error) {
	a, err := s.fetchForCompare(ctx, flowID, versionA)
	if err != nil {
		return nil, err
	}
	b, err := s.fetchForCompare(ctx, flowID, versionB)
	if err != nil {
		return nil, err
	}
	return flowgraph.Diff(a, b), nil
}

func (s *versionService) fetchForCompare(ctx context.Context, flowID string, version int64) (*flowgraph.Graph, error) {
	v, err := s.versionRepo.Get(ctx, flowID, version)
	if err != nil {
		if errors.Is(err, domain.ErrVersionNotFound) {
			return nil, code.ErrorVersionNotFound.WithDetails("version " + strconv.FormatInt(version, 10) + " not found")
		}
		return nil, code.ErrorDBQuery.WithDetails(err.Error())
	}
	if v.Purged {
		return nil, code.ErrorVersionPurged.WithDetails("version " + strconv.FormatInt(version, 10) + " has been purged")
	}
	g, err := flowgraph.Parse(json.RawMessage(v.Payload))
	if err != nil {
		return nil, code.ErrorServerInternal.WithDetails("stored payload unreadable: " + err.Error())
	}
	return g, nil
}

var _ VersionService = (*versionService)(nil)
