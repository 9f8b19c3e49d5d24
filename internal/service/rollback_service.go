package service

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/callwise/flow-version-service/internal/domain"
	"github.com/callwise/flow-version-service/internal/dto"
	"github.com/callwise/flow-version-service/pkg/code"
	"github.com/callwise/flow-version-service/pkg/flowgraph"
	"github.com/callwise/flow-version-service/pkg/logger"
	"github.com/callwise/flow-version-service/pkg/timex"

	"go.uber.org/zap"
)

// RollbackService restores prior versions. A rollback never rewrites history:
// it appends a new version carrying the target's payload.
type RollbackService interface {
	// Rollback replays targetVersion as a new head version.
	Rollback(ctx context.Context, params *dto.RollbackRequest, actor string) (*dto.VersionDTO, error)

	// History returns the flow's rollback records, most recent first.
	History(ctx context.Context, params *dto.RollbackHistoryRequest) ([]*dto.RollbackRecordDTO, error)
}

type rollbackService struct {
	versionRepo domain.FlowVersionRepository
	versionSvc  VersionService
	logger      *zap.Logger
}

// NewRollbackService creates a RollbackService instance.
func NewRollbackService(versionRepo domain.FlowVersionRepository, versionSvc VersionService, lg *zap.Logger) RollbackService {
	return &rollbackService{
		versionRepo: versionRepo,
		versionSvc:  versionSvc,
		logger:      lg,
	}
}

func (s *rollbackService) Rollback(ctx context.Context, params *dto.RollbackRequest, actor string) (*dto.VersionDTO, error) {
	head, err := s.versionSvc.Head(ctx, params.FlowID)
	if err != nil {
		return nil, err
	}
	if head.VersionNumber == params.TargetVersion {
		return nil, code.ErrorRollbackToHead
	}

	target, err := s.versionRepo.Get(ctx, params.FlowID, params.TargetVersion)
	if err != nil {
		if errors.Is(err, domain.ErrVersionNotFound) {
			return nil, code.ErrorVersionNotFound
		}
		return nil, code.ErrorDBQuery.WithDetails(err.Error())
	}
	if target.Purged {
		return nil, code.ErrorVersionPurged
	}

	// the stored payload must still satisfy current structural rules before it
	// goes live again
	if _, err := flowgraph.ParseAndValidate(json.RawMessage(target.Payload)); err != nil {
		var verr *flowgraph.ValidationError
		if errors.As(err, &verr) {
			return nil, code.ErrorInvalidPayload.WithDetails(verr.Reason)
		}
		return nil, code.ErrorInvalidPayload.WithDetails(err.Error())
	}

	created, err := s.versionSvc.CreateRollback(ctx, target, actor, params.Reason)
	if err != nil {
		return nil, err
	}

	// archived targets come back into the active set once restored
	if target.Archived {
		if err := s.versionRepo.MarkActive(ctx, params.FlowID, target.VersionNumber); err != nil &&
			!errors.Is(err, domain.ErrArchiveHead) {
			s.logger.Warn("could not unarchive rollback target",
				zap.String(logger.FieldFlowID, params.FlowID),
				zap.Int64(logger.FieldVersion, target.VersionNumber),
				zap.Error(err),
			)
		}
	}
	return created, nil
}

func (s *rollbackService) History(ctx context.Context, params *dto.RollbackHistoryRequest) ([]*dto.RollbackRecordDTO, error) {
	versions, err := s.versionRepo.List(ctx, params.FlowID, true)
	if err != nil {
		return nil, code.ErrorDBQuery.WithDetails(err.Error())
	}
	if len(versions) == 0 {
		return nil, code.ErrorFlowNotFound
	}

	records := make([]*dto.RollbackRecordDTO, 0)
	for i := len(versions) - 1; i >= 0; i-- {
		v := versions[i]
		if v.Origin != domain.OriginRollback {
			continue
		}
		records = append(records, &dto.RollbackRecordDTO{
			RollbackVersion: v.VersionNumber,
			RolledBackFrom:  v.RolledBackFrom,
			Actor:           v.CreatedBy,
			Reason:          v.Label,
			Timestamp:       timex.Time(v.CreatedAt),
		})
	}
	return records, nil
}

var _ RollbackService = (*rollbackService)(nil)
