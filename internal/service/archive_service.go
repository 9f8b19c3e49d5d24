package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/callwise/flow-version-service/internal/domain"
	"github.com/callwise/flow-version-service/internal/dto"
	"github.com/callwise/flow-version-service/pkg/code"
	"github.com/callwise/flow-version-service/pkg/logger"

	"go.uber.org/zap"
)

// ArchiveService applies retention policies to version history. Archival is a
// soft state: archived versions keep their payload and can still be rollback
// targets. Purging is the irreversible step and only applies to archived
// versions.
type ArchiveService interface {
	// Archive runs the policy against one flow and reports what happened.
	// Running it twice with the same policy archives nothing new.
	Archive(ctx context.Context, params *dto.ArchiveRequest) (*dto.ArchiveReportDTO, error)

	// Purge drops the payload of an archived version for good.
	Purge(ctx context.Context, params *dto.PurgeRequest) error

	// SweepAll runs policy against every known flow. Used by the scheduled
	// archival task.
	SweepAll(ctx context.Context, policy dto.ArchivePolicyDTO) ([]*dto.ArchiveReportDTO, error)
}

type archiveService struct {
	versionRepo domain.FlowVersionRepository
	flowRepo    domain.FlowRepository
	logger      *zap.Logger
}

// NewArchiveService creates an ArchiveService instance.
func NewArchiveService(versionRepo domain.FlowVersionRepository, flowRepo domain.FlowRepository, lg *zap.Logger) ArchiveService {
	return &archiveService{
		versionRepo: versionRepo,
		flowRepo:    flowRepo,
		logger:      lg,
	}
}

func (s *archiveService) Archive(ctx context.Context, params *dto.ArchiveRequest) (*dto.ArchiveReportDTO, error) {
	policy := params.Policy
	if policy.RetainLatestN < 0 || policy.RetainDurationDays < 0 {
		return nil, code.ErrorInvalidPolicy
	}

	versions, err := s.versionRepo.List(ctx, params.FlowID, true)
	if err != nil {
		return nil, code.ErrorDBQuery.WithDetails(err.Error())
	}
	if len(versions) == 0 {
		return nil, code.ErrorFlowNotFound
	}

	// versions arrive ordered ascending; the newest is the head and is never
	// a candidate
	head := versions[len(versions)-1].VersionNumber

	retained := make(map[int64]bool)
	retained[head] = true
	for i, kept := len(versions)-1, 0; i >= 0 && kept < policy.RetainLatestN; i-- {
		retained[versions[i].VersionNumber] = true
		kept++
	}
	var cutoff time.Time
	if policy.RetainDurationDays > 0 {
		cutoff = time.Now().AddDate(0, 0, -policy.RetainDurationDays)
	}

	protected := make(map[int64]bool)
	if policy.ProtectRollbackTargets {
		for _, v := range versions {
			if v.Origin == domain.OriginRollback && !v.Archived && v.RolledBackFrom > 0 {
				protected[v.RolledBackFrom] = true
			}
		}
	}

	report := &dto.ArchiveReportDTO{
		FlowID:  params.FlowID,
		Skipped: make([]int64, 0),
	}
	for _, v := range versions {
		if v.Archived || retained[v.VersionNumber] {
			continue
		}
		if policy.RetainDurationDays > 0 && v.CreatedAt.After(cutoff) {
			continue
		}
		if protected[v.VersionNumber] {
			report.Skipped = append(report.Skipped, v.VersionNumber)
			continue
		}

		err := s.versionRepo.MarkArchived(ctx, params.FlowID, v.VersionNumber)
		switch {
		case errors.Is(err, domain.ErrArchiveHead):
			// a concurrent rollback may have promoted this version to head
			// between our listing and the archive write
			report.Skipped = append(report.Skipped, v.VersionNumber)
		case err != nil:
			return nil, code.ErrorDBQuery.WithDetails(err.Error())
		default:
			report.Archived = append(report.Archived, v.VersionNumber)
			report.ArchivedCount++
		}
	}

	sort.Slice(report.Skipped, func(i, j int) bool { return report.Skipped[i] < report.Skipped[j] })

	s.logger.Info("archival run finished",
		zap.String(logger.FieldFlowID, params.FlowID),
		zap.Int("archived", report.ArchivedCount),
		zap.Int("skipped", len(report.Skipped)),
	)
	return report, nil
}

func (s *archiveService) Purge(ctx context.Context, params *dto.PurgeRequest) error {
	err := s.versionRepo.Purge(ctx, params.FlowID, params.Version)
	switch {
	case errors.Is(err, domain.ErrVersionNotFound):
		return code.ErrorVersionNotFound
	case errors.Is(err, domain.ErrNotArchived):
		return code.ErrorPurgeActive
	case err != nil:
		return code.ErrorDBQuery.WithDetails(err.Error())
	}

	s.logger.Info("flow version purged",
		zap.String(logger.FieldFlowID, params.FlowID),
		zap.Int64(logger.FieldVersion, params.Version),
	)
	return nil
}

func (s *archiveService) SweepAll(ctx context.Context, policy dto.ArchivePolicyDTO) ([]*dto.ArchiveReportDTO, error) {
	flowIDs, err := s.flowRepo.ListFlowIDs(ctx)
	if err != nil {
		return nil, code.ErrorDBQuery.WithDetails(err.Error())
	}

	reports := make([]*dto.ArchiveReportDTO, 0, len(flowIDs))
	for _, flowID := range flowIDs {
		report, err := s.Archive(ctx, &dto.ArchiveRequest{FlowID: flowID, Policy: policy})
		if err != nil {
			// one broken flow must not stop the sweep
			s.logger.Error("archival sweep failed for flow",
				zap.String(logger.FieldFlowID, flowID),
				zap.Error(err),
			)
			continue
		}
		reports = append(reports, report)
	}
	return reports, nil
}

var _ ArchiveService = (*archiveService)(nil)
