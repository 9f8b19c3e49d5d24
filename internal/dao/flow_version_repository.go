package dao

import (
	"context"
	"errors"
	"time"

	"github.com/callwise/flow-version-service/internal/domain"
	"github.com/callwise/flow-version-service/internal/model"
	"github.com/callwise/flow-version-service/pkg/logger"
	"github.com/callwise/flow-version-service/pkg/timex"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// flowVersionRepository implements domain.FlowVersionRepository, the
// append-only snapshot store.
type flowVersionRepository struct {
	dao *Dao
}

func NewFlowVersionRepository(dao *Dao) domain.FlowVersionRepository {
	return &flowVersionRepository{dao: dao}
}

func (r *flowVersionRepository) toDomain(m *model.FlowVersion) *domain.FlowVersion {
	if m == nil {
		return nil
	}
	return &domain.FlowVersion{
		FlowID:         m.FlowID,
		VersionNumber:  m.VersionNumber,
		Payload:        m.Payload,
		PayloadHash:    m.PayloadHash,
		CreatedBy:      m.CreatedBy,
		Label:          m.Label,
		Origin:         domain.Origin(m.Origin),
		RolledBackFrom: m.RolledBackFrom,
		Archived:       m.Archived,
		ArchivedAt:     time.Time(m.ArchivedAt),
		Purged:         m.Purged,
		PurgedAt:       time.Time(m.PurgedAt),
		CreatedAt:      time.Time(m.CreatedAt),
	}
}

// Create allocates the next version number under the per-flow lock and
// persists snapshot plus head advancement in one transaction. The composite
// unique index converts any surviving race into ErrVersionConflict.
func (r *flowVersionRepository) Create(ctx context.Context, set *domain.FlowVersionSet) (*domain.FlowVersion, error) {
	mu := r.dao.flowLock(set.FlowID)
	mu.Lock()
	defer mu.Unlock()

	var created model.FlowVersion
	err := r.dao.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current int64
		err := tx.Model(&model.FlowVersion{}).
			Where("flow_id = ?", set.FlowID).
			Select("COALESCE(MAX(version_number), 0)").
			Scan(&current).Error
		if err != nil {
			return err
		}

		now := timex.Now()
		created = model.FlowVersion{
			FlowID:         set.FlowID,
			VersionNumber:  current + 1,
			Payload:        set.Payload,
			PayloadHash:    set.PayloadHash,
			CreatedBy:      set.CreatedBy,
			Label:          set.Label,
			Origin:         string(set.Origin),
			RolledBackFrom: set.RolledBackFrom,
			CreatedAt:      now,
		}
		if err := tx.Create(&created).Error; err != nil {
			if isDuplicateKey(err) {
				return domain.ErrVersionConflict
			}
			return err
		}

		// head advancement is part of the same logical transaction
		var flow model.Flow
		err = tx.Where("flow_id = ?", set.FlowID).First(&flow).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return tx.Create(&model.Flow{
				FlowID:         set.FlowID,
				CurrentVersion: created.VersionNumber,
				CreatedAt:      now,
				UpdatedAt:      now,
			}).Error
		case err != nil:
			return err
		default:
			return tx.Model(&model.Flow{}).
				Where("flow_id = ?", set.FlowID).
				Updates(map[string]interface{}{
					"current_version": created.VersionNumber,
					"updated_at":      now,
				}).Error
		}
	})
	if err != nil {
		return nil, err
	}

	r.dao.logger.Debug("flow version persisted",
		zap.String(logger.FieldFlowID, set.FlowID),
		zap.Int64(logger.FieldVersion, created.VersionNumber),
		zap.String(logger.FieldOrigin, string(set.Origin)),
	)
	return r.toDomain(&created), nil
}

func (r *flowVersionRepository) Get(ctx context.Context, flowID string, versionNumber int64) (*domain.FlowVersion, error) {
	var m model.FlowVersion
	err := r.dao.db.WithContext(ctx).
		Where("flow_id = ? AND version_number = ?", flowID, versionNumber).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrVersionNotFound
		}
		return nil, err
	}
	return r.toDomain(&m), nil
}

func (r *flowVersionRepository) GetLatest(ctx context.Context, flowID string) (*domain.FlowVersion, error) {
	var m model.FlowVersion
	err := r.dao.db.WithContext(ctx).
		Where("flow_id = ?", flowID).
		Order("version_number DESC").
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrVersionNotFound
		}
		return nil, err
	}
	return r.toDomain(&m), nil
}

func (r *flowVersionRepository) List(ctx context.Context, flowID string, includeArchived bool) ([]*domain.FlowVersion, error) {
	q := r.dao.db.WithContext(ctx).Where("flow_id = ?", flowID)
	if !includeArchived {
		q = q.Where("archived = ?", false)
	}

	var rows []*model.FlowVersion
	if err := q.Order("version_number ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	list := make([]*domain.FlowVersion, 0, len(rows))
	for _, m := range rows {
		list = append(list, r.toDomain(m))
	}
	return list, nil
}

func (r *flowVersionRepository) ListPage(ctx context.Context, flowID string, includeArchived bool, limit, offset int) ([]*domain.FlowVersion, int64, error) {
	q := r.dao.db.WithContext(ctx).Model(&model.FlowVersion{}).Where("flow_id = ?", flowID)
	if !includeArchived {
		q = q.Where("archived = ?", false)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return nil, 0, err
	}

	var rows []*model.FlowVersion
	err := q.Order("version_number DESC").Limit(limit).Offset(offset).Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	list := make([]*domain.FlowVersion, 0, len(rows))
	for _, m := range rows {
		list = append(list, r.toDomain(m))
	}
	return list, count, nil
}

// MarkArchived flags one version archived, re-reading the head pointer inside
// the transaction so a concurrent create cannot see its fresh head archived.
func (r *flowVersionRepository) MarkArchived(ctx context.Context, flowID string, versionNumber int64) error {
	return r.dao.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		head, err := r.headInTx(tx, flowID)
		if err != nil {
			return err
		}
		if head == versionNumber {
			return domain.ErrArchiveHead
		}

		var m model.FlowVersion
		err = tx.Where("flow_id = ? AND version_number = ?", flowID, versionNumber).First(&m).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrVersionNotFound
			}
			return err
		}
		if m.Archived {
			return nil
		}
		return tx.Model(&model.FlowVersion{}).
			Where("flow_id = ? AND version_number = ?", flowID, versionNumber).
			Updates(map[string]interface{}{
				"archived":    true,
				"archived_at": timex.Now(),
			}).Error
	})
}

func (r *flowVersionRepository) MarkActive(ctx context.Context, flowID string, versionNumber int64) error {
	return r.dao.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		head, err := r.headInTx(tx, flowID)
		if err != nil {
			return err
		}
		if head == versionNumber {
			return domain.ErrArchiveHead
		}

		var m model.FlowVersion
		err = tx.Where("flow_id = ? AND version_number = ?", flowID, versionNumber).First(&m).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrVersionNotFound
			}
			return err
		}
		if !m.Archived {
			return nil
		}
		return tx.Model(&model.FlowVersion{}).
			Where("flow_id = ? AND version_number = ?", flowID, versionNumber).
			Update("archived", false).Error
	})
}

// Purge drops the payload of an archived version. The row itself stays so the
// numbering chain remains unbroken.
func (r *flowVersionRepository) Purge(ctx context.Context, flowID string, versionNumber int64) error {
	return r.dao.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m model.FlowVersion
		err := tx.Where("flow_id = ? AND version_number = ?", flowID, versionNumber).First(&m).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrVersionNotFound
			}
			return err
		}
		if m.Purged {
			return nil
		}
		if !m.Archived {
			return domain.ErrNotArchived
		}
		return tx.Model(&model.FlowVersion{}).
			Where("flow_id = ? AND version_number = ?", flowID, versionNumber).
			Updates(map[string]interface{}{
				"payload":   "",
				"purged":    true,
				"purged_at": timex.Now(),
			}).Error
	})
}

// headInTx reads the current head inside an open transaction. A missing flow
// row means no version exists yet, reported as head 0.
func (r *flowVersionRepository) headInTx(tx *gorm.DB, flowID string) (int64, error) {
	var flow model.Flow
	err := tx.Where("flow_id = ?", flowID).First(&flow).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return flow.CurrentVersion, nil
}

var _ domain.FlowVersionRepository = (*flowVersionRepository)(nil)
