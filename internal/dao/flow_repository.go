package dao

import (
	"context"
	"errors"
	"time"

	"github.com/callwise/flow-version-service/internal/domain"
	"github.com/callwise/flow-version-service/internal/model"
	"github.com/callwise/flow-version-service/pkg/timex"

	"gorm.io/gorm"
)

// flowRepository implements domain.FlowRepository.
type flowRepository struct {
	dao *Dao
}

func NewFlowRepository(dao *Dao) domain.FlowRepository {
	return &flowRepository{dao: dao}
}

func (r *flowRepository) toDomain(m *model.Flow) *domain.Flow {
	if m == nil {
		return nil
	}
	return &domain.Flow{
		FlowID:         m.FlowID,
		CurrentVersion: m.CurrentVersion,
		CreatedAt:      time.Time(m.CreatedAt),
		UpdatedAt:      time.Time(m.UpdatedAt),
	}
}

func (r *flowRepository) Get(ctx context.Context, flowID string) (*domain.Flow, error) {
	var m model.Flow
	err := r.dao.db.WithContext(ctx).Where("flow_id = ?", flowID).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrFlowNotFound
		}
		return nil, err
	}
	return r.toDomain(&m), nil
}

func (r *flowRepository) UpdateHead(ctx context.Context, flowID string, from, to int64) error {
	res := r.dao.db.WithContext(ctx).
		Model(&model.Flow{}).
		Where("flow_id = ? AND current_version = ?", flowID, from).
		Updates(map[string]interface{}{
			"current_version": to,
			"updated_at":      timex.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrHeadConflict
	}
	return nil
}

func (r *flowRepository) ListFlowIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := r.dao.db.WithContext(ctx).
		Model(&model.Flow{}).
		Order("flow_id ASC").
		Pluck("flow_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

var _ domain.FlowRepository = (*flowRepository)(nil)
