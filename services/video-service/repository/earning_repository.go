package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/RigelNana/cinexnema/services/video-service/models"
)

type EarningRepository interface {
	ListByCreator(ctx context.Context, creatorID uuid.UUID) ([]*models.Earning, error)
}

type EarningRepositoryImpl struct {
	*BaseRepositoryImpl[models.Earning]
}

func NewEarningRepository(db *gorm.DB) EarningRepository {
	return &EarningRepositoryImpl{
		BaseRepositoryImpl: NewBaseRepository[models.Earning](db),
	}
}

// ListByCreator returns the creator's earnings, newest period first.
func (r *EarningRepositoryImpl) ListByCreator(ctx context.Context, creatorID uuid.UUID) ([]*models.Earning, error) {
	var earnings []*models.Earning
	err := r.conn(ctx).Where("creator_id = ?", creatorID).Order("period_month DESC").Find(&earnings).Error
	return earnings, err
}
