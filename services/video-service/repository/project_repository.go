package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/RigelNana/cinexnema/services/video-service/models"
)

type ProjectRepository interface {
	BaseRepository[models.Project]
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*models.Project, error)
	GetOwned(ctx context.Context, id, ownerID uuid.UUID) (*models.Project, error)
	// DeleteOwned removes the project and detaches its videos.
	DeleteOwned(ctx context.Context, id, ownerID uuid.UUID) error
}

type ProjectRepositoryImpl struct {
	*BaseRepositoryImpl[models.Project]
}

func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &ProjectRepositoryImpl{
		BaseRepositoryImpl: NewBaseRepository[models.Project](db),
	}
}

func (r *ProjectRepositoryImpl) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*models.Project, error) {
	var projects []*models.Project
	err := r.conn(ctx).Where("owner_id = ?", ownerID).Order("created_at DESC").Find(&projects).Error
	return projects, err
}

func (r *ProjectRepositoryImpl) GetOwned(ctx context.Context, id, ownerID uuid.UUID) (*models.Project, error) {
	var project models.Project
	err := r.conn(ctx).Where("id = ? AND owner_id = ?", id, ownerID).First(&project).Error
	if err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *ProjectRepositoryImpl) DeleteOwned(ctx context.Context, id, ownerID uuid.UUID) error {
	return r.conn(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND owner_id = ?", id, ownerID).Delete(&models.Project{})
		if err := rowsOrNotFound(res); err != nil {
			return err
		}
		return tx.Model(&models.Video{}).Where("project_id = ?", id).Update("project_id", nil).Error
	})
}
