package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/RigelNana/cinexnema/services/video-service/models"
)

// VideoQuery filters a video listing. Zero values mean "no filter".
type VideoQuery struct {
	CreatorID        *uuid.UUID
	Approved         *bool
	RequirePublicURL bool
	Page             int
	PageSize         int
}

func (q VideoQuery) offset() int {
	if q.Page <= 1 {
		return 0
	}
	return (q.Page - 1) * q.PageSize
}

// VideoStats aggregates a creator's catalogue for the dashboard.
type VideoStats struct {
	TotalVideos      int64 `json:"total_videos"`
	ApprovedVideos   int64 `json:"approved_videos"`
	MonthlyCostTotal int64 `json:"monthly_cost_total"`
}

type VideoRepository interface {
	BaseRepository[models.Video]
	Find(ctx context.Context, q VideoQuery) ([]*models.Video, int64, error)
	GetOwned(ctx context.Context, id, creatorID uuid.UUID) (*models.Video, error)
	// MarkUploaded sets the status and all storage pointers in one statement.
	MarkUploaded(ctx context.Context, id uuid.UUID, storage models.Storage) error
	SetApproved(ctx context.Context, id uuid.UUID, approved bool) error
	UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
	DeleteOwned(ctx context.Context, id, creatorID uuid.UUID) error
	StatsByCreator(ctx context.Context, creatorID uuid.UUID) (VideoStats, error)
}

type VideoRepositoryImpl struct {
	*BaseRepositoryImpl[models.Video]
}

func NewVideoRepository(db *gorm.DB) VideoRepository {
	return &VideoRepositoryImpl{
		BaseRepositoryImpl: NewBaseRepository[models.Video](db),
	}
}

func (r *VideoRepositoryImpl) filter(ctx context.Context, q VideoQuery) *gorm.DB {
	return applyVideoQuery(r.conn(ctx).Model(&models.Video{}), q)
}

func applyVideoQuery(tx *gorm.DB, q VideoQuery) *gorm.DB {
	if q.CreatorID != nil {
		tx = tx.Where("creator_id = ?", *q.CreatorID)
	}
	if q.Approved != nil {
		tx = tx.Where("approved = ?", *q.Approved)
	}
	if q.RequirePublicURL {
		tx = tx.Where("public_url IS NOT NULL AND public_url <> ''")
	}
	return tx
}

func (r *VideoRepositoryImpl) Find(ctx context.Context, q VideoQuery) ([]*models.Video, int64, error) {
	var videos []*models.Video
	var total int64

	if err := r.filter(ctx, q).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	tx := r.filter(ctx, q).Order("created_at DESC")
	if q.PageSize > 0 {
		tx = tx.Limit(q.PageSize).Offset(q.offset())
	}
	if err := tx.Find(&videos).Error; err != nil {
		return nil, 0, err
	}
	return videos, total, nil
}

func (r *VideoRepositoryImpl) GetOwned(ctx context.Context, id, creatorID uuid.UUID) (*models.Video, error) {
	var video models.Video
	err := r.conn(ctx).Where("id = ? AND creator_id = ?", id, creatorID).First(&video).Error
	if err != nil {
		return nil, err
	}
	return &video, nil
}

func (r *VideoRepositoryImpl) MarkUploaded(ctx context.Context, id uuid.UUID, storage models.Storage) error {
	res := r.conn(ctx).Model(&models.Video{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":         models.StatusUploaded,
		"storage_bucket": storage.Bucket,
		"storage_path":   storage.Path,
		"public_url":     storage.PublicURL,
	})
	return rowsOrNotFound(res)
}

func (r *VideoRepositoryImpl) SetApproved(ctx context.Context, id uuid.UUID, approved bool) error {
	res := r.conn(ctx).Model(&models.Video{}).Where("id = ?", id).Update("approved", approved)
	return rowsOrNotFound(res)
}

func (r *VideoRepositoryImpl) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	res := r.conn(ctx).Model(&models.Video{}).Where("id = ?", id).Updates(fields)
	return rowsOrNotFound(res)
}

func (r *VideoRepositoryImpl) DeleteOwned(ctx context.Context, id, creatorID uuid.UUID) error {
	res := r.conn(ctx).Where("id = ? AND creator_id = ?", id, creatorID).Delete(&models.Video{})
	return rowsOrNotFound(res)
}

func (r *VideoRepositoryImpl) StatsByCreator(ctx context.Context, creatorID uuid.UUID) (VideoStats, error) {
	var stats VideoStats
	err := r.conn(ctx).Model(&models.Video{}).
		Select("COUNT(*) AS total_videos, "+
			"COUNT(*) FILTER (WHERE approved) AS approved_videos, "+
			"COALESCE(SUM(monthly_cost), 0) AS monthly_cost_total").
		Where("creator_id = ?", creatorID).
		Scan(&stats).Error
	return stats, err
}

func rowsOrNotFound(res *gorm.DB) error {
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
