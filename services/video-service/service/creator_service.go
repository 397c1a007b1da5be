package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/RigelNana/cinexnema/pkg/apperr"
	"github.com/RigelNana/cinexnema/services/video-service/models"
	"github.com/RigelNana/cinexnema/services/video-service/repository"
)

type EarningTotals struct {
	TotalRevenue       int64 `json:"total_revenue"`
	CreatorCommission  int64 `json:"creator_commission"`
	PlatformCommission int64 `json:"platform_commission"`
}

type Dashboard struct {
	Stats  repository.VideoStats `json:"stats"`
	Rows   []*models.Earning     `json:"rows"`
	Totals EarningTotals         `json:"totals"`
}

// CreatorService serves the creator area: dashboard and projects.
type CreatorService interface {
	Dashboard(ctx context.Context, creatorID uuid.UUID) (*Dashboard, error)
	ListProjects(ctx context.Context, creatorID uuid.UUID) ([]*models.Project, error)
	CreateProject(ctx context.Context, creatorID uuid.UUID, name string) (*models.Project, error)
	DeleteProject(ctx context.Context, creatorID, projectID uuid.UUID) error
}

type CreatorServiceImpl struct {
	videos   repository.VideoRepository
	projects repository.ProjectRepository
	earnings repository.EarningRepository
}

func NewCreatorService(videos repository.VideoRepository, projects repository.ProjectRepository, earnings repository.EarningRepository) *CreatorServiceImpl {
	return &CreatorServiceImpl{videos: videos, projects: projects, earnings: earnings}
}

func (s *CreatorServiceImpl) Dashboard(ctx context.Context, creatorID uuid.UUID) (*Dashboard, error) {
	stats, err := s.videos.StatsByCreator(ctx, creatorID)
	if err != nil {
		return nil, dbError(err, "video")
	}
	rows, err := s.earnings.ListByCreator(ctx, creatorID)
	if err != nil {
		return nil, dbError(err, "earning")
	}
	if rows == nil {
		rows = []*models.Earning{}
	}

	var totals EarningTotals
	for _, r := range rows {
		totals.TotalRevenue += r.TotalRevenue
		totals.CreatorCommission += r.CreatorCommission
		totals.PlatformCommission += r.PlatformCommission
	}
	return &Dashboard{Stats: stats, Rows: rows, Totals: totals}, nil
}

func (s *CreatorServiceImpl) ListProjects(ctx context.Context, creatorID uuid.UUID) ([]*models.Project, error) {
	projects, err := s.projects.ListByOwner(ctx, creatorID)
	if err != nil {
		return nil, dbError(err, "project")
	}
	if projects == nil {
		projects = []*models.Project{}
	}
	return projects, nil
}

func (s *CreatorServiceImpl) CreateProject(ctx context.Context, creatorID uuid.UUID, name string) (*models.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Validation("name is required")
	}
	project := &models.Project{OwnerID: creatorID, Name: name}
	if err := s.projects.Create(ctx, project); err != nil {
		return nil, dbError(err, "project")
	}
	return project, nil
}

// DeleteProject removes an owned project; its videos stay and lose the link.
func (s *CreatorServiceImpl) DeleteProject(ctx context.Context, creatorID, projectID uuid.UUID) error {
	return dbError(s.projects.DeleteOwned(ctx, projectID, creatorID), "project")
}
