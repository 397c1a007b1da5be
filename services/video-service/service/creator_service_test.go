package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RigelNana/cinexnema/pkg/apperr"
	"github.com/RigelNana/cinexnema/services/video-service/models"
)

func TestDashboard(t *testing.T) {
	f := newFixture()
	creator := uuid.New()
	ctx := context.Background()

	a := createUploaded(t, f, creator, 90) // 1000
	createUploaded(t, f, creator, 150)     // 2000
	createUploaded(t, f, uuid.New(), 300)  // someone else
	_, err := f.svc.Approve(ctx, a.ID)
	require.NoError(t, err)

	jan := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	f.earnings.rows = []*models.Earning{
		{CreatorID: creator, TotalRevenue: 100, CreatorCommission: 70, PlatformCommission: 30, PeriodMonth: jan},
		{CreatorID: creator, TotalRevenue: 200, CreatorCommission: 140, PlatformCommission: 60, PeriodMonth: feb},
		{CreatorID: uuid.New(), TotalRevenue: 999, PeriodMonth: feb},
	}

	svc := NewCreatorService(f.videos, f.projects, f.earnings)
	d, err := svc.Dashboard(ctx, creator)
	require.NoError(t, err)

	assert.Equal(t, int64(2), d.Stats.TotalVideos)
	assert.Equal(t, int64(1), d.Stats.ApprovedVideos)
	assert.Equal(t, int64(3000), d.Stats.MonthlyCostTotal)
	require.Len(t, d.Rows, 2)
	assert.Equal(t, feb, d.Rows[0].PeriodMonth)
	assert.Equal(t, EarningTotals{TotalRevenue: 300, CreatorCommission: 210, PlatformCommission: 90}, d.Totals)
}

func TestDashboardEmpty(t *testing.T) {
	f := newFixture()
	d, err := NewCreatorService(f.videos, f.projects, f.earnings).Dashboard(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.NotNil(t, d.Rows)
	assert.Zero(t, d.Stats.TotalVideos)

	f.earnings.err = errBoom
	_, err = NewCreatorService(f.videos, f.projects, f.earnings).Dashboard(context.Background(), uuid.New())
	assert.Equal(t, apperr.KindUpstream, apperr.KindOf(err))
}

func TestProjects(t *testing.T) {
	f := newFixture()
	svc := NewCreatorService(f.videos, f.projects, f.earnings)
	creator := uuid.New()
	ctx := context.Background()

	_, err := svc.CreateProject(ctx, creator, "   ")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	p, err := svc.CreateProject(ctx, creator, " Season One ")
	require.NoError(t, err)
	assert.Equal(t, "Season One", p.Name)

	list, err := svc.ListProjects(ctx, creator)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	empty, err := svc.ListProjects(ctx, uuid.New())
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	target, err := f.svc.CreateUpload(ctx, creator, CreateUploadInput{ProjectID: &p.ID})
	require.NoError(t, err)
	require.NotNil(t, f.videos.get(target.VideoID).ProjectID)

	err = svc.DeleteProject(ctx, uuid.New(), p.ID)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	require.NoError(t, svc.DeleteProject(ctx, creator, p.ID))
	v := f.videos.get(target.VideoID)
	require.NotNil(t, v, "videos survive project deletion")
	assert.Nil(t, v.ProjectID)
}
