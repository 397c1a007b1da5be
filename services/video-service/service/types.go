package service

import (
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/RigelNana/cinexnema/services/video-service/models"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type Page struct {
	Page     int `form:"page" json:"page"`
	PageSize int `form:"page_size" json:"page_size"`
}

func (p Page) normalize() Page {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	return p
}

type VideoPage struct {
	Videos   []*models.Video `json:"videos"`
	Total    int64           `json:"total"`
	Page     int             `json:"page"`
	PageSize int             `json:"page_size"`
}

type CreateUploadInput struct {
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	Format          string     `json:"format" binding:"omitempty,videoformat"`
	Genres          []string   `json:"genres"`
	DurationMinutes int        `json:"duration_minutes"`
	Filename        string     `json:"filename"`
	ProjectID       *uuid.UUID `json:"project_id"`
	CoverURL        string     `json:"cover_url"`
	CoverPath       string     `json:"cover_path"`
	ThumbnailPath   string     `json:"thumbnail_path"`
}

// UploadTarget is what a client needs to write the file directly to storage.
type UploadTarget struct {
	VideoID     uuid.UUID `json:"video_id"`
	UploadURL   string    `json:"upload_url"`
	Method      string    `json:"method"`
	Bucket      string    `json:"bucket"`
	Path        string    `json:"path"`
	ExpiresAt   time.Time `json:"expires_at"`
	MonthlyCost int       `json:"monthly_cost"`
}

// SubmitFormInput is the full metadata form of an already stored video.
type SubmitFormInput struct {
	Title           string              `json:"title"`
	Description     string              `json:"description"`
	Format          string              `json:"format" binding:"omitempty,videoformat"`
	Genres          []string            `json:"genres"`
	DurationMinutes int                 `json:"duration_minutes"`
	ProjectID       *uuid.UUID          `json:"project_id"`
	VideoURL        string              `json:"video_url"`
	Bucket          string              `json:"bucket"`
	Path            string              `json:"path"`
	CoverURL        string              `json:"cover_url"`
	CoverPath       string              `json:"cover_path"`
	ThumbnailPath   string              `json:"thumbnail_path"`
	Details         models.VideoDetails `json:"details"`
}

// SubmitPublicInput is an anonymous submission of an already hosted video.
type SubmitPublicInput struct {
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	Format          string   `json:"format" binding:"omitempty,videoformat"`
	Genres          []string `json:"genres"`
	DurationMinutes int      `json:"duration_minutes"`
	PublicURL       string   `json:"public_url"`
	Bucket          string   `json:"bucket"`
	Path            string   `json:"path"`
	// LegacyPublicURL carries the camelCase key older clients send.
	LegacyPublicURL string   `json:"publicUrl"`
}

// UpdateVideoInput holds the editable fields. Nil fields are left as is.
// An empty ProjectID detaches the video from its project.
type UpdateVideoInput struct {
	Title           *string   `json:"title"`
	Description     *string   `json:"description"`
	Format          *string   `json:"format"`
	Genres          *[]string `json:"genres"`
	DurationMinutes *int      `json:"duration_minutes"`
	ProjectID       *string   `json:"project_id"`
	CoverURL        *string   `json:"cover_url"`
	CoverPath       *string   `json:"cover_path"`
	ThumbnailPath   *string   `json:"thumbnail_path"`
}

type CoverInput struct {
	Filename    string
	ContentType string
	// Size is the client declared size, -1 when unknown.
	Size int64
	Body io.Reader
}

type CoverResult struct {
	URL           string `json:"url"`
	Path          string `json:"path"`
	Bucket        string `json:"bucket"`
	ThumbnailURL  string `json:"thumbnail_url,omitempty"`
	ThumbnailPath string `json:"thumbnail_path,omitempty"`
}

type Quote struct {
	DurationMinutes int `json:"duration_minutes"`
	MonthlyCost     int `json:"monthly_cost"`
	FreeMinutes     int `json:"free_minutes"`
	BlockMinutes    int `json:"block_minutes"`
	UnitFee         int `json:"unit_fee"`
}
