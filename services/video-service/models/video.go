package models

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/datatypes"
)

const (
	StatusUploading  = "uploading"
	StatusUploaded   = "uploaded"
	StatusProcessing = "processing"
	StatusReady      = "ready"
)

const DefaultTitle = "Untitled"

type Format string

const (
	FormatMovie  Format = "Movie"
	FormatSeries Format = "Series"
	FormatSeason Format = "Season/Serial"
)

var formatAliases = map[string]Format{
	"movie":         FormatMovie,
	"filme":         FormatMovie,
	"series":        FormatSeries,
	"série":         FormatSeries,
	"serie":         FormatSeries,
	"season/serial": FormatSeason,
	"season":        FormatSeason,
	"serial":        FormatSeason,
	"seriado":       FormatSeason,
}

// ParseFormat normalises a user supplied format label. Empty input yields an
// empty format.
func ParseFormat(s string) (Format, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil
	}
	if f, ok := formatAliases[strings.ToLower(s)]; ok {
		return f, nil
	}
	return "", fmt.Errorf("unknown format %q", s)
}

// Storage holds the pointers to a completed upload. The three fields are
// written together.
type Storage struct {
	Bucket    string `gorm:"column:storage_bucket" json:"bucket"`
	Path      string `gorm:"column:storage_path" json:"path"`
	PublicURL string `gorm:"column:public_url" json:"public_url"`
}

func (s Storage) Complete() bool {
	return s.Bucket != "" && s.Path != "" && s.PublicURL != ""
}

type Video struct {
	Base
	CreatorID       *uuid.UUID     `gorm:"type:uuid;index" json:"creator_id"`
	ProjectID       *uuid.UUID     `gorm:"type:uuid;index" json:"project_id,omitempty"`
	Title           string         `gorm:"not null" json:"title"`
	Description     string         `gorm:"type:text" json:"description"`
	Format          Format         `gorm:"type:varchar(32)" json:"format"`
	Genres          pq.StringArray `gorm:"type:text[]" json:"genres"`
	DurationMinutes int            `gorm:"not null;default:0" json:"duration_minutes"`
	MonthlyCost     int            `gorm:"not null;default:0" json:"monthly_cost"`

	CoverURL      string `json:"cover_url,omitempty"`
	CoverPath     string `json:"cover_path,omitempty"`
	ThumbnailPath string `json:"thumbnail_path,omitempty"`

	UploadBucket string `json:"upload_bucket,omitempty"`
	UploadPath   string `json:"upload_path,omitempty"`

	Storage `gorm:"embedded" json:"storage"`

	Status   string `gorm:"type:varchar(32);not null;default:'uploading';index" json:"status"`
	Approved bool   `gorm:"not null;default:false;index" json:"approved"`

	Details datatypes.JSONType[VideoDetails] `gorm:"type:jsonb" json:"details"`
}

func (Video) TableName() string {
	return "videos"
}

// Public reports whether the video may appear in the public catalogue.
func (v *Video) Public() bool {
	return v.Approved && v.Storage.PublicURL != ""
}

func (v *Video) OwnedBy(creator uuid.UUID) bool {
	return v.CreatorID != nil && *v.CreatorID == creator
}

// VideoDetails is the extended metadata collected by the full upload form.
type VideoDetails struct {
	AlternateTitle  string   `json:"alternate_title,omitempty"`
	LongDescription string   `json:"long_description,omitempty"`
	ReleaseYear     int      `json:"release_year,omitempty"`
	Language        string   `json:"language,omitempty"`
	Subtitles       []string `json:"subtitles,omitempty"`
	Directors       []string `json:"directors,omitempty"`
	Producers       []string `json:"producers,omitempty"`
	Cast            []string `json:"cast,omitempty"`
	Rating          string   `json:"rating,omitempty"`
	BannerURL       string   `json:"banner_url,omitempty"`
	ThumbnailURL    string   `json:"thumbnail_url,omitempty"`
	ScreenshotURLs  []string `json:"screenshot_urls,omitempty"`
	Codec           string   `json:"codec,omitempty"`
	FrameRate       string   `json:"frame_rate,omitempty"`
	Bitrate         string   `json:"bitrate,omitempty"`
	Resolution      string   `json:"resolution,omitempty"`
	Rights          string   `json:"rights,omitempty"`
	AccessType      string   `json:"access_type,omitempty"`
	ReleaseDate     string   `json:"release_date,omitempty"`
	GeoRestriction  []string `json:"geo_restriction,omitempty"`
	TrailerURL      string   `json:"trailer_url,omitempty"`
	BonusContent    string   `json:"bonus_content,omitempty"`
	Tags            []string `json:"tags,omitempty"`
}

// NormalizeTags trims, drops blanks and removes duplicates, keeping order.
func NormalizeTags(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		key := strings.ToLower(s)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}
	return out
}

// NormalizeDuration clamps negative durations to zero.
func NormalizeDuration(minutes int) int {
	if minutes < 0 {
		return 0
	}
	return minutes
}
