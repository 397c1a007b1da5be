package service

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"

	"github.com/RigelNana/cinexnema/pkg/apperr"
	"github.com/RigelNana/cinexnema/pkg/imaging"
	"github.com/RigelNana/cinexnema/pkg/metrics"
	"github.com/RigelNana/cinexnema/services/video-service/config"
	"github.com/RigelNana/cinexnema/services/video-service/events"
	"github.com/RigelNana/cinexnema/services/video-service/models"
	"github.com/RigelNana/cinexnema/services/video-service/pricing"
	"github.com/RigelNana/cinexnema/services/video-service/repository"
	"github.com/RigelNana/cinexnema/services/video-service/storage"
)

const serviceName = "video-service"

type VideoService interface {
	CreateUpload(ctx context.Context, creatorID uuid.UUID, in CreateUploadInput) (*UploadTarget, error)
	CompleteUpload(ctx context.Context, creatorID, videoID uuid.UUID) (*models.Video, error)
	SubmitForm(ctx context.Context, creatorID uuid.UUID, in SubmitFormInput) (*models.Video, error)
	SubmitPublic(ctx context.Context, in SubmitPublicInput) (*models.Video, error)

	ListOwn(ctx context.Context, creatorID uuid.UUID, p Page) (*VideoPage, error)
	ListPublic(ctx context.Context, p Page) (*VideoPage, error)
	ListAll(ctx context.Context, p Page) (*VideoPage, error)

	UpdateOwn(ctx context.Context, creatorID, videoID uuid.UUID, in UpdateVideoInput) (*models.Video, error)
	Approve(ctx context.Context, videoID uuid.UUID) (*models.Video, error)
	Revoke(ctx context.Context, videoID uuid.UUID) (*models.Video, error)
	Delete(ctx context.Context, creatorID, videoID uuid.UUID) error

	UploadCover(ctx context.Context, creatorID uuid.UUID, in CoverInput) (*CoverResult, error)
	Quote(minutes int) Quote
	Rule() pricing.Rule
}

type VideoServiceImpl struct {
	videos    repository.VideoRepository
	projects  repository.ProjectRepository
	store     storage.ObjectStore
	publisher events.Publisher
	rule      pricing.Rule
	cfg       config.StorageConfig
	log       logrus.FieldLogger
	now       func() time.Time
}

// NewVideoService wires the lifecycle service. store may be nil when object
// storage is not configured; operations that need it then fail with
// CONFIGURATION_MISSING.
func NewVideoService(
	videos repository.VideoRepository,
	projects repository.ProjectRepository,
	store storage.ObjectStore,
	publisher events.Publisher,
	rule pricing.Rule,
	cfg config.StorageConfig,
	log logrus.FieldLogger,
) *VideoServiceImpl {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &VideoServiceImpl{
		videos:    videos,
		projects:  projects,
		store:     store,
		publisher: publisher,
		rule:      rule,
		cfg:       cfg.WithDefaults(),
		log:       log.WithField("component", "video_service"),
		now:       time.Now,
	}
}

func (s *VideoServiceImpl) Rule() pricing.Rule {
	return s.rule
}

func (s *VideoServiceImpl) Quote(minutes int) Quote {
	minutes = models.NormalizeDuration(minutes)
	return Quote{
		DurationMinutes: minutes,
		MonthlyCost:     s.rule.MonthlyCost(minutes),
		FreeMinutes:     s.rule.FreeMinutes,
		BlockMinutes:    s.rule.BlockMinutes,
		UnitFee:         s.rule.UnitFee,
	}
}

func (s *VideoServiceImpl) requireStore() error {
	if s.store == nil {
		return apperr.ConfigurationMissing("object storage")
	}
	return nil
}

// describe fills the descriptive fields shared by every creation path.
func (s *VideoServiceImpl) describe(title, description, format string, genres []string, minutes int) (*models.Video, error) {
	f, err := models.ParseFormat(format)
	if err != nil {
		return nil, apperr.Validation(err.Error())
	}
	title = strings.TrimSpace(title)
	if title == "" {
		title = models.DefaultTitle
	}
	minutes = models.NormalizeDuration(minutes)
	return &models.Video{
		Title:           title,
		Description:     strings.TrimSpace(description),
		Format:          f,
		Genres:          models.NormalizeTags(genres),
		DurationMinutes: minutes,
		MonthlyCost:     s.rule.MonthlyCost(minutes),
	}, nil
}

func (s *VideoServiceImpl) checkProject(ctx context.Context, creatorID uuid.UUID, projectID *uuid.UUID) error {
	if projectID == nil || s.projects == nil {
		return nil
	}
	_, err := s.projects.GetOwned(ctx, *projectID, creatorID)
	return dbError(err, "project")
}

func (s *VideoServiceImpl) CreateUpload(ctx context.Context, creatorID uuid.UUID, in CreateUploadInput) (*UploadTarget, error) {
	if err := s.requireStore(); err != nil {
		return nil, err
	}
	video, err := s.describe(in.Title, in.Description, in.Format, in.Genres, in.DurationMinutes)
	if err != nil {
		return nil, err
	}
	if err := s.checkProject(ctx, creatorID, in.ProjectID); err != nil {
		return nil, err
	}

	bucket := s.cfg.VideoBucket
	objectPath := storage.ObjectKey(creatorID.String(), in.Filename, ".mp4", s.now())
	upload, err := s.store.SignedUpload(ctx, bucket, objectPath, s.cfg.UploadExpiry)
	if err != nil {
		return nil, storageError(err)
	}

	video.CreatorID = &creatorID
	video.ProjectID = in.ProjectID
	video.CoverURL = in.CoverURL
	video.CoverPath = in.CoverPath
	video.ThumbnailPath = in.ThumbnailPath
	video.UploadBucket = bucket
	video.UploadPath = objectPath
	video.Status = models.StatusUploading
	video.Approved = false
	if err := s.videos.Create(ctx, video); err != nil {
		return nil, dbError(err, "video")
	}

	s.emit(ctx, events.TypeCreated, video)
	return &UploadTarget{
		VideoID:     video.ID,
		UploadURL:   upload.URL,
		Method:      upload.Method,
		Bucket:      bucket,
		Path:        objectPath,
		ExpiresAt:   upload.ExpiresAt,
		MonthlyCost: video.MonthlyCost,
	}, nil
}

// CompleteUpload finalises a pending upload. Calling it again on a completed
// record returns the record unchanged.
func (s *VideoServiceImpl) CompleteUpload(ctx context.Context, creatorID, videoID uuid.UUID) (*models.Video, error) {
	video, err := s.videos.GetOwned(ctx, videoID, creatorID)
	if err != nil {
		return nil, dbError(err, "video")
	}
	if video.Status != models.StatusUploading {
		return video, nil
	}
	if err := s.requireStore(); err != nil {
		return nil, err
	}
	if video.UploadBucket == "" || video.UploadPath == "" {
		return nil, apperr.Validation("video has no pending upload")
	}

	pointers := models.Storage{
		Bucket:    video.UploadBucket,
		Path:      video.UploadPath,
		PublicURL: s.store.PublicURL(video.UploadBucket, video.UploadPath),
	}
	if err := s.videos.MarkUploaded(ctx, video.ID, pointers); err != nil {
		return nil, dbError(err, "video")
	}
	video.Status = models.StatusUploaded
	video.Storage = pointers

	s.emit(ctx, events.TypeUploaded, video)
	return video, nil
}

func (s *VideoServiceImpl) SubmitForm(ctx context.Context, creatorID uuid.UUID, in SubmitFormInput) (*models.Video, error) {
	videoURL := strings.TrimSpace(in.VideoURL)
	if videoURL == "" {
		return nil, apperr.Validation("video_url is required")
	}
	if (in.Bucket == "") != (in.Path == "") {
		return nil, apperr.Validation("bucket and path must be given together")
	}
	video, err := s.describe(in.Title, in.Description, in.Format, in.Genres, in.DurationMinutes)
	if err != nil {
		return nil, err
	}
	if err := s.checkProject(ctx, creatorID, in.ProjectID); err != nil {
		return nil, err
	}

	details := in.Details
	details.Tags = models.NormalizeTags(details.Tags)

	video.CreatorID = &creatorID
	video.ProjectID = in.ProjectID
	video.CoverURL = in.CoverURL
	video.CoverPath = in.CoverPath
	video.ThumbnailPath = in.ThumbnailPath
	video.Storage = models.Storage{Bucket: in.Bucket, Path: in.Path, PublicURL: videoURL}
	video.Status = models.StatusUploaded
	video.Approved = false
	video.Details = datatypes.NewJSONType(details)
	if err := s.videos.Create(ctx, video); err != nil {
		return nil, dbError(err, "video")
	}

	s.emit(ctx, events.TypeCreated, video)
	return video, nil
}

func (s *VideoServiceImpl) SubmitPublic(ctx context.Context, in SubmitPublicInput) (*models.Video, error) {
	publicURL := strings.TrimSpace(in.PublicURL)
	if publicURL == "" {
		publicURL = strings.TrimSpace(in.LegacyPublicURL)
	}
	if publicURL == "" {
		return nil, apperr.Validation("public_url is required")
	}
	if (in.Bucket == "") != (in.Path == "") {
		return nil, apperr.Validation("bucket and path must be given together")
	}
	video, err := s.describe(in.Title, in.Description, in.Format, in.Genres, in.DurationMinutes)
	if err != nil {
		return nil, err
	}

	video.Storage = models.Storage{Bucket: in.Bucket, Path: in.Path, PublicURL: publicURL}
	video.Status = models.StatusReady
	video.Approved = false
	if err := s.videos.Create(ctx, video); err != nil {
		return nil, dbError(err, "video")
	}

	s.emit(ctx, events.TypeCreated, video)
	return video, nil
}

func (s *VideoServiceImpl) list(ctx context.Context, q repository.VideoQuery, p Page) (*VideoPage, error) {
	p = p.normalize()
	q.Page, q.PageSize = p.Page, p.PageSize
	videos, total, err := s.videos.Find(ctx, q)
	if err != nil {
		return nil, dbError(err, "video")
	}
	if videos == nil {
		videos = []*models.Video{}
	}
	return &VideoPage{Videos: videos, Total: total, Page: p.Page, PageSize: p.PageSize}, nil
}

func (s *VideoServiceImpl) ListOwn(ctx context.Context, creatorID uuid.UUID, p Page) (*VideoPage, error) {
	return s.list(ctx, repository.VideoQuery{CreatorID: &creatorID}, p)
}

// ListPublic returns approved videos that have a resolvable URL, newest first.
func (s *VideoServiceImpl) ListPublic(ctx context.Context, p Page) (*VideoPage, error) {
	approved := true
	return s.list(ctx, repository.VideoQuery{Approved: &approved, RequirePublicURL: true}, p)
}

func (s *VideoServiceImpl) ListAll(ctx context.Context, p Page) (*VideoPage, error) {
	return s.list(ctx, repository.VideoQuery{}, p)
}

// UpdateOwn edits descriptive fields. The stored monthly cost is kept even
// when the duration changes.
func (s *VideoServiceImpl) UpdateOwn(ctx context.Context, creatorID, videoID uuid.UUID, in UpdateVideoInput) (*models.Video, error) {
	if _, err := s.videos.GetOwned(ctx, videoID, creatorID); err != nil {
		return nil, dbError(err, "video")
	}

	fields := map[string]interface{}{}
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			title = models.DefaultTitle
		}
		fields["title"] = title
	}
	if in.Description != nil {
		fields["description"] = strings.TrimSpace(*in.Description)
	}
	if in.Format != nil {
		f, err := models.ParseFormat(*in.Format)
		if err != nil {
			return nil, apperr.Validation(err.Error())
		}
		fields["format"] = f
	}
	if in.Genres != nil {
		fields["genres"] = pq.StringArray(models.NormalizeTags(*in.Genres))
	}
	if in.DurationMinutes != nil {
		fields["duration_minutes"] = models.NormalizeDuration(*in.DurationMinutes)
	}
	if in.ProjectID != nil {
		raw := strings.TrimSpace(*in.ProjectID)
		if raw == "" {
			fields["project_id"] = nil
		} else {
			projectID, err := uuid.Parse(raw)
			if err != nil {
				return nil, apperr.Validation("project_id must be a uuid")
			}
			if err := s.checkProject(ctx, creatorID, &projectID); err != nil {
				return nil, err
			}
			fields["project_id"] = projectID
		}
	}
	if in.CoverURL != nil {
		fields["cover_url"] = *in.CoverURL
	}
	if in.CoverPath != nil {
		fields["cover_path"] = *in.CoverPath
	}
	if in.ThumbnailPath != nil {
		fields["thumbnail_path"] = *in.ThumbnailPath
	}

	if err := s.videos.UpdateFields(ctx, videoID, fields); err != nil {
		return nil, dbError(err, "video")
	}
	video, err := s.videos.GetOwned(ctx, videoID, creatorID)
	if err != nil {
		return nil, dbError(err, "video")
	}
	return video, nil
}

func (s *VideoServiceImpl) Approve(ctx context.Context, videoID uuid.UUID) (*models.Video, error) {
	return s.setApproved(ctx, videoID, true)
}

func (s *VideoServiceImpl) Revoke(ctx context.Context, videoID uuid.UUID) (*models.Video, error) {
	return s.setApproved(ctx, videoID, false)
}

// setApproved writes the flag only when it changes. Status is never touched.
func (s *VideoServiceImpl) setApproved(ctx context.Context, videoID uuid.UUID, approved bool) (*models.Video, error) {
	video, err := s.videos.GetByID(ctx, videoID)
	if err != nil {
		return nil, dbError(err, "video")
	}
	if video.Approved == approved {
		return video, nil
	}
	if err := s.videos.SetApproved(ctx, videoID, approved); err != nil {
		return nil, dbError(err, "video")
	}
	video.Approved = approved

	if approved {
		s.emit(ctx, events.TypeApproved, video)
	} else {
		s.emit(ctx, events.TypeRevoked, video)
	}
	return video, nil
}

// Delete removes the row first. Stored objects are removed afterwards on a
// best effort basis; failures are only logged.
func (s *VideoServiceImpl) Delete(ctx context.Context, creatorID, videoID uuid.UUID) error {
	video, err := s.videos.GetOwned(ctx, videoID, creatorID)
	if err != nil {
		return dbError(err, "video")
	}
	if err := s.videos.DeleteOwned(ctx, videoID, creatorID); err != nil {
		return dbError(err, "video")
	}

	s.removeObjects(ctx, video)
	s.emit(ctx, events.TypeDeleted, video)
	return nil
}

type objectRef struct {
	bucket, path string
}

// objectsOf lists the stored objects a delete may remove. Pointers are client
// supplied, so only keys the owner's own uploads produce are returned: a clean
// "<creatorID>/..." key in one of the configured buckets.
func (s *VideoServiceImpl) objectsOf(video *models.Video) []objectRef {
	var refs []objectRef
	add := func(bucket, key string) {
		if bucket == "" || key == "" {
			return
		}
		if !s.ownsObject(video.CreatorID, bucket, key) {
			s.log.WithFields(logrus.Fields{
				"video_id": video.ID,
				"bucket":   bucket,
				"path":     key,
			}).Warn("stored object outside the owner's prefix left in place")
			return
		}
		for _, r := range refs {
			if r.bucket == bucket && r.path == key {
				return
			}
		}
		refs = append(refs, objectRef{bucket, key})
	}
	add(video.Storage.Bucket, video.Storage.Path)
	add(video.UploadBucket, video.UploadPath)
	add(s.cfg.CoverBucket, video.CoverPath)
	add(s.cfg.ThumbnailBucket, video.ThumbnailPath)
	return refs
}

func (s *VideoServiceImpl) ownsObject(owner *uuid.UUID, bucket, key string) bool {
	if owner == nil || *owner == uuid.Nil {
		return false
	}
	switch bucket {
	case s.cfg.VideoBucket, s.cfg.CoverBucket, s.cfg.ThumbnailBucket, s.cfg.BannerBucket, s.cfg.ScreenshotBucket:
	default:
		return false
	}
	return path.Clean(key) == key && strings.HasPrefix(key, owner.String()+"/")
}

func (s *VideoServiceImpl) removeObjects(ctx context.Context, video *models.Video) {
	refs := s.objectsOf(video)
	if len(refs) == 0 {
		return
	}
	log := s.log.WithField("video_id", video.ID)
	if s.store == nil {
		log.Warn("object storage not configured, stored files left in place")
		return
	}
	for _, r := range refs {
		if err := s.store.Remove(ctx, r.bucket, r.path); err != nil {
			log.WithError(err).WithFields(logrus.Fields{
				"bucket": r.bucket,
				"path":   r.path,
			}).Warn("failed to remove stored object")
		}
	}
}

// UploadCover buffers a cover image up to the configured ceiling, stores it
// and writes a bounded JPEG thumbnail next to it.
func (s *VideoServiceImpl) UploadCover(ctx context.Context, creatorID uuid.UUID, in CoverInput) (*CoverResult, error) {
	if err := s.requireStore(); err != nil {
		return nil, err
	}
	if in.Body == nil {
		return nil, apperr.Validation("file is required")
	}
	limit := s.cfg.MaxCoverBytes
	if in.Size > limit {
		return nil, apperr.Validation("cover exceeds the maximum size")
	}
	data, err := io.ReadAll(io.LimitReader(in.Body, limit+1))
	if err != nil {
		return nil, apperr.Validation("failed to read file: " + err.Error())
	}
	if int64(len(data)) > limit {
		return nil, apperr.Validation("cover exceeds the maximum size")
	}
	if len(data) == 0 {
		return nil, apperr.Validation("file is empty")
	}
	metrics.CoverUploadBytes.Observe(float64(len(data)))

	contentType := in.ContentType
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}

	key := storage.ObjectKey(creatorID.String(), in.Filename, ".jpg", s.now())
	bucket := s.cfg.CoverBucket
	if err := s.store.Put(ctx, bucket, key, bytes.NewReader(data), int64(len(data)), contentType); err != nil {
		return nil, storageError(err)
	}
	result := &CoverResult{
		URL:    s.store.PublicURL(bucket, key),
		Path:   key,
		Bucket: bucket,
	}

	thumb, err := imaging.Thumbnail(data, imaging.ThumbnailSize)
	if err != nil {
		s.log.WithError(err).WithField("path", key).Warn("cover thumbnail skipped")
		return result, nil
	}
	thumbKey := strings.TrimSuffix(key, filepath.Ext(key)) + ".jpg"
	if err := s.store.Put(ctx, s.cfg.ThumbnailBucket, thumbKey, bytes.NewReader(thumb), int64(len(thumb)), imaging.ContentType); err != nil {
		s.log.WithError(err).WithField("path", thumbKey).Warn("failed to store cover thumbnail")
		return result, nil
	}
	result.ThumbnailPath = thumbKey
	result.ThumbnailURL = s.store.PublicURL(s.cfg.ThumbnailBucket, thumbKey)
	return result, nil
}

// emit publishes a lifecycle event. Failures never fail the request.
func (s *VideoServiceImpl) emit(ctx context.Context, eventType string, video *models.Video) {
	metrics.RecordTransition(serviceName, strings.TrimPrefix(eventType, "video."))
	err := s.publisher.Publish(ctx, events.Event{
		Type:       eventType,
		VideoID:    video.ID,
		CreatorID:  video.CreatorID,
		Status:     video.Status,
		Approved:   video.Approved,
		OccurredAt: s.now().UTC(),
	})
	if err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"event":    eventType,
			"video_id": video.ID,
		}).Warn("failed to publish event")
	}
}
