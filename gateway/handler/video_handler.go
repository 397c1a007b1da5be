package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/RigelNana/cinexnema/pkg/apperr"
	"github.com/RigelNana/cinexnema/services/video-service/config"
	"github.com/RigelNana/cinexnema/services/video-service/models"
	"github.com/RigelNana/cinexnema/services/video-service/service"
)

type VideoHandler struct {
	videos  service.VideoService
	storage config.StorageConfig
}

func NewVideoHandler(videos service.VideoService, storage config.StorageConfig) *VideoHandler {
	return &VideoHandler{videos: videos, storage: storage.WithDefaults()}
}

func (h *VideoHandler) page(c *gin.Context) (service.Page, bool) {
	var p service.Page
	if err := c.ShouldBindQuery(&p); err != nil {
		fail(c, apperr.Validation("invalid paging parameters"))
		return p, false
	}
	return p, true
}

// Config GET /api/videos/config
func (h *VideoHandler) Config(c *gin.Context) {
	ok(c, gin.H{
		"pricing": h.videos.Rule(),
		"formats": []models.Format{models.FormatMovie, models.FormatSeries, models.FormatSeason},
		"buckets": gin.H{
			"videos":      h.storage.VideoBucket,
			"covers":      h.storage.CoverBucket,
			"banners":     h.storage.BannerBucket,
			"thumbnails":  h.storage.ThumbnailBucket,
			"screenshots": h.storage.ScreenshotBucket,
		},
		"storage_configured": h.storage.Configured(),
		"max_cover_bytes":    h.storage.MaxCoverBytes,
	})
}

// Quote GET /api/videos/quote?duration=N
func (h *VideoHandler) Quote(c *gin.Context) {
	minutes, err := strconv.Atoi(c.DefaultQuery("duration", "0"))
	if err != nil {
		fail(c, apperr.Validation("duration must be an integer number of minutes"))
		return
	}
	ok(c, h.videos.Quote(minutes))
}

// ListPublic GET /api/videos/public
func (h *VideoHandler) ListPublic(c *gin.Context) {
	p, valid := h.page(c)
	if !valid {
		return
	}
	page, err := h.videos.ListPublic(c.Request.Context(), p)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, page)
}

// ListAll GET /api/videos (admin)
func (h *VideoHandler) ListAll(c *gin.Context) {
	p, valid := h.page(c)
	if !valid {
		return
	}
	page, err := h.videos.ListAll(c.Request.Context(), p)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, page)
}

// Submit POST /api/videos/submit
func (h *VideoHandler) Submit(c *gin.Context) {
	var req service.SubmitPublicInput
	if !bindJSON(c, &req) {
		return
	}
	video, err := h.videos.SubmitPublic(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, gin.H{"video": video})
}

// Approve POST /api/videos/:id/approve (admin)
func (h *VideoHandler) Approve(c *gin.Context) {
	h.moderate(c, h.videos.Approve)
}

// Revoke POST /api/videos/:id/revoke (admin)
func (h *VideoHandler) Revoke(c *gin.Context) {
	h.moderate(c, h.videos.Revoke)
}

func (h *VideoHandler) moderate(c *gin.Context, op func(ctx context.Context, id uuid.UUID) (*models.Video, error)) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	video, err := op(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"video": video})
}

// ListOwn GET /api/creators/videos
func (h *VideoHandler) ListOwn(c *gin.Context) {
	creatorID, authed := callerID(c)
	if !authed {
		return
	}
	p, valid := h.page(c)
	if !valid {
		return
	}
	page, err := h.videos.ListOwn(c.Request.Context(), creatorID, p)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, page)
}

// Update PATCH /api/creators/video/:id
func (h *VideoHandler) Update(c *gin.Context) {
	creatorID, authed := callerID(c)
	if !authed {
		return
	}
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	var req service.UpdateVideoInput
	if !bindJSON(c, &req) {
		return
	}
	video, err := h.videos.UpdateOwn(c.Request.Context(), creatorID, id, req)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"video": video})
}

// Delete DELETE /api/creators/video/:id
func (h *VideoHandler) Delete(c *gin.Context) {
	creatorID, authed := callerID(c)
	if !authed {
		return
	}
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	if err := h.videos.Delete(c.Request.Context(), creatorID, id); err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"deleted": id})
}

// CreateUpload POST /api/creators/upload
func (h *VideoHandler) CreateUpload(c *gin.Context) {
	creatorID, authed := callerID(c)
	if !authed {
		return
	}
	var req service.CreateUploadInput
	if !bindJSON(c, &req) {
		return
	}
	target, err := h.videos.CreateUpload(c.Request.Context(), creatorID, req)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, target)
}

type completeUploadRequest struct {
	VideoID string `json:"video_id"`
	// accepted for older clients
	LegacyVideoID string `json:"videoId"`
}

// CompleteUpload POST /api/creators/upload-complete
func (h *VideoHandler) CompleteUpload(c *gin.Context) {
	creatorID, authed := callerID(c)
	if !authed {
		return
	}
	var req completeUploadRequest
	if !bindJSON(c, &req) {
		return
	}
	raw := req.VideoID
	if raw == "" {
		raw = req.LegacyVideoID
	}
	videoID, err := uuid.Parse(raw)
	if err != nil {
		fail(c, apperr.Validation("video_id is required"))
		return
	}
	video, err := h.videos.CompleteUpload(c.Request.Context(), creatorID, videoID)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"video_id": video.ID, "video": video})
}

// SubmitForm POST /api/creators/upload-complete-form
func (h *VideoHandler) SubmitForm(c *gin.Context) {
	creatorID, authed := callerID(c)
	if !authed {
		return
	}
	var req service.SubmitFormInput
	if !bindJSON(c, &req) {
		return
	}
	video, err := h.videos.SubmitForm(c.Request.Context(), creatorID, req)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, gin.H{"video": video})
}

// UploadCover POST /api/creators/cover, multipart field "file".
func (h *VideoHandler) UploadCover(c *gin.Context) {
	creatorID, authed := callerID(c)
	if !authed {
		return
	}
	// multipart overhead on top of the file itself
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.storage.MaxCoverBytes+1<<20)
	fh, err := c.FormFile("file")
	if err != nil {
		fail(c, apperr.Validation("file is required"))
		return
	}
	if fh.Size > h.storage.MaxCoverBytes {
		fail(c, apperr.Validation("cover exceeds the size limit"))
		return
	}
	f, err := fh.Open()
	if err != nil {
		fail(c, apperr.Internal(err))
		return
	}
	defer f.Close()

	result, err := h.videos.UploadCover(c.Request.Context(), creatorID, service.CoverInput{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Body:        f,
	})
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, result)
}
