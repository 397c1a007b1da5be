package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/RigelNana/cinexnema/services/video-service/service"
)

type StorageHandler struct {
	storage service.StorageService
}

func NewStorageHandler(storage service.StorageService) *StorageHandler {
	return &StorageHandler{storage: storage}
}

// SignedURL POST /api/storage/signed-url
func (h *StorageHandler) SignedURL(c *gin.Context) {
	var req service.SignedURLInput
	if !bindJSON(c, &req) {
		return
	}
	signed, err := h.storage.SignedURL(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, signed)
}

// SignedUpload POST /api/storage/signed-upload
func (h *StorageHandler) SignedUpload(c *gin.Context) {
	var req service.SignedUploadInput
	if !bindJSON(c, &req) {
		return
	}
	upload, err := h.storage.SignedUpload(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, upload)
}

// CreateBuckets POST /api/storage/create-buckets (admin)
func (h *StorageHandler) CreateBuckets(c *gin.Context) {
	results, err := h.storage.EnsureBuckets(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"buckets": results})
}

// CheckBuckets GET /api/storage/check-buckets (admin)
func (h *StorageHandler) CheckBuckets(c *gin.Context) {
	check, err := h.storage.CheckBuckets(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, check)
}
