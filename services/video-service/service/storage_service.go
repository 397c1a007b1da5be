package service

import (
	"context"
	"path"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/RigelNana/cinexnema/pkg/apperr"
	"github.com/RigelNana/cinexnema/services/video-service/config"
	"github.com/RigelNana/cinexnema/services/video-service/storage"
)

const (
	DefaultSignedURLExpiry = 3600
	// presigned URLs cannot outlive seven days
	maxSignedURLExpiry     = 7 * 24 * 3600
	defaultUploadPrefix    = "uploads"
)

type SignedURLInput struct {
	Bucket    string `json:"bucket"`
	Path      string `json:"path"`
	ExpiresIn int    `json:"expires_in"`
}

type SignedURL struct {
	SignedURL string `json:"signed_url"`
	Bucket    string `json:"bucket"`
	Path      string `json:"path"`
	ExpiresIn int    `json:"expires_in"`
}

type SignedUploadInput struct {
	Bucket   string `json:"bucket"`
	Filename string `json:"filename"`
	Prefix   string `json:"prefix"`
}

type SignedUploadResult struct {
	*storage.SignedUpload
	CreatedBucket bool `json:"created_bucket,omitempty"`
}

type BucketResult struct {
	Bucket string `json:"bucket"`
	Public bool   `json:"public"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type BucketCheck struct {
	Existing      []string `json:"existing"`
	Missing       []string `json:"missing"`
	AllConfigured bool     `json:"all_configured"`
}

type StorageService interface {
	SignedURL(ctx context.Context, in SignedURLInput) (*SignedURL, error)
	SignedUpload(ctx context.Context, in SignedUploadInput) (*SignedUploadResult, error)
	EnsureBuckets(ctx context.Context) ([]BucketResult, error)
	CheckBuckets(ctx context.Context) (*BucketCheck, error)
}

type StorageServiceImpl struct {
	store storage.ObjectStore
	cfg   config.StorageConfig
	log   logrus.FieldLogger
}

func NewStorageService(store storage.ObjectStore, cfg config.StorageConfig, log logrus.FieldLogger) *StorageServiceImpl {
	return &StorageServiceImpl{
		store: store,
		cfg:   cfg.WithDefaults(),
		log:   log.WithField("component", "storage_service"),
	}
}

type bucketSpec struct {
	name   string
	public bool
}

func (s *StorageServiceImpl) buckets() []bucketSpec {
	specs := []bucketSpec{{name: s.cfg.VideoBucket}}
	for _, b := range s.cfg.PublicBuckets() {
		specs = append(specs, bucketSpec{name: b, public: true})
	}
	return specs
}

func (s *StorageServiceImpl) isPublic(bucket string) bool {
	for _, b := range s.cfg.PublicBuckets() {
		if b == bucket {
			return true
		}
	}
	return false
}

func (s *StorageServiceImpl) requireStore() error {
	if s.store == nil {
		return apperr.ConfigurationMissing("object storage")
	}
	return nil
}

func (s *StorageServiceImpl) SignedURL(ctx context.Context, in SignedURLInput) (*SignedURL, error) {
	if err := s.requireStore(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Path) == "" {
		return nil, apperr.Validation("path is required")
	}
	bucket := in.Bucket
	if bucket == "" {
		bucket = s.cfg.VideoBucket
	}
	expires := in.ExpiresIn
	if expires <= 0 {
		expires = DefaultSignedURLExpiry
	}
	if expires > maxSignedURLExpiry {
		return nil, apperr.Validation("expires_in must not exceed 604800 seconds")
	}

	u, err := s.store.SignedDownload(ctx, bucket, in.Path, time.Duration(expires)*time.Second)
	if err != nil {
		return nil, storageError(err)
	}
	return &SignedURL{SignedURL: u, Bucket: bucket, Path: in.Path, ExpiresIn: expires}, nil
}

// SignedUpload issues a direct upload for "<prefix>/<filename>", creating the
// bucket first when it does not exist.
func (s *StorageServiceImpl) SignedUpload(ctx context.Context, in SignedUploadInput) (*SignedUploadResult, error) {
	if err := s.requireStore(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Filename) == "" {
		return nil, apperr.Validation("filename is required")
	}
	bucket := in.Bucket
	if bucket == "" {
		bucket = s.cfg.VideoBucket
	}
	prefix := strings.Trim(in.Prefix, "/")
	if prefix == "" {
		prefix = defaultUploadPrefix
	}
	key := path.Join(prefix, storage.SafeName(in.Filename))

	exists, err := s.store.BucketExists(ctx, bucket)
	if err != nil {
		return nil, storageError(err)
	}
	created := false
	if !exists {
		s.log.WithField("bucket", bucket).Info("creating missing bucket")
		if err := s.store.EnsureBucket(ctx, bucket, s.isPublic(bucket)); err != nil {
			return nil, storageError(err)
		}
		created = true
	}

	upload, err := s.store.SignedUpload(ctx, bucket, key, s.cfg.UploadExpiry)
	if err != nil {
		return nil, storageError(err)
	}
	return &SignedUploadResult{SignedUpload: upload, CreatedBucket: created}, nil
}

// EnsureBuckets creates the bucket set. Per bucket failures are reported in
// the result rather than aborting the rest.
func (s *StorageServiceImpl) EnsureBuckets(ctx context.Context) ([]BucketResult, error) {
	if err := s.requireStore(); err != nil {
		return nil, err
	}
	results := make([]BucketResult, 0, 5)
	for _, b := range s.buckets() {
		res := BucketResult{Bucket: b.name, Public: b.public, Status: "created"}
		if err := s.store.EnsureBucket(ctx, b.name, b.public); err != nil {
			s.log.WithError(err).WithField("bucket", b.name).Error("failed to ensure bucket")
			res.Status = "error"
			res.Error = err.Error()
		}
		results = append(results, res)
	}
	return results, nil
}

func (s *StorageServiceImpl) CheckBuckets(ctx context.Context) (*BucketCheck, error) {
	if err := s.requireStore(); err != nil {
		return nil, err
	}
	check := &BucketCheck{Existing: []string{}, Missing: []string{}}
	for _, b := range s.buckets() {
		ok, err := s.store.BucketExists(ctx, b.name)
		if err != nil {
			return nil, storageError(err)
		}
		if ok {
			check.Existing = append(check.Existing, b.name)
		} else {
			check.Missing = append(check.Missing, b.name)
		}
	}
	check.AllConfigured = len(check.Missing) == 0
	return check, nil
}
