package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/RigelNana/cinexnema/pkg/apperr"
	"github.com/RigelNana/cinexnema/services/video-service/config"
)

const defaultRegion = "us-east-1"

const publicReadPolicy = `{
  "Version": "2012-10-17",
  "Statement": [{
    "Effect": "Allow",
    "Principal": {"AWS": ["*"]},
    "Action": ["s3:GetObject"],
    "Resource": ["arn:aws:s3:::%s/*"]
  }]
}`

type MinioStore struct {
	client  *minio.Client
	baseURL string
}

// NewMinioStore builds the client without contacting the server.
func NewMinioStore(cfg config.StorageConfig) (*MinioStore, error) {
	region := cfg.Region
	if region == "" {
		region = defaultRegion
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	base := strings.TrimRight(cfg.PublicBaseURL, "/")
	if base == "" {
		base = strings.TrimRight(client.EndpointURL().String(), "/")
	}
	return &MinioStore{client: client, baseURL: base}, nil
}

func (s *MinioStore) SignedUpload(ctx context.Context, bucket, objectPath string, expiry time.Duration) (*SignedUpload, error) {
	u, err := s.client.PresignedPutObject(ctx, bucket, objectPath, expiry)
	if err != nil {
		return nil, classify(err)
	}
	return &SignedUpload{
		URL:       u.String(),
		Method:    MethodPut,
		Bucket:    bucket,
		Path:      objectPath,
		PublicURL: s.PublicURL(bucket, objectPath),
		ExpiresAt: time.Now().Add(expiry).UTC(),
	}, nil
}

func (s *MinioStore) SignedDownload(ctx context.Context, bucket, objectPath string, expiry time.Duration) (string, error) {
	u, err := s.client.PresignedGetObject(ctx, bucket, objectPath, expiry, url.Values{})
	if err != nil {
		return "", classify(err)
	}
	return u.String(), nil
}

func (s *MinioStore) Put(ctx context.Context, bucket, objectPath string, r io.Reader, size int64, contentType string) error {
	_, err := s.client.PutObject(ctx, bucket, objectPath, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return classify(err)
	}
	return nil
}

func (s *MinioStore) PublicURL(bucket, objectPath string) string {
	segments := strings.Split(strings.TrimLeft(objectPath, "/"), "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return s.baseURL + "/" + url.PathEscape(bucket) + "/" + strings.Join(segments, "/")
}

func (s *MinioStore) Remove(ctx context.Context, bucket, objectPath string) error {
	if err := s.client.RemoveObject(ctx, bucket, objectPath, minio.RemoveObjectOptions{}); err != nil {
		return classify(err)
	}
	return nil
}

func (s *MinioStore) BucketExists(ctx context.Context, bucket string) (bool, error) {
	ok, err := s.client.BucketExists(ctx, bucket)
	if err != nil {
		return false, classify(err)
	}
	return ok, nil
}

func (s *MinioStore) EnsureBucket(ctx context.Context, bucket string, public bool) error {
	exists, err := s.client.BucketExists(ctx, bucket)
	if err != nil {
		return classify(err)
	}
	if !exists {
		err = s.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{})
		if err != nil && classify(err).Reason != apperr.ReasonAlreadyExists {
			return classify(err)
		}
	}
	if public {
		if err := s.client.SetBucketPolicy(ctx, bucket, fmt.Sprintf(publicReadPolicy, bucket)); err != nil {
			return classify(err)
		}
	}
	return nil
}

// classify turns an S3 error into an upstream failure, keeping the codes
// callers can act on.
func classify(err error) *apperr.Error {
	if ae, ok := apperr.As(err); ok {
		return ae
	}
	upstream := apperr.Upstream("storage", err)
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchBucket":
		return upstream.WithReason(apperr.ReasonBucketNotFound)
	case "AccessDenied", "InvalidAccessKeyId", "SignatureDoesNotMatch":
		return upstream.WithReason(apperr.ReasonPermissionDenied)
	case "BucketAlreadyOwnedByYou", "BucketAlreadyExists":
		return upstream.WithReason(apperr.ReasonAlreadyExists)
	}
	return upstream
}
