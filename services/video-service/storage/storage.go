// Package storage wraps the S3 compatible object store that holds video files
// and images.
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

const MethodPut = "PUT"

// SignedUpload is a time limited credential for a direct client write.
type SignedUpload struct {
	URL       string    `json:"upload_url"`
	Method    string    `json:"method"`
	Bucket    string    `json:"bucket"`
	Path      string    `json:"path"`
	PublicURL string    `json:"public_url"`
	ExpiresAt time.Time `json:"expires_at"`
}

type ObjectStore interface {
	SignedUpload(ctx context.Context, bucket, objectPath string, expiry time.Duration) (*SignedUpload, error)
	SignedDownload(ctx context.Context, bucket, objectPath string, expiry time.Duration) (string, error)
	Put(ctx context.Context, bucket, objectPath string, r io.Reader, size int64, contentType string) error
	PublicURL(bucket, objectPath string) string
	Remove(ctx context.Context, bucket, objectPath string) error
	BucketExists(ctx context.Context, bucket string) (bool, error)
	// EnsureBucket creates the bucket when missing. Public buckets get an
	// anonymous read policy.
	EnsureBucket(ctx context.Context, bucket string, public bool) error
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// SafeName reduces a client file name to characters valid in any object key.
func SafeName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = unsafeChars.ReplaceAllString(name, "-")
	name = strings.Trim(name, "-.")
	if name == "" {
		return "file"
	}
	return name
}

// ObjectKey builds "<owner>/<unixms>-<uuid><ext>". The extension comes from
// filename and falls back to defaultExt.
func ObjectKey(owner string, filename, defaultExt string, now time.Time) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" || len(ext) > 10 || unsafeChars.MatchString(ext[1:]) {
		ext = defaultExt
	}
	return path.Join(owner, fmt.Sprintf("%d-%s%s", now.UnixMilli(), uuid.NewString(), ext))
}
