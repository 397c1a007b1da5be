package storage

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RigelNana/cinexnema/pkg/apperr"
	"github.com/RigelNana/cinexnema/services/video-service/config"
)

func newTestStore(t *testing.T, publicBase string) *MinioStore {
	t.Helper()
	s, err := NewMinioStore(config.StorageConfig{
		Endpoint:      "localhost:9000",
		AccessKey:     "minio",
		SecretKey:     "minio123",
		PublicBaseURL: publicBase,
	})
	require.NoError(t, err)
	return s
}

func TestPublicURL(t *testing.T) {
	s := newTestStore(t, "")
	assert.Equal(t, "http://localhost:9000/videos/abc/1-x.mp4", s.PublicURL("videos", "abc/1-x.mp4"))

	s = newTestStore(t, "https://cdn.example.com/")
	assert.Equal(t, "https://cdn.example.com/covers/a/my%20cover.png", s.PublicURL("covers", "/a/my cover.png"))
}

func TestSignedUploadIsOffline(t *testing.T) {
	s := newTestStore(t, "")
	before := time.Now()

	up, err := s.SignedUpload(context.Background(), "videos", "owner/1-a.mp4", time.Hour)
	require.NoError(t, err)

	assert.Equal(t, MethodPut, up.Method)
	assert.Equal(t, "videos", up.Bucket)
	assert.Equal(t, "owner/1-a.mp4", up.Path)
	assert.True(t, up.ExpiresAt.After(before.Add(59*time.Minute)))

	u, err := url.Parse(up.URL)
	require.NoError(t, err)
	assert.Equal(t, "/videos/owner/1-a.mp4", u.Path)
	assert.NotEmpty(t, u.Query().Get("X-Amz-Signature"))
}

func TestClassify(t *testing.T) {
	cases := map[string]string{
		"NoSuchBucket":            apperr.ReasonBucketNotFound,
		"AccessDenied":            apperr.ReasonPermissionDenied,
		"BucketAlreadyOwnedByYou": apperr.ReasonAlreadyExists,
		"InternalError":           "",
	}
	for code, reason := range cases {
		err := classify(minio.ErrorResponse{Code: code, Message: "msg " + code})
		assert.Equal(t, apperr.KindUpstream, err.Kind, code)
		assert.Equal(t, reason, err.Reason, code)
		assert.Contains(t, err.Message, "msg "+code)
	}

	plain := classify(errors.New("connection refused"))
	assert.Equal(t, apperr.KindUpstream, plain.Kind)
	assert.Empty(t, plain.Reason)
}

func TestObjectKey(t *testing.T) {
	now := time.UnixMilli(1700000000123)

	key := ObjectKey("creator-1", "My Movie.MOV", ".mp4", now)
	assert.True(t, strings.HasPrefix(key, "creator-1/1700000000123-"), key)
	assert.True(t, strings.HasSuffix(key, ".mov"), key)

	key = ObjectKey("creator-1", "", ".mp4", now)
	assert.True(t, strings.HasSuffix(key, ".mp4"), key)

	assert.NotEqual(t, ObjectKey("c", "a.mp4", ".mp4", now), ObjectKey("c", "a.mp4", ".mp4", now))
}

func TestSafeName(t *testing.T) {
	assert.Equal(t, "my-file.png", SafeName("my file.png"))
	assert.Equal(t, "evil.sh", SafeName("../../evil.sh"))
	assert.Equal(t, "x.png", SafeName(`C:\tmp\x.png`))
	assert.Equal(t, "file", SafeName("..."))
}
