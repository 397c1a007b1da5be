package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/RigelNana/cinexnema/pkg/logger"
	"github.com/RigelNana/cinexnema/services/video-service/config"
	"github.com/RigelNana/cinexnema/services/video-service/events"
	"github.com/RigelNana/cinexnema/services/video-service/models"
	"github.com/RigelNana/cinexnema/services/video-service/pricing"
	"github.com/RigelNana/cinexnema/services/video-service/repository"
	"github.com/RigelNana/cinexnema/services/video-service/storage"
)

// fakeVideoRepo keeps rows in memory and hands out copies, like a database.
type fakeVideoRepo struct {
	mu        sync.Mutex
	rows      map[uuid.UUID]*models.Video
	seq       int
	deleteErr error
}

func newFakeVideoRepo() *fakeVideoRepo {
	return &fakeVideoRepo{rows: map[uuid.UUID]*models.Video{}}
}

func (r *fakeVideoRepo) Create(_ context.Context, v *models.Video) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	r.seq++
	v.CreatedAt = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(r.seq) * time.Minute)
	v.UpdatedAt = v.CreatedAt
	cp := *v
	r.rows[v.ID] = &cp
	return nil
}

func (r *fakeVideoRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Video, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *v
	return &cp, nil
}

func (r *fakeVideoRepo) Update(_ context.Context, v *models.Video) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[v.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *v
	r.rows[v.ID] = &cp
	return nil
}

func (r *fakeVideoRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rows, id)
	return nil
}

func (r *fakeVideoRepo) List(ctx context.Context, limit, offset int) ([]*models.Video, error) {
	videos, _, err := r.Find(ctx, repository.VideoQuery{PageSize: limit, Page: offset/max(limit, 1) + 1})
	return videos, err
}

func (r *fakeVideoRepo) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.rows)), nil
}

func (r *fakeVideoRepo) Find(_ context.Context, q repository.VideoQuery) ([]*models.Video, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var matched []*models.Video
	for _, v := range r.rows {
		if q.CreatorID != nil && (v.CreatorID == nil || *v.CreatorID != *q.CreatorID) {
			continue
		}
		if q.Approved != nil && v.Approved != *q.Approved {
			continue
		}
		if q.RequirePublicURL && v.Storage.PublicURL == "" {
			continue
		}
		cp := *v
		matched = append(matched, &cp)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })

	total := int64(len(matched))
	if q.PageSize > 0 {
		start := 0
		if q.Page > 1 {
			start = (q.Page - 1) * q.PageSize
		}
		if start > len(matched) {
			start = len(matched)
		}
		end := start + q.PageSize
		if end > len(matched) {
			end = len(matched)
		}
		matched = matched[start:end]
	}
	return matched, total, nil
}

func (r *fakeVideoRepo) GetOwned(_ context.Context, id, creatorID uuid.UUID) (*models.Video, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.rows[id]
	if !ok || !v.OwnedBy(creatorID) {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *v
	return &cp, nil
}

func (r *fakeVideoRepo) MarkUploaded(_ context.Context, id uuid.UUID, s models.Storage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.rows[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	v.Status = models.StatusUploaded
	v.Storage = s
	return nil
}

func (r *fakeVideoRepo) SetApproved(_ context.Context, id uuid.UUID, approved bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.rows[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	v.Approved = approved
	return nil
}

func (r *fakeVideoRepo) UpdateFields(_ context.Context, id uuid.UUID, fields map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.rows[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for k, val := range fields {
		switch k {
		case "title":
			v.Title = val.(string)
		case "description":
			v.Description = val.(string)
		case "format":
			v.Format = val.(models.Format)
		case "genres":
			v.Genres = val.(pq.StringArray)
		case "duration_minutes":
			v.DurationMinutes = val.(int)
		case "project_id":
			if val == nil {
				v.ProjectID = nil
				continue
			}
			id := val.(uuid.UUID)
			v.ProjectID = &id
		case "cover_url":
			v.CoverURL = val.(string)
		case "cover_path":
			v.CoverPath = val.(string)
		case "thumbnail_path":
			v.ThumbnailPath = val.(string)
		default:
			return fmt.Errorf("unexpected column %q", k)
		}
	}
	return nil
}

func (r *fakeVideoRepo) DeleteOwned(_ context.Context, id, creatorID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.deleteErr != nil {
		return r.deleteErr
	}
	v, ok := r.rows[id]
	if !ok || !v.OwnedBy(creatorID) {
		return gorm.ErrRecordNotFound
	}
	delete(r.rows, id)
	return nil
}

func (r *fakeVideoRepo) StatsByCreator(_ context.Context, creatorID uuid.UUID) (repository.VideoStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var st repository.VideoStats
	for _, v := range r.rows {
		if !v.OwnedBy(creatorID) {
			continue
		}
		st.TotalVideos++
		if v.Approved {
			st.ApprovedVideos++
		}
		st.MonthlyCostTotal += int64(v.MonthlyCost)
	}
	return st, nil
}

func (r *fakeVideoRepo) get(id uuid.UUID) *models.Video {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.rows[id]
	if !ok {
		return nil
	}
	cp := *v
	return &cp
}

type fakeProjectRepo struct {
	mu     sync.Mutex
	rows   map[uuid.UUID]*models.Project
	videos *fakeVideoRepo
}

func newFakeProjectRepo(videos *fakeVideoRepo) *fakeProjectRepo {
	return &fakeProjectRepo{rows: map[uuid.UUID]*models.Project{}, videos: videos}
}

func (r *fakeProjectRepo) Create(_ context.Context, p *models.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.CreatedAt = time.Now()
	cp := *p
	r.rows[p.ID] = &cp
	return nil
}

func (r *fakeProjectRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProjectRepo) Update(_ context.Context, p *models.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.rows[p.ID] = &cp
	return nil
}

func (r *fakeProjectRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rows, id)
	return nil
}

func (r *fakeProjectRepo) List(_ context.Context, _, _ int) ([]*models.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Project
	for _, p := range r.rows {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeProjectRepo) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.rows)), nil
}

func (r *fakeProjectRepo) ListByOwner(_ context.Context, ownerID uuid.UUID) ([]*models.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Project
	for _, p := range r.rows {
		if p.OwnerID == ownerID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeProjectRepo) GetOwned(_ context.Context, id, ownerID uuid.UUID) (*models.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.rows[id]
	if !ok || p.OwnerID != ownerID {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProjectRepo) DeleteOwned(_ context.Context, id, ownerID uuid.UUID) error {
	r.mu.Lock()
	p, ok := r.rows[id]
	if !ok || p.OwnerID != ownerID {
		r.mu.Unlock()
		return gorm.ErrRecordNotFound
	}
	delete(r.rows, id)
	r.mu.Unlock()

	if r.videos != nil {
		r.videos.mu.Lock()
		for _, v := range r.videos.rows {
			if v.ProjectID != nil && *v.ProjectID == id {
				v.ProjectID = nil
			}
		}
		r.videos.mu.Unlock()
	}
	return nil
}

type fakeEarningRepo struct {
	rows []*models.Earning
	err  error
}

func (r *fakeEarningRepo) ListByCreator(_ context.Context, creatorID uuid.UUID) ([]*models.Earning, error) {
	if r.err != nil {
		return nil, r.err
	}
	var out []*models.Earning
	for _, e := range r.rows {
		if e.CreatorID == creatorID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PeriodMonth.After(out[j].PeriodMonth) })
	return out, nil
}

type storedObject struct {
	data        []byte
	contentType string
}

type fakeStore struct {
	mu        sync.Mutex
	objects   map[string]storedObject
	buckets   map[string]bool
	removed   []string
	removeErr error
	signErr   error
	ensureErr map[string]error
}

func newFakeStore(buckets ...string) *fakeStore {
	s := &fakeStore{objects: map[string]storedObject{}, buckets: map[string]bool{}, ensureErr: map[string]error{}}
	for _, b := range buckets {
		s.buckets[b] = false
	}
	return s
}

func (s *fakeStore) SignedUpload(_ context.Context, bucket, objectPath string, expiry time.Duration) (*storage.SignedUpload, error) {
	if s.signErr != nil {
		return nil, s.signErr
	}
	return &storage.SignedUpload{
		URL:       "https://store.test/" + bucket + "/" + objectPath + "?X-Amz-Signature=sig",
		Method:    storage.MethodPut,
		Bucket:    bucket,
		Path:      objectPath,
		PublicURL: s.PublicURL(bucket, objectPath),
		ExpiresAt: time.Now().Add(expiry),
	}, nil
}

func (s *fakeStore) SignedDownload(_ context.Context, bucket, objectPath string, expiry time.Duration) (string, error) {
	if s.signErr != nil {
		return "", s.signErr
	}
	return fmt.Sprintf("https://store.test/%s/%s?expires=%d", bucket, objectPath, int(expiry.Seconds())), nil
}

func (s *fakeStore) Put(_ context.Context, bucket, objectPath string, r io.Reader, _ int64, contentType string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[bucket+"/"+objectPath] = storedObject{data: data, contentType: contentType}
	return nil
}

func (s *fakeStore) PublicURL(bucket, objectPath string) string {
	return "https://cdn.test/" + bucket + "/" + objectPath
}

func (s *fakeStore) Remove(_ context.Context, bucket, objectPath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removed = append(s.removed, bucket+"/"+objectPath)
	if s.removeErr != nil {
		return s.removeErr
	}
	delete(s.objects, bucket+"/"+objectPath)
	return nil
}

func (s *fakeStore) BucketExists(_ context.Context, bucket string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.buckets[bucket]
	return ok, nil
}

func (s *fakeStore) EnsureBucket(_ context.Context, bucket string, public bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureErr[bucket]; err != nil {
		return err
	}
	s.buckets[bucket] = public
	return nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *fakePublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func (p *fakePublisher) Close() error { return nil }

func (p *fakePublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type fixture struct {
	videos    *fakeVideoRepo
	projects  *fakeProjectRepo
	earnings  *fakeEarningRepo
	store     *fakeStore
	publisher *fakePublisher
	svc       *VideoServiceImpl
}

func newFixture() *fixture {
	f := &fixture{
		videos:    newFakeVideoRepo(),
		store:     newFakeStore(),
		publisher: &fakePublisher{},
		earnings:  &fakeEarningRepo{},
	}
	f.projects = newFakeProjectRepo(f.videos)
	f.svc = NewVideoService(f.videos, f.projects, f.store, f.publisher, pricing.DefaultRule(), config.StorageConfig{}, logger.Discard())
	return f
}

// withoutStore rebuilds the service with object storage unconfigured.
func (f *fixture) withoutStore() *VideoServiceImpl {
	return NewVideoService(f.videos, f.projects, nil, f.publisher, pricing.DefaultRule(), config.StorageConfig{}, logger.Discard())
}

var errBoom = errors.New("boom")
