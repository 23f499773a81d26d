package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/url"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/memorial-gallery/internal/dto"
	"github.com/noah-isme/memorial-gallery/internal/models"
	appErrors "github.com/noah-isme/memorial-gallery/pkg/errors"
	"github.com/noah-isme/memorial-gallery/pkg/pagination"
)

type photoRepoStub struct {
	photos     []models.Photo
	listCalls  int
	lastLimit  int
	lastOffset int
	lastMeta   models.PhotoMetadata
	err        error
}

func newPhotoRepoStub(n int) *photoRepoStub {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	repo := &photoRepoStub{}
	for i := 0; i < n; i++ {
		repo.photos = append(repo.photos, models.Photo{
			ID:         uuid.NewString(),
			FileName:   "p.jpg",
			UploadedAt: base.Add(time.Duration(i%7) * time.Hour),
		})
	}
	sort.SliceStable(repo.photos, func(i, j int) bool {
		a, b := repo.photos[i], repo.photos[j]
		if !a.UploadedAt.Equal(b.UploadedAt) {
			return a.UploadedAt.After(b.UploadedAt)
		}
		return a.ID > b.ID
	})
	return repo
}

func (r *photoRepoStub) GetByID(ctx context.Context, id string) (*models.Photo, error) {
	if r.err != nil {
		return nil, r.err
	}
	for _, p := range r.photos {
		if p.ID == id {
			copy := p
			return &copy, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *photoRepoStub) List(ctx context.Context, limit, offset int) ([]models.Photo, error) {
	r.listCalls++
	r.lastLimit, r.lastOffset = limit, offset
	if r.err != nil {
		return nil, r.err
	}
	if offset >= len(r.photos) {
		return []models.Photo{}, nil
	}
	end := offset + limit
	if end > len(r.photos) {
		end = len(r.photos)
	}
	return append([]models.Photo(nil), r.photos[offset:end]...), nil
}

func (r *photoRepoStub) Count(ctx context.Context) (int, error) {
	if r.err != nil {
		return 0, r.err
	}
	return len(r.photos), nil
}

func (r *photoRepoStub) UpdateMetadata(ctx context.Context, id string, meta models.PhotoMetadata) (*models.Photo, error) {
	r.lastMeta = meta
	for i := range r.photos {
		if r.photos[i].ID == id {
			r.photos[i].Title = meta.Title
			r.photos[i].Description = meta.Description
			r.photos[i].Keywords = meta.Keywords
			r.photos[i].UpdatedAt = meta.UpdatedAt
			copy := r.photos[i]
			return &copy, nil
		}
	}
	return nil, sql.ErrNoRows
}

type memoryListCache struct {
	entries     map[string][]byte
	invalidated int
}

func newMemoryListCache() *memoryListCache {
	return &memoryListCache{entries: map[string][]byte{}}
}

func (c *memoryListCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	raw, ok := c.entries[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (c *memoryListCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.entries[key] = raw
	return nil
}

func (c *memoryListCache) InvalidatePhotoListings(ctx context.Context) error {
	c.invalidated++
	for key := range c.entries {
		if strings.HasPrefix(key, photoListCachePrefix) {
			delete(c.entries, key)
		}
	}
	return nil
}

func TestPhotoServiceListWindows(t *testing.T) {
	repo := newPhotoRepoStub(50)
	svc := NewPhotoService(repo, nil, nil, pagination.Config{}, nil, nil)
	ctx := context.Background()

	photos, page, err := svc.List(ctx, pagination.Request{Page: 1, PageSize: 24})
	require.NoError(t, err)
	assert.Len(t, photos, 24)
	assert.Equal(t, models.Pagination{Page: 1, PageSize: 24, TotalCount: 50, TotalPages: 3}, *page)
	assert.Equal(t, repo.photos[0].ID, photos[0].ID)

	photos, page, err = svc.List(ctx, pagination.Request{Page: 3, PageSize: 24})
	require.NoError(t, err)
	assert.Len(t, photos, 2)
	assert.Equal(t, 48, repo.lastOffset)
	assert.Equal(t, 3, page.TotalPages)

	calls := repo.listCalls
	photos, page, err = svc.List(ctx, pagination.Request{Page: 4, PageSize: 24})
	require.NoError(t, err)
	assert.NotNil(t, photos)
	assert.Empty(t, photos)
	assert.Equal(t, 50, page.TotalCount)
	assert.Equal(t, calls, repo.listCalls)
}

func TestPhotoServiceListHugePageIsEmpty(t *testing.T) {
	repo := newPhotoRepoStub(50)
	svc := NewPhotoService(repo, nil, nil, pagination.Config{}, nil, nil)

	req := pagination.FromQuery(url.Values{"page": {"184467440737095517"}, "pageSize": {"100"}}, svc.PaginationConfig())
	photos, page, err := svc.List(context.Background(), req)
	require.NoError(t, err)
	assert.NotNil(t, photos)
	assert.Empty(t, photos)
	assert.Equal(t, 0, repo.listCalls)
	assert.Equal(t, 184467440737095517, page.Page)
	assert.Equal(t, 1, page.TotalPages)
}

func TestPhotoServiceListNormalizesRequest(t *testing.T) {
	repo := newPhotoRepoStub(150)
	svc := NewPhotoService(repo, nil, nil, pagination.Config{}, nil, nil)

	photos, page, err := svc.List(context.Background(), pagination.Request{Page: 0, PageSize: 500})
	require.NoError(t, err)
	assert.Len(t, photos, 100)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 100, page.PageSize)
	assert.Equal(t, 2, page.TotalPages)

	_, page, err = svc.List(context.Background(), pagination.Request{Page: -3})
	require.NoError(t, err)
	assert.Equal(t, 24, page.PageSize)
	assert.Equal(t, 7, page.TotalPages)
}

func TestPhotoServiceListEmptyGallery(t *testing.T) {
	svc := NewPhotoService(newPhotoRepoStub(0), nil, nil, pagination.Config{}, nil, nil)

	photos, page, err := svc.List(context.Background(), pagination.Request{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Empty(t, photos)
	assert.Equal(t, 0, page.TotalCount)
	assert.Equal(t, 0, page.TotalPages)
}

func TestPhotoServiceListUsesCache(t *testing.T) {
	repo := newPhotoRepoStub(5)
	cache := newMemoryListCache()
	svc := NewPhotoService(repo, cache, nil, pagination.Config{}, nil, nil)
	ctx := context.Background()

	first, _, err := svc.List(ctx, pagination.Request{Page: 1, PageSize: 2})
	require.NoError(t, err)
	require.Equal(t, 1, repo.listCalls)

	second, page, err := svc.List(ctx, pagination.Request{Page: 1, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, 1, repo.listCalls)
	assert.Equal(t, first[0].ID, second[0].ID)
	assert.Equal(t, 3, page.TotalPages)

	_, err = svc.UpdateMetadata(ctx, repo.photos[0].ID, dto.UpdateMetadataRequest{})
	require.NoError(t, err)
	assert.Equal(t, 1, cache.invalidated)

	_, _, err = svc.List(ctx, pagination.Request{Page: 1, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, repo.listCalls)
}

func TestPhotoServiceListRepositoryFailure(t *testing.T) {
	repo := newPhotoRepoStub(3)
	repo.err = errors.New("db down")
	svc := NewPhotoService(repo, nil, nil, pagination.Config{}, nil, nil)

	_, _, err := svc.List(context.Background(), pagination.Request{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInternal.Code, appErrors.FromError(err).Code)
}

func TestPhotoServiceGet(t *testing.T) {
	repo := newPhotoRepoStub(2)
	svc := NewPhotoService(repo, nil, nil, pagination.Config{}, nil, nil)

	photo, err := svc.Get(context.Background(), repo.photos[1].ID)
	require.NoError(t, err)
	assert.Equal(t, repo.photos[1].ID, photo.ID)

	for _, id := range []string{uuid.NewString(), "not-a-uuid", ""} {
		_, err = svc.Get(context.Background(), id)
		require.Error(t, err, id)
		assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code, id)
	}
}

func TestPhotoServiceUpdateMetadata(t *testing.T) {
	repo := newPhotoRepoStub(1)
	svc := NewPhotoService(repo, nil, nil, pagination.Config{}, nil, nil)
	title := "Grandpa's workshop"
	desc := "Summer, 1978"

	photo, err := svc.UpdateMetadata(context.Background(), repo.photos[0].ID, dto.UpdateMetadataRequest{
		Title:       &title,
		Description: &desc,
		Keywords:    []string{" tools ", "", "family"},
	})
	require.NoError(t, err)
	assert.Equal(t, title, *photo.Title)
	assert.Equal(t, []string{"tools", "family"}, []string(photo.Keywords))
	assert.False(t, repo.lastMeta.UpdatedAt.IsZero())
}

func TestPhotoServiceUpdateMetadataValidation(t *testing.T) {
	repo := newPhotoRepoStub(1)
	svc := NewPhotoService(repo, nil, nil, pagination.Config{}, nil, nil)
	longTitle := strings.Repeat("t", 501)

	_, err := svc.UpdateMetadata(context.Background(), repo.photos[0].ID, dto.UpdateMetadataRequest{Title: &longTitle})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	tooMany := make([]string, 51)
	for i := range tooMany {
		tooMany[i] = "k"
	}
	_, err = svc.UpdateMetadata(context.Background(), repo.photos[0].ID, dto.UpdateMetadataRequest{Keywords: tooMany})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.UpdateMetadata(context.Background(), uuid.NewString(), dto.UpdateMetadataRequest{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
