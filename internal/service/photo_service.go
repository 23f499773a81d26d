package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/memorial-gallery/internal/dto"
	"github.com/noah-isme/memorial-gallery/internal/models"
	appErrors "github.com/noah-isme/memorial-gallery/pkg/errors"
	"github.com/noah-isme/memorial-gallery/pkg/pagination"
)

type photoRepository interface {
	GetByID(ctx context.Context, id string) (*models.Photo, error)
	List(ctx context.Context, limit, offset int) ([]models.Photo, error)
	Count(ctx context.Context) (int, error)
	UpdateMetadata(ctx context.Context, id string, meta models.PhotoMetadata) (*models.Photo, error)
}

type photoListCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	InvalidatePhotoListings(ctx context.Context) error
}

type cachedPhotoPage struct {
	Photos     []models.Photo    `json:"photos"`
	Pagination models.Pagination `json:"pagination"`
}

// PhotoService serves gallery browsing and metadata edits.
type PhotoService struct {
	repo       photoRepository
	cache      photoListCache
	metrics    *MetricsService
	pagination pagination.Config
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewPhotoService constructs the service. cache and metrics may be nil.
func NewPhotoService(repo photoRepository, cache photoListCache, metrics *MetricsService, pageCfg pagination.Config, validate *validator.Validate, logger *zap.Logger) *PhotoService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PhotoService{
		repo:       repo,
		cache:      cache,
		metrics:    metrics,
		pagination: pageCfg.WithDefaults(),
		validator:  validate,
		logger:     logger,
	}
}

// PaginationConfig exposes the page bounds applied to list requests.
func (s *PhotoService) PaginationConfig() pagination.Config {
	return s.pagination
}

// List returns one page of photos, newest first. Pages past the end are empty.
func (s *PhotoService) List(ctx context.Context, req pagination.Request) ([]models.Photo, *models.Pagination, error) {
	req.Normalize(s.pagination)
	key := photoListCacheKey(req.Page, req.PageSize)

	if s.cache != nil {
		var cached cachedPhotoPage
		if hit, _ := s.cache.Get(ctx, key, &cached); hit {
			if cached.Photos == nil {
				cached.Photos = []models.Photo{}
			}
			return cached.Photos, &cached.Pagination, nil
		}
	}

	start := time.Now()
	total, err := s.repo.Count(ctx)
	s.metrics.ObserveDBQuery("photos_count", time.Since(start))
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count photos")
	}

	photos := []models.Photo{}
	if req.Page <= pagination.TotalPages(total, req.PageSize) {
		start = time.Now()
		photos, err = s.repo.List(ctx, req.Limit(), req.Offset())
		s.metrics.ObserveDBQuery("photos_list", time.Since(start))
		if err != nil {
			return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list photos")
		}
		if photos == nil {
			photos = []models.Photo{}
		}
	}

	page := &models.Pagination{
		Page:       req.Page,
		PageSize:   req.PageSize,
		TotalCount: total,
		TotalPages: pagination.TotalPages(total, req.PageSize),
	}

	if s.cache != nil {
		_ = s.cache.Set(ctx, key, cachedPhotoPage{Photos: photos, Pagination: *page}, 0)
	}
	return photos, page, nil
}

// Get returns a single photo. Ids that are not UUIDs are reported as not found.
func (s *PhotoService) Get(ctx context.Context, id string) (*models.Photo, error) {
	if !isPhotoID(id) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "photo not found")
	}
	start := time.Now()
	photo, err := s.repo.GetByID(ctx, id)
	s.metrics.ObserveDBQuery("photos_get", time.Since(start))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "photo not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load photo")
	}
	return photo, nil
}

// UpdateMetadata replaces the title, description and keywords of a photo.
// Blank keywords are dropped and the rest keep their order.
func (s *PhotoService) UpdateMetadata(ctx context.Context, id string, req dto.UpdateMetadataRequest) (*models.Photo, error) {
	if !isPhotoID(id) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "photo not found")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}

	keywords := make([]string, 0, len(req.Keywords))
	for _, kw := range req.Keywords {
		if kw = strings.TrimSpace(kw); kw != "" {
			keywords = append(keywords, kw)
		}
	}

	start := time.Now()
	photo, err := s.repo.UpdateMetadata(ctx, id, models.PhotoMetadata{
		Title:       req.Title,
		Description: req.Description,
		Keywords:    keywords,
		UpdatedAt:   time.Now().UTC(),
	})
	s.metrics.ObserveDBQuery("photos_update_metadata", time.Since(start))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "photo not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update photo metadata")
	}

	if s.cache != nil {
		if err := s.cache.InvalidatePhotoListings(ctx); err != nil {
			s.logger.Warn("listing cache not invalidated after metadata update", zap.String("photo_id", id), zap.Error(err))
		}
	}
	return photo, nil
}

func isPhotoID(id string) bool {
	_, err := uuid.Parse(strings.TrimSpace(id))
	return err == nil
}
