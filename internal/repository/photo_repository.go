package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/memorial-gallery/internal/models"
)

const photoColumns = `id, title, description, keywords, file_path, file_name, file_size, mime_type, uploaded_at, created_at, updated_at`

// PhotoRepository handles photo metadata persistence.
type PhotoRepository struct {
	db *sqlx.DB
}

// NewPhotoRepository constructs the repository.
func NewPhotoRepository(db *sqlx.DB) *PhotoRepository {
	return &PhotoRepository{db: db}
}

// CreateBatch inserts all photos in a single transaction; either every row is
// stored or none is.
func (r *PhotoRepository) CreateBatch(ctx context.Context, photos []models.Photo) error {
	if len(photos) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin photo batch tx: %w", err)
	}
	const query = `INSERT INTO photos (` + photoColumns + `)
	VALUES (:id, :title, :description, :keywords, :file_path, :file_name, :file_size, :mime_type, :uploaded_at, :created_at, :updated_at)`
	now := time.Now().UTC()
	for i := range photos {
		if photos[i].ID == "" {
			photos[i].ID = uuid.NewString()
		}
		if photos[i].UploadedAt.IsZero() {
			photos[i].UploadedAt = now
		}
		if photos[i].CreatedAt.IsZero() {
			photos[i].CreatedAt = now
		}
		if photos[i].UpdatedAt.IsZero() {
			photos[i].UpdatedAt = photos[i].CreatedAt
		}
		if _, err := tx.NamedExecContext(ctx, query, photos[i]); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert photo %s: %w", photos[i].FileName, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit photo batch tx: %w", err)
	}
	return nil
}

// GetByID retrieves one photo. Missing rows surface as sql.ErrNoRows.
func (r *PhotoRepository) GetByID(ctx context.Context, id string) (*models.Photo, error) {
	const query = `SELECT ` + photoColumns + ` FROM photos WHERE id = $1`
	var photo models.Photo
	if err := r.db.GetContext(ctx, &photo, query, id); err != nil {
		return nil, err
	}
	return &photo, nil
}

// List returns one window of photos, newest upload first. The id tie-break
// keeps pages stable when upload timestamps collide.
func (r *PhotoRepository) List(ctx context.Context, limit, offset int) ([]models.Photo, error) {
	if limit <= 0 {
		return []models.Photo{}, nil
	}
	if offset < 0 {
		offset = 0
	}
	const query = `SELECT ` + photoColumns + ` FROM photos ORDER BY uploaded_at DESC, id DESC LIMIT $1 OFFSET $2`
	photos := make([]models.Photo, 0, limit)
	if err := r.db.SelectContext(ctx, &photos, query, limit, offset); err != nil {
		return nil, fmt.Errorf("list photos: %w", err)
	}
	return photos, nil
}

// Count returns the total number of photos.
func (r *PhotoRepository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM photos`); err != nil {
		return 0, fmt.Errorf("count photos: %w", err)
	}
	return total, nil
}

// UpdateMetadata replaces title, description and keywords and refreshes
// updated_at. It returns sql.ErrNoRows when the photo does not exist.
func (r *PhotoRepository) UpdateMetadata(ctx context.Context, id string, meta models.PhotoMetadata) (*models.Photo, error) {
	if meta.UpdatedAt.IsZero() {
		meta.UpdatedAt = time.Now().UTC()
	}
	const query = `UPDATE photos SET title = $2, description = $3, keywords = $4, updated_at = $5
	WHERE id = $1 RETURNING ` + photoColumns
	var photo models.Photo
	err := r.db.GetContext(ctx, &photo, query, id, meta.Title, meta.Description, pq.Array(meta.Keywords), meta.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("update photo metadata: %w", err)
	}
	return &photo, nil
}
