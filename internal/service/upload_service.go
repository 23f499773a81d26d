package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/docker/go-units"
	"go.uber.org/zap"

	"github.com/noah-isme/memorial-gallery/internal/models"
	"github.com/noah-isme/memorial-gallery/pkg/archive"
	appErrors "github.com/noah-isme/memorial-gallery/pkg/errors"
)

type photoBatchWriter interface {
	CreateBatch(ctx context.Context, photos []models.Photo) error
}

type fileStore interface {
	SaveStream(name string, r io.Reader) (int64, error)
	Delete(name string) error
}

type listingInvalidator interface {
	InvalidatePhotoListings(ctx context.Context) error
}

// ArchiveUpload is an uploaded archive held in memory or in a temp file.
type ArchiveUpload struct {
	Filename string
	Size     int64
	Content  io.ReaderAt
}

// UploadOptions bounds ZIP ingestion.
type UploadOptions struct {
	MaxArchiveSize int64
	MaxFileSize    int64
	NewToken       archive.TokenFunc
	Now            func() time.Time
}

// UploadService ingests ZIP archives of images into the gallery.
type UploadService struct {
	repo    photoBatchWriter
	store   fileStore
	builder *PhotoBuilder
	cache   listingInvalidator
	metrics *MetricsService
	opts    UploadOptions
	logger  *zap.Logger
}

// NewUploadService wires the ingestion pipeline.
func NewUploadService(repo photoBatchWriter, store fileStore, builder *PhotoBuilder, cache listingInvalidator, metrics *MetricsService, opts UploadOptions, logger *zap.Logger) *UploadService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if builder == nil {
		builder = NewPhotoBuilder("")
	}
	if opts.MaxArchiveSize <= 0 {
		opts.MaxArchiveSize = 100 * units.MiB
	}
	if opts.MaxFileSize <= 0 {
		opts.MaxFileSize = archive.DefaultMaxFileSize
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &UploadService{repo: repo, store: store, builder: builder, cache: cache, metrics: metrics, opts: opts, logger: logger}
}

// MaxArchiveSize is the largest archive Ingest accepts.
func (s *UploadService) MaxArchiveSize() int64 {
	return s.opts.MaxArchiveSize
}

// Ingest unpacks the image entries of a ZIP archive into the uploads
// directory and records one photo per stored image in a single transaction.
// Files already written stay on disk if the insert fails.
func (s *UploadService) Ingest(ctx context.Context, upload ArchiveUpload) ([]models.Photo, error) {
	start := time.Now()
	if err := s.validate(upload); err != nil {
		s.metrics.RecordRejectedArchive("zip", err.Code)
		return nil, err
	}

	scanner, err := archive.NewZipScanner(upload.Content, upload.Size, archive.ZipOptions{
		MaxFileSize: s.opts.MaxFileSize,
		NewToken:    s.opts.NewToken,
		OnSkip:      s.onSkip,
	})
	if err != nil {
		s.logger.Warn("unreadable zip upload", zap.String("archive", upload.Filename), zap.Error(err))
		s.metrics.RecordRejectedArchive("zip", appErrors.ErrInvalidArchive.Code)
		return nil, appErrors.Wrap(err, appErrors.ErrInvalidArchive.Code, appErrors.ErrInvalidArchive.Status, appErrors.ErrInvalidArchive.Message)
	}

	accepted := s.extract(scanner)
	if len(accepted) == 0 {
		s.metrics.RecordRejectedArchive("zip", appErrors.ErrNoValidImages.Code)
		return nil, appErrors.Clone(appErrors.ErrNoValidImages, "")
	}

	photos := s.builder.BuildAll(accepted, s.opts.Now().UTC())
	dbStart := time.Now()
	err = s.repo.CreateBatch(ctx, photos)
	s.metrics.ObserveDBQuery("photos_create_batch", time.Since(dbStart))
	if err != nil {
		s.logger.Error("failed to save photo records", zap.String("archive", upload.Filename), zap.Int("photos", len(photos)), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save photo records")
	}

	if s.cache != nil {
		if err := s.cache.InvalidatePhotoListings(ctx); err != nil {
			s.logger.Warn("listing cache not invalidated after upload", zap.Error(err))
		}
	}

	s.metrics.RecordIngestion(len(photos), time.Since(start))
	s.logger.Info("zip archive ingested",
		zap.String("archive", upload.Filename),
		zap.Int("entries", scanner.Len()),
		zap.Int("photos", len(photos)),
	)
	return photos, nil
}

func (s *UploadService) validate(upload ArchiveUpload) *appErrors.Error {
	if upload.Content == nil || upload.Size <= 0 {
		return appErrors.Clone(appErrors.ErrValidation, "no file uploaded")
	}
	if !strings.HasSuffix(strings.ToLower(upload.Filename), ".zip") {
		return appErrors.Clone(appErrors.ErrValidation, "file must be a ZIP archive")
	}
	if upload.Size > s.opts.MaxArchiveSize {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("ZIP file exceeds maximum size of %s", units.BytesSize(float64(s.opts.MaxArchiveSize))))
	}
	return nil
}

func (s *UploadService) extract(scanner *archive.ZipScanner) []AcceptedFile {
	var accepted []AcceptedFile
	for scanner.Next() {
		entry := scanner.Entry()
		size, ok := s.writeEntry(entry)
		if !ok {
			continue
		}
		accepted = append(accepted, AcceptedFile{
			SanitizedName: entry.SanitizedName,
			UniqueName:    entry.UniqueName,
			Extension:     entry.Extension,
			Size:          size,
		})
	}
	return accepted
}

// writeEntry copies one entry to disk. Declared sizes can lie, so the copy
// reads at most one byte past the cap and discards the file if it got there.
func (s *UploadService) writeEntry(entry archive.Entry) (int64, bool) {
	rc, err := entry.Open()
	if err != nil {
		s.logger.Error("failed to open zip entry", zap.String("entry", entry.Name), zap.Error(err))
		s.metrics.RecordSkippedEntry("zip", "io_error")
		return 0, false
	}
	defer rc.Close()

	written, err := s.store.SaveStream(entry.UniqueName, io.LimitReader(rc, s.opts.MaxFileSize+1))
	if err != nil {
		s.logger.Error("failed to extract zip entry", zap.String("entry", entry.Name), zap.Error(err))
		s.metrics.RecordSkippedEntry("zip", "io_error")
		return 0, false
	}
	if written > s.opts.MaxFileSize {
		if err := s.store.Delete(entry.UniqueName); err != nil {
			s.logger.Error("failed to remove oversized entry", zap.String("entry", entry.Name), zap.Error(err))
		}
		s.onSkip(entry.Name, archive.SkipTooLarge)
		return 0, false
	}
	return written, true
}

func (s *UploadService) onSkip(name string, reason archive.SkipReason) {
	if reason == archive.SkipDirectory {
		s.logger.Debug("skipping zip directory", zap.String("entry", name))
		return
	}
	s.logger.Warn("skipping zip entry", zap.String("entry", name), zap.String("reason", string(reason)))
	s.metrics.RecordSkippedEntry("zip", string(reason))
}
