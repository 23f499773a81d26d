package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/docker/go-units"
	"go.uber.org/zap"

	"github.com/noah-isme/memorial-gallery/pkg/archive"
	appErrors "github.com/noah-isme/memorial-gallery/pkg/errors"
)

var bulkArchiveSuffixes = []string{".tar.gz", ".tgz"}

// BulkUpload is a tar.gz archive streamed from the request body. Size is -1
// when the length is not known up front.
type BulkUpload struct {
	Filename string
	Size     int64
	Content  io.Reader
}

// ExtractionResult summarises a bulk extraction.
type ExtractionResult struct {
	FileCount   int
	TotalBytes  int64
	Destination string
}

type bulkFileStore interface {
	SaveStream(name string, r io.Reader) (int64, error)
	BaseDir() string
}

// ExtractionService unpacks tar.gz archives straight onto disk. It does not
// create photo records.
type ExtractionService struct {
	store          bulkFileStore
	metrics        *MetricsService
	maxArchiveSize int64
	logger         *zap.Logger
}

// NewExtractionService constructs the bulk extractor.
func NewExtractionService(store bulkFileStore, metrics *MetricsService, maxArchiveSize int64, logger *zap.Logger) *ExtractionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxArchiveSize <= 0 {
		maxArchiveSize = 5 * units.GiB
	}
	return &ExtractionService{store: store, metrics: metrics, maxArchiveSize: maxArchiveSize, logger: logger}
}

// MaxArchiveSize is the largest archive Extract accepts.
func (s *ExtractionService) MaxArchiveSize() int64 {
	return s.maxArchiveSize
}

// Extract writes every regular file of the archive into the destination
// directory under its base name, replacing existing files. The first read or
// write failure aborts the run; files written before it remain.
func (s *ExtractionService) Extract(ctx context.Context, upload BulkUpload) (*ExtractionResult, error) {
	if err := s.validate(upload); err != nil {
		s.metrics.RecordRejectedArchive("targz", err.Code)
		return nil, err
	}

	start := time.Now()
	scanner, err := archive.NewTarGzScanner(upload.Content, s.onSkip)
	if err != nil {
		s.logger.Warn("unreadable tar.gz upload", zap.String("archive", upload.Filename), zap.Error(err))
		s.metrics.RecordRejectedArchive("targz", appErrors.ErrInvalidArchive.Code)
		return nil, appErrors.Wrap(err, appErrors.ErrInvalidArchive.Code, appErrors.ErrInvalidArchive.Status, "archive is not a gzip-compressed tar file")
	}
	defer scanner.Close()

	result := &ExtractionResult{Destination: s.store.BaseDir()}
	for scanner.Next() {
		entry := scanner.Entry()
		written, err := s.store.SaveStream(entry.Name, scanner)
		if err != nil {
			s.logger.Error("bulk extraction aborted",
				zap.String("archive", upload.Filename),
				zap.String("entry", entry.Path),
				zap.Int("files_written", result.FileCount),
				zap.Error(err),
			)
			s.metrics.RecordExtraction(result.FileCount, result.TotalBytes, true)
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, fmt.Sprintf("failed to extract %s", entry.Name))
		}
		result.FileCount++
		result.TotalBytes += written
	}
	if err := scanner.Err(); err != nil {
		s.logger.Error("bulk extraction aborted",
			zap.String("archive", upload.Filename),
			zap.Int("files_written", result.FileCount),
			zap.Error(err),
		)
		s.metrics.RecordExtraction(result.FileCount, result.TotalBytes, true)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read archive")
	}

	s.metrics.RecordExtraction(result.FileCount, result.TotalBytes, false)
	s.logger.Info("bulk archive extracted",
		zap.String("archive", upload.Filename),
		zap.Int("files", result.FileCount),
		zap.String("size", units.BytesSize(float64(result.TotalBytes))),
		zap.Duration("duration", time.Since(start)),
		zap.String("destination", result.Destination),
	)
	return result, nil
}

func (s *ExtractionService) validate(upload BulkUpload) *appErrors.Error {
	if upload.Content == nil || upload.Size == 0 {
		return appErrors.Clone(appErrors.ErrValidation, "no file uploaded")
	}
	if !hasBulkSuffix(upload.Filename) {
		return appErrors.Clone(appErrors.ErrValidation, "file must be a .tar.gz or .tgz archive")
	}
	if upload.Size > s.maxArchiveSize {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("archive exceeds maximum size of %s", units.BytesSize(float64(s.maxArchiveSize))))
	}
	return nil
}

func (s *ExtractionService) onSkip(name string, reason archive.SkipReason) {
	s.logger.Debug("skipping tar entry", zap.String("entry", name), zap.String("reason", string(reason)))
	if reason != archive.SkipDirectory {
		s.metrics.RecordSkippedEntry("targz", string(reason))
	}
}

func hasBulkSuffix(name string) bool {
	lower := strings.ToLower(name)
	for _, suffix := range bulkArchiveSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}
	return false
}
