package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/memorial-gallery/internal/dto"
	"github.com/noah-isme/memorial-gallery/internal/service"
	appErrors "github.com/noah-isme/memorial-gallery/pkg/errors"
	"github.com/noah-isme/memorial-gallery/pkg/response"
)

// ArchiveFormField is the multipart field carrying the tar.gz archive.
const ArchiveFormField = "archive"

type bulkExtractor interface {
	Extract(ctx context.Context, upload service.BulkUpload) (*service.ExtractionResult, error)
}

// ExtractionHandler exposes tar.gz bulk extraction.
type ExtractionHandler struct {
	service bulkExtractor
}

// NewExtractionHandler constructs the handler.
func NewExtractionHandler(service bulkExtractor) *ExtractionHandler {
	return &ExtractionHandler{service: service}
}

// Extract godoc
// @Summary Bulk extract a tar.gz archive
// @Description Writes every regular file to the bulk directory under its base name, replacing existing files. No photo records are created.
// @Tags Photos
// @Accept multipart/form-data
// @Produce json
// @Param X-Upload-Password header string true "Upload password"
// @Param archive formData file true "tar.gz or tgz archive (max 5GiB)"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /api/photos/extract [post]
func (h *ExtractionHandler) Extract(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "extraction service not configured"))
		return
	}
	reader, err := c.Request.MultipartReader()
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "multipart form expected"))
		return
	}

	// The archive part is handed to the extractor as a stream.
	for {
		part, err := reader.NextPart()
		if errors.Is(err, io.EOF) {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "no file uploaded"))
			return
		}
		if err != nil {
			response.Error(c, formFileError(err))
			return
		}
		if part.FormName() != ArchiveFormField || part.FileName() == "" {
			_ = part.Close()
			continue
		}

		result, err := h.service.Extract(c.Request.Context(), service.BulkUpload{
			Filename: part.FileName(),
			Size:     -1,
			Content:  part,
		})
		_ = part.Close()
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				err = appErrors.Clone(appErrors.ErrValidation, "uploaded file exceeds maximum size")
			}
			response.Error(c, err)
			return
		}
		response.OK(c, dto.ExtractionResponse{
			Message:     fmt.Sprintf("Extracted %d file(s)", result.FileCount),
			FileCount:   result.FileCount,
			TotalBytes:  result.TotalBytes,
			Destination: result.Destination,
		})
		return
	}
}
