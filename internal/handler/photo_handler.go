package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/memorial-gallery/internal/dto"
	"github.com/noah-isme/memorial-gallery/internal/models"
	"github.com/noah-isme/memorial-gallery/internal/service"
	appErrors "github.com/noah-isme/memorial-gallery/pkg/errors"
	"github.com/noah-isme/memorial-gallery/pkg/pagination"
	"github.com/noah-isme/memorial-gallery/pkg/response"
)

// ZipFormField is the multipart field carrying the ZIP archive.
const ZipFormField = "zipFile"

type photoService interface {
	List(ctx context.Context, req pagination.Request) ([]models.Photo, *models.Pagination, error)
	Get(ctx context.Context, id string) (*models.Photo, error)
	UpdateMetadata(ctx context.Context, id string, req dto.UpdateMetadataRequest) (*models.Photo, error)
	PaginationConfig() pagination.Config
}

type photoUploader interface {
	Ingest(ctx context.Context, upload service.ArchiveUpload) ([]models.Photo, error)
}

// PhotoHandler exposes gallery endpoints.
type PhotoHandler struct {
	service  photoService
	uploader photoUploader
}

// NewPhotoHandler constructs the handler.
func NewPhotoHandler(service photoService, uploader photoUploader) *PhotoHandler {
	return &PhotoHandler{service: service, uploader: uploader}
}

// List godoc
// @Summary List photos
// @Description Newest uploads first.
// @Tags Photos
// @Produce json
// @Param page query int false "Page number, 1-based"
// @Param pageSize query int false "Page size (default 24, max 100)"
// @Success 200 {object} response.Envelope
// @Router /api/photos [get]
func (h *PhotoHandler) List(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "photo service not configured"))
		return
	}
	req := pagination.FromQuery(c.Request.URL.Query(), h.service.PaginationConfig())
	photos, page, err := h.service.List(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, photos, page)
}

// Get godoc
// @Summary Get photo
// @Tags Photos
// @Produce json
// @Param id path string true "Photo ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /api/photos/{id} [get]
func (h *PhotoHandler) Get(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "photo service not configured"))
		return
	}
	photo, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, photo)
}

// Upload godoc
// @Summary Upload a ZIP of photos
// @Description Stores every image entry (.jpg .jpeg .png .gif .webp .bmp up to 10MiB) and creates one photo per image.
// @Tags Photos
// @Accept multipart/form-data
// @Produce json
// @Param X-Upload-Password header string true "Upload password"
// @Param zipFile formData file true "ZIP archive (max 100MiB)"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /api/photos/upload [post]
func (h *PhotoHandler) Upload(c *gin.Context) {
	if h.uploader == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "upload service not configured"))
		return
	}
	fileHeader, err := c.FormFile(ZipFormField)
	if err != nil {
		response.Error(c, formFileError(err))
		return
	}
	src, err := fileHeader.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open file"))
		return
	}
	defer src.Close()

	photos, err := h.uploader.Ingest(c.Request.Context(), service.ArchiveUpload{
		Filename: fileHeader.Filename,
		Size:     fileHeader.Size,
		Content:  src,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	uploaded := make([]dto.UploadedPhoto, 0, len(photos))
	for _, p := range photos {
		uploaded = append(uploaded, dto.UploadedPhoto{ID: p.ID, FileName: p.FileName})
	}
	response.OK(c, dto.UploadResponse{
		Message: fmt.Sprintf("Successfully uploaded %d photo(s)", len(photos)),
		Count:   len(photos),
		Photos:  uploaded,
	})
}

// UpdateMetadata godoc
// @Summary Update photo metadata
// @Description Replaces title, description and keywords.
// @Tags Photos
// @Accept json
// @Produce json
// @Param X-Upload-Password header string true "Upload password"
// @Param id path string true "Photo ID"
// @Param payload body dto.UpdateMetadataRequest true "Metadata"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /api/photos/metadata/{id} [post]
func (h *PhotoHandler) UpdateMetadata(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "photo service not configured"))
		return
	}
	var req dto.UpdateMetadataRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid metadata payload"))
		return
	}
	photo, err := h.service.UpdateMetadata(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, photo)
}

func formFileError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return appErrors.Clone(appErrors.ErrValidation, "uploaded file exceeds maximum size")
	}
	return appErrors.Clone(appErrors.ErrValidation, "no file uploaded")
}
