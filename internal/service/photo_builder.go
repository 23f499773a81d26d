package service

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/memorial-gallery/internal/models"
)

const defaultMimeType = "application/octet-stream"

var mimeTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".bmp":  "image/bmp",
}

// AcceptedFile describes an archive entry that passed validation and was
// written to the uploads directory.
type AcceptedFile struct {
	SanitizedName string
	UniqueName    string
	Extension     string
	Size          int64
}

// MimeTypeFor maps a lowercase extension (with dot) to its media type.
func MimeTypeFor(ext string) string {
	if mt, ok := mimeTypes[strings.ToLower(ext)]; ok {
		return mt
	}
	return defaultMimeType
}

// PhotoBuilder turns accepted files into photo records.
type PhotoBuilder struct {
	urlPrefix string
	newID     func() string
}

// NewPhotoBuilder constructs a builder publishing files under urlPrefix.
func NewPhotoBuilder(urlPrefix string) *PhotoBuilder {
	prefix := "/" + strings.Trim(urlPrefix, "/")
	if prefix == "/" {
		prefix = "/uploads"
	}
	return &PhotoBuilder{urlPrefix: prefix, newID: uuid.NewString}
}

// Build creates the photo record for file. Metadata fields are left empty.
func (b *PhotoBuilder) Build(file AcceptedFile, uploadedAt time.Time) models.Photo {
	return models.Photo{
		ID:         b.newID(),
		FilePath:   b.urlPrefix + "/" + file.UniqueName,
		FileName:   file.SanitizedName,
		FileSize:   file.Size,
		MimeType:   MimeTypeFor(file.Extension),
		UploadedAt: uploadedAt,
		CreatedAt:  uploadedAt,
		UpdatedAt:  uploadedAt,
	}
}

// BuildAll builds one record per file in order. Each file is stamped one
// microsecond after the previous one so newest-first listings show a batch
// in reverse archive order once stored at Postgres timestamp precision.
func (b *PhotoBuilder) BuildAll(files []AcceptedFile, uploadedAt time.Time) []models.Photo {
	photos := make([]models.Photo, 0, len(files))
	for i, f := range files {
		photos = append(photos, b.Build(f, uploadedAt.Add(time.Duration(i)*time.Microsecond)))
	}
	return photos
}
