package models

import (
	"time"

	"github.com/lib/pq"
)

// Photo represents one stored image registered in the photos table.
type Photo struct {
	ID          string         `db:"id" json:"id"`
	Title       *string        `db:"title" json:"title,omitempty"`
	Description *string        `db:"description" json:"description,omitempty"`
	Keywords    pq.StringArray `db:"keywords" json:"keywords,omitempty"`
	FilePath    string         `db:"file_path" json:"filePath"`
	FileName    string         `db:"file_name" json:"fileName"`
	FileSize    int64          `db:"file_size" json:"fileSize"`
	MimeType    string         `db:"mime_type" json:"mimeType"`
	UploadedAt  time.Time      `db:"uploaded_at" json:"uploadedAt"`
	CreatedAt   time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updatedAt"`
}

// PhotoMetadata carries the mutable fields of a photo.
type PhotoMetadata struct {
	Title       *string
	Description *string
	Keywords    []string
	UpdatedAt   time.Time
}
