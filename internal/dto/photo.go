package dto

// UpdateMetadataRequest is the body of a photo metadata update. Omitted
// fields are cleared, matching a full replace of the editable metadata.
type UpdateMetadataRequest struct {
	Title       *string  `json:"title" validate:"omitempty,max=500"`
	Description *string  `json:"description"`
	Keywords    []string `json:"keywords" validate:"omitempty,max=50,dive,max=100"`
}

// UploadedPhoto identifies one photo created by an upload.
type UploadedPhoto struct {
	ID       string `json:"id"`
	FileName string `json:"fileName"`
}

// UploadResponse summarises a ZIP ingestion.
type UploadResponse struct {
	Message string          `json:"message"`
	Count   int             `json:"count"`
	Photos  []UploadedPhoto `json:"photos"`
}

// ExtractionResponse summarises a tar.gz bulk extraction.
type ExtractionResponse struct {
	Message     string `json:"message"`
	FileCount   int    `json:"fileCount"`
	TotalBytes  int64  `json:"totalBytes"`
	Destination string `json:"destination"`
}
