package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPhotoBuilderBuild(t *testing.T) {
	b := NewPhotoBuilder("/uploads/")
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	photo := b.Build(AcceptedFile{
		SanitizedName: "mom_1985.jpg",
		UniqueName:    "abc_mom_1985.jpg",
		Extension:     ".jpg",
		Size:          2048,
	}, now)

	require.NotEmpty(t, photo.ID)
	assert.Equal(t, "/uploads/abc_mom_1985.jpg", photo.FilePath)
	assert.Equal(t, "mom_1985.jpg", photo.FileName)
	assert.Equal(t, int64(2048), photo.FileSize)
	assert.Equal(t, "image/jpeg", photo.MimeType)
	assert.Equal(t, now, photo.UploadedAt)
	assert.Equal(t, now, photo.CreatedAt)
	assert.Nil(t, photo.Title)
	assert.Empty(t, photo.Keywords)
}

func TestPhotoBuilderUniqueIDs(t *testing.T) {
	b := NewPhotoBuilder("")
	photos := b.BuildAll([]AcceptedFile{
		{SanitizedName: "a.png", UniqueName: "1_a.png", Extension: ".png"},
		{SanitizedName: "a.png", UniqueName: "2_a.png", Extension: ".png"},
	}, time.Now())

	require.Len(t, photos, 2)
	assert.NotEqual(t, photos[0].ID, photos[1].ID)
	assert.Equal(t, "/uploads/1_a.png", photos[0].FilePath)
}

func TestPhotoBuilderStampsArchiveOrder(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	photos := NewPhotoBuilder("").BuildAll([]AcceptedFile{
		{SanitizedName: "first.png", UniqueName: "1_first.png", Extension: ".png"},
		{SanitizedName: "second.png", UniqueName: "2_second.png", Extension: ".png"},
		{SanitizedName: "third.png", UniqueName: "3_third.png", Extension: ".png"},
	}, now)

	require.Len(t, photos, 3)
	assert.Equal(t, now, photos[0].UploadedAt)
	for i := 1; i < len(photos); i++ {
		assert.Equal(t, time.Microsecond, photos[i].UploadedAt.Sub(photos[i-1].UploadedAt))
		assert.Equal(t, photos[i].UploadedAt, photos[i].CreatedAt)
	}
}

func TestMimeTypeFor(t *testing.T) {
	cases := map[string]string{
		".jpg":  "image/jpeg",
		".JPEG": "image/jpeg",
		".png":  "image/png",
		".gif":  "image/gif",
		".webp": "image/webp",
		".bmp":  "image/bmp",
		".tiff": "application/octet-stream",
		"":      "application/octet-stream",
	}
	for ext, want := range cases {
		assert.Equal(t, want, MimeTypeFor(ext), ext)
	}
}
