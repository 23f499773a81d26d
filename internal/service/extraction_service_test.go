package service

import (
	"archive/tar"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/memorial-gallery/pkg/errors"
	"github.com/noah-isme/memorial-gallery/pkg/storage"
)

type tarItem struct {
	name     string
	body     string
	typeflag byte
}

func tarBytes(t *testing.T, items ...tarItem) []byte {
	t.Helper()
	buf := &bytes.Buffer{}
	tw := tar.NewWriter(buf)
	for _, it := range items {
		flag := it.typeflag
		if flag == 0 {
			flag = tar.TypeReg
		}
		hdr := &tar.Header{Name: it.name, Mode: 0o644, Typeflag: flag}
		switch flag {
		case tar.TypeReg:
			hdr.Size = int64(len(it.body))
		case tar.TypeSymlink:
			hdr.Linkname = "/etc/passwd"
		}
		require.NoError(t, tw.WriteHeader(hdr))
		if flag == tar.TypeReg {
			_, err := tw.Write([]byte(it.body))
			require.NoError(t, err)
		}
	}
	require.NoError(t, tw.Close())
	return buf.Bytes()
}

func gzipBytes(t *testing.T, raw []byte) []byte {
	t.Helper()
	buf := &bytes.Buffer{}
	gz := gzip.NewWriter(buf)
	_, err := gz.Write(raw)
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	return buf.Bytes()
}

func tarGzBytes(t *testing.T, items ...tarItem) []byte {
	t.Helper()
	return gzipBytes(t, tarBytes(t, items...))
}

func newExtractionFixture(t *testing.T, maxSize int64) (*ExtractionService, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewLocalStorage(dir)
	require.NoError(t, err)
	return NewExtractionService(store, NewMetricsService(), maxSize, nil), dir
}

func TestExtractionServiceFlattensAndOverwrites(t *testing.T) {
	svc, dir := newExtractionFixture(t, 0)
	data := tarGzBytes(t,
		tarItem{name: "2019/", typeflag: tar.TypeDir},
		tarItem{name: "2019/beach.jpg", body: "first"},
		tarItem{name: "readme.txt", body: "any file type is kept"},
		tarItem{name: "2020/beach.jpg", body: "second!"},
		tarItem{name: "link.jpg", typeflag: tar.TypeSymlink},
	)

	result, err := svc.Extract(context.Background(), BulkUpload{Filename: "Backup.TGZ", Size: int64(len(data)), Content: bytes.NewReader(data)})
	require.NoError(t, err)
	assert.Equal(t, 3, result.FileCount)
	assert.Equal(t, int64(len("first")+len("any file type is kept")+len("second!")), result.TotalBytes)

	abs, _ := filepath.Abs(dir)
	assert.Equal(t, abs, result.Destination)

	beach, err := os.ReadFile(filepath.Join(dir, "beach.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "second!", string(beach))
	_, err = os.Stat(filepath.Join(dir, "2019"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Lstat(filepath.Join(dir, "link.jpg"))
	assert.True(t, os.IsNotExist(err))
}

func TestExtractionServiceEmptyArchive(t *testing.T) {
	svc, _ := newExtractionFixture(t, 0)
	data := tarGzBytes(t, tarItem{name: "only-dir/", typeflag: tar.TypeDir})

	result, err := svc.Extract(context.Background(), BulkUpload{Filename: "x.tar.gz", Size: int64(len(data)), Content: bytes.NewReader(data)})
	require.NoError(t, err)
	assert.Zero(t, result.FileCount)
	assert.Zero(t, result.TotalBytes)
}

func TestExtractionServiceValidation(t *testing.T) {
	svc, _ := newExtractionFixture(t, 16)
	data := tarGzBytes(t, tarItem{name: "a.jpg", body: "a"})

	cases := map[string]BulkUpload{
		"missing": {Filename: "a.tar.gz"},
		"suffix":  {Filename: "a.tar", Size: int64(len(data)), Content: bytes.NewReader(data)},
		"zip":     {Filename: "a.zip", Size: int64(len(data)), Content: bytes.NewReader(data)},
		"too big": {Filename: "a.tar.gz", Size: 17, Content: bytes.NewReader(data)},
	}
	for name, upload := range cases {
		_, err := svc.Extract(context.Background(), upload)
		require.Error(t, err, name)
		assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code, name)
	}
}

func TestExtractionServiceNotGzip(t *testing.T) {
	svc, _ := newExtractionFixture(t, 0)
	garbage := []byte("definitely not gzip")

	_, err := svc.Extract(context.Background(), BulkUpload{Filename: "a.tar.gz", Size: int64(len(garbage)), Content: bytes.NewReader(garbage)})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidArchive.Code, appErrors.FromError(err).Code)
}

func TestExtractionServiceTruncatedArchiveAborts(t *testing.T) {
	svc, dir := newExtractionFixture(t, 0)
	raw := tarBytes(t,
		tarItem{name: "first.jpg", body: "ok"},
		tarItem{name: "second.jpg", body: string(bytes.Repeat([]byte("0123456789"), 2000))},
	)
	// first header and block, second header, then part of the second body
	data := gzipBytes(t, raw[:3*512+100])

	_, err := svc.Extract(context.Background(), BulkUpload{Filename: "a.tgz", Size: int64(len(data)), Content: bytes.NewReader(data)})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInternal.Code, appErrors.FromError(err).Code)

	_, statErr := os.Stat(filepath.Join(dir, "first.jpg"))
	assert.NoError(t, statErr)
	_, statErr = os.Stat(filepath.Join(dir, "second.jpg"))
	assert.True(t, os.IsNotExist(statErr))
}
