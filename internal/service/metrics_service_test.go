package service

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsServiceIngestionCounters(t *testing.T) {
	m := NewMetricsService()
	m.RecordIngestion(3, 200*time.Millisecond)
	m.RecordSkippedEntry("zip", "extension")
	m.RecordSkippedEntry("zip", "extension")
	m.RecordExtraction(5, 1024, false)
	m.RecordRejectedArchive("zip", "INVALID_ARCHIVE")

	body := scrape(t, m)
	assert.Contains(t, body, "gallery_photos_ingested_total 3")
	assert.Contains(t, body, `gallery_archive_entries_skipped_total{archive="zip",reason="extension"} 2`)
	assert.Contains(t, body, "gallery_bulk_bytes_extracted_total 1024")
	assert.Contains(t, body, `gallery_archives_rejected_total{archive="zip",code="INVALID_ARCHIVE"} 1`)

	snap := m.Snapshot()
	assert.Equal(t, uint64(3), snap.PhotosIngested)
	assert.Equal(t, uint64(5), snap.BulkFilesExtracted)
}

func TestMetricsServiceHandler(t *testing.T) {
	m := NewMetricsService()
	m.ObserveHTTPRequest(http.MethodGet, "/api/photos", http.StatusOK, 5*time.Millisecond)

	body := scrape(t, m)
	assert.Contains(t, body, `http_requests_total{method="GET",path="/api/photos",status="200"} 1`)
	assert.Contains(t, body, "gallery_photos_ingested_total")

	var nilMetrics *MetricsService
	nilMetrics.RecordIngestion(1, time.Second)
	w := httptest.NewRecorder()
	nilMetrics.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func scrape(t *testing.T, m *MetricsService) string {
	t.Helper()
	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	return w.Body.String()
}
