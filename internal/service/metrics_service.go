package service

import (
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/memorial-gallery/internal/models"
)

// MetricsService encapsulates Prometheus instrumentation and provides lightweight snapshots for the health endpoint.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheLatency    prometheus.Observer
	cacheWrite      prometheus.Observer
	cacheHitRatio   prometheus.Gauge
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	dbQueryDuration *prometheus.HistogramVec

	photosIngested   prometheus.Counter
	entriesSkipped   *prometheus.CounterVec
	ingestDuration   prometheus.Observer
	bulkFiles        prometheus.Counter
	bulkBytes        prometheus.Counter
	bulkFailures     prometheus.Counter
	archivesRejected *prometheus.CounterVec

	cacheHitCount        uint64
	cacheMissCount       uint64
	requestCount         uint64
	requestDurationTotal uint64
	dbQueryCount         uint64
	dbQueryDurationTotal uint64
	photosIngestedCount  uint64
	bulkFilesCount       uint64
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	cacheLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_latency_seconds",
		Help:    "Latency for cache operations",
		Buckets: prometheus.DefBuckets,
	})

	cacheWrite := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_write_seconds",
		Help:    "Latency for cache set operations",
		Buckets: prometheus.DefBuckets,
	})

	cacheHitRatio := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cache_hit_ratio",
		Help: "Ratio of cache hits to total cache lookups",
	})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total cache misses",
	})

	dbQueryDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "db_query_duration_seconds",
		Help:    "Duration of database queries",
		Buckets: prometheus.DefBuckets,
	}, []string{"query"})

	photosIngested := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "gallery_photos_ingested_total",
		Help: "Photos created from uploaded ZIP archives",
	})

	entriesSkipped := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gallery_archive_entries_skipped_total",
		Help: "Archive entries skipped during ingestion or extraction",
	}, []string{"archive", "reason"})

	ingestDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "gallery_ingest_duration_seconds",
		Help:    "Time spent ingesting one ZIP archive",
		Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
	})

	bulkFiles := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "gallery_bulk_files_extracted_total",
		Help: "Files written by tar.gz bulk extraction",
	})

	bulkBytes := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "gallery_bulk_bytes_extracted_total",
		Help: "Bytes written by tar.gz bulk extraction",
	})

	bulkFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "gallery_bulk_extractions_failed_total",
		Help: "Bulk extractions aborted by a read or write failure",
	})

	archivesRejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gallery_archives_rejected_total",
		Help: "Uploaded archives rejected before or during processing",
	}, []string{"archive", "code"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, cacheLatency, cacheWrite, cacheHitRatio, cacheHits, cacheMisses, dbQueryDuration,
		photosIngested, entriesSkipped, ingestDuration, bulkFiles, bulkBytes, bulkFailures, archivesRejected, goroutines)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:         registry,
		handler:          handler,
		requestDuration:  requestDuration,
		requestTotal:     requestTotal,
		cacheLatency:     cacheLatency,
		cacheWrite:       cacheWrite,
		cacheHitRatio:    cacheHitRatio,
		cacheHits:        cacheHits,
		cacheMisses:      cacheMisses,
		dbQueryDuration:  dbQueryDuration,
		photosIngested:   photosIngested,
		entriesSkipped:   entriesSkipped,
		ingestDuration:   ingestDuration,
		bulkFiles:        bulkFiles,
		bulkBytes:        bulkBytes,
		bulkFailures:     bulkFailures,
		archivesRejected: archivesRejected,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics and aggregates simple stats for snapshots.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
	atomic.AddUint64(&m.requestCount, 1)
	atomic.AddUint64(&m.requestDurationTotal, uint64(duration.Nanoseconds()))
}

// RecordCacheOperation records cache hit/miss metrics and updates hit ratio.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	if m.cacheLatency != nil {
		m.cacheLatency.Observe(duration.Seconds())
	}
	if hit {
		m.cacheHits.Inc()
		atomic.AddUint64(&m.cacheHitCount, 1)
	} else {
		m.cacheMisses.Inc()
		atomic.AddUint64(&m.cacheMissCount, 1)
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	total := hits + misses
	if total > 0 {
		m.cacheHitRatio.Set(float64(hits) / float64(total))
	}
}

// ObserveCacheWrite tracks the duration for cache write operations.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil || m.cacheWrite == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// ObserveDBQuery records database query timing.
func (m *MetricsService) ObserveDBQuery(label string, duration time.Duration) {
	if m == nil {
		return
	}
	m.dbQueryDuration.WithLabelValues(label).Observe(duration.Seconds())
	atomic.AddUint64(&m.dbQueryCount, 1)
	atomic.AddUint64(&m.dbQueryDurationTotal, uint64(duration.Nanoseconds()))
}

// RecordIngestion records one completed ZIP ingestion.
func (m *MetricsService) RecordIngestion(photos int, duration time.Duration) {
	if m == nil {
		return
	}
	m.photosIngested.Add(float64(photos))
	m.ingestDuration.Observe(duration.Seconds())
	atomic.AddUint64(&m.photosIngestedCount, uint64(photos))
}

// RecordSkippedEntry counts an archive entry passed over. kind is "zip" or "targz".
func (m *MetricsService) RecordSkippedEntry(kind, reason string) {
	if m == nil {
		return
	}
	m.entriesSkipped.WithLabelValues(kind, reason).Inc()
}

// RecordRejectedArchive counts an archive refused with the given error code.
func (m *MetricsService) RecordRejectedArchive(kind, code string) {
	if m == nil {
		return
	}
	m.archivesRejected.WithLabelValues(kind, code).Inc()
}

// RecordExtraction records the outcome of one bulk extraction.
func (m *MetricsService) RecordExtraction(files int, bytes int64, failed bool) {
	if m == nil {
		return
	}
	m.bulkFiles.Add(float64(files))
	m.bulkBytes.Add(float64(bytes))
	atomic.AddUint64(&m.bulkFilesCount, uint64(files))
	if failed {
		m.bulkFailures.Inc()
	}
}

// Snapshot returns aggregated metrics suitable for the health endpoint.
func (m *MetricsService) Snapshot() models.SystemMetrics {
	if m == nil {
		return models.SystemMetrics{}
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	requests := atomic.LoadUint64(&m.requestCount)
	reqDuration := atomic.LoadUint64(&m.requestDurationTotal)
	dbCount := atomic.LoadUint64(&m.dbQueryCount)
	dbDuration := atomic.LoadUint64(&m.dbQueryDurationTotal)

	var cacheRatio float64
	totalLookups := hits + misses
	if totalLookups > 0 {
		cacheRatio = float64(hits) / float64(totalLookups)
	}

	var avgRequestMs float64
	if requests > 0 {
		avgRequestMs = float64(reqDuration) / float64(requests) / float64(time.Millisecond)
	}

	var avgDBMs float64
	if dbCount > 0 {
		avgDBMs = float64(dbDuration) / float64(dbCount) / float64(time.Millisecond)
	}

	return models.SystemMetrics{
		CacheHitRatio:            cacheRatio,
		CacheHits:                hits,
		CacheMisses:              misses,
		RequestsTotal:            requests,
		AverageRequestDurationMs: avgRequestMs,
		DBQueryCount:             dbCount,
		AverageDBQueryDurationMs: avgDBMs,
		PhotosIngested:           atomic.LoadUint64(&m.photosIngestedCount),
		BulkFilesExtracted:       atomic.LoadUint64(&m.bulkFilesCount),
		Goroutines:               runtime.NumGoroutine(),
		GeneratedAt:              time.Now().UTC(),
	}
}
