package handler

import (
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/memorial-gallery/internal/middleware"
	"github.com/noah-isme/memorial-gallery/internal/service"
	"github.com/noah-isme/memorial-gallery/pkg/logger"
	corsmiddleware "github.com/noah-isme/memorial-gallery/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/memorial-gallery/pkg/middleware/requestid"
)

const metadataBodyLimit int64 = 64 << 10

// RouterOptions carries the HTTP surface settings.
type RouterOptions struct {
	APIPrefix          string
	UploadsURLPrefix   string
	UploadsDir         string
	AllowedOrigins     []string
	MaxZipArchiveSize  int64
	MaxBulkArchiveSize int64
}

// RouterDeps are the collaborators mounted on the router.
type RouterDeps struct {
	Photos      *PhotoHandler
	Extraction  *ExtractionHandler
	Metrics     *MetricsHandler
	MetricsSvc  *service.MetricsService
	Credentials service.CredentialChecker
	Logger      *zap.Logger
}

// NewRouter builds the gin engine with middleware and every gallery route.
func NewRouter(opts RouterOptions, deps RouterDeps) *gin.Engine {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(log))
	r.Use(middleware.Metrics(deps.MetricsSvc))
	r.Use(corsmiddleware.New(opts.AllowedOrigins))

	if deps.Metrics != nil {
		r.GET("/health", deps.Metrics.Health)
		r.GET("/ready", deps.Metrics.Ready)
		r.GET("/metrics", deps.Metrics.Prometheus)
	}

	if opts.UploadsDir != "" {
		r.Static(normalizePrefix(opts.UploadsURLPrefix, "/uploads"), opts.UploadsDir)
	}

	api := r.Group(normalizePrefix(opts.APIPrefix, "/api"))
	photos := api.Group("/photos")
	requirePassword := middleware.UploadAuth(deps.Credentials)

	if deps.Photos != nil {
		photos.GET("", deps.Photos.List)
		photos.GET("/:id", deps.Photos.Get)
		photos.POST("/upload", requirePassword, middleware.BodyLimit(opts.MaxZipArchiveSize), deps.Photos.Upload)
		photos.POST("/metadata/:id", requirePassword, middleware.BodyLimit(metadataBodyLimit), deps.Photos.UpdateMetadata)
	}
	if deps.Extraction != nil {
		photos.POST("/extract", requirePassword, middleware.BodyLimit(opts.MaxBulkArchiveSize), deps.Extraction.Extract)
	}

	return r
}

func normalizePrefix(prefix, fallback string) string {
	trimmed := strings.Trim(prefix, "/")
	if trimmed == "" {
		return fallback
	}
	return "/" + trimmed
}
