package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/memorial-gallery/api/swagger"
	"github.com/noah-isme/memorial-gallery/internal/handler"
	"github.com/noah-isme/memorial-gallery/internal/repository"
	"github.com/noah-isme/memorial-gallery/internal/service"
	"github.com/noah-isme/memorial-gallery/pkg/cache"
	"github.com/noah-isme/memorial-gallery/pkg/config"
	"github.com/noah-isme/memorial-gallery/pkg/database"
	"github.com/noah-isme/memorial-gallery/pkg/logger"
	"github.com/noah-isme/memorial-gallery/pkg/pagination"
	"github.com/noah-isme/memorial-gallery/pkg/storage"
)

// @title Memorial Gallery API
// @version 1.0.0
// @description Photo gallery backend: paginated browsing, ZIP photo ingestion and tar.gz bulk extraction.
// @BasePath /
// @schemes http https

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if err := run(cfg, logr); err != nil {
		logr.Fatal("server failed", zap.Error(err))
	}
}

func run(cfg *config.Config, logr *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(cfg.Database, logr); err != nil {
			return fmt.Errorf("migrate database: %w", err)
		}
	}
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	uploads, err := storage.NewLocalStorage(cfg.Storage.UploadsDir)
	if err != nil {
		return fmt.Errorf("prepare uploads directory: %w", err)
	}
	bulk, err := storage.NewLocalStorage(cfg.Bulk.Dir)
	if err != nil {
		return fmt.Errorf("prepare bulk directory: %w", err)
	}

	metrics := service.NewMetricsService()

	cacheRepo := repository.NewCacheRepository(nil, logr)
	if cfg.Cache.Enabled {
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, listing cache disabled", zap.Error(err))
		} else {
			cacheRepo = repository.NewCacheRepository(client, logr)
		}
	}
	defer cacheRepo.Close() //nolint:errcheck
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Cache.TTL, logr, cfg.Cache.Enabled)

	photoRepo := repository.NewPhotoRepository(db)
	photoSvc := service.NewPhotoService(photoRepo, cacheSvc, metrics, pagination.Config{
		DefaultPageSize: cfg.Pagination.DefaultPageSize,
		MaxPageSize:     cfg.Pagination.MaxPageSize,
	}, validator.New(), logr)
	uploadSvc := service.NewUploadService(photoRepo, uploads, service.NewPhotoBuilder(cfg.Storage.URLPrefix), cacheSvc, metrics, service.UploadOptions{
		MaxArchiveSize: cfg.Upload.MaxArchiveSize,
		MaxFileSize:    cfg.Upload.MaxFileSize,
	}, logr)
	extractionSvc := service.NewExtractionService(bulk, metrics, cfg.Bulk.MaxArchiveSize, logr)

	router := handler.NewRouter(handler.RouterOptions{
		APIPrefix:          cfg.APIPrefix,
		UploadsURLPrefix:   cfg.Storage.URLPrefix,
		UploadsDir:         uploads.BaseDir(),
		AllowedOrigins:     cfg.CORS.AllowedOrigins,
		MaxZipArchiveSize:  cfg.Upload.MaxArchiveSize,
		MaxBulkArchiveSize: cfg.Bulk.MaxArchiveSize,
	}, handler.RouterDeps{
		Photos:      handler.NewPhotoHandler(photoSvc, uploadSvc),
		Extraction:  handler.NewExtractionHandler(extractionSvc),
		Metrics:     handler.NewMetricsHandler(metrics, database.NewReadinessChecker(db), logr),
		MetricsSvc:  metrics,
		Credentials: service.NewCredentialChecker(cfg.Upload, logr),
		Logger:      logr,
	})

	if cfg.Env != config.EnvProduction {
		router.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logr.Info("server starting",
			zap.String("addr", srv.Addr),
			zap.String("env", cfg.Env),
			zap.String("uploads_dir", uploads.BaseDir()),
			zap.String("bulk_dir", bulk.BaseDir()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
