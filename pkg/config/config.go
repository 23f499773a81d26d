package config

import (
	"errors"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/docker/go-units"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database   DatabaseConfig
	Redis      RedisConfig
	CORS       CORSConfig
	Log        LogConfig
	Storage    StorageConfig
	Upload     UploadConfig
	Bulk       BulkConfig
	Pagination PaginationConfig
	Cache      CacheConfig
}

type DatabaseConfig struct {
	URL          string
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	AutoMigrate  bool
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// StorageConfig locates the uploads directory and its public URL prefix.
type StorageConfig struct {
	BasePath   string
	UploadsDir string
	URLPrefix  string
}

// UploadConfig controls ZIP photo ingestion.
type UploadConfig struct {
	Password       string
	PasswordHash   string
	MaxArchiveSize int64
	MaxFileSize    int64
}

// BulkConfig controls tar.gz bulk extraction.
type BulkConfig struct {
	Dir            string
	MaxArchiveSize int64
}

// PaginationConfig bounds listing page sizes.
type PaginationConfig struct {
	DefaultPageSize int
	MaxPageSize     int
}

// CacheConfig toggles the Redis-backed listing cache.
type CacheConfig struct {
	Enabled bool
	TTL     time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		URL:          sanitizeURL(v.GetString("DATABASE_URL")),
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
		AutoMigrate:  v.GetBool("DB_AUTO_MIGRATE"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	basePath := v.GetString("STORAGE_PATH")
	cfg.Storage = StorageConfig{
		BasePath:   basePath,
		UploadsDir: filepath.Join(basePath, "uploads"),
		URLPrefix:  "/" + strings.Trim(v.GetString("UPLOADS_URL_PREFIX"), "/"),
	}

	cfg.Upload = UploadConfig{
		Password:       v.GetString("UPLOAD_PASSWORD"),
		PasswordHash:   v.GetString("UPLOAD_PASSWORD_HASH"),
		MaxArchiveSize: parseSize(v.GetString("UPLOAD_MAX_ARCHIVE_SIZE"), 100*units.MiB),
		MaxFileSize:    parseSize(v.GetString("UPLOAD_MAX_FILE_SIZE"), 10*units.MiB),
	}

	bulkDir := v.GetString("BULK_EXTRACT_DIR")
	if bulkDir == "" {
		bulkDir = cfg.Storage.UploadsDir
	}
	cfg.Bulk = BulkConfig{
		Dir:            bulkDir,
		MaxArchiveSize: parseSize(v.GetString("BULK_MAX_ARCHIVE_SIZE"), 5*units.GiB),
	}

	cfg.Pagination = PaginationConfig{
		DefaultPageSize: v.GetInt("PAGINATION_DEFAULT_PAGE_SIZE"),
		MaxPageSize:     v.GetInt("PAGINATION_MAX_PAGE_SIZE"),
	}

	cfg.Cache = CacheConfig{
		Enabled: v.GetBool("ENABLE_GALLERY_CACHE"),
		TTL:     parseDuration(v.GetString("GALLERY_CACHE_TTL"), 2*time.Minute),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 5000)
	v.SetDefault("API_PREFIX", "/api")

	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "memorial_gallery")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_AUTO_MIGRATE", true)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("ENABLE_GALLERY_CACHE", false)
	v.SetDefault("GALLERY_CACHE_TTL", "2m")

	v.SetDefault("ALLOWED_ORIGINS", "http://localhost:3000,https://localhost:3001")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("STORAGE_PATH", "./wwwroot")
	v.SetDefault("UPLOADS_URL_PREFIX", "/uploads")
	v.SetDefault("UPLOAD_PASSWORD", "")
	v.SetDefault("UPLOAD_PASSWORD_HASH", "")
	v.SetDefault("UPLOAD_MAX_ARCHIVE_SIZE", "100MiB")
	v.SetDefault("UPLOAD_MAX_FILE_SIZE", "10MiB")
	v.SetDefault("BULK_EXTRACT_DIR", "")
	v.SetDefault("BULK_MAX_ARCHIVE_SIZE", "5GiB")

	v.SetDefault("PAGINATION_DEFAULT_PAGE_SIZE", 24)
	v.SetDefault("PAGINATION_MAX_PAGE_SIZE", 100)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

// parseSize accepts binary human sizes ("10MiB", "5GB" is read as 5GiB) or plain byte counts.
func parseSize(raw string, fallback int64) int64 {
	if strings.TrimSpace(raw) == "" {
		return fallback
	}
	size, err := units.RAMInBytes(raw)
	if err != nil || size <= 0 {
		return fallback
	}
	return size
}

// sanitizeURL strips stray whitespace and newlines that hosting dashboards tend to paste in.
func sanitizeURL(raw string) string {
	raw = strings.ReplaceAll(raw, "\n", "")
	raw = strings.ReplaceAll(raw, "\r", "")
	return strings.TrimSpace(raw)
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
