// File: internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	// Server Configuration
	GinMode       string        `mapstructure:"GIN_MODE"`
	ServerHost    string        `mapstructure:"SERVER_HOST"`
	ServerPort    string        `mapstructure:"SERVER_PORT"`
	ServerTimeout time.Duration `mapstructure:"SERVER_TIMEOUT_SECONDS"`
	PublicBaseURL string        `mapstructure:"PUBLIC_BASE_URL"`

	// Database Configuration
	DBDriver          string        `mapstructure:"DB_DRIVER"`
	DBHost            string        `mapstructure:"DB_HOST"`
	DBPort            string        `mapstructure:"DB_PORT"`
	DBUser            string        `mapstructure:"DB_USER"`
	DBPassword        string        `mapstructure:"DB_PASSWORD"`
	DBName            string        `mapstructure:"DB_NAME"`
	DBSSLMode         string        `mapstructure:"DB_SSL_MODE"`
	DBTimezone        string        `mapstructure:"DB_TIMEZONE"`
	DBMaxIdleConns    int           `mapstructure:"DB_MAX_IDLE_CONNS"`
	DBMaxOpenConns    int           `mapstructure:"DB_MAX_OPEN_CONNS"`
	DBConnMaxLifetime time.Duration `mapstructure:"DB_CONN_MAX_LIFETIME_MINUTES"`
	DBSQLitePath      string        `mapstructure:"DB_SQLITE_PATH"`

	// Logging Configuration
	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`

	// Firebase Configuration
	FirebaseServiceAccountKeyPath string `mapstructure:"FIREBASE_SERVICE_ACCOUNT_KEY_PATH"`
	FirebaseProjectID             string `mapstructure:"FIREBASE_PROJECT_ID"`
	FirebaseWebAPIKey             string `mapstructure:"FIREBASE_WEB_API_KEY"`
	FirebaseAuthBaseURL           string `mapstructure:"FIREBASE_AUTH_BASE_URL"`
	PushEnabled                   bool   `mapstructure:"PUSH_ENABLED"`

	// Email
	EmailDriver          string `mapstructure:"EMAIL_DRIVER"`
	SendGridAPIKey       string `mapstructure:"SENDGRID_API_KEY"`
	EmailFromName        string `mapstructure:"EMAIL_FROM_NAME"`
	EmailFromAddress     string `mapstructure:"EMAIL_FROM_ADDRESS"`
	EmailFallbackAddress string `mapstructure:"EMAIL_FALLBACK_ADDRESS"`

	// Object storage
	StorageDriver      string `mapstructure:"STORAGE_DRIVER"`
	StorageLocalPath   string `mapstructure:"STORAGE_LOCAL_PATH"`
	MinioEndpoint      string `mapstructure:"MINIO_ENDPOINT"`
	MinioAccessKey     string `mapstructure:"MINIO_ACCESS_KEY"`
	MinioSecretKey     string `mapstructure:"MINIO_SECRET_KEY"`
	MinioBucket        string `mapstructure:"MINIO_BUCKET"`
	MinioUseSSL        bool   `mapstructure:"MINIO_USE_SSL"`
	MinioPublicBaseURL string `mapstructure:"MINIO_PUBLIC_BASE_URL"`
	MaxUploadSizeMB    int64  `mapstructure:"MAX_UPLOAD_SIZE_MB"`

	// Rate limiting
	RedisAddr          string `mapstructure:"REDIS_ADDR"`
	RedisPassword      string `mapstructure:"REDIS_PASSWORD"`
	RateLimitPerMinute int    `mapstructure:"RATE_LIMIT_PER_MINUTE"`

	// Elasticsearch Configuration
	ElasticsearchURL string `mapstructure:"ELASTICSEARCH_URL"`

	// Sessions
	SessionCacheTTL time.Duration `mapstructure:"SESSION_CACHE_TTL_MINUTES"`

	// Cron Jobs
	PendingReviewJobSchedule string        `mapstructure:"PENDING_REVIEW_JOB_SCHEDULE"`
	PendingReviewAge         time.Duration `mapstructure:"PENDING_REVIEW_AGE_HOURS"`
}

// Load attempts to load configuration from a .env file (if present) and environment variables.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	cfg, err := load(viper.New())
	if err != nil {
		return nil, err
	}

	// Basic validation for critical configs
	if strings.TrimSpace(cfg.FirebaseServiceAccountKeyPath) == "" {
		return nil, fmt.Errorf("FATAL: FIREBASE_SERVICE_ACCOUNT_KEY_PATH is not set. This is required for Firebase Admin SDK initialization")
	}
	if _, err := os.Stat(cfg.FirebaseServiceAccountKeyPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("FATAL: Firebase service account key file specified in FIREBASE_SERVICE_ACCOUNT_KEY_PATH (%s) not found", cfg.FirebaseServiceAccountKeyPath)
	}
	return cfg, nil
}

func load(v *viper.Viper) (*Config, error) {
	setDefaults(v)
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling configuration: %w", err)
	}

	// Convert duration fields
	cfg.ServerTimeout = time.Duration(v.GetInt("SERVER_TIMEOUT_SECONDS")) * time.Second
	cfg.DBConnMaxLifetime = time.Duration(v.GetInt("DB_CONN_MAX_LIFETIME_MINUTES")) * time.Minute
	cfg.SessionCacheTTL = time.Duration(v.GetInt("SESSION_CACHE_TTL_MINUTES")) * time.Minute
	cfg.PendingReviewAge = time.Duration(v.GetInt("PENDING_REVIEW_AGE_HOURS")) * time.Hour

	cfg.DBDriver = strings.ToLower(strings.TrimSpace(cfg.DBDriver))
	cfg.EmailDriver = strings.ToLower(strings.TrimSpace(cfg.EmailDriver))
	cfg.StorageDriver = strings.ToLower(strings.TrimSpace(cfg.StorageDriver))
	cfg.PublicBaseURL = strings.TrimRight(cfg.PublicBaseURL, "/")

	switch cfg.DBDriver {
	case "postgres", "sqlite":
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
	switch cfg.EmailDriver {
	case "console":
	case "sendgrid":
		if cfg.SendGridAPIKey == "" {
			return nil, fmt.Errorf("SENDGRID_API_KEY is required when EMAIL_DRIVER=sendgrid")
		}
	default:
		return nil, fmt.Errorf("unsupported EMAIL_DRIVER %q", cfg.EmailDriver)
	}
	switch cfg.StorageDriver {
	case "local":
	case "minio":
		if cfg.MinioEndpoint == "" || cfg.MinioBucket == "" {
			return nil, fmt.Errorf("MINIO_ENDPOINT and MINIO_BUCKET are required when STORAGE_DRIVER=minio")
		}
		// Stored file URLs never expire, so the bucket must be readable at a fixed address.
		if cfg.MinioPublicBaseURL == "" {
			return nil, fmt.Errorf("MINIO_PUBLIC_BASE_URL is required when STORAGE_DRIVER=minio")
		}
	default:
		return nil, fmt.Errorf("unsupported STORAGE_DRIVER %q", cfg.StorageDriver)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_TIMEOUT_SECONDS", 30)
	v.SetDefault("PUBLIC_BASE_URL", "http://localhost:8080")

	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "password")
	v.SetDefault("DB_NAME", "ecowas_fisheries_db")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_TIMEZONE", "UTC")
	v.SetDefault("DB_MAX_IDLE_CONNS", 10)
	v.SetDefault("DB_MAX_OPEN_CONNS", 100)
	v.SetDefault("DB_CONN_MAX_LIFETIME_MINUTES", 60)
	v.SetDefault("DB_SQLITE_PATH", "fisheries.db")

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")

	// Firebase
	v.SetDefault("FIREBASE_PROJECT_ID", "") // Optional
	v.SetDefault("FIREBASE_SERVICE_ACCOUNT_KEY_PATH", "")
	v.SetDefault("FIREBASE_WEB_API_KEY", "")
	v.SetDefault("FIREBASE_AUTH_BASE_URL", "https://identitytoolkit.googleapis.com")
	v.SetDefault("PUSH_ENABLED", true)

	v.SetDefault("EMAIL_DRIVER", "console")
	v.SetDefault("SENDGRID_API_KEY", "")
	v.SetDefault("EMAIL_FROM_NAME", "ECOWAS Fisheries Dashboard")
	v.SetDefault("EMAIL_FROM_ADDRESS", "no-reply@ecowas-fisheries.org")
	v.SetDefault("EMAIL_FALLBACK_ADDRESS", "data-desk@ecowas-fisheries.org")

	v.SetDefault("STORAGE_DRIVER", "local")
	v.SetDefault("STORAGE_LOCAL_PATH", "./uploads")
	v.SetDefault("MINIO_ENDPOINT", "")
	v.SetDefault("MINIO_ACCESS_KEY", "")
	v.SetDefault("MINIO_SECRET_KEY", "")
	v.SetDefault("MINIO_BUCKET", "")
	v.SetDefault("MINIO_USE_SSL", false)
	v.SetDefault("MINIO_PUBLIC_BASE_URL", "")
	v.SetDefault("MAX_UPLOAD_SIZE_MB", 25)

	v.SetDefault("REDIS_ADDR", "") // Empty disables rate limiting
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("RATE_LIMIT_PER_MINUTE", 30)

	v.SetDefault("ELASTICSEARCH_URL", "") // Empty disables report search

	v.SetDefault("SESSION_CACHE_TTL_MINUTES", 15)

	v.SetDefault("PENDING_REVIEW_JOB_SCHEDULE", "@daily")
	v.SetDefault("PENDING_REVIEW_AGE_HOURS", 48)
}

// MaxUploadBytes returns the upload size limit in bytes.
func (c *Config) MaxUploadBytes() int64 {
	if c.MaxUploadSizeMB <= 0 {
		return 25 << 20
	}
	return c.MaxUploadSizeMB << 20
}
