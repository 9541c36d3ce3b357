// File: internal/filestorage/store.go
package filestorage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"ecowas_fisheries_backend/internal/config"

	"go.uber.org/zap"
)

// ObjectStore stores binary objects and hands out durable URLs for them.
type ObjectStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	URL(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
}

// NewObjectStore builds the store selected by STORAGE_DRIVER.
func NewObjectStore(cfg *config.Config, logger *zap.Logger) (ObjectStore, error) {
	switch cfg.StorageDriver {
	case "minio":
		return NewMinioStore(MinioOptions{
			Endpoint:      cfg.MinioEndpoint,
			AccessKey:     cfg.MinioAccessKey,
			SecretKey:     cfg.MinioSecretKey,
			Bucket:        cfg.MinioBucket,
			UseSSL:        cfg.MinioUseSSL,
			PublicBaseURL: cfg.MinioPublicBaseURL,
		}, logger)
	case "local", "":
		return NewLocalStore(cfg.StorageLocalPath, cfg.PublicBaseURL+LocalURLPrefix, logger)
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.StorageDriver)
	}
}

// cleanKey rejects keys that would escape the store root.
func cleanKey(key string) (string, error) {
	key = strings.TrimLeft(strings.TrimSpace(key), "/")
	if key == "" {
		return "", fmt.Errorf("object key cannot be empty")
	}
	for _, part := range strings.Split(key, "/") {
		if part == ".." || part == "." {
			return "", fmt.Errorf("invalid object key %q", key)
		}
	}
	return key, nil
}

func joinURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + key
}
