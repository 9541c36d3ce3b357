// File: internal/filestorage/local.go
package filestorage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// LocalURLPrefix is the route the HTTP server serves local objects from.
const LocalURLPrefix = "/files"

// LocalStore keeps objects on disk under a base directory.
type LocalStore struct {
	storagePath   string
	publicBaseURL string
	logger        *zap.Logger
}

// NewLocalStore creates a LocalStore rooted at storagePath.
// publicBaseURL is the absolute URL the root is served from.
func NewLocalStore(storagePath, publicBaseURL string, logger *zap.Logger) (*LocalStore, error) {
	if storagePath == "" {
		return nil, fmt.Errorf("storage path cannot be empty")
	}
	if err := os.MkdirAll(storagePath, os.ModePerm); err != nil {
		logger.Error("Failed to create storage path directory", zap.String("path", storagePath), zap.Error(err))
		return nil, fmt.Errorf("failed to create storage path %s: %w", storagePath, err)
	}
	logger.Info("Local object store initialized", zap.String("storagePath", storagePath))
	return &LocalStore{storagePath: storagePath, publicBaseURL: publicBaseURL, logger: logger}, nil
}

// Root returns the directory objects are written to.
func (s *LocalStore) Root() string {
	return s.storagePath
}

// Put writes the object to disk, replacing any previous content.
func (s *LocalStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	fullPath, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), os.ModePerm); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", key, err)
	}

	dst, err := os.Create(fullPath)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", fullPath, err)
	}
	defer dst.Close()

	if _, err = io.Copy(dst, r); err != nil {
		os.Remove(fullPath)
		return fmt.Errorf("failed to save file: %w", err)
	}

	s.logger.Debug("Object stored", zap.String("key", key), zap.Int64("size", size))
	return nil
}

// URL returns the public URL of key.
func (s *LocalStore) URL(ctx context.Context, key string) (string, error) {
	key, err := cleanKey(key)
	if err != nil {
		return "", err
	}
	return joinURL(s.publicBaseURL, key), nil
}

// Delete removes key. A missing object is not an error.
func (s *LocalStore) Delete(ctx context.Context, key string) error {
	fullPath, err := s.path(key)
	if err != nil {
		s.logger.Warn("Attempt to delete object with invalid key", zap.String("key", key))
		return err
	}
	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file %s: %w", fullPath, err)
	}
	return nil
}

func (s *LocalStore) path(key string) (string, error) {
	key, err := cleanKey(key)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.storagePath, filepath.FromSlash(key)), nil
}
