// File: internal/filestorage/upload.go
package filestorage

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

// ErrUnsupportedType is returned for files outside the accepted set.
var ErrUnsupportedType = errors.New("unsupported file type or missing extension")

// TypePolicy maps accepted extensions to the content type they are stored with.
type TypePolicy map[string]string

var (
	// ReportTypes are the documents a country may submit.
	ReportTypes = TypePolicy{
		".pdf":  "application/pdf",
		".csv":  "text/csv",
		".xls":  "application/vnd.ms-excel",
		".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		".doc":  "application/msword",
		".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		".png":  "image/png",
		".jpg":  "image/jpeg",
		".jpeg": "image/jpeg",
	}
	// ImageTypes are accepted for profile images.
	ImageTypes = TypePolicy{
		".png":  "image/png",
		".jpg":  "image/jpeg",
		".jpeg": "image/jpeg",
		".gif":  "image/gif",
		".webp": "image/webp",
	}
)

// resolve picks the extension and content type for an upload, falling back to
// the declared Content-Type when the filename has no extension.
func (p TypePolicy) resolve(filename, declared string) (ext, contentType string, err error) {
	ext = strings.ToLower(filepath.Ext(filepath.Base(filename)))
	if ct, ok := p[ext]; ok {
		return ext, ct, nil
	}
	if ext == "" {
		declared = strings.ToLower(strings.TrimSpace(strings.SplitN(declared, ";", 2)[0]))
		for e, ct := range p {
			if ct == declared {
				if declared == "image/jpeg" {
					e = ".jpg"
				}
				return e, ct, nil
			}
		}
	}
	return "", "", fmt.Errorf("%w: %s", ErrUnsupportedType, filename)
}

// StoredObject describes a file written to an ObjectStore.
type StoredObject struct {
	Key         string
	URL         string
	ContentType string
	Size        int64
}

// ObjectKey builds "<prefix>/<slug(name)>-<uuid><ext>".
func ObjectKey(prefix, name, ext string) string {
	base := slug.Make(name)
	if base == "" {
		base = "file"
	}
	if len(base) > 60 {
		base = strings.Trim(base[:60], "-")
	}
	return path.Join(prefix, base+"-"+uuid.NewString()+ext)
}

// SaveUploadedFile validates a multipart file against policy, stores it under
// prefix and returns its durable URL.
func SaveUploadedFile(ctx context.Context, store ObjectStore, fileHeader *multipart.FileHeader, prefix, name string, policy TypePolicy) (*StoredObject, error) {
	if fileHeader == nil {
		return nil, fmt.Errorf("fileHeader cannot be nil")
	}
	ext, contentType, err := policy.resolve(fileHeader.Filename, fileHeader.Header.Get("Content-Type"))
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(name) == "" {
		name = strings.TrimSuffix(filepath.Base(fileHeader.Filename), filepath.Ext(fileHeader.Filename))
	}

	src, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	key := ObjectKey(prefix, name, ext)
	if err := store.Put(ctx, key, src, fileHeader.Size, contentType); err != nil {
		return nil, err
	}
	url, err := store.URL(ctx, key)
	if err != nil {
		_ = store.Delete(ctx, key)
		return nil, err
	}
	return &StoredObject{Key: key, URL: url, ContentType: contentType, Size: fileHeader.Size}, nil
}
