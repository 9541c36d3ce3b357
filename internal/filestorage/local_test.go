// File: internal/filestorage/local_test.go
package filestorage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testBaseURL = "http://localhost:8080/files"

func setupLocalStore(t *testing.T) *LocalStore {
	store, err := NewLocalStore(t.TempDir(), testBaseURL, zap.NewNop())
	require.NoError(t, err)
	return store
}

// newTestFileHeader builds a multipart.FileHeader the way gin would parse it.
func newTestFileHeader(t *testing.T, fieldname, filename, content, contentType string) *multipart.FileHeader {
	body := new(bytes.Buffer)
	writer := multipart.NewWriter(body)

	partHeader := make(textproto.MIMEHeader)
	partHeader.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, fieldname, filename))
	if contentType != "" {
		partHeader.Set("Content-Type", contentType)
	}

	part, err := writer.CreatePart(partHeader)
	require.NoError(t, err)
	_, err = io.Copy(part, strings.NewReader(content))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	reader := multipart.NewReader(body, writer.Boundary())
	form, err := reader.ReadForm(32 << 20)
	require.NoError(t, err)

	files := form.File[fieldname]
	require.NotEmpty(t, files, "No files found for fieldname %s", fieldname)
	return files[0]
}

func TestSaveUploadedFile_Report(t *testing.T) {
	store := setupLocalStore(t)
	ctx := context.Background()
	fh := newTestFileHeader(t, "file", "catch_2021.xlsx", "sheet bytes", "application/octet-stream")

	obj, err := SaveUploadedFile(ctx, store, fh, "uploads/gh", "Monthly Catch Ghana", ReportTypes)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(obj.Key, "uploads/gh/monthly-catch-ghana-"))
	assert.True(t, strings.HasSuffix(obj.Key, ".xlsx"))
	assert.Equal(t, testBaseURL+"/"+obj.Key, obj.URL)
	assert.Equal(t, ReportTypes[".xlsx"], obj.ContentType)

	content, err := os.ReadFile(filepath.Join(store.Root(), filepath.FromSlash(obj.Key)))
	require.NoError(t, err)
	assert.Equal(t, "sheet bytes", string(content))
}

func TestSaveUploadedFile_UnsupportedType(t *testing.T) {
	store := setupLocalStore(t)
	fh := newTestFileHeader(t, "file", "payload.exe", "MZ", "application/octet-stream")

	_, err := SaveUploadedFile(context.Background(), store, fh, "uploads/gh", "x", ReportTypes)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestSaveUploadedFile_NoExtensionFallback(t *testing.T) {
	store := setupLocalStore(t)
	fh := newTestFileHeader(t, "file", "avatar", "png content", "image/png")

	obj, err := SaveUploadedFile(context.Background(), store, fh, "avatars", "", ImageTypes)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(obj.Key, ".png"))
	assert.True(t, strings.HasPrefix(obj.Key, "avatars/avatar-"))
}

func TestSaveUploadedFile_NilHeader(t *testing.T) {
	store := setupLocalStore(t)
	_, err := SaveUploadedFile(context.Background(), store, nil, "uploads", "x", ReportTypes)
	assert.EqualError(t, err, "fileHeader cannot be nil")
}

func TestLocalStore_Delete(t *testing.T) {
	store := setupLocalStore(t)
	ctx := context.Background()
	require.NoError(t, store.Put(ctx, "uploads/ng/a.pdf", strings.NewReader("pdf"), 3, "application/pdf"))

	require.NoError(t, store.Delete(ctx, "uploads/ng/a.pdf"))
	_, err := os.Stat(filepath.Join(store.Root(), "uploads", "ng", "a.pdf"))
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, store.Delete(ctx, "uploads/ng/missing.pdf"))
}

func TestLocalStore_RejectsPathTraversal(t *testing.T) {
	store := setupLocalStore(t)
	ctx := context.Background()

	err := store.Put(ctx, "../outside.txt", strings.NewReader("x"), 1, "text/plain")
	assert.Error(t, err)
	assert.Error(t, store.Delete(ctx, "uploads/../../outside.txt"))
	_, err = store.URL(ctx, "")
	assert.Error(t, err)
}

func TestObjectKey(t *testing.T) {
	key := ObjectKey("uploads/sn", "Rapport Pêche / Juin", ".pdf")
	assert.True(t, strings.HasPrefix(key, "uploads/sn/rapport-peche-juin-"), key)
	assert.True(t, strings.HasSuffix(key, ".pdf"))

	assert.True(t, strings.HasPrefix(ObjectKey("avatars", "???", ".png"), "avatars/file-"))
}
