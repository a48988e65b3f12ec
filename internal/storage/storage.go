// Package storage persists uploaded image bytes across a primary remote
// object store and a local filesystem fallback.
package storage

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/vkadlec/photogate/internal/model"
)

// ObjectStore is one storage tier. Put returns the URI at which the stored
// object can be reached.
type ObjectStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Get(ctx context.Context, key string) ([]byte, error)
	Remove(ctx context.Context, key string) error
}

// Result records where one upload ended up. It is produced exactly once per
// upload and never modified afterward.
type Result struct {
	Key     string
	URI     string
	Backend model.StorageBackend
}

// contentTypes maps known extensions to their content type; anything else is
// stored as a generic binary blob.
var contentTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".heic": "image/heic",
	".heif": "image/heif",
}

// ContentTypeForFilename infers a content type from the filename extension.
func ContentTypeForFilename(filename string) string {
	if ct, ok := contentTypes[strings.ToLower(filepath.Ext(filename))]; ok {
		return ct
	}
	return "application/octet-stream"
}

// NewKey derives a globally unique storage key preserving the original
// file extension.
func NewKey(filename string) string {
	return uuid.NewString() + strings.ToLower(filepath.Ext(filename))
}
