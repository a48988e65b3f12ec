package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/vkadlec/photogate/internal/model"
)

// ErrBothTiersFailed is returned when neither tier accepted the write. It is
// the only fatal outcome of storing an upload.
var ErrBothTiersFailed = errors.New("both storage tiers failed")

// Writer persists uploads, preferring the primary tier and falling back to
// the local tier on any primary failure. Uploads must never be dropped
// because of a transient remote-storage misconfiguration.
type Writer struct {
	primary  ObjectStore
	fallback ObjectStore
}

// NewWriter builds a Writer over the two tiers.
func NewWriter(primary, fallback ObjectStore) *Writer {
	return &Writer{primary: primary, fallback: fallback}
}

// Store writes the bytes under a fresh unique key and reports which backend
// holds them. Every primary failure, whatever the cause, takes the fallback
// path; the fallback write gets its own fresh key under the same naming
// scheme.
func (w *Writer) Store(ctx context.Context, data []byte, filename string) (*Result, error) {
	contentType := ContentTypeForFilename(filename)

	key := NewKey(filename)
	uri, primaryErr := w.primary.Put(ctx, key, data, contentType)
	if primaryErr == nil {
		return &Result{Key: key, URI: uri, Backend: model.BackendPrimary}, nil
	}

	slog.Warn("primary storage write failed, using fallback",
		"key", key, "error", primaryErr)

	fallbackKey := NewKey(filename)
	uri, fallbackErr := w.fallback.Put(ctx, fallbackKey, data, contentType)
	if fallbackErr != nil {
		return nil, fmt.Errorf("%w: primary: %v; fallback: %v",
			ErrBothTiersFailed, primaryErr, fallbackErr)
	}

	return &Result{Key: fallbackKey, URI: uri, Backend: model.BackendFallback}, nil
}

// Remove deletes stored bytes from whichever tier holds them.
func (w *Writer) Remove(ctx context.Context, key string, backend model.StorageBackend) error {
	switch backend {
	case model.BackendFallback:
		return w.fallback.Remove(ctx, key)
	default:
		return w.primary.Remove(ctx, key)
	}
}
