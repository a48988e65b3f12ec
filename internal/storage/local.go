package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore is the fallback tier: a flat directory on the local filesystem,
// served by the web layer under baseURL.
type LocalStore struct {
	dir     string
	baseURL string
}

// NewLocalStore creates the directory if needed.
func NewLocalStore(dir, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload directory: %w", err)
	}
	return &LocalStore{
		dir:     dir,
		baseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

// Dir returns the backing directory, for serving static files.
func (l *LocalStore) Dir() string {
	return l.dir
}

// path resolves a key inside the store directory. Keys are generated
// internally but filepath.Base guards against traversal anyway.
func (l *LocalStore) path(key string) string {
	return filepath.Join(l.dir, filepath.Base(key))
}

// Put writes the object to disk and returns its serving URI.
func (l *LocalStore) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	if err := os.WriteFile(l.path(key), data, 0o644); err != nil {
		return "", fmt.Errorf("write object: %w", err)
	}
	return l.baseURL + "/" + filepath.Base(key), nil
}

// Get reads the object bytes from disk.
func (l *LocalStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(l.path(key))
	if err != nil {
		return nil, fmt.Errorf("read object: %w", err)
	}
	return data, nil
}

// Remove deletes the object file.
func (l *LocalStore) Remove(ctx context.Context, key string) error {
	if err := os.Remove(l.path(key)); err != nil {
		return fmt.Errorf("remove object: %w", err)
	}
	return nil
}
