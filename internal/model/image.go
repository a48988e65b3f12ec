// Package model contains the shared data types persisted and exchanged
// between the pipeline, the storage layer, and the web handlers.
package model

import "time"

// ImageStatus is the final validation verdict stored with every record.
type ImageStatus string

const (
	StatusValid   ImageStatus = "valid"
	StatusInvalid ImageStatus = "invalid"
)

// StorageBackend identifies which tier ultimately holds the image bytes.
type StorageBackend string

const (
	BackendPrimary  StorageBackend = "primary"
	BackendFallback StorageBackend = "fallback"
)

// ImageUpload is the raw input handed to the pipeline. It lives only for the
// duration of one request and is never persisted as-is.
type ImageUpload struct {
	Data     []byte
	MimeType string
	Filename string
	Size     int64
}

// ImageRecord is the persisted outcome of one upload. Status is final at
// creation time; there is no intermediate "processing" state visible to
// readers.
type ImageRecord struct {
	ID                string         `json:"id"`
	StorageKey        string         `json:"storageKey"`
	OriginalName      string         `json:"originalName"`
	MimeType          string         `json:"mimeType"`
	Size              int64          `json:"size"`
	LocationURI       string         `json:"locationURI"`
	Backend           StorageBackend `json:"backend"`
	Status            ImageStatus    `json:"status"`
	ValidationReasons []string       `json:"validationReasons,omitempty"`
	Fingerprint       string         `json:"fingerprint,omitempty"`
	CreatedAt         time.Time      `json:"createdAt"`
}
