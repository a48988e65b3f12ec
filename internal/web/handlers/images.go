package handlers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/vkadlec/photogate/internal/constants"
	"github.com/vkadlec/photogate/internal/model"
	"github.com/vkadlec/photogate/internal/pipeline"
	"github.com/vkadlec/photogate/internal/storage"
)

// ImageRepository is the persistence the handler needs; the PostgreSQL
// repository satisfies it, tests use an in-memory fake.
type ImageRepository interface {
	Create(ctx context.Context, rec *model.ImageRecord) error
	Get(ctx context.Context, id string) (*model.ImageRecord, error)
	List(ctx context.Context) ([]*model.ImageRecord, error)
	Delete(ctx context.Context, id string) error
}

// Ingestor runs the upload pipeline end to end.
type Ingestor interface {
	Ingest(ctx context.Context, upload model.ImageUpload) (*model.ImageRecord, *pipeline.Outcome, error)
}

// ObjectRemover deletes stored bytes from whichever tier holds them.
type ObjectRemover interface {
	Remove(ctx context.Context, key string, backend model.StorageBackend) error
}

// ImagesHandler handles the image upload and gallery endpoints.
type ImagesHandler struct {
	repo     ImageRepository
	ingestor Ingestor
	remover  ObjectRemover
}

// NewImagesHandler creates a new images handler.
func NewImagesHandler(repo ImageRepository, ingestor Ingestor, remover ObjectRemover) *ImagesHandler {
	return &ImagesHandler{
		repo:     repo,
		ingestor: ingestor,
		remover:  remover,
	}
}

// allowedUpload checks the declared MIME type and filename against the
// upload allow-list. Uploads outside it never reach the pipeline.
func allowedUpload(mimeType, filename string) bool {
	if constants.AllowedMIMETypes[strings.ToLower(mimeType)] {
		return true
	}
	return constants.AllowedExtensions[strings.ToLower(filepath.Ext(filename))]
}

// Upload accepts one multipart image, runs the validation pipeline, and
// persists the outcome. A stored-but-rejected image is a success with
// reasons, not an error: the system's job was to store and judge.
func (h *ImagesHandler) Upload(w http.ResponseWriter, r *http.Request) {
	// Headroom over the file limit covers the multipart envelope, so an
	// oversized file is reported as 413 rather than a parse failure.
	r.Body = http.MaxBytesReader(w, r.Body, constants.MaxUploadSize+1<<20)
	if err := r.ParseMultipartForm(constants.MaxUploadSize); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			respondError(w, http.StatusRequestEntityTooLarge, "image exceeds the 10 MiB limit")
			return
		}
		respondError(w, http.StatusBadRequest, "failed to parse multipart form")
		return
	}

	file, header, err := r.FormFile(constants.UploadFieldName)
	if err != nil {
		respondError(w, http.StatusBadRequest, "no image provided")
		return
	}
	defer file.Close()

	if header.Size > constants.MaxUploadSize {
		respondError(w, http.StatusRequestEntityTooLarge, "image exceeds the 10 MiB limit")
		return
	}

	mimeType := header.Header.Get("Content-Type")
	if !allowedUpload(mimeType, header.Filename) {
		respondError(w, http.StatusUnsupportedMediaType,
			"invalid file type, only JPEG, PNG, and HEIC formats are allowed")
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		respondError(w, http.StatusBadRequest, "failed to read image")
		return
	}

	record, outcome, err := h.ingestor.Ingest(r.Context(), model.ImageUpload{
		Data:     data,
		MimeType: mimeType,
		Filename: header.Filename,
		Size:     header.Size,
	})
	if err != nil {
		if errors.Is(err, storage.ErrBothTiersFailed) {
			slog.Error("upload could not be stored", "filename", sanitizeForLog(header.Filename), "error", err)
			respondError(w, http.StatusInternalServerError, "failed to store image")
			return
		}
		slog.Warn("upload could not be processed", "filename", sanitizeForLog(header.Filename), "error", err)
		respondError(w, http.StatusUnprocessableEntity, "we couldn't process this image")
		return
	}

	if err := h.repo.Create(r.Context(), record); err != nil {
		slog.Error("failed to persist image record", "id", record.ID, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to save image")
		return
	}

	slog.Info("image ingested",
		"id", record.ID, "status", record.Status, "backend", record.Backend,
		"reasons", len(outcome.Reasons))

	respondJSON(w, http.StatusCreated, record)
}

// List returns every image record, newest first.
func (h *ImagesHandler) List(w http.ResponseWriter, r *http.Request) {
	records, err := h.repo.List(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to fetch images")
		return
	}
	if records == nil {
		records = []*model.ImageRecord{}
	}
	respondJSON(w, http.StatusOK, records)
}

// Get returns a single image record.
func (h *ImagesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	record, err := h.repo.Get(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusNotFound, "image not found")
		return
	}
	respondJSON(w, http.StatusOK, record)
}

// Delete removes an image record together with its stored bytes, whichever
// tier holds them.
func (h *ImagesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	record, err := h.repo.Get(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusNotFound, "image not found")
		return
	}

	if err := h.remover.Remove(r.Context(), record.StorageKey, record.Backend); err != nil {
		slog.Error("failed to remove stored object",
			"id", record.ID, "key", record.StorageKey, "backend", record.Backend, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to delete image")
		return
	}

	if err := h.repo.Delete(r.Context(), id); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to delete image")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "image deleted"})
}
