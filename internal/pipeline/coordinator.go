package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vkadlec/photogate/internal/model"
	"github.com/vkadlec/photogate/internal/normalize"
	"github.com/vkadlec/photogate/internal/storage"
)

// Coordinator is the top-level entry point for one upload: it normalizes the
// bytes, runs validation, stores the result, and assembles the record the
// glue layer persists.
type Coordinator struct {
	orchestrator *Orchestrator
	writer       *storage.Writer
}

// NewCoordinator wires the coordinator.
func NewCoordinator(orchestrator *Orchestrator, writer *storage.Writer) *Coordinator {
	return &Coordinator{orchestrator: orchestrator, writer: writer}
}

// Ingest processes one upload end to end. Every upload that survives
// normalization is stored, valid or not; validation failures only change the
// record's status and reasons. The two terminal failures are an
// untranscodable input and both storage tiers failing.
func (c *Coordinator) Ingest(ctx context.Context, upload model.ImageUpload) (*model.ImageRecord, *Outcome, error) {
	data, mimeType, filename, err := normalize.Normalize(upload.Data, upload.MimeType, upload.Filename)
	if err != nil {
		return nil, nil, fmt.Errorf("normalizing upload: %w", err)
	}

	outcome := c.orchestrator.Validate(ctx, data)

	result, err := c.writer.Store(ctx, data, filename)
	if err != nil {
		return nil, nil, fmt.Errorf("storing upload: %w", err)
	}

	status := model.StatusValid
	var reasons []string
	if !outcome.Accepted {
		status = model.StatusInvalid
		reasons = outcome.Reasons
	}

	record := &model.ImageRecord{
		ID:                uuid.NewString(),
		StorageKey:        result.Key,
		OriginalName:      upload.Filename,
		MimeType:          mimeType,
		Size:              int64(len(data)),
		LocationURI:       result.URI,
		Backend:           result.Backend,
		Status:            status,
		ValidationReasons: reasons,
		Fingerprint:       string(outcome.Fingerprint),
		CreatedAt:         time.Now().UTC(),
	}

	return record, outcome, nil
}
