// Package pipeline runs the content checks for one upload and drives the
// normalize -> validate -> store sequence.
package pipeline

import (
	"bytes"
	"context"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/vkadlec/photogate/internal/config"
	"github.com/vkadlec/photogate/internal/facedetect"
	"github.com/vkadlec/photogate/internal/fingerprint"
	"github.com/vkadlec/photogate/internal/quality"
)

// User-facing validation reasons. Once appended for a failed check they are
// never removed, whatever the other checks decide.
const (
	ReasonCouldNotProcess = "We couldn't process this image"
	ReasonTooSmall        = "Image is too small - please upload a larger photo"
	ReasonTooBlurry       = "Photo is too blurry - please upload a clearer image"
	ReasonNoFace          = "No face detected in photo"
	ReasonMultipleFaces   = "Multiple faces detected - please use a photo with just one person"
	ReasonFaceTooSmall    = "Face is too small - please use a closer photo"
	ReasonFaceAnalysis    = "We couldn't analyze faces in the image"
	ReasonDuplicate       = "This photo looks too similar to one you already uploaded"
)

// Outcome is the aggregated validation result for one upload.
type Outcome struct {
	Accepted bool
	// Reasons lists every failed check in execution order:
	// resolution, sharpness, face, duplicate.
	Reasons []string
	// Fingerprint is set whenever hashing succeeded, independent of the
	// final verdict.
	Fingerprint fingerprint.Fingerprint
}

// FingerprintSource supplies the recency window of fingerprints from
// previously accepted images. It is queried fresh on every duplicate check
// so the working set always reflects the latest accepted records.
type FingerprintSource interface {
	RecentValidFingerprints(ctx context.Context, limit int) ([]fingerprint.Fingerprint, error)
}

// Orchestrator runs the fixed check sequence and aggregates the verdict.
type Orchestrator struct {
	detector facedetect.Detector
	source   FingerprintSource
	checks   config.Checks
}

// NewOrchestrator wires the orchestrator with its two external capabilities
// and the tunable thresholds.
func NewOrchestrator(detector facedetect.Detector, source FingerprintSource, checks config.Checks) *Orchestrator {
	return &Orchestrator{
		detector: detector,
		source:   source,
		checks:   checks,
	}
}

// Validate runs every check against the (already normalized) image bytes.
// Checks never short-circuit: each one runs and contributes its failure
// reason, and the upload is accepted only when no reason accumulated.
func (o *Orchestrator) Validate(ctx context.Context, data []byte) *Outcome {
	outcome := &Outcome{}

	// Decode once up front; individual checks degrade to a generic reason
	// when the image is not analyzable.
	cfg, _, cfgErr := image.DecodeConfig(bytes.NewReader(data))
	img, _, decodeErr := image.Decode(bytes.NewReader(data))

	o.checkResolution(outcome, cfg, cfgErr)
	o.checkSharpness(outcome, img, decodeErr)
	o.checkFace(ctx, outcome, data)
	o.checkDuplicate(ctx, outcome, data)

	outcome.Accepted = len(outcome.Reasons) == 0
	return outcome
}

func (o *Orchestrator) checkResolution(outcome *Outcome, cfg image.Config, err error) {
	if err != nil {
		outcome.Reasons = append(outcome.Reasons, ReasonCouldNotProcess)
		return
	}
	if cfg.Width < o.checks.MinWidth || cfg.Height < o.checks.MinHeight {
		outcome.Reasons = append(outcome.Reasons, ReasonTooSmall)
	}
}

func (o *Orchestrator) checkSharpness(outcome *Outcome, img image.Image, err error) {
	if err != nil {
		outcome.Reasons = append(outcome.Reasons, ReasonCouldNotProcess)
		return
	}
	score := quality.SharpnessScore(quality.GrayPixels(img))
	if score < o.checks.SharpnessThreshold {
		slog.Debug("image below sharpness threshold",
			"score", score, "threshold", o.checks.SharpnessThreshold)
		outcome.Reasons = append(outcome.Reasons, ReasonTooBlurry)
	}
}

func (o *Orchestrator) checkFace(ctx context.Context, outcome *Outcome, data []byte) {
	result, err := o.detector.Detect(ctx, data)
	if err != nil {
		// A capability outage is a validation failure for this upload, not
		// a pipeline crash.
		slog.Warn("face detection failed", "error", err)
		outcome.Reasons = append(outcome.Reasons, ReasonFaceAnalysis)
		return
	}

	switch {
	case len(result.Faces) == 0:
		outcome.Reasons = append(outcome.Reasons, ReasonNoFace)
	case len(result.Faces) > 1:
		outcome.Reasons = append(outcome.Reasons, ReasonMultipleFaces)
	case result.PrimaryArea() < o.checks.FaceMinArea:
		outcome.Reasons = append(outcome.Reasons, ReasonFaceTooSmall)
	}
}

func (o *Orchestrator) checkDuplicate(ctx context.Context, outcome *Outcome, data []byte) {
	fp, err := fingerprint.Compute(data)
	if err != nil {
		outcome.Reasons = append(outcome.Reasons, ReasonCouldNotProcess)
		return
	}
	// The fingerprint sticks to the outcome as soon as hashing succeeds,
	// whatever the remaining checks decide.
	outcome.Fingerprint = fp

	recent, err := o.source.RecentValidFingerprints(ctx, o.checks.RecentWindow)
	if err != nil {
		slog.Warn("could not load recent fingerprints", "error", err)
		outcome.Reasons = append(outcome.Reasons, ReasonCouldNotProcess)
		return
	}

	if fingerprint.MatchesAny(fp, recent, o.checks.SimilarityThreshold) {
		outcome.Reasons = append(outcome.Reasons, ReasonDuplicate)
	}
}
