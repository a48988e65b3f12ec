// Package facedetect wraps the external face detection capability behind a
// small interface so the pipeline can be tested with fakes.
package facedetect

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// defaultTimeout bounds a single detection call; a slow or unreachable
// service must degrade into a validation reason, never hang the upload.
const defaultTimeout = 10 * time.Second

// BoundingBox locates a detected face, all values expressed as fractions of
// the image dimensions.
type BoundingBox struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Area returns the fraction of the frame covered by the box.
func (b BoundingBox) Area() float64 {
	return b.Width * b.Height
}

// Face is one detection result.
type Face struct {
	Box        BoundingBox `json:"box"`
	Confidence float64     `json:"confidence"`
}

// Result holds every face found in one image.
type Result struct {
	Faces []Face `json:"faces"`
}

// PrimaryArea returns the bounding-box area fraction of the first face, or
// 0 when no face was found.
func (r *Result) PrimaryArea() float64 {
	if len(r.Faces) == 0 {
		return 0
	}
	return r.Faces[0].Box.Area()
}

// Detector is the capability interface the pipeline depends on.
type Detector interface {
	Detect(ctx context.Context, imageData []byte) (*Result, error)
}

// HTTPDetector calls a remote face detection service over HTTP.
type HTTPDetector struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewHTTPDetector creates a detector for the given service base URL.
func NewHTTPDetector(baseURL, apiKey string) (*HTTPDetector, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("invalid face API URL %q", baseURL)
	}
	return &HTTPDetector{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: defaultTimeout},
	}, nil
}

// Detect posts the image bytes to the detection endpoint and decodes the
// face list. Any transport or protocol error is returned to the caller; the
// orchestrator translates it into a validation reason.
func (d *HTTPDetector) Detect(ctx context.Context, imageData []byte) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.baseURL+"/v1/detect", bytes.NewReader(imageData))
	if err != nil {
		return nil, fmt.Errorf("could not create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	if d.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+d.apiKey)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("could not send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("face API request failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("could not unmarshal face API response: %w", err)
	}

	return &result, nil
}
