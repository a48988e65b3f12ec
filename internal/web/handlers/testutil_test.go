package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"math/rand"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/vkadlec/photogate/internal/config"
	"github.com/vkadlec/photogate/internal/facedetect"
	"github.com/vkadlec/photogate/internal/fingerprint"
	"github.com/vkadlec/photogate/internal/model"
	"github.com/vkadlec/photogate/internal/pipeline"
	"github.com/vkadlec/photogate/internal/storage"
)

// memoryRepo is an in-memory ImageRepository for handler tests.
type memoryRepo struct {
	mu      sync.Mutex
	records map[string]*model.ImageRecord
	order   []string
	failing bool
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{records: make(map[string]*model.ImageRecord)}
}

func (m *memoryRepo) Create(ctx context.Context, rec *model.ImageRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing {
		return errors.New("database unavailable")
	}
	m.records[rec.ID] = rec
	m.order = append(m.order, rec.ID)
	return nil
}

func (m *memoryRepo) Get(ctx context.Context, id string) (*model.ImageRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[id]
	if !ok {
		return nil, errors.New("image not found")
	}
	return rec, nil
}

func (m *memoryRepo) List(ctx context.Context) ([]*model.ImageRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	records := make([]*model.ImageRecord, 0, len(m.order))
	for i := len(m.order) - 1; i >= 0; i-- {
		records = append(records, m.records[m.order[i]])
	}
	return records, nil
}

func (m *memoryRepo) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[id]; !ok {
		return errors.New("image not found")
	}
	delete(m.records, id)
	return nil
}

// RecentValidFingerprints lets the same fake back the duplicate check.
func (m *memoryRepo) RecentValidFingerprints(ctx context.Context, limit int) ([]fingerprint.Fingerprint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var fps []fingerprint.Fingerprint
	for i := len(m.order) - 1; i >= 0 && len(fps) < limit; i-- {
		rec := m.records[m.order[i]]
		if rec.Status == model.StatusValid && rec.Fingerprint != "" {
			fps = append(fps, fingerprint.Fingerprint(rec.Fingerprint))
		}
	}
	return fps, nil
}

// recordingRemover records object removals.
type recordingRemover struct {
	keys    []string
	backend model.StorageBackend
	err     error
}

func (r *recordingRemover) Remove(ctx context.Context, key string, backend model.StorageBackend) error {
	if r.err != nil {
		return r.err
	}
	r.keys = append(r.keys, key)
	r.backend = backend
	return nil
}

// fakeDetector returns a canned detection result.
type fakeDetector struct {
	result *facedetect.Result
	err    error
}

func (f *fakeDetector) Detect(ctx context.Context, imageData []byte) (*facedetect.Result, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func singleFace() *facedetect.Result {
	return &facedetect.Result{Faces: []facedetect.Face{
		{Box: facedetect.BoundingBox{Left: 0.25, Top: 0.2, Width: 0.4, Height: 0.5}, Confidence: 0.99},
	}}
}

func testChecks() config.Checks {
	return config.Checks{
		MinWidth:            800,
		MinHeight:           600,
		SharpnessThreshold:  20.0,
		FaceMinArea:         0.05,
		SimilarityThreshold: 0.8,
		RecentWindow:        20,
	}
}

// newTestHandler wires a handler over the real pipeline with fake
// collaborators and temp-dir storage tiers.
func newTestHandler(t *testing.T, detector facedetect.Detector, repo *memoryRepo) *ImagesHandler {
	t.Helper()
	primary, err := storage.NewLocalStore(t.TempDir(), "/primary")
	if err != nil {
		t.Fatalf("NewLocalStore failed: %v", err)
	}
	fallback, err := storage.NewLocalStore(t.TempDir(), "/uploads")
	if err != nil {
		t.Fatalf("NewLocalStore failed: %v", err)
	}
	writer := storage.NewWriter(primary, fallback)
	orch := pipeline.NewOrchestrator(detector, repo, testChecks())
	coord := pipeline.NewCoordinator(orch, writer)
	return NewImagesHandler(repo, coord, writer)
}

// noisePNG produces a decodable, sharp test image.
func noisePNG(t *testing.T, width, height int, seed int64) []byte {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			v := uint8(rng.Intn(256))
			img.Set(x, y, color.RGBA{v, v, v, 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png encode failed: %v", err)
	}
	return buf.Bytes()
}

// multipartUpload builds a multipart request body with one image part.
func multipartUpload(t *testing.T, fieldName, filename, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="`+fieldName+`"; filename="`+filename+`"`)
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	if err != nil {
		t.Fatalf("failed to create form part: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("failed to write form part: %v", err)
	}
	writer.Close()
	return body, writer.FormDataContentType()
}

// requestWithChiParams creates a request with chi URL parameters
func requestWithChiParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// parseJSONResponse parses a JSON response body into the target type
func parseJSONResponse(t *testing.T, recorder *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.Unmarshal(recorder.Body.Bytes(), target); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nBody: %s", err, recorder.Body.String())
	}
}

// assertStatusCode checks if the response has the expected status code
func assertStatusCode(t *testing.T, recorder *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if recorder.Code != expected {
		t.Errorf("expected status %d, got %d\nBody: %s", expected, recorder.Code, recorder.Body.String())
	}
}
