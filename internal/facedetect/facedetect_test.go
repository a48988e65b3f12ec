package facedetect

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHTTPDetectorDetect(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if r.URL.Path != "/v1/detect" {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(Result{
			Faces: []Face{
				{Box: BoundingBox{Left: 0.25, Top: 0.2, Width: 0.4, Height: 0.5}, Confidence: 0.99},
			},
		})
	}))
	defer server.Close()

	detector, err := NewHTTPDetector(server.URL, "test-key")
	if err != nil {
		t.Fatalf("NewHTTPDetector failed: %v", err)
	}

	result, err := detector.Detect(context.Background(), []byte("image bytes"))
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}

	if len(result.Faces) != 1 {
		t.Fatalf("expected 1 face, got %d", len(result.Faces))
	}
	if area := result.PrimaryArea(); area != 0.2 {
		t.Errorf("primary area should be 0.2, got %f", area)
	}
}

func TestHTTPDetectorServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model unavailable", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	detector, err := NewHTTPDetector(server.URL, "")
	if err != nil {
		t.Fatalf("NewHTTPDetector failed: %v", err)
	}

	if _, err := detector.Detect(context.Background(), []byte("image bytes")); err == nil {
		t.Error("Detect should fail when the service returns an error status")
	}
}

func TestHTTPDetectorUnreachable(t *testing.T) {
	detector, err := NewHTTPDetector("http://127.0.0.1:1", "")
	if err != nil {
		t.Fatalf("NewHTTPDetector failed: %v", err)
	}

	if _, err := detector.Detect(context.Background(), []byte("image bytes")); err == nil {
		t.Error("Detect should fail when the service is unreachable")
	}
}

func TestHTTPDetectorCancelledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(Result{})
	}))
	defer server.Close()

	detector, err := NewHTTPDetector(server.URL, "")
	if err != nil {
		t.Fatalf("NewHTTPDetector failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := detector.Detect(ctx, []byte("image bytes")); err == nil {
		t.Error("Detect should fail when the context is already cancelled")
	}
}

func TestNewHTTPDetectorInvalidURL(t *testing.T) {
	tests := []string{"", "not a url", "missing-scheme.example.com"}
	for _, raw := range tests {
		if _, err := NewHTTPDetector(raw, ""); err == nil {
			t.Errorf("NewHTTPDetector(%q) should fail", raw)
		}
	}
}

func TestBoundingBoxArea(t *testing.T) {
	tests := []struct {
		name     string
		box      BoundingBox
		expected float64
	}{
		{"half by half", BoundingBox{Width: 0.5, Height: 0.5}, 0.25},
		{"full frame", BoundingBox{Width: 1, Height: 1}, 1},
		{"zero", BoundingBox{}, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if area := tc.box.Area(); area != tc.expected {
				t.Errorf("Area() = %f; want %f", area, tc.expected)
			}
		})
	}
}
