// Package normalize transcodes phone-native image formats to JPEG so the
// rest of the pipeline only ever analyzes standard encodings.
package normalize

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/gen2brain/heic"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/vkadlec/photogate/internal/constants"
)

// heicMIMETypes are the declared content types that trigger transcoding.
var heicMIMETypes = map[string]bool{
	"image/heic": true,
	"image/heif": true,
}

// heicExtensions cover clients that declare a generic content type but keep
// the native extension.
var heicExtensions = map[string]bool{
	".heic": true,
	".heif": true,
}

// IsHEIC reports whether the declared MIME type or the filename extension
// indicates an HEIC/HEIF image.
func IsHEIC(mimeType, filename string) bool {
	if heicMIMETypes[strings.ToLower(mimeType)] {
		return true
	}
	return heicExtensions[strings.ToLower(filepath.Ext(filename))]
}

// Normalize transcodes HEIC/HEIF input to JPEG and rewrites the logical
// filename extension to match; all other inputs pass through unchanged.
// A transcoding failure is terminal for the upload, because downstream
// analysis needs decodable standard pixels.
func Normalize(data []byte, mimeType, filename string) ([]byte, string, string, error) {
	if !IsHEIC(mimeType, filename) {
		// Passthrough still requires decodable standard pixels; an opaque
		// blob is terminal here, before any analysis or storage happens.
		if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
			return nil, "", "", fmt.Errorf("failed to decode image: %w", err)
		}
		return data, mimeType, filename, nil
	}

	img, err := heic.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", "", fmt.Errorf("failed to decode HEIC image: %w", err)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: constants.JPEGQuality}); err != nil {
		return nil, "", "", fmt.Errorf("failed to encode JPEG: %w", err)
	}

	newName := strings.TrimSuffix(filename, filepath.Ext(filename)) + ".jpg"
	slog.Debug("transcoded HEIC upload",
		"filename", filename, "in_bytes", len(data), "out_bytes", buf.Len())

	return buf.Bytes(), "image/jpeg", newName, nil
}
