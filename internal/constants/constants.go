// Package constants provides shared constants used across the codebase.
// Centralizing these values ensures consistency and makes them easier to modify.
package constants

// Upload constants
const (
	// MaxUploadSize is the maximum accepted upload size in bytes (10 MiB)
	MaxUploadSize = 10 << 20

	// UploadFieldName is the multipart form field carrying the image
	UploadFieldName = "image"
)

// Transcoding constants
const (
	// JPEGQuality is the encoder quality used when transcoding phone-native
	// formats to JPEG
	JPEGQuality = 90
)

// AllowedMIMETypes is the upload allow-list. Anything outside it is rejected
// before the validation pipeline runs.
var AllowedMIMETypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/heic": true,
	"image/heif": true,
}

// AllowedExtensions mirrors AllowedMIMETypes for clients that send a generic
// content type but a recognizable filename.
var AllowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".heic": true,
	".heif": true,
}
