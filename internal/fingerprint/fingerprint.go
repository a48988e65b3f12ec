package fingerprint

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/corona10/goimagehash"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// Length is the fixed fingerprint length in bits.
const Length = 64

// Fingerprint is a 64-character "0"/"1" string summarizing an image's coarse
// visual content, in row-major scan order. It is stored as text so records
// remain comparable across process restarts.
type Fingerprint string

// Compute derives a fingerprint from encoded image bytes using an average
// hash: resize to 8x8, grayscale, then one bit per pixel set when the pixel
// value is strictly greater than the mean. Fails only if the input cannot be
// decoded.
func Compute(imageData []byte) (Fingerprint, error) {
	img, _, err := image.Decode(bytes.NewReader(imageData))
	if err != nil {
		return "", fmt.Errorf("failed to decode image: %w", err)
	}

	hash, err := goimagehash.AverageHash(img)
	if err != nil {
		return "", fmt.Errorf("failed to compute average hash: %w", err)
	}

	return Fingerprint(fmt.Sprintf("%064b", hash.GetHash())), nil
}
