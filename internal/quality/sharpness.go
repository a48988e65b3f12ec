// Package quality computes numeric image quality metrics used by the
// validation pipeline.
package quality

import "image"

// GrayPixels converts an image to row-major grayscale values (0-255).
func GrayPixels(img image.Image) [][]float64 {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	gray := make([][]float64, height)
	for y := 0; y < height; y++ {
		gray[y] = make([]float64, width)
		for x := 0; x < width; x++ {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			// ITU-R BT.601 luma formula.
			luma := 0.299*float64(r>>8) + 0.587*float64(g>>8) + 0.114*float64(b>>8)
			gray[y][x] = luma
		}
	}

	return gray
}

// SharpnessScore measures focus quality as the population variance of the
// absolute responses of a 4-neighbor Laplacian kernel applied to every
// interior pixel (the 1-pixel border is excluded). Uniform images score 0;
// the score grows with edge energy. Images smaller than 3x3 score 0.
func SharpnessScore(gray [][]float64) float64 {
	height := len(gray)
	if height < 3 {
		return 0
	}
	width := len(gray[0])
	if width < 3 {
		return 0
	}

	// Kernel [0,1,0; 1,-4,1; 0,1,0] applied per interior pixel.
	responses := make([]float64, 0, (width-2)*(height-2))
	for y := 1; y < height-1; y++ {
		for x := 1; x < width-1; x++ {
			val := -4*gray[y][x] +
				gray[y][x-1] +
				gray[y][x+1] +
				gray[y-1][x] +
				gray[y+1][x]
			if val < 0 {
				val = -val
			}
			responses = append(responses, val)
		}
	}

	if len(responses) == 0 {
		return 0
	}

	var sum float64
	for _, v := range responses {
		sum += v
	}
	mean := sum / float64(len(responses))

	var variance float64
	for _, v := range responses {
		diff := v - mean
		variance += diff * diff
	}
	return variance / float64(len(responses))
}
