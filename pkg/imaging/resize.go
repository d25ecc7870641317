package imaging

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif" // register decoder
	"image/jpeg"
	_ "image/png" // register decoder

	"golang.org/x/image/draw"
)

// ToJPEG decodes data, scales it so the longest side is at most maxDimension
// (keeping aspect ratio, never upscaling) and encodes it as JPEG.
func ToJPEG(data []byte, maxDimension, quality int) ([]byte, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image (format: %s): %w", format, err)
	}

	bounds := img.Bounds()
	width, height := Fit(bounds.Dx(), bounds.Dy(), maxDimension)

	resized := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(resized, resized.Bounds(), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, resized, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}

// Fit returns the dimensions of a width x height box scaled down so that
// neither side exceeds max.
func Fit(width, height, max int) (int, int) {
	if max <= 0 || (width <= max && height <= max) {
		return width, height
	}
	if width >= height {
		h := int(float64(height) * float64(max) / float64(width))
		if h < 1 {
			h = 1
		}
		return max, h
	}
	w := int(float64(width) * float64(max) / float64(height))
	if w < 1 {
		w = 1
	}
	return w, max
}
