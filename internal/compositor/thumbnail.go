package compositor

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"

	"golang.org/x/image/draw"
)

// Thumbnail resizes an image to fit within maxSize (width or height) while
// keeping aspect ratio and re-encodes it as JPEG. Images already small enough
// are re-encoded without scaling.
func Thumbnail(data []byte, maxSize int) ([]byte, error) {
	src, err := Decode(data)
	if err != nil {
		return nil, err
	}
	img := src.Image

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	if width > maxSize || height > maxSize {
		fit := containPixels(width, height, maxSize)
		resized := image.NewRGBA(image.Rect(0, 0, fit.X, fit.Y))
		draw.CatmullRom.Scale(resized, resized.Bounds(), img, bounds, draw.Over, nil)
		img = resized
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 85}); err != nil {
		return nil, fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}

func containPixels(width, height, maxSize int) image.Point {
	if width > height {
		return image.Pt(maxSize, max(1, height*maxSize/width))
	}
	return image.Pt(max(1, width*maxSize/height), maxSize)
}
