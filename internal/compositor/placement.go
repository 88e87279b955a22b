// Package compositor renders a positioned version image at full print
// resolution, reproducing the editor's on-screen composition.
package compositor

import (
	"errors"
	"fmt"

	"github.com/kozaktomas/adproof/internal/canvas"
)

var (
	// ErrImageLoad is returned when the source image cannot be fetched or decoded.
	ErrImageLoad = errors.New("image load failed")
	// ErrCanvasTooLarge is returned when the document exceeds MaxCanvasPixels.
	ErrCanvasTooLarge = errors.New("document canvas too large")
)

// MaxCanvasPixels caps the composite size (about 16k x 8k).
const MaxCanvasPixels = 128 << 20

// Placement computes where the image is drawn on the document canvas, in
// canonical document pixels. displayWidth is the width of the editor's
// document box at zoom 1, the box the transform was authored against.
func Placement(doc canvas.DocumentSpec, natural canvas.Size, t canvas.Transform, displayWidth float64) (canvas.Rect, error) {
	if err := doc.Validate(); err != nil {
		return canvas.Rect{}, err
	}
	if err := t.Validate(); err != nil {
		return canvas.Rect{}, err
	}
	if !natural.Valid() {
		return canvas.Rect{}, fmt.Errorf("%w: image has no natural size", ErrImageLoad)
	}
	if displayWidth <= 0 {
		return canvas.Rect{}, fmt.Errorf("display width must be positive, got %v", displayWidth)
	}

	ratio := float64(doc.WidthPx) / displayWidth
	actualX := t.X * ratio
	actualY := t.Y * ratio

	container := canvas.ContainerRect(t, float64(doc.WidthPx), float64(doc.HeightPx))
	fit := canvas.ContainFit(natural.Width, natural.Height, container.Width, container.Height)

	return canvas.Rect{
		Left:   actualX + fit.OffsetX,
		Top:    actualY + fit.OffsetY,
		Width:  fit.DrawWidth,
		Height: fit.DrawHeight,
	}, nil
}

// ReferenceWidth is the document box width at zoom 1 for the given editor box.
func ReferenceWidth(doc canvas.DocumentSpec, maxBox canvas.Size) float64 {
	return canvas.ContainerSize(doc, maxBox, 1).Width
}
