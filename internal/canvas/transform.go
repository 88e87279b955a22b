// Package canvas holds the geometry shared by the interactive editor and the
// export compositor: image transforms, object-contain/cover fitting, display
// sizing, zoom and the print guide overlay.
package canvas

import (
	"errors"
	"fmt"
	"math"
)

// Scale bounds for the image container.
const (
	MinScale = 0.1
	MaxScale = 3.0
)

// ErrInvalidTransform is returned when a transform has non-finite values or a non-positive scale.
var ErrInvalidTransform = errors.New("invalid image transform")

// Transform positions and sizes the image container inside the document box.
// X and Y are display-pixel offsets of the container's top-left corner,
// Scale multiplies the document box size to get the container size.
type Transform struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Scale float64 `json:"scale"`
}

// Validate checks that the transform can be rendered.
func (t Transform) Validate() error {
	for _, v := range []float64{t.X, t.Y, t.Scale} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: non-finite value", ErrInvalidTransform)
		}
	}
	if t.Scale <= 0 {
		return fmt.Errorf("%w: scale must be positive, got %v", ErrInvalidTransform, t.Scale)
	}
	return nil
}

// Size is a width/height pair in pixels.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Valid reports whether both dimensions are positive.
func (s Size) Valid() bool {
	return s.Width > 0 && s.Height > 0
}

// Rect is an axis-aligned rectangle.
type Rect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Contains reports whether p lies inside the rectangle, edges included.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Left && p.X <= r.Left+r.Width &&
		p.Y >= r.Top && p.Y <= r.Top+r.Height
}

// Fit is the area an image occupies inside a box after fitting.
type Fit struct {
	DrawWidth  float64 `json:"draw_width"`
	DrawHeight float64 `json:"draw_height"`
	OffsetX    float64 `json:"offset_x"`
	OffsetY    float64 `json:"offset_y"`
}

// ContainerRect returns the rectangle occupied by the image's drawing area
// inside a document box of containerWidth x containerHeight.
func ContainerRect(t Transform, containerWidth, containerHeight float64) Rect {
	return Rect{
		Left:   t.X,
		Top:    t.Y,
		Width:  containerWidth * t.Scale,
		Height: containerHeight * t.Scale,
	}
}

// ContainFit implements object-contain: the image is scaled to fit entirely
// inside the box while keeping its aspect ratio, and centered on the other axis.
// Returns a zero Fit when any dimension is not positive.
func ContainFit(naturalWidth, naturalHeight, boxWidth, boxHeight float64) Fit {
	if naturalWidth <= 0 || naturalHeight <= 0 || boxWidth <= 0 || boxHeight <= 0 {
		return Fit{}
	}

	imageAspect := naturalWidth / naturalHeight
	boxAspect := boxWidth / boxHeight

	if imageAspect > boxAspect {
		drawHeight := boxWidth / imageAspect
		return Fit{
			DrawWidth:  boxWidth,
			DrawHeight: drawHeight,
			OffsetX:    0,
			OffsetY:    (boxHeight - drawHeight) / 2,
		}
	}

	drawWidth := boxHeight * imageAspect
	return Fit{
		DrawWidth:  drawWidth,
		DrawHeight: boxHeight,
		OffsetX:    (boxWidth - drawWidth) / 2,
		OffsetY:    0,
	}
}

// CoverFit returns the scale at which the natural image covers the whole box.
// Returns 0 when any dimension is not positive.
func CoverFit(naturalWidth, naturalHeight, boxWidth, boxHeight float64) float64 {
	if naturalWidth <= 0 || naturalHeight <= 0 || boxWidth <= 0 || boxHeight <= 0 {
		return 0
	}
	return max(boxWidth/naturalWidth, boxHeight/naturalHeight)
}

// ClampScale limits a container scale to [MinScale, MaxScale].
func ClampScale(scale float64) float64 {
	return min(max(scale, MinScale), MaxScale)
}
