package canvas

import (
	"errors"
	"fmt"
)

// Zoom bounds used by the editor toolbar.
const (
	MinZoom     = 0.25
	MaxZoom     = 3.0
	ZoomStep    = 0.25
	DefaultZoom = 1.0
)

// DefaultMaxBox is the on-screen box the document is fitted into at zoom 1.
var DefaultMaxBox = Size{Width: 800, Height: 600}

// DocumentSpec describes an ad's canonical print resolution and printer's margins.
type DocumentSpec struct {
	WidthPx  int `json:"width_px"`
	HeightPx int `json:"height_px"`
	DPI      int `json:"dpi"`
	BleedPx  int `json:"bleed_px"`
	SafePx   int `json:"safe_px"`
}

// Validate checks the document dimensions and margins.
func (d DocumentSpec) Validate() error {
	if d.WidthPx <= 0 || d.HeightPx <= 0 {
		return fmt.Errorf("document size must be positive, got %dx%d", d.WidthPx, d.HeightPx)
	}
	if d.BleedPx < 0 || d.SafePx < 0 {
		return errors.New("bleed and safe margins must not be negative")
	}
	if d.DPI < 0 {
		return fmt.Errorf("dpi must not be negative, got %d", d.DPI)
	}
	return nil
}

// Size returns the document size in canonical pixels.
func (d DocumentSpec) Size() Size {
	return Size{Width: float64(d.WidthPx), Height: float64(d.HeightPx)}
}

// BaseFitScale is the factor that fits the document into maxBox without
// enlarging it past 100%.
func BaseFitScale(doc DocumentSpec, maxBox Size) float64 {
	if doc.WidthPx <= 0 || doc.HeightPx <= 0 || !maxBox.Valid() {
		return 1
	}
	return min(maxBox.Width/float64(doc.WidthPx), maxBox.Height/float64(doc.HeightPx), 1)
}

// ContainerSize is the document rendered on screen at the given zoom.
func ContainerSize(doc DocumentSpec, maxBox Size, zoom float64) Size {
	scale := BaseFitScale(doc, maxBox) * zoom
	return Size{
		Width:  float64(doc.WidthPx) * scale,
		Height: float64(doc.HeightPx) * scale,
	}
}

// ClampZoom limits zoom to [MinZoom, MaxZoom].
func ClampZoom(zoom float64) float64 {
	return min(max(zoom, MinZoom), MaxZoom)
}

// ZoomIn returns the next zoom step.
func ZoomIn(zoom float64) float64 {
	return ClampZoom(zoom + ZoomStep)
}

// ZoomOut returns the previous zoom step.
func ZoomOut(zoom float64) float64 {
	return ClampZoom(zoom - ZoomStep)
}
