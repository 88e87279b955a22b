package compositor

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"

	"github.com/kozaktomas/adproof/internal/canvas"
)

// Compose renders src onto a white document canvas of doc's exact pixel size.
// The image is placed by Placement and anything outside the document is
// cropped, never squeezed. No partial canvas is returned on error.
func Compose(ctx context.Context, src image.Image, doc canvas.DocumentSpec, t canvas.Transform, displayWidth float64) (*image.RGBA, error) {
	if src == nil {
		return nil, fmt.Errorf("%w: no source image", ErrImageLoad)
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	if doc.WidthPx*doc.HeightPx > MaxCanvasPixels {
		return nil, fmt.Errorf("%w: %dx%d", ErrCanvasTooLarge, doc.WidthPx, doc.HeightPx)
	}

	srcBounds := src.Bounds()
	natural := canvas.Size{Width: float64(srcBounds.Dx()), Height: float64(srcBounds.Dy())}

	place, err := Placement(doc, natural, t, displayWidth)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dst := image.NewRGBA(image.Rect(0, 0, doc.WidthPx, doc.HeightPx))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	dr := image.Rect(
		int(math.Round(place.Left)),
		int(math.Round(place.Top)),
		int(math.Round(place.Left+place.Width)),
		int(math.Round(place.Top+place.Height)),
	)
	// Scale clips dr against dst bounds while keeping the full dr mapping.
	if !dr.Empty() && dr.Overlaps(dst.Bounds()) {
		draw.CatmullRom.Scale(dst, dr, src, srcBounds, draw.Over, nil)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return dst, nil
}
