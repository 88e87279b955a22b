package compositor

import (
	"bytes"
	"context"
	"fmt"

	"github.com/kozaktomas/adproof/internal/canvas"
)

// Request describes one export.
type Request struct {
	PreviewURL string
	Doc        canvas.DocumentSpec
	// Transform is the saved transform in the zoom 1 reference box. Nil means
	// the version was never positioned and the editor's auto-fit is used.
	Transform *canvas.Transform
	// DisplayWidth is the zoom 1 document box width. Zero derives it from MaxBox.
	DisplayWidth float64
	Format       Format
}

// Result holds the rendered composite and the untouched source image.
type Result struct {
	Composite           []byte
	ContentType         string
	Width               int
	Height              int
	Transform           canvas.Transform
	Original            []byte
	OriginalContentType string
}

// Exporter loads a version image and renders it at print resolution.
type Exporter struct {
	loader *Loader
	maxBox canvas.Size
}

// NewExporter creates an exporter. maxBox is the editor's on-screen box used
// to derive the reference display width; a zero box means canvas.DefaultMaxBox.
func NewExporter(loader *Loader, maxBox canvas.Size) *Exporter {
	if !maxBox.Valid() {
		maxBox = canvas.DefaultMaxBox
	}
	return &Exporter{loader: loader, maxBox: maxBox}
}

// MaxBox returns the editor box the exporter assumes.
func (e *Exporter) MaxBox() canvas.Size {
	return e.maxBox
}

// Export renders the composite. Any failure aborts the export without output.
func (e *Exporter) Export(ctx context.Context, req Request) (*Result, error) {
	src, err := e.loader.Load(ctx, req.PreviewURL)
	if err != nil {
		return nil, err
	}
	return e.Render(ctx, src, req)
}

// Render composes an already loaded source.
func (e *Exporter) Render(ctx context.Context, src *Source, req Request) (*Result, error) {
	if err := req.Doc.Validate(); err != nil {
		return nil, err
	}

	displayWidth := req.DisplayWidth
	if displayWidth <= 0 {
		displayWidth = ReferenceWidth(req.Doc, e.maxBox)
	}

	t, err := e.effectiveTransform(req, src.Natural())
	if err != nil {
		return nil, err
	}

	img, err := Compose(ctx, src.Image, req.Doc, t, displayWidth)
	if err != nil {
		return nil, err
	}

	format := req.Format
	if format == "" {
		format = FormatPNG
	}
	var buf bytes.Buffer
	if err := Encode(&buf, img, format); err != nil {
		return nil, err
	}

	return &Result{
		Composite:           buf.Bytes(),
		ContentType:         format.ContentType(),
		Width:               req.Doc.WidthPx,
		Height:              req.Doc.HeightPx,
		Transform:           t,
		Original:            src.Data,
		OriginalContentType: src.ContentType,
	}, nil
}

// effectiveTransform runs the editor controller at zoom 1 so an unpositioned
// version exports exactly as the editor first shows it.
func (e *Exporter) effectiveTransform(req Request, natural canvas.Size) (canvas.Transform, error) {
	ctrl := canvas.NewController(canvas.ContainerSize(req.Doc, e.maxBox, 1), 1)
	ctrl.Reset(req.Transform)
	if err := ctrl.ImageLoaded(natural); err != nil {
		return canvas.Transform{}, fmt.Errorf("%w: %w", ErrImageLoad, err)
	}
	t, _ := ctrl.Persistable()
	return t, nil
}
