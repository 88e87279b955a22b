package compositor

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	"io"
	"net/http"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/kozaktomas/adproof/internal/canvas"
	"github.com/kozaktomas/adproof/internal/constants"
)

// ObjectStore resolves preview URLs that point into local storage.
type ObjectStore interface {
	Read(ctx context.Context, key string) ([]byte, error)
	KeyFromURL(url string) (string, bool)
}

// Source is a fetched and decoded version image.
type Source struct {
	Data        []byte
	Image       image.Image
	Format      string
	ContentType string
}

// Natural returns the intrinsic pixel size of the image.
func (s *Source) Natural() canvas.Size {
	b := s.Image.Bounds()
	return canvas.Size{Width: float64(b.Dx()), Height: float64(b.Dy())}
}

// Loader fetches preview images over HTTP or from the object store.
// Failures are reported as ErrImageLoad and never retried.
type Loader struct {
	client *http.Client
	store  ObjectStore
}

// NewLoader creates a loader. store may be nil when only remote URLs are used.
func NewLoader(client *http.Client, store ObjectStore) *Loader {
	if client == nil {
		client = http.DefaultClient
	}
	return &Loader{client: client, store: store}
}

// Fetch returns the raw bytes behind url.
func (l *Loader) Fetch(ctx context.Context, url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("%w: empty url", ErrImageLoad)
	}

	if l.store != nil {
		if key, ok := l.store.KeyFromURL(url); ok {
			data, err := l.store.Read(ctx, key)
			if err != nil {
				return nil, fmt.Errorf("%w: %w", ErrImageLoad, err)
			}
			return data, nil
		}
	}

	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return nil, fmt.Errorf("%w: unsupported url %q", ErrImageLoad, url)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: could not create request: %w", ErrImageLoad, err)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: could not send request: %w", ErrImageLoad, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrImageLoad, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, constants.MaxImageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: could not read body: %w", ErrImageLoad, err)
	}
	if len(data) > constants.MaxImageBytes {
		return nil, fmt.Errorf("%w: image larger than %d bytes", ErrImageLoad, constants.MaxImageBytes)
	}
	return data, nil
}

// Load fetches and decodes the image behind url.
func (l *Loader) Load(ctx context.Context, url string) (*Source, error) {
	data, err := l.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

// NaturalSize fetches url and reads only the image header.
func (l *Loader) NaturalSize(ctx context.Context, url string) (canvas.Size, error) {
	data, err := l.Fetch(ctx, url)
	if err != nil {
		return canvas.Size{}, err
	}
	return DecodeSize(data)
}

// Decode decodes PNG, JPEG, GIF, WebP or BMP data. The header is checked
// first so oversized images are rejected before any pixel buffer exists.
func Decode(data []byte) (*Source, error) {
	if _, err := DecodeSize(data); err != nil {
		return nil, err
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decode image: %w", ErrImageLoad, err)
	}
	return &Source{
		Data:        data,
		Image:       img,
		Format:      format,
		ContentType: contentTypeFor(format),
	}, nil
}

// DecodeSize returns the natural size from the image header.
func DecodeSize(data []byte) (canvas.Size, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return canvas.Size{}, fmt.Errorf("%w: failed to decode image header: %w", ErrImageLoad, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return canvas.Size{}, fmt.Errorf("%w: image has no pixels", ErrImageLoad)
	}
	if int64(cfg.Width)*int64(cfg.Height) > constants.MaxSourcePixels {
		return canvas.Size{}, fmt.Errorf("%w: image %dx%d exceeds %d pixels",
			ErrImageLoad, cfg.Width, cfg.Height, constants.MaxSourcePixels)
	}
	return canvas.Size{Width: float64(cfg.Width), Height: float64(cfg.Height)}, nil
}

func contentTypeFor(format string) string {
	switch format {
	case "jpeg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "gif":
		return "image/gif"
	case "webp":
		return "image/webp"
	case "bmp":
		return "image/bmp"
	}
	return "application/octet-stream"
}
