// Package generate talks to the external image generation webhooks. The
// pipeline behind them is opaque: a request describes the ad and the answer
// carries at most one new image URL.
package generate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"

	"github.com/kozaktomas/adproof/internal/canvas"
	"github.com/kozaktomas/adproof/internal/database"
)

// DefaultMinFontSize is sent when neither the ad nor its publication sets one.
const DefaultMinFontSize = 6

var (
	// ErrNotConfigured is returned when the webhook URL for a kind is empty.
	ErrNotConfigured = errors.New("generation webhook not configured")
	// ErrNoImage is returned by Require when the webhook answered without an image.
	ErrNoImage = errors.New("webhook returned no image")
)

// Kind selects the webhook flow.
type Kind string

const (
	KindGenerate   Kind = "generate"
	KindBigChanges Kind = "big_changes"
	KindExpand     Kind = "expand"
)

func (k Kind) IsValid() bool {
	switch k {
	case KindGenerate, KindBigChanges, KindExpand:
		return true
	}
	return false
}

// Size is a width/height pair in pixels.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// AssetRef describes an uploaded asset to the pipeline.
type AssetRef struct {
	ID     string             `json:"id"`
	Type   database.AssetType `json:"type"`
	URL    string             `json:"url"`
	Width  *int               `json:"width,omitempty"`
	Height *int               `json:"height,omitempty"`
}

// Request is the generate and big-changes payload.
type Request struct {
	AdID              string               `json:"adId"`
	AdName            string               `json:"adName,omitempty"`
	ClientName        string               `json:"clientName,omitempty"`
	SizeSpec          Size                 `json:"sizeSpec"`
	AspectRatio       database.AspectRatio `json:"aspectRatio,omitempty"`
	DPI               int                  `json:"dpi"`
	BleedPx           int                  `json:"bleedPx"`
	SafePx            int                  `json:"safePx"`
	MinFontSize       int                  `json:"minFontSize"`
	Copy              string               `json:"copy"`
	Brief             string               `json:"brief"`
	Assets            []AssetRef           `json:"assets"`
	Provider          string               `json:"provider"`
	BigChangesPrompt  string               `json:"bigChangesPrompt,omitempty"`
	ReferenceImageURL *string              `json:"referenceImageUrl,omitempty"`
}

// ExpandRequest asks the pipeline to outpaint the selected image to the full document.
type ExpandRequest struct {
	AdID             string           `json:"adId"`
	AdName           string           `json:"adName"`
	ClientName       string           `json:"clientName"`
	Brief            string           `json:"brief"`
	Copy             string           `json:"copy"`
	Assets           []AssetRef       `json:"assets"`
	SizeSpec         Size             `json:"sizeSpec"`
	ImageSize        *Size            `json:"imageSize"`
	ImageNaturalSize *Size            `json:"imageNaturalSize"`
	ImageTransform   canvas.Transform `json:"imageTransform"`
	PreviewURL       string           `json:"previewUrl,omitempty"`
}

// Result is the webhook answer.
type Result struct {
	ImageURL string            `json:"imageUrl"`
	Layouts  []json.RawMessage `json:"layouts,omitempty"`
	Error    string            `json:"error,omitempty"`
}

// Require returns ErrNoImage when the result carries no image URL.
func (r *Result) Require() error {
	if strings.TrimSpace(r.ImageURL) == "" {
		return ErrNoImage
	}
	return nil
}

// Layout returns the first returned layout, if any.
func (r *Result) Layout() json.RawMessage {
	if len(r.Layouts) == 0 {
		return nil
	}
	return r.Layouts[0]
}

// Options configures a Client.
type Options struct {
	GenerateURL string
	ExpandURL   string
	Provider    string
}

// Client posts requests to the generation webhooks.
type Client struct {
	http *http.Client
	opts Options
}

// NewClient creates a webhook client using the given HTTP client.
func NewClient(httpClient *http.Client, opts Options) *Client {
	return &Client{http: httpClient, opts: opts}
}

// Provider returns the configured generation provider.
func (c *Client) Provider() string {
	return c.opts.Provider
}

// Enabled reports whether the webhook for kind is configured.
func (c *Client) Enabled(kind Kind) bool {
	return c.url(kind) != ""
}

func (c *Client) url(kind Kind) string {
	if kind == KindExpand {
		return c.opts.ExpandURL
	}
	return c.opts.GenerateURL
}

// Generate posts a generate or big-changes request.
func (c *Client) Generate(ctx context.Context, req *Request) (*Result, error) {
	kind := KindGenerate
	if req.BigChangesPrompt != "" {
		kind = KindBigChanges
	}
	if req.Provider == "" {
		req.Provider = c.opts.Provider
	}
	return postJSON[Result](ctx, c.http, c.url(kind), req)
}

// Expand posts an expand request.
func (c *Client) Expand(ctx context.Context, req *ExpandRequest) (*Result, error) {
	return postJSON[Result](ctx, c.http, c.url(KindExpand), req)
}

// postJSON posts body as JSON and decodes a 200 response into T. Non-200
// answers surface the webhook's error field when present.
func postJSON[T any](ctx context.Context, client *http.Client, url string, body any) (*T, error) {
	if url == "" {
		return nil, ErrNotConfigured
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("could not marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("could not create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("could not send request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("could not read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("webhook failed with status %d: %s", resp.StatusCode, errorMessage(data))
	}

	var result T
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("could not unmarshal response: %w", err)
	}
	return &result, nil
}

func errorMessage(body []byte) string {
	var e struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &e) == nil && e.Error != "" {
		return e.Error
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return msg
}

func assetRefs(assets []database.Asset, withSize bool) []AssetRef {
	refs := make([]AssetRef, 0, len(assets))
	for _, a := range assets {
		ref := AssetRef{ID: a.ID, Type: a.Type, URL: a.URL}
		if withSize {
			ref.Width = a.Width
			ref.Height = a.Height
		}
		refs = append(refs, ref)
	}
	return refs
}

// BuildRequest assembles a generate payload from the ad, its publication and
// assets. A non-empty prompt turns it into a big-changes request referencing
// the selected version.
func BuildRequest(ad *database.Ad, pub *database.Publication, assets []database.Asset,
	selected *database.Version, prompt string) *Request {
	doc := ad.DocumentSpec(pub)
	minFont := DefaultMinFontSize
	switch {
	case ad.MinFontSize != nil:
		minFont = *ad.MinFontSize
	case pub != nil && pub.MinFontSize > 0:
		minFont = pub.MinFontSize
	}

	req := &Request{
		AdID:        ad.ID,
		SizeSpec:    Size{Width: ad.SizeSpec.Width, Height: ad.SizeSpec.Height},
		DPI:         doc.DPI,
		BleedPx:     doc.BleedPx,
		SafePx:      doc.SafePx,
		MinFontSize: minFont,
		Copy:        ad.Copy,
		Brief:       ad.Brief,
		Assets:      assetRefs(assets, true),
	}
	if prompt = strings.TrimSpace(prompt); prompt != "" {
		req.AdName = ad.AdName
		req.ClientName = ad.ClientName
		req.AspectRatio = ad.AspectRatio
		req.BigChangesPrompt = prompt
		if selected != nil && selected.PreviewURL != "" {
			ref := selected.PreviewURL
			req.ReferenceImageURL = &ref
		}
	}
	return req
}

// BuildExpandRequest assembles an expand payload. natural is the selected
// image's pixel size when it could be loaded; imageSize is then its
// object-contain size inside the document, rounded.
func BuildExpandRequest(ad *database.Ad, assets []database.Asset, selected *database.Version, natural *canvas.Size) *ExpandRequest {
	req := &ExpandRequest{
		AdID:           ad.ID,
		AdName:         ad.AdName,
		ClientName:     ad.ClientName,
		Brief:          ad.Brief,
		Copy:           ad.Copy,
		Assets:         assetRefs(assets, false),
		SizeSpec:       Size{Width: ad.SizeSpec.Width, Height: ad.SizeSpec.Height},
		ImageTransform: canvas.Transform{X: 0, Y: 0, Scale: 1},
	}
	if selected == nil {
		return req
	}
	req.PreviewURL = selected.PreviewURL
	if selected.ImageTransform != nil {
		req.ImageTransform = *selected.ImageTransform
	}
	if natural != nil && natural.Valid() {
		req.ImageNaturalSize = &Size{Width: int(natural.Width), Height: int(natural.Height)}
		fit := canvas.ContainFit(natural.Width, natural.Height, float64(ad.SizeSpec.Width), float64(ad.SizeSpec.Height))
		req.ImageSize = &Size{Width: int(math.Round(fit.DrawWidth)), Height: int(math.Round(fit.DrawHeight))}
	}
	return req
}
