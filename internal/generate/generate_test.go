package generate

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kozaktomas/adproof/internal/canvas"
	"github.com/kozaktomas/adproof/internal/database"
)

func intPtr(v int) *int { return &v }

func testAd() *database.Ad {
	return &database.Ad{
		ID:         "ad-1",
		ClientName: "Acme",
		AdName:     "Spring Sale",
		SizeSpec:   database.SizeSpec{Width: 1000, Height: 500},
		DPI:        300,
		SafePx:     intPtr(20),
		Brief:      "bold",
		Copy:       "50% off",
	}
}

func TestBuildRequest(t *testing.T) {
	pub := &database.Publication{BleedPx: 38, SafePx: 75, MinFontSize: 8}
	assets := []database.Asset{{ID: "a1", Type: database.AssetTypeLogo, URL: "/files/logo.png", Width: intPtr(200)}}

	req := BuildRequest(testAd(), pub, assets, nil, "")
	if req.BleedPx != 38 || req.SafePx != 20 || req.MinFontSize != 8 || req.DPI != 300 {
		t.Errorf("request specs = %+v", req)
	}
	if req.BigChangesPrompt != "" || req.ReferenceImageURL != nil || req.AdName != "" {
		t.Errorf("plain generate carries big-changes fields: %+v", req)
	}
	if len(req.Assets) != 1 || req.Assets[0].Width == nil || *req.Assets[0].Width != 200 {
		t.Errorf("assets = %+v", req.Assets)
	}

	req = BuildRequest(testAd(), nil, nil, nil, "")
	if req.MinFontSize != DefaultMinFontSize || req.BleedPx != 0 {
		t.Errorf("defaults = %+v", req)
	}
}

func TestBuildRequestBigChanges(t *testing.T) {
	selected := &database.Version{PreviewURL: "https://cdn.example.com/v1.png"}
	req := BuildRequest(testAd(), nil, nil, selected, "  make it blue ")
	if req.BigChangesPrompt != "make it blue" {
		t.Errorf("prompt = %q", req.BigChangesPrompt)
	}
	if req.ReferenceImageURL == nil || *req.ReferenceImageURL != selected.PreviewURL {
		t.Errorf("reference = %v", req.ReferenceImageURL)
	}
	if req.AdName != "Spring Sale" || req.ClientName != "Acme" {
		t.Errorf("names = %q %q", req.AdName, req.ClientName)
	}
}

func TestBuildExpandRequest(t *testing.T) {
	ad := testAd()

	req := BuildExpandRequest(ad, nil, nil, nil)
	if req.ImageTransform != (canvas.Transform{X: 0, Y: 0, Scale: 1}) {
		t.Errorf("default transform = %+v", req.ImageTransform)
	}
	if req.ImageSize != nil || req.ImageNaturalSize != nil || req.PreviewURL != "" {
		t.Errorf("no selection should leave image fields empty: %+v", req)
	}

	saved := canvas.Transform{X: 10, Y: 5, Scale: 1.5}
	selected := &database.Version{PreviewURL: "https://cdn.example.com/v.png", ImageTransform: &saved}
	natural := &canvas.Size{Width: 600, Height: 600}
	req = BuildExpandRequest(ad, nil, selected, natural)
	if req.ImageTransform != saved {
		t.Errorf("transform = %+v", req.ImageTransform)
	}
	// A square image contained in 1000x500 renders 500x500.
	if req.ImageSize == nil || *req.ImageSize != (Size{Width: 500, Height: 500}) {
		t.Errorf("imageSize = %+v", req.ImageSize)
	}
	if req.ImageNaturalSize == nil || *req.ImageNaturalSize != (Size{Width: 600, Height: 600}) {
		t.Errorf("imageNaturalSize = %+v", req.ImageNaturalSize)
	}
}

func TestClientGenerate(t *testing.T) {
	var got Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("unexpected request %s %s", r.Method, r.Header.Get("Content-Type"))
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.Write([]byte(`{"imageUrl":"https://cdn.example.com/new.png","layouts":[{"document":{}}]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.Client(), Options{GenerateURL: srv.URL, Provider: "gemini"})
	res, err := c.Generate(context.Background(), BuildRequest(testAd(), nil, nil, nil, ""))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if res.Require() != nil || res.ImageURL != "https://cdn.example.com/new.png" {
		t.Errorf("result = %+v", res)
	}
	if string(res.Layout()) != `{"document":{}}` {
		t.Errorf("layout = %s", res.Layout())
	}
	if got.Provider != "gemini" || got.AdID != "ad-1" {
		t.Errorf("payload = %+v", got)
	}
}

func TestClientErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":"Rate limit exceeded"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.Client(), Options{GenerateURL: srv.URL})
	_, err := c.Generate(context.Background(), &Request{AdID: "ad-1"})
	if err == nil || !strings.Contains(err.Error(), "Rate limit exceeded") || !strings.Contains(err.Error(), "429") {
		t.Errorf("err = %v", err)
	}

	if c.Enabled(KindExpand) {
		t.Error("expand should not be enabled")
	}
	if _, err := c.Expand(context.Background(), &ExpandRequest{}); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("Expand err = %v, want ErrNotConfigured", err)
	}
}

func TestResultRequire(t *testing.T) {
	r := &Result{}
	if !errors.Is(r.Require(), ErrNoImage) {
		t.Error("empty result should require an image")
	}
	if r.Layout() != nil {
		t.Error("no layouts expected")
	}
}
