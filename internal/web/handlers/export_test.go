package handlers

import (
	"bytes"
	"image/png"
	"mime"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kozaktomas/adproof/internal/canvas"
	"github.com/kozaktomas/adproof/internal/compositor"
	"github.com/kozaktomas/adproof/internal/constants"
	"github.com/kozaktomas/adproof/internal/database"
)

func newExportHandler(env *testEnv) *ExportHandler {
	return NewExportHandler(testLog, compositor.NewExporter(env.loader, env.cfg.Editor.MaxBox()), env.loader)
}

func attachmentName(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	disposition, params, err := mime.ParseMediaType(rec.Header().Get("Content-Disposition"))
	if err != nil || disposition != "attachment" {
		t.Fatalf("Content-Disposition = %q (%v)", rec.Header().Get("Content-Disposition"), err)
	}
	return params["filename"]
}

func TestExportHandler_ExportPNG(t *testing.T) {
	env := newTestEnv(t)
	h := newExportHandler(env)
	env.addAd("ad-1")
	url := env.storeImage(t, "versions/ad-1/a.png", 400, 200)
	env.versions.AddVersion(database.Version{
		ID: "v-1", AdID: "ad-1", PreviewURL: url,
		ImageTransform: &canvas.Transform{X: 0, Y: 0, Scale: 1},
	})

	rec := httptest.NewRecorder()
	h.Export(rec, jsonRequest(t, http.MethodGet, "/api/v1/versions/v-1/export", nil, map[string]string{"id": "v-1"}))
	assertStatusCode(t, rec, http.StatusOK)
	assertContentType(t, rec, "image/png")

	want := compositor.Filename("Acme", "Spring Sale", "v-1", constants.CompositeSuffix, "png")
	if got := attachmentName(t, rec); got != want {
		t.Errorf("filename = %q, want %q", got, want)
	}
	img, err := png.Decode(bytes.NewReader(rec.Body.Bytes()))
	if err != nil {
		t.Fatalf("decode composite: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 1000 || b.Dy() != 500 {
		t.Errorf("composite size = %dx%d, want 1000x500", b.Dx(), b.Dy())
	}
}

func TestExportHandler_ExportJPEG(t *testing.T) {
	env := newTestEnv(t)
	h := newExportHandler(env)
	env.addAd("ad-1")
	url := env.storeImage(t, "versions/ad-1/a.png", 100, 100)
	env.versions.AddVersion(database.Version{ID: "v-1", AdID: "ad-1", PreviewURL: url})

	rec := httptest.NewRecorder()
	h.Export(rec, jsonRequest(t, http.MethodGet, "/?format=jpg&display_width=800", nil, map[string]string{"id": "v-1"}))
	assertStatusCode(t, rec, http.StatusOK)
	assertContentType(t, rec, "image/jpeg")
	if name := attachmentName(t, rec); !strings.HasSuffix(name, ".jpg") {
		t.Errorf("filename = %q", name)
	}
}

func TestExportHandler_ExportErrors(t *testing.T) {
	env := newTestEnv(t)
	h := newExportHandler(env)
	env.addAd("ad-1")
	env.versions.AddVersion(database.Version{ID: "v-1", AdID: "ad-1", PreviewURL: "/api/v1/files/versions/ad-1/missing.png"})
	params := map[string]string{"id": "v-1"}

	tests := []struct {
		name       string
		target     string
		params     map[string]string
		wantStatus int
	}{
		{"bad format", "/?format=tiff", params, http.StatusBadRequest},
		{"bad display width", "/?display_width=-5", params, http.StatusBadRequest},
		{"missing image", "/", params, http.StatusBadGateway},
		{"unknown version", "/", map[string]string{"id": "nope"}, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.Export(rec, jsonRequest(t, http.MethodGet, tt.target, nil, tt.params))
			assertStatusCode(t, rec, tt.wantStatus)
		})
	}
}

func TestExportHandler_Original(t *testing.T) {
	env := newTestEnv(t)
	h := newExportHandler(env)
	env.addAd("ad-1")
	url := env.storeImage(t, "versions/ad-1/a.png", 30, 20)
	env.versions.AddVersion(database.Version{ID: "v-1", AdID: "ad-1", PreviewURL: url})

	rec := httptest.NewRecorder()
	h.Original(rec, jsonRequest(t, http.MethodGet, "/", nil, map[string]string{"id": "v-1"}))
	assertStatusCode(t, rec, http.StatusOK)
	assertContentType(t, rec, "image/png")

	want := compositor.Filename("Acme", "Spring Sale", "v-1", constants.OriginalSuffix, "png")
	if got := attachmentName(t, rec); got != want {
		t.Errorf("filename = %q, want %q", got, want)
	}
	if !bytes.Equal(rec.Body.Bytes(), pngBytes(t, 30, 20)) {
		t.Error("original bytes differ from the stored file")
	}
}

func TestExtensionFor(t *testing.T) {
	tests := map[string]string{
		"image/png":                "png",
		"image/jpeg":               "jpg",
		"image/webp":               "webp",
		"application/octet-stream": "bin",
	}
	for ct, want := range tests {
		if got := extensionFor(ct); got != want {
			t.Errorf("extensionFor(%q) = %q, want %q", ct, got, want)
		}
	}
}
