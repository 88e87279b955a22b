package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/adproof/internal/compositor"
	"github.com/kozaktomas/adproof/internal/config"
	"github.com/kozaktomas/adproof/internal/database"
	"github.com/kozaktomas/adproof/internal/database/mock"
	"github.com/kozaktomas/adproof/internal/logging"
	"github.com/kozaktomas/adproof/internal/storage"
	"github.com/kozaktomas/adproof/internal/web/middleware"
)

// testConfig creates a minimal config for testing
func testConfig() *config.Config {
	return &config.Config{
		Editor:   config.EditorConfig{MaxWidth: 800, MaxHeight: 600},
		Review:   config.ReviewConfig{TokenTTLHours: 168, RateLimitPerMinute: 10},
		Generate: config.GenerateConfig{Provider: "gemini", TimeoutSeconds: 5},
		Presets: config.PresetsConfig{
			AspectRatios: map[string]config.PixelSize{"4:3": {Width: 1200, Height: 900}},
		},
	}
}

// resetStores clears registered stores for the test and afterwards.
func resetStores(t *testing.T) {
	t.Helper()
	database.ResetForTesting()
	t.Cleanup(database.ResetForTesting)
}

// testEnv holds registered mock stores and a temp file store.
type testEnv struct {
	cfg           *config.Config
	catalog       *mock.MockCatalogStore
	ads           *mock.MockAdStore
	versions      *mock.MockVersionStore
	reviews       *mock.MockReviewStore
	notifications *mock.MockNotificationStore
	store         *storage.FileStore
	loader        *compositor.Loader
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	resetStores(t)

	store, err := storage.NewFileStore(t.TempDir(), "/api/v1/files")
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	env := &testEnv{
		cfg:           testConfig(),
		catalog:       mock.NewMockCatalogStore(),
		ads:           mock.NewMockAdStore(),
		versions:      mock.NewMockVersionStore(),
		reviews:       mock.NewMockReviewStore(),
		notifications: mock.NewMockNotificationStore(),
		store:         store,
		loader:        compositor.NewLoader(nil, store),
	}
	database.RegisterPostgresBackend(
		func() database.CatalogStore { return env.catalog },
		func() database.AdStore { return env.ads },
		func() database.VersionStore { return env.versions },
	)
	database.RegisterReviewStore(func() database.ReviewStore { return env.reviews })
	database.RegisterNotificationStore(func() database.NotificationStore { return env.notifications })
	return env
}

// storeImage writes a solid PNG into the file store and returns its URL.
func (e *testEnv) storeImage(t *testing.T, key string, w, h int) string {
	t.Helper()
	k, err := e.store.Write(context.Background(), key, pngBytes(t, w, h))
	if err != nil {
		t.Fatalf("store image: %v", err)
	}
	return e.store.URL(k)
}

// addAd stores a 1000x500 ad owned by user-1 and returns it.
func (e *testEnv) addAd(id string) database.Ad {
	ad := database.Ad{
		ID:         id,
		UserID:     "user-1",
		ClientName: "Acme",
		AdName:     "Spring Sale",
		SizeSpec:   database.SizeSpec{Width: 1000, Height: 500},
		DPI:        300,
		Status:     database.AdStatusDraft,
	}
	e.ads.AddAd(ad)
	return ad
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, color.RGBA{R: 200, G: 30, B: 30, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

var testLog = logging.Nop()

// requestWithChiParams creates a request with chi URL parameters
func requestWithChiParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// jsonRequest builds a request with a JSON body, chi params and an acting user.
func jsonRequest(t *testing.T, method, path string, body any, params map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req = req.WithContext(middleware.SetUserIDInContext(req.Context(), "user-1"))
	return requestWithChiParams(req, params)
}

// parseJSONResponse parses a JSON response body into the target type
func parseJSONResponse(t *testing.T, recorder *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.Unmarshal(recorder.Body.Bytes(), target); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nBody: %s", err, recorder.Body.String())
	}
}

// assertStatusCode checks if the response has the expected status code
func assertStatusCode(t *testing.T, recorder *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if recorder.Code != expected {
		t.Errorf("expected status %d, got %d\nBody: %s", expected, recorder.Code, recorder.Body.String())
	}
}

// assertContentType checks if the response has the expected content type
func assertContentType(t *testing.T, recorder *httptest.ResponseRecorder, expected string) {
	t.Helper()
	ct := recorder.Header().Get("Content-Type")
	if ct != expected {
		t.Errorf("expected Content-Type '%s', got '%s'", expected, ct)
	}
}

// assertJSONError checks if the response is a JSON error with the expected message
func assertJSONError(t *testing.T, recorder *httptest.ResponseRecorder, expectedMessage string) {
	t.Helper()
	var result map[string]string
	if err := json.Unmarshal(recorder.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse error response: %v\nBody: %s", err, recorder.Body.String())
	}
	if result["error"] != expectedMessage {
		t.Errorf("expected error '%s', got '%s'", expectedMessage, result["error"])
	}
}
