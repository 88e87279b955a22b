package handlers

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kozaktomas/adproof/internal/database"
	"github.com/kozaktomas/adproof/internal/web/middleware"
)

func intPtr(v int) *int { return &v }

func TestAdsHandler_Create(t *testing.T) {
	env := newTestEnv(t)
	h := NewAdsHandler(env.cfg, testLog, env.store)
	if err := env.catalog.UpsertAdSize(context.Background(), &database.AdSize{
		ID: "size-1", SizeID: "quarter", WidthPx: 1125, HeightPx: 1500, DPI: 300,
	}); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name       string
		body       map[string]any
		wantStatus int
		wantSize   database.SizeSpec
	}{
		{
			name:       "catalog size",
			body:       map[string]any{"client_name": "Acme", "ad_size_id": "size-1"},
			wantStatus: http.StatusCreated,
			wantSize:   database.SizeSpec{Width: 1125, Height: 1500},
		},
		{
			name:       "explicit size",
			body:       map[string]any{"client_name": "Acme", "size_spec": map[string]int{"width": 600, "height": 400}},
			wantStatus: http.StatusCreated,
			wantSize:   database.SizeSpec{Width: 600, Height: 400},
		},
		{
			name:       "aspect ratio preset",
			body:       map[string]any{"client_name": "Acme", "aspect_ratio": "4:3"},
			wantStatus: http.StatusCreated,
			wantSize:   database.SizeSpec{Width: 1200, Height: 900},
		},
		{
			name:       "missing size",
			body:       map[string]any{"client_name": "Acme"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "zero size",
			body:       map[string]any{"client_name": "Acme", "size_spec": map[string]int{"width": 0, "height": 400}},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "negative bleed",
			body:       map[string]any{"client_name": "Acme", "aspect_ratio": "4:3", "bleed_px": -1},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unknown aspect ratio",
			body:       map[string]any{"client_name": "Acme", "aspect_ratio": "5:4"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "missing client",
			body:       map[string]any{"aspect_ratio": "4:3"},
			wantStatus: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.Create(rec, jsonRequest(t, http.MethodPost, "/api/v1/ads", tt.body, nil))
			assertStatusCode(t, rec, tt.wantStatus)
			if tt.wantStatus != http.StatusCreated {
				return
			}
			var ad database.Ad
			parseJSONResponse(t, rec, &ad)
			if ad.SizeSpec != tt.wantSize || ad.Status != database.AdStatusDraft || ad.UserID != "user-1" {
				t.Errorf("created ad = %+v", ad)
			}
		})
	}
}

func TestAdsHandler_List(t *testing.T) {
	env := newTestEnv(t)
	h := NewAdsHandler(env.cfg, testLog, env.store)
	env.addAd("ad-1")
	approved := env.addAd("ad-2")
	if err := env.ads.UpdateAdStatus(context.Background(), approved.ID, database.AdStatusApproved); err != nil {
		t.Fatal(err)
	}

	rec := httptest.NewRecorder()
	h.List(rec, jsonRequest(t, http.MethodGet, "/api/v1/ads?status=approved", nil, nil))
	assertStatusCode(t, rec, http.StatusOK)
	var ads []database.Ad
	parseJSONResponse(t, rec, &ads)
	if len(ads) != 1 || ads[0].ID != "ad-2" {
		t.Errorf("filtered ads = %+v", ads)
	}

	rec = httptest.NewRecorder()
	h.List(rec, jsonRequest(t, http.MethodGet, "/api/v1/ads?status=bogus", nil, nil))
	assertStatusCode(t, rec, http.StatusBadRequest)
}

func TestAdsHandler_GetResolvesDocument(t *testing.T) {
	env := newTestEnv(t)
	h := NewAdsHandler(env.cfg, testLog, env.store)
	env.catalog.AddPublication(database.Publication{ID: "pub-1", Name: "Gazette", DPIDefault: 300, BleedPx: 38, SafePx: 75})
	ad := env.addAd("ad-1")
	ad.ID = "ad-pub"
	ad.PublicationID = "pub-1"
	ad.SafePx = intPtr(20)
	env.ads.AddAd(ad)

	rec := httptest.NewRecorder()
	h.Get(rec, jsonRequest(t, http.MethodGet, "/api/v1/ads/ad-pub", nil, map[string]string{"id": "ad-pub"}))
	assertStatusCode(t, rec, http.StatusOK)

	var resp struct {
		ID       string `json:"id"`
		Document struct {
			WidthPx int `json:"width_px"`
			BleedPx int `json:"bleed_px"`
			SafePx  int `json:"safe_px"`
		} `json:"document"`
	}
	parseJSONResponse(t, rec, &resp)
	if resp.ID != "ad-pub" || resp.Document.WidthPx != 1000 || resp.Document.BleedPx != 38 || resp.Document.SafePx != 20 {
		t.Errorf("response = %+v", resp)
	}

	rec = httptest.NewRecorder()
	h.Get(rec, jsonRequest(t, http.MethodGet, "/api/v1/ads/missing", nil, map[string]string{"id": "missing"}))
	assertStatusCode(t, rec, http.StatusNotFound)
}

func TestAdsHandler_UpdateStatusAndSpecs(t *testing.T) {
	env := newTestEnv(t)
	h := NewAdsHandler(env.cfg, testLog, env.store)
	env.addAd("ad-1")
	params := map[string]string{"id": "ad-1"}

	rec := httptest.NewRecorder()
	h.UpdateStatus(rec, jsonRequest(t, http.MethodPatch, "/", map[string]string{"status": "exported"}, params))
	assertStatusCode(t, rec, http.StatusOK)
	if got := env.ads.Ad("ad-1").Status; got != database.AdStatusExported {
		t.Errorf("status = %q", got)
	}

	rec = httptest.NewRecorder()
	h.UpdateStatus(rec, jsonRequest(t, http.MethodPatch, "/", map[string]string{"status": "published"}, params))
	assertStatusCode(t, rec, http.StatusBadRequest)

	rec = httptest.NewRecorder()
	h.UpdateStatus(rec, jsonRequest(t, http.MethodPatch, "/", map[string]string{"status": "draft"}, map[string]string{"id": "nope"}))
	assertStatusCode(t, rec, http.StatusNotFound)

	rec = httptest.NewRecorder()
	h.UpdateSpecs(rec, jsonRequest(t, http.MethodPatch, "/", map[string]int{"bleed_px": 12}, params))
	assertStatusCode(t, rec, http.StatusOK)
	if b := env.ads.Ad("ad-1").BleedPx; b == nil || *b != 12 {
		t.Errorf("bleed = %v", b)
	}

	rec = httptest.NewRecorder()
	h.UpdateSpecs(rec, jsonRequest(t, http.MethodPatch, "/", map[string]int{"safe_px": -3}, params))
	assertStatusCode(t, rec, http.StatusBadRequest)
}

func TestAdsHandler_UploadAsset(t *testing.T) {
	env := newTestEnv(t)
	h := NewAdsHandler(env.cfg, testLog, env.store)
	env.addAd("ad-1")

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	mw.WriteField("type", "logo")
	part, _ := mw.CreateFormFile("file", "logo.png")
	part.Write(pngBytes(t, 40, 20))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/ads/ad-1/assets", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req = requestWithChiParams(req, map[string]string{"id": "ad-1"})
	rec := httptest.NewRecorder()
	h.UploadAsset(rec, req)
	assertStatusCode(t, rec, http.StatusCreated)

	var asset database.Asset
	parseJSONResponse(t, rec, &asset)
	if asset.Type != database.AssetTypeLogo || asset.Width == nil || *asset.Width != 40 || *asset.Height != 20 {
		t.Errorf("asset = %+v", asset)
	}
	key, ok := env.store.KeyFromURL(asset.URL)
	if !ok {
		t.Fatalf("asset URL %q not in store", asset.URL)
	}
	if _, err := env.store.Read(context.Background(), key); err != nil {
		t.Errorf("stored asset: %v", err)
	}
}

func TestAdsHandler_UploadAssetRejectsNonImage(t *testing.T) {
	env := newTestEnv(t)
	h := NewAdsHandler(env.cfg, testLog, env.store)
	env.addAd("ad-1")

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, _ := mw.CreateFormFile("file", "notes.txt")
	part.Write([]byte("hello"))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	h.UploadAsset(rec, requestWithChiParams(req, map[string]string{"id": "ad-1"}))
	assertStatusCode(t, rec, http.StatusBadRequest)
	assertJSONError(t, rec, "file is not a supported image")
}

func TestAdsHandler_StoreErrors(t *testing.T) {
	resetStores(t)
	h := NewAdsHandler(testConfig(), testLog, nil)

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/api/v1/ads", nil))
	assertStatusCode(t, rec, http.StatusServiceUnavailable)

	env := newTestEnv(t)
	env.ads.ListError = errors.New("connection reset")
	h = NewAdsHandler(env.cfg, testLog, env.store)
	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/ads", nil)
	h.List(rec, req.WithContext(middleware.SetUserIDInContext(req.Context(), "user-1")))
	assertStatusCode(t, rec, http.StatusInternalServerError)
}
