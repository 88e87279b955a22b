package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestFilesHandler_Serve(t *testing.T) {
	env := newTestEnv(t)
	h := NewFilesHandler(env.store)
	env.storeImage(t, "assets/ad-1/logo.png", 4, 4)

	tests := []struct {
		name       string
		key        string
		wantStatus int
	}{
		{"stored file", "assets/ad-1/logo.png", http.StatusOK},
		{"missing file", "assets/ad-1/other.png", http.StatusNotFound},
		{"path traversal", "../secret", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := requestWithChiParams(httptest.NewRequest(http.MethodGet, "/", nil), map[string]string{"*": tt.key})
			h.Serve(rec, req)
			assertStatusCode(t, rec, tt.wantStatus)
			if tt.wantStatus != http.StatusOK {
				return
			}
			assertContentType(t, rec, "image/png")
			if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
				t.Error("missing nosniff header")
			}
		})
	}
}
