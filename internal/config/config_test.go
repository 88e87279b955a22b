package config

import (
	"os"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"WEB_PORT", "WEB_HOST", "STORAGE_PATH", "EDITOR_MAX_WIDTH", "EDITOR_MAX_HEIGHT", "APP_ENV"} {
		os.Unsetenv(key)
	}

	cfg := Load()

	if cfg.Web.Port != 8085 {
		t.Errorf("expected default port 8085, got %d", cfg.Web.Port)
	}
	if cfg.Web.Host != "0.0.0.0" {
		t.Errorf("expected default host 0.0.0.0, got %s", cfg.Web.Host)
	}
	if cfg.Storage.Path != "./data" {
		t.Errorf("expected default storage path ./data, got %s", cfg.Storage.Path)
	}
	if cfg.Editor.MaxWidth != 800 || cfg.Editor.MaxHeight != 600 {
		t.Errorf("expected editor box 800x600, got %dx%d", cfg.Editor.MaxWidth, cfg.Editor.MaxHeight)
	}
	if cfg.IsDevelopment() {
		t.Error("expected production by default")
	}
}

func TestLoad_DatabaseConfig(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost:5432/adproof?sslmode=disable")
	t.Setenv("DATABASE_MAX_OPEN_CONNS", "10")
	t.Setenv("DATABASE_MAX_IDLE_CONNS", "invalid")

	cfg := Load()

	if cfg.Database.URL != "postgres://u:p@localhost:5432/adproof?sslmode=disable" {
		t.Errorf("unexpected database url %q", cfg.Database.URL)
	}
	if cfg.Database.MaxOpenConns != 10 {
		t.Errorf("expected max open conns 10, got %d", cfg.Database.MaxOpenConns)
	}
	if cfg.Database.MaxIdleConns != 5 {
		t.Errorf("expected default idle conns 5 for invalid input, got %d", cfg.Database.MaxIdleConns)
	}
}

func TestLoad_TrustProxy(t *testing.T) {
	t.Setenv("WEB_TRUST_PROXY", "")
	if Load().Web.TrustProxy {
		t.Error("expected forwarding headers untrusted by default")
	}
	t.Setenv("WEB_TRUST_PROXY", "true")
	if !Load().Web.TrustProxy {
		t.Error("expected WEB_TRUST_PROXY=true to enable RealIP")
	}
	t.Setenv("WEB_TRUST_PROXY", "maybe")
	if Load().Web.TrustProxy {
		t.Error("expected invalid value to fall back to false")
	}
}

func TestEnvInt(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  int
	}{
		{"valid", "42", 42},
		{"empty", "", 7},
		{"non-numeric", "abc", 7},
		{"negative", "-100", 7},
		{"zero", "0", 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("ADPROOF_TEST_INT", tt.value)
			if got := envInt("ADPROOF_TEST_INT", 7); got != tt.want {
				t.Errorf("envInt() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestLoad_AllowedOrigins(t *testing.T) {
	t.Setenv("WEB_ALLOWED_ORIGINS", " http://localhost:5173 , ,https://ads.example.com")

	cfg := Load()

	want := []string{"http://localhost:5173", "https://ads.example.com"}
	if len(cfg.Web.AllowedOrigins) != len(want) {
		t.Fatalf("expected %v, got %v", want, cfg.Web.AllowedOrigins)
	}
	for i := range want {
		if cfg.Web.AllowedOrigins[i] != want[i] {
			t.Errorf("origin %d: expected %s, got %s", i, want[i], cfg.Web.AllowedOrigins[i])
		}
	}
}

func TestLoad_GenerateConfig(t *testing.T) {
	t.Setenv("GENERATE_WEBHOOK_URL", "")
	if Load().Generate.Enabled() {
		t.Error("expected generation disabled without webhook")
	}

	t.Setenv("GENERATE_WEBHOOK_URL", "https://hooks.example.com/generate")
	t.Setenv("GENERATE_PROVIDER", "openai")
	cfg := Load()
	if !cfg.Generate.Enabled() {
		t.Error("expected generation enabled")
	}
	if cfg.Generate.Provider != "openai" {
		t.Errorf("expected provider openai, got %s", cfg.Generate.Provider)
	}
}

func TestPresets_AdSizes(t *testing.T) {
	cfg := Load()

	if len(cfg.Presets.AdSizes) == 0 {
		t.Fatal("expected embedded ad size presets")
	}

	full, ok := cfg.AdSizePreset("full")
	if !ok {
		t.Fatal("expected full page preset")
	}
	px := full.Pixels()
	if px.Width != 2550 || px.Height != 3300 {
		t.Errorf("expected full page 2550x3300 px, got %dx%d", px.Width, px.Height)
	}

	if _, ok := cfg.AdSizePreset("unknown"); ok {
		t.Error("expected unknown preset to be missing")
	}
}

func TestPresets_AspectRatios(t *testing.T) {
	cfg := Load()

	size, ok := cfg.AspectRatioSize("4:3")
	if !ok || size.Width != 2400 || size.Height != 1800 {
		t.Errorf("expected 4:3 to be 2400x1800, got %+v (%v)", size, ok)
	}
	for _, ratio := range []string{"1:1", "3:4", "9:16", "16:9"} {
		if _, ok := cfg.AspectRatioSize(ratio); !ok {
			t.Errorf("missing aspect ratio %s", ratio)
		}
	}
}

func TestEditorConfig_MaxBox(t *testing.T) {
	t.Setenv("EDITOR_MAX_WIDTH", "1000")
	t.Setenv("EDITOR_MAX_HEIGHT", "700")

	box := Load().Editor.MaxBox()
	if box.Width != 1000 || box.Height != 700 {
		t.Errorf("expected 1000x700 editor box, got %vx%v", box.Width, box.Height)
	}
}
