package config

import (
	_ "embed"
	"math"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kozaktomas/adproof/internal/canvas"
	"github.com/kozaktomas/adproof/internal/constants"
)

//go:embed presets.yaml
var presetsYAML []byte

type Config struct {
	AppEnv   string
	Database DatabaseConfig
	Web      WebConfig
	Storage  StorageConfig
	Generate GenerateConfig
	Editor   EditorConfig
	Review   ReviewConfig
	Export   ExportConfig
	Presets  PresetsConfig
}

type DatabaseConfig struct {
	URL          string // PostgreSQL connection URL
	MaxOpenConns int    // Maximum open connections (default 25)
	MaxIdleConns int    // Maximum idle connections (default 5)
}

type WebConfig struct {
	Port           int
	Host           string
	APIKey         string   // Bearer key for the internal API; empty disables the check
	AllowedOrigins []string // CORS whitelist, comma separated in WEB_ALLOWED_ORIGINS
	TrustProxy     bool     // Take the client IP from X-Forwarded-For / X-Real-IP (only behind a trusted proxy)
}

type StorageConfig struct {
	Path      string // Root directory for stored objects (default ./data)
	PublicURL string // URL prefix objects are served under (default /api/v1/files)
}

type GenerateConfig struct {
	WebhookURL       string
	ExpandWebhookURL string
	Provider         string // Passed to the webhook; never read from ambient state
	TimeoutSeconds   int
}

// Enabled reports whether a generation webhook is configured.
func (g GenerateConfig) Enabled() bool {
	return g.WebhookURL != ""
}

type EditorConfig struct {
	MaxWidth  int // On-screen box the document is fitted into at zoom 1
	MaxHeight int
}

// MaxBox returns the editor box as canvas geometry.
func (e EditorConfig) MaxBox() canvas.Size {
	return canvas.Size{Width: float64(e.MaxWidth), Height: float64(e.MaxHeight)}
}

type ReviewConfig struct {
	TokenTTLHours      int
	RateLimitPerMinute int
}

type ExportConfig struct {
	Concurrency int
}

type PresetsConfig struct {
	AdSizes      []AdSizePreset       `yaml:"ad_sizes"`
	AspectRatios map[string]PixelSize `yaml:"aspect_ratios"`
}

type AdSizePreset struct {
	SizeID   string  `yaml:"size_id"`
	Fraction string  `yaml:"fraction"`
	Words    string  `yaml:"words"`
	WidthIn  float64 `yaml:"width_in"`
	HeightIn float64 `yaml:"height_in"`
	DPI      int     `yaml:"dpi"`
}

// Pixels returns the preset's size in pixels at its DPI.
func (p AdSizePreset) Pixels() PixelSize {
	return PixelSize{
		Width:  int(math.Round(p.WidthIn * float64(p.DPI))),
		Height: int(math.Round(p.HeightIn * float64(p.DPI))),
	}
}

type PixelSize struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

func envString(key, defaultVal string) string {
	if s := strings.TrimSpace(os.Getenv(key)); s != "" {
		return s
	}
	return defaultVal
}

func envBool(key string, defaultVal bool) bool {
	if b, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(key))); err == nil {
		return b
	}
	return defaultVal
}

func envList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func Load() *Config {
	var presets PresetsConfig
	if err := yaml.Unmarshal(presetsYAML, &presets); err != nil {
		// This is an embedded file so this error should never happen in practice
		panic("failed to unmarshal embedded presets.yaml: " + err.Error())
	}

	return &Config{
		AppEnv: envString("APP_ENV", "production"),
		Database: DatabaseConfig{
			URL:          os.Getenv("DATABASE_URL"),
			MaxOpenConns: envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns: envInt("DATABASE_MAX_IDLE_CONNS", 5),
		},
		Web: WebConfig{
			Port:           envInt("WEB_PORT", 8085),
			Host:           envString("WEB_HOST", "0.0.0.0"),
			APIKey:         os.Getenv("WEB_API_KEY"),
			AllowedOrigins: envList("WEB_ALLOWED_ORIGINS"),
			TrustProxy:     envBool("WEB_TRUST_PROXY", false),
		},
		Storage: StorageConfig{
			Path:      envString("STORAGE_PATH", "./data"),
			PublicURL: envString("STORAGE_PUBLIC_URL", "/api/v1/files"),
		},
		Generate: GenerateConfig{
			WebhookURL:       os.Getenv("GENERATE_WEBHOOK_URL"),
			ExpandWebhookURL: os.Getenv("EXPAND_WEBHOOK_URL"),
			Provider:         envString("GENERATE_PROVIDER", "gemini"),
			TimeoutSeconds:   envInt("GENERATE_TIMEOUT_SECONDS", constants.DefaultGenerateTimeoutSeconds),
		},
		Editor: EditorConfig{
			MaxWidth:  envInt("EDITOR_MAX_WIDTH", 800),
			MaxHeight: envInt("EDITOR_MAX_HEIGHT", 600),
		},
		Review: ReviewConfig{
			TokenTTLHours:      envInt("REVIEW_TOKEN_TTL_HOURS", constants.DefaultReviewTokenTTLHours),
			RateLimitPerMinute: envInt("REVIEW_RATE_LIMIT_PER_MINUTE", constants.DefaultReviewRateLimit),
		},
		Export: ExportConfig{
			Concurrency: envInt("EXPORT_CONCURRENCY", constants.DefaultExportConcurrency),
		},
		Presets: presets,
	}
}

// IsDevelopment reports whether APP_ENV is "development".
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// AdSizePreset returns the preset with the given size ID.
func (c *Config) AdSizePreset(sizeID string) (AdSizePreset, bool) {
	for _, p := range c.Presets.AdSizes {
		if p.SizeID == sizeID {
			return p, true
		}
	}
	return AdSizePreset{}, false
}

// AspectRatioSize returns the default pixel size for an aspect ratio such as "4:3".
func (c *Config) AspectRatioSize(ratio string) (PixelSize, bool) {
	size, ok := c.Presets.AspectRatios[ratio]
	return size, ok
}
