package handlers

import (
	"net/http"

	"github.com/kozaktomas/adproof/internal/canvas"
	"github.com/kozaktomas/adproof/internal/config"
	"github.com/kozaktomas/adproof/internal/database"
	"github.com/kozaktomas/adproof/internal/generate"
)

// ConfigHandler handles configuration endpoints
type ConfigHandler struct {
	config    *config.Config
	generator *generate.Client
}

// NewConfigHandler creates a new config handler
func NewConfigHandler(cfg *config.Config, generator *generate.Client) *ConfigHandler {
	return &ConfigHandler{
		config:    cfg,
		generator: generator,
	}
}

// ConfigResponse represents the configuration response
type ConfigResponse struct {
	Editor       EditorLimits                `json:"editor"`
	Generation   GenerationInfo              `json:"generation"`
	Database     bool                        `json:"database"`
	AspectRatios map[string]config.PixelSize `json:"aspect_ratios"`
}

// EditorLimits are the bounds the browser editor enforces
type EditorLimits struct {
	MaxBox      canvas.Size `json:"max_box"`
	MinZoom     float64     `json:"min_zoom"`
	MaxZoom     float64     `json:"max_zoom"`
	ZoomStep    float64     `json:"zoom_step"`
	MinScale    float64     `json:"min_scale"`
	MaxScale    float64     `json:"max_scale"`
	DefaultZoom float64     `json:"default_zoom"`
}

// GenerationInfo reports which webhook flows are available
type GenerationInfo struct {
	Provider   string `json:"provider"`
	Generate   bool   `json:"generate"`
	BigChanges bool   `json:"big_changes"`
	Expand     bool   `json:"expand"`
}

// Get returns the available configuration
func (h *ConfigHandler) Get(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, ConfigResponse{
		Editor: EditorLimits{
			MaxBox:      h.config.Editor.MaxBox(),
			MinZoom:     canvas.MinZoom,
			MaxZoom:     canvas.MaxZoom,
			ZoomStep:    canvas.ZoomStep,
			MinScale:    canvas.MinScale,
			MaxScale:    canvas.MaxScale,
			DefaultZoom: canvas.DefaultZoom,
		},
		Generation: GenerationInfo{
			Provider:   h.generator.Provider(),
			Generate:   h.generator.Enabled(generate.KindGenerate),
			BigChanges: h.generator.Enabled(generate.KindBigChanges),
			Expand:     h.generator.Enabled(generate.KindExpand),
		},
		Database:     database.IsInitialized(),
		AspectRatios: h.config.Presets.AspectRatios,
	})
}
