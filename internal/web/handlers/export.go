package handlers

import (
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/kozaktomas/adproof/internal/compositor"
	"github.com/kozaktomas/adproof/internal/constants"
)

// ExportHandler renders print-resolution composites.
type ExportHandler struct {
	log      zerolog.Logger
	exporter *compositor.Exporter
	loader   *compositor.Loader
}

// NewExportHandler creates a new export handler
func NewExportHandler(log zerolog.Logger, exporter *compositor.Exporter, loader *compositor.Loader) *ExportHandler {
	return &ExportHandler{log: log, exporter: exporter, loader: loader}
}

// Export renders the version at the ad's print size.
// Query: format=png|jpeg, display_width= (zoom 1 box width; derived when absent).
func (h *ExportHandler) Export(w http.ResponseWriter, r *http.Request) {
	format, err := compositor.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	var displayWidth float64
	if raw := r.URL.Query().Get("display_width"); raw != "" {
		displayWidth, err = strconv.ParseFloat(raw, 64)
		if err != nil || displayWidth <= 0 {
			respondError(w, http.StatusBadRequest, "display_width must be a positive number")
			return
		}
	}

	vc, ok := loadVersion(w, r, h.log)
	if !ok {
		return
	}
	doc := vc.doc()
	if err := doc.Validate(); err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	res, err := h.exporter.Export(r.Context(), compositor.Request{
		PreviewURL:   vc.version.PreviewURL,
		Doc:          doc,
		Transform:    vc.version.ImageTransform,
		DisplayWidth: displayWidth,
		Format:       format,
	})
	if err != nil {
		h.log.Error().Err(err).Str("version_id", vc.version.ID).Msg("export failed")
		respondError(w, exportErrorStatus(err), fmt.Sprintf("export failed: %v", err))
		return
	}

	name := compositor.Filename(vc.ad.ClientName, vc.ad.AdName, vc.version.ID, constants.CompositeSuffix, format.Extension())
	h.log.Info().
		Str("version_id", vc.version.ID).
		Int("width", res.Width).
		Int("height", res.Height).
		Str("format", string(format)).
		Msg("exported composite")
	writeAttachment(w, res.ContentType, name, res.Composite)
}

// Original downloads the untouched source image of the version
func (h *ExportHandler) Original(w http.ResponseWriter, r *http.Request) {
	vc, ok := loadVersion(w, r, h.log)
	if !ok {
		return
	}
	data, err := h.loader.Fetch(r.Context(), vc.version.PreviewURL)
	if err != nil {
		respondError(w, http.StatusBadGateway, err.Error())
		return
	}

	contentType := http.DetectContentType(data)
	name := compositor.Filename(vc.ad.ClientName, vc.ad.AdName, vc.version.ID, constants.OriginalSuffix, extensionFor(contentType))
	writeAttachment(w, contentType, name, data)
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/png":
		return "png"
	case "image/jpeg":
		return "jpg"
	case "image/webp":
		return "webp"
	case "image/gif":
		return "gif"
	case "image/bmp":
		return "bmp"
	}
	return "bin"
}

func exportErrorStatus(err error) int {
	switch {
	case errors.Is(err, compositor.ErrImageLoad):
		return http.StatusBadGateway
	case errors.Is(err, compositor.ErrCanvasTooLarge):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func writeAttachment(w http.ResponseWriter, contentType, filename string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
