package handlers

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/kozaktomas/adproof/internal/canvas"
	"github.com/kozaktomas/adproof/internal/compositor"
	"github.com/kozaktomas/adproof/internal/config"
	"github.com/kozaktomas/adproof/internal/constants"
	"github.com/kozaktomas/adproof/internal/database"
	"github.com/kozaktomas/adproof/internal/storage"
)

// VersionsHandler handles image versions, their placement and the editor view.
type VersionsHandler struct {
	config *config.Config
	log    zerolog.Logger
	store  *storage.FileStore
	loader *compositor.Loader
}

// NewVersionsHandler creates a new versions handler
func NewVersionsHandler(cfg *config.Config, log zerolog.Logger, store *storage.FileStore, loader *compositor.Loader) *VersionsHandler {
	return &VersionsHandler{config: cfg, log: log, store: store, loader: loader}
}

// List returns the ad's versions, newest first
func (h *VersionsHandler) List(w http.ResponseWriter, r *http.Request) {
	versions, err := database.GetVersionStore(r.Context())
	if err != nil {
		respondStoreError(w, h.log, err)
		return
	}
	list, err := versions.ListVersions(r.Context(), urlID(r))
	if err != nil {
		respondInternal(w, h.log, "failed to list versions", err)
		return
	}
	if list == nil {
		list = []database.Version{}
	}
	respondJSON(w, http.StatusOK, list)
}

// Create adds a manual version from an uploaded capture (multipart "file")
// or a JSON body with preview_url. The new version becomes the selected one.
func (h *VersionsHandler) Create(w http.ResponseWriter, r *http.Request) {
	ac, ok := loadAd(w, r, h.log, urlID(r))
	if !ok {
		return
	}
	version := &database.Version{
		AdID:   ac.ad.ID,
		Source: database.VersionSourceManual,
		Status: database.VersionStatusPending,
	}

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		img, err := readUploadedImage(r, "file")
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		key, err := h.store.Write(r.Context(), storageKey("versions", ac.ad.ID, img.Ext), img.Data)
		if err != nil {
			respondInternal(w, h.log, "failed to store capture", err)
			return
		}
		version.PreviewURL = h.store.URL(key)
	} else {
		var req struct {
			PreviewURL string          `json:"preview_url"`
			LayoutJSON json.RawMessage `json:"layout_json"`
		}
		if !decodeJSON(w, r, &req) {
			return
		}
		if !h.validPreviewURL(req.PreviewURL) {
			respondError(w, http.StatusBadRequest, "preview_url must be an http(s) URL or a stored file")
			return
		}
		version.PreviewURL = req.PreviewURL
		version.LayoutJSON = req.LayoutJSON
	}

	versions, err := database.GetVersionStore(r.Context())
	if err != nil {
		respondStoreError(w, h.log, err)
		return
	}
	if err := versions.CreateVersion(r.Context(), version); err != nil {
		respondInternal(w, h.log, "failed to create version", err)
		return
	}
	respondJSON(w, http.StatusCreated, version)
}

func (h *VersionsHandler) validPreviewURL(raw string) bool {
	if _, ok := h.store.KeyFromURL(raw); ok {
		return true
	}
	u, err := url.Parse(raw)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Select makes one version of the ad the selected one
func (h *VersionsHandler) Select(w http.ResponseWriter, r *http.Request) {
	var req struct {
		VersionID string `json:"version_id"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.VersionID == "" {
		respondError(w, http.StatusBadRequest, "version_id is required")
		return
	}

	versions, err := database.GetVersionStore(r.Context())
	if err != nil {
		respondStoreError(w, h.log, err)
		return
	}
	if err := versions.SetSelectedVersion(r.Context(), urlID(r), req.VersionID); err != nil {
		if isNotFound(err) {
			respondError(w, http.StatusNotFound, "version not found for this ad")
			return
		}
		respondInternal(w, h.log, "failed to select version", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"ad_id": urlID(r), "selected_version_id": req.VersionID})
}

// UpdateStatus keeps or discards a version
func (h *VersionsHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status database.VersionStatus `json:"status"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if !req.Status.IsValid() {
		respondError(w, http.StatusBadRequest, "invalid status")
		return
	}

	versions, err := database.GetVersionStore(r.Context())
	if err != nil {
		respondStoreError(w, h.log, err)
		return
	}
	if err := versions.UpdateVersionStatus(r.Context(), urlID(r), req.Status); err != nil {
		if isNotFound(err) {
			respondError(w, http.StatusNotFound, "version not found")
			return
		}
		respondInternal(w, h.log, "failed to update version status", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"id": urlID(r), "status": req.Status})
}

// SaveTransform persists the version's image transform. The transform is in
// the editor's zoom 1 reference box; the scale is clamped to the editor bounds.
func (h *VersionsHandler) SaveTransform(w http.ResponseWriter, r *http.Request) {
	var t canvas.Transform
	if !decodeJSON(w, r, &t) {
		return
	}
	if err := t.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	t.Scale = canvas.ClampScale(t.Scale)

	versions, err := database.GetVersionStore(r.Context())
	if err != nil {
		respondStoreError(w, h.log, err)
		return
	}
	if err := versions.SaveTransform(r.Context(), urlID(r), t); err != nil {
		if isNotFound(err) {
			respondError(w, http.StatusNotFound, "version not found")
			return
		}
		respondInternal(w, h.log, "failed to save transform", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"id": urlID(r), "image_transform": t})
}

// EditorView is everything the browser editor needs to mount a version
type EditorView struct {
	VersionID    string              `json:"version_id"`
	PreviewURL   string              `json:"preview_url"`
	Document     canvas.DocumentSpec `json:"document"`
	DisplayScale float64             `json:"display_scale"`
	Zoom         float64             `json:"zoom"`
	Container    canvas.Size         `json:"container"`
	Guides       []canvas.Guide      `json:"guides"`
	Natural      *canvas.Size        `json:"natural,omitempty"`
	Transform    *canvas.Transform   `json:"transform"`
	ImageRect    *canvas.Rect        `json:"image_rect,omitempty"`
	HasSaved     bool                `json:"has_saved"`
	State        string              `json:"state"`
	Error        string              `json:"error,omitempty"`
}

// Editor returns the editor geometry for ?zoom=. The initial transform is the
// saved one, or the auto-fit the editor computes once the image is loaded.
func (h *VersionsHandler) Editor(w http.ResponseWriter, r *http.Request) {
	vc, ok := loadVersion(w, r, h.log)
	if !ok {
		return
	}
	doc := vc.doc()
	if err := doc.Validate(); err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	zoom := canvas.DefaultZoom
	if raw := r.URL.Query().Get("zoom"); raw != "" {
		z, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid zoom")
			return
		}
		zoom = canvas.ClampZoom(z)
	}
	opts := canvas.GuideOptions{
		ShowBleed: r.URL.Query().Get("bleed") != "false",
		ShowSafe:  r.URL.Query().Get("safe") != "false",
	}

	maxBox := h.config.Editor.MaxBox()
	scale := canvas.BaseFitScale(doc, maxBox)
	ctrl := canvas.NewController(canvas.ContainerSize(doc, maxBox, zoom), zoom)
	ctrl.Reset(vc.version.ImageTransform)

	view := EditorView{
		VersionID:    vc.version.ID,
		PreviewURL:   vc.version.PreviewURL,
		Document:     doc,
		DisplayScale: scale,
		Zoom:         zoom,
		Container:    ctrl.Container(),
		Guides:       canvas.Guides(doc, scale, zoom, opts),
		HasSaved:     ctrl.HasSaved(),
	}

	natural, err := h.loader.NaturalSize(r.Context(), vc.version.PreviewURL)
	if err == nil {
		err = ctrl.ImageLoaded(natural)
	}
	if err != nil {
		h.log.Warn().Err(err).Str("version_id", vc.version.ID).Msg("editor image failed to load")
		ctrl.ImageFailed(err)
		view.Error = err.Error()
	} else {
		t := ctrl.Transform()
		rect := ctrl.ImageRect()
		view.Natural = &natural
		view.Transform = &t
		view.ImageRect = &rect
	}
	view.State = ctrl.State().String()
	respondJSON(w, http.StatusOK, view)
}

// Thumbnail returns a small JPEG of the version image for version lists
func (h *VersionsHandler) Thumbnail(w http.ResponseWriter, r *http.Request) {
	vc, ok := loadVersion(w, r, h.log)
	if !ok {
		return
	}
	data, err := h.loader.Fetch(r.Context(), vc.version.PreviewURL)
	if err != nil {
		respondError(w, http.StatusBadGateway, err.Error())
		return
	}
	thumb, err := compositor.Thumbnail(data, constants.ThumbnailMaxSize)
	if err != nil {
		respondError(w, http.StatusBadGateway, err.Error())
		return
	}
	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "private, max-age=300")
	w.WriteHeader(http.StatusOK)
	w.Write(thumb)
}
