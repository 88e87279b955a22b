package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/kozaktomas/adproof/internal/canvas"
	"github.com/kozaktomas/adproof/internal/config"
	"github.com/kozaktomas/adproof/internal/database"
	"github.com/kozaktomas/adproof/internal/storage"
	"github.com/kozaktomas/adproof/internal/web/middleware"
)

// AdsHandler handles ads and their uploaded assets.
type AdsHandler struct {
	config *config.Config
	log    zerolog.Logger
	store  *storage.FileStore
}

// NewAdsHandler creates a new ads handler
func NewAdsHandler(cfg *config.Config, log zerolog.Logger, store *storage.FileStore) *AdsHandler {
	return &AdsHandler{config: cfg, log: log, store: store}
}

// List returns ads, optionally filtered by ?status=a,b and ?publication_issue=
func (h *AdsHandler) List(w http.ResponseWriter, r *http.Request) {
	var filter database.AdFilter
	if raw := r.URL.Query().Get("status"); raw != "" {
		for part := range strings.SplitSeq(raw, ",") {
			status := database.AdStatus(strings.TrimSpace(part))
			if !status.IsValid() {
				respondError(w, http.StatusBadRequest, "invalid status: "+string(status))
				return
			}
			filter.Statuses = append(filter.Statuses, status)
		}
	}
	filter.PublicationIssueID = r.URL.Query().Get("publication_issue")
	if r.URL.Query().Get("mine") == "true" {
		filter.UserID = middleware.GetUserIDFromContext(r.Context())
	}

	ads, err := database.GetAdStore(r.Context())
	if err != nil {
		respondStoreError(w, h.log, err)
		return
	}
	list, err := ads.ListAds(r.Context(), filter)
	if err != nil {
		respondInternal(w, h.log, "failed to list ads", err)
		return
	}
	if list == nil {
		list = []database.Ad{}
	}
	respondJSON(w, http.StatusOK, list)
}

// CreateAdRequest is the body of POST /ads
type CreateAdRequest struct {
	ClientName         string               `json:"client_name"`
	AdName             string               `json:"ad_name"`
	PublicationID      string               `json:"publication_id"`
	PublicationIssueID string               `json:"publication_issue"`
	AdSizeID           string               `json:"ad_size_id"`
	AspectRatio        database.AspectRatio `json:"aspect_ratio"`
	SizeSpec           *database.SizeSpec   `json:"size_spec"`
	DPI                int                  `json:"dpi"`
	BleedPx            *int                 `json:"bleed_px"`
	SafePx             *int                 `json:"safe_px"`
	MinFontSize        *int                 `json:"min_font_size"`
	Brief              string               `json:"brief"`
	Copy               string               `json:"copy"`
	TargetDate         string               `json:"target_date"`
}

// Create creates a draft ad. Its size comes from the catalog ad size, an
// explicit size_spec, or the aspect ratio preset, in that order.
func (h *AdsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateAdRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.ClientName) == "" {
		respondError(w, http.StatusBadRequest, "client_name is required")
		return
	}
	if negative(req.BleedPx) || negative(req.SafePx) || negative(req.MinFontSize) || req.DPI < 0 {
		respondError(w, http.StatusBadRequest, "print settings must not be negative")
		return
	}
	if req.AspectRatio != "" && !req.AspectRatio.IsValid() {
		respondError(w, http.StatusBadRequest, "invalid aspect_ratio")
		return
	}

	ad := &database.Ad{
		UserID:             middleware.GetUserIDFromContext(r.Context()),
		ClientName:         strings.TrimSpace(req.ClientName),
		AdName:             strings.TrimSpace(req.AdName),
		PublicationID:      req.PublicationID,
		PublicationIssueID: req.PublicationIssueID,
		AspectRatio:        req.AspectRatio,
		DPI:                req.DPI,
		BleedPx:            req.BleedPx,
		SafePx:             req.SafePx,
		MinFontSize:        req.MinFontSize,
		Brief:              req.Brief,
		Copy:               req.Copy,
		Status:             database.AdStatusDraft,
	}
	if req.TargetDate != "" {
		date, err := time.Parse(time.DateOnly, req.TargetDate)
		if err != nil {
			respondError(w, http.StatusBadRequest, "target_date must be YYYY-MM-DD")
			return
		}
		ad.TargetDate = &date
	}

	if !h.resolveSize(w, r, ad, &req) {
		return
	}

	ads, err := database.GetAdStore(r.Context())
	if err != nil {
		respondStoreError(w, h.log, err)
		return
	}
	if err := ads.CreateAd(r.Context(), ad); err != nil {
		respondInternal(w, h.log, "failed to create ad", err)
		return
	}
	h.log.Info().Str("ad_id", ad.ID).Str("client", sanitizeForLog(ad.ClientName)).Msg("ad created")
	respondJSON(w, http.StatusCreated, ad)
}

func (h *AdsHandler) resolveSize(w http.ResponseWriter, r *http.Request, ad *database.Ad, req *CreateAdRequest) bool {
	switch {
	case req.AdSizeID != "":
		catalog, err := database.GetCatalogStore(r.Context())
		if err != nil {
			respondStoreError(w, h.log, err)
			return false
		}
		size, err := catalog.GetAdSize(r.Context(), req.AdSizeID)
		if err != nil {
			respondInternal(w, h.log, "failed to get ad size", err)
			return false
		}
		if size == nil {
			respondError(w, http.StatusBadRequest, "unknown ad_size_id")
			return false
		}
		ad.AdSizeID = size.ID
		ad.SizeSpec = database.SizeSpec{Width: size.WidthPx, Height: size.HeightPx}
		if ad.DPI == 0 {
			ad.DPI = size.DPI
		}
	case req.SizeSpec != nil:
		ad.SizeSpec = *req.SizeSpec
	case req.AspectRatio != "":
		size, ok := h.config.AspectRatioSize(string(req.AspectRatio))
		if !ok {
			respondError(w, http.StatusBadRequest, "no default size for aspect_ratio")
			return false
		}
		ad.SizeSpec = database.SizeSpec{Width: size.Width, Height: size.Height}
	default:
		respondError(w, http.StatusBadRequest, "one of ad_size_id, size_spec or aspect_ratio is required")
		return false
	}
	if ad.SizeSpec.Width <= 0 || ad.SizeSpec.Height <= 0 {
		respondError(w, http.StatusBadRequest, "size_spec must have positive dimensions")
		return false
	}
	return true
}

func negative(v *int) bool {
	return v != nil && *v < 0
}

// AdResponse is an ad with its resolved print document
type AdResponse struct {
	*database.Ad
	Document        canvas.DocumentSpec   `json:"document"`
	Publication     *database.Publication `json:"publication,omitempty"`
	SelectedVersion *database.Version     `json:"selected_version"`
}

// Get returns one ad with its document spec and selected version
func (h *AdsHandler) Get(w http.ResponseWriter, r *http.Request) {
	ac, ok := loadAd(w, r, h.log, urlID(r))
	if !ok {
		return
	}
	versions, err := database.GetVersionStore(r.Context())
	if err != nil {
		respondStoreError(w, h.log, err)
		return
	}
	selected, err := versions.GetSelectedVersion(r.Context(), ac.ad.ID)
	if err != nil {
		respondInternal(w, h.log, "failed to get selected version", err)
		return
	}
	respondJSON(w, http.StatusOK, AdResponse{
		Ad:              ac.ad,
		Document:        ac.doc(),
		Publication:     ac.pub,
		SelectedVersion: selected,
	})
}

// UpdateStatus sets the ad workflow status
func (h *AdsHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status database.AdStatus `json:"status"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if !req.Status.IsValid() {
		respondError(w, http.StatusBadRequest, "invalid status")
		return
	}

	ads, err := database.GetAdStore(r.Context())
	if err != nil {
		respondStoreError(w, h.log, err)
		return
	}
	if err := ads.UpdateAdStatus(r.Context(), urlID(r), req.Status); err != nil {
		if isNotFound(err) {
			respondError(w, http.StatusNotFound, "ad not found")
			return
		}
		respondInternal(w, h.log, "failed to update ad status", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"id": urlID(r), "status": req.Status})
}

// UpdateSpecs sets the ad's bleed, safe zone and minimum font overrides
func (h *AdsHandler) UpdateSpecs(w http.ResponseWriter, r *http.Request) {
	var specs database.AdSpecsUpdate
	if !decodeJSON(w, r, &specs) {
		return
	}
	if negative(specs.BleedPx) || negative(specs.SafePx) || negative(specs.MinFontSize) {
		respondError(w, http.StatusBadRequest, "print settings must not be negative")
		return
	}

	ads, err := database.GetAdStore(r.Context())
	if err != nil {
		respondStoreError(w, h.log, err)
		return
	}
	if err := ads.UpdateAdSpecs(r.Context(), urlID(r), specs); err != nil {
		if isNotFound(err) {
			respondError(w, http.StatusNotFound, "ad not found")
			return
		}
		respondInternal(w, h.log, "failed to update ad specs", err)
		return
	}

	ac, ok := loadAd(w, r, h.log, urlID(r))
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, AdResponse{Ad: ac.ad, Document: ac.doc(), Publication: ac.pub})
}

// ListAssets returns the ad's uploaded assets
func (h *AdsHandler) ListAssets(w http.ResponseWriter, r *http.Request) {
	ads, err := database.GetAdStore(r.Context())
	if err != nil {
		respondStoreError(w, h.log, err)
		return
	}
	assets, err := ads.ListAssets(r.Context(), urlID(r))
	if err != nil {
		respondInternal(w, h.log, "failed to list assets", err)
		return
	}
	if assets == nil {
		assets = []database.Asset{}
	}
	respondJSON(w, http.StatusOK, assets)
}

// UploadAsset stores a product or logo image for the ad
func (h *AdsHandler) UploadAsset(w http.ResponseWriter, r *http.Request) {
	ac, ok := loadAd(w, r, h.log, urlID(r))
	if !ok {
		return
	}

	img, err := readUploadedImage(r, "file")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	assetType := database.AssetType(r.FormValue("type"))
	if assetType == "" {
		assetType = database.AssetTypeProduct
	}
	if !assetType.IsValid() {
		respondError(w, http.StatusBadRequest, "type must be product or logo")
		return
	}

	key, err := h.store.Write(r.Context(), storageKey("assets", ac.ad.ID, img.Ext), img.Data)
	if err != nil {
		respondInternal(w, h.log, "failed to store asset", err)
		return
	}

	width, height := int(img.Size.Width), int(img.Size.Height)
	asset := &database.Asset{
		AdID:   ac.ad.ID,
		Type:   assetType,
		URL:    h.store.URL(key),
		Width:  &width,
		Height: &height,
		Name:   img.Filename,
	}
	ads, err := database.GetAdStore(r.Context())
	if err != nil {
		respondStoreError(w, h.log, err)
		return
	}
	if err := ads.CreateAsset(r.Context(), asset); err != nil {
		_ = h.store.Delete(r.Context(), key)
		respondInternal(w, h.log, "failed to create asset", err)
		return
	}
	respondJSON(w, http.StatusCreated, asset)
}
