package handlers

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/kozaktomas/adproof/internal/canvas"
	"github.com/kozaktomas/adproof/internal/database"
)

// adContext is an ad with its publication, enough to resolve the print document.
type adContext struct {
	ad  *database.Ad
	pub *database.Publication
}

func (c *adContext) doc() canvas.DocumentSpec {
	return c.ad.DocumentSpec(c.pub)
}

// loadAd fetches the ad and its publication, writing an error response and
// returning false when either lookup fails or the ad does not exist.
func loadAd(w http.ResponseWriter, r *http.Request, log zerolog.Logger, adID string) (*adContext, bool) {
	ads, err := database.GetAdStore(r.Context())
	if err != nil {
		respondStoreError(w, log, err)
		return nil, false
	}
	ad, err := ads.GetAd(r.Context(), adID)
	if err != nil {
		respondInternal(w, log, "failed to get ad", err)
		return nil, false
	}
	if ad == nil {
		respondError(w, http.StatusNotFound, "ad not found")
		return nil, false
	}

	ac := &adContext{ad: ad}
	if ad.PublicationID == "" {
		return ac, true
	}
	catalog, err := database.GetCatalogStore(r.Context())
	if err != nil {
		respondStoreError(w, log, err)
		return nil, false
	}
	if ac.pub, err = catalog.GetPublication(r.Context(), ad.PublicationID); err != nil {
		respondInternal(w, log, "failed to get publication", err)
		return nil, false
	}
	return ac, true
}

// versionContext is a version together with its ad context.
type versionContext struct {
	adContext
	version *database.Version
}

// loadVersion fetches the version named by the "id" URL parameter and its ad.
func loadVersion(w http.ResponseWriter, r *http.Request, log zerolog.Logger) (*versionContext, bool) {
	versions, err := database.GetVersionStore(r.Context())
	if err != nil {
		respondStoreError(w, log, err)
		return nil, false
	}
	v, err := versions.GetVersion(r.Context(), urlID(r))
	if err != nil {
		respondInternal(w, log, "failed to get version", err)
		return nil, false
	}
	if v == nil {
		respondError(w, http.StatusNotFound, "version not found")
		return nil, false
	}
	ac, ok := loadAd(w, r, log, v.AdID)
	if !ok {
		return nil, false
	}
	return &versionContext{adContext: *ac, version: v}, true
}
