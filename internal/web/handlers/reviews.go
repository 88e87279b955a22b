package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/kozaktomas/adproof/internal/config"
	"github.com/kozaktomas/adproof/internal/database"
	"github.com/kozaktomas/adproof/internal/review"
)

// ReviewsHandler handles client review links and the public review page.
type ReviewsHandler struct {
	config *config.Config
	log    zerolog.Logger
}

// NewReviewsHandler creates a new reviews handler
func NewReviewsHandler(cfg *config.Config, log zerolog.Logger) *ReviewsHandler {
	return &ReviewsHandler{config: cfg, log: log}
}

func (h *ReviewsHandler) service(w http.ResponseWriter, r *http.Request) *review.Service {
	ctx := r.Context()
	ads, err := database.GetAdStore(ctx)
	if err != nil {
		respondStoreError(w, h.log, err)
		return nil
	}
	versions, err := database.GetVersionStore(ctx)
	if err != nil {
		respondStoreError(w, h.log, err)
		return nil
	}
	reviews, err := database.GetReviewStore(ctx)
	if err != nil {
		respondStoreError(w, h.log, err)
		return nil
	}
	notifications, err := database.GetNotificationStore(ctx)
	if err != nil {
		respondStoreError(w, h.log, err)
		return nil
	}
	ttl := time.Duration(h.config.Review.TokenTTLHours) * time.Hour
	return review.NewService(ads, versions, reviews, notifications, ttl)
}

// respondReviewError maps review workflow errors to HTTP statuses.
func (h *ReviewsHandler) respondReviewError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, review.ErrInvalidToken), errors.Is(err, review.ErrAdNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, database.ErrTokenExpired):
		respondError(w, http.StatusGone, err.Error())
	case errors.Is(err, database.ErrTokenUsed):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, review.ErrFeedbackRequired), errors.Is(err, review.ErrInvalidResponse),
		errors.Is(err, review.ErrInvalidEmail):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		respondInternal(w, h.log, "review request failed", err)
	}
}

// Create issues a review link for the ad
func (h *ReviewsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req review.LinkRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.AdID = urlID(r)

	svc := h.service(w, r)
	if svc == nil {
		return
	}
	token, err := svc.CreateLink(r.Context(), req)
	if err != nil {
		h.respondReviewError(w, err)
		return
	}
	h.log.Info().Str("ad_id", req.AdID).Time("expires_at", token.ExpiresAt).Msg("review link created")
	respondJSON(w, http.StatusCreated, map[string]any{
		"token":      token,
		"review_url": "/review/" + token.Token,
	})
}

// List returns the review links of the ad
func (h *ReviewsHandler) List(w http.ResponseWriter, r *http.Request) {
	reviews, err := database.GetReviewStore(r.Context())
	if err != nil {
		respondStoreError(w, h.log, err)
		return
	}
	tokens, err := reviews.ListReviewTokens(r.Context(), urlID(r))
	if err != nil {
		respondInternal(w, h.log, "failed to list review links", err)
		return
	}
	if tokens == nil {
		tokens = []database.ReviewToken{}
	}
	respondJSON(w, http.StatusOK, tokens)
}

// Page returns the public review page data for a token
func (h *ReviewsHandler) Page(w http.ResponseWriter, r *http.Request) {
	svc := h.service(w, r)
	if svc == nil {
		return
	}
	page, err := svc.Lookup(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		h.respondReviewError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, page)
}

// Respond records the client's approval or change request
func (h *ReviewsHandler) Respond(w http.ResponseWriter, r *http.Request) {
	var req review.Response
	if !decodeJSON(w, r, &req) {
		return
	}
	svc := h.service(w, r)
	if svc == nil {
		return
	}
	n, err := svc.Respond(r.Context(), chi.URLParam(r, "token"), req)
	if err != nil {
		h.respondReviewError(w, err)
		return
	}
	h.log.Info().Str("ad_id", n.AdID).Str("response", string(req.Response)).Msg("review response recorded")
	respondJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"response": req.Response,
	})
}
