// Package review implements the client approval flow: share links, the
// public review page data and the one-shot response.
package review

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kozaktomas/adproof/internal/database"
)

var (
	// ErrInvalidToken is returned for unknown review tokens.
	ErrInvalidToken = errors.New("invalid or expired review link")
	// ErrFeedbackRequired is returned when changes are requested without feedback.
	ErrFeedbackRequired = errors.New("feedback is required when requesting changes")
	// ErrInvalidResponse is returned for responses outside the closed set.
	ErrInvalidResponse = errors.New("invalid review response")
	// ErrAdNotFound is returned when the token's ad no longer exists.
	ErrAdNotFound = errors.New("ad not found")
	// ErrInvalidEmail is returned when a link is requested without a usable client email.
	ErrInvalidEmail = errors.New("a valid client email is required")
)

// Service runs the review workflow over the database stores.
type Service struct {
	ads           database.AdStore
	versions      database.VersionStore
	reviews       database.ReviewStore
	notifications database.NotificationStore
	ttl           time.Duration
	now           func() time.Time
}

// NewService creates a review service issuing links valid for ttl.
func NewService(ads database.AdStore, versions database.VersionStore, reviews database.ReviewStore,
	notifications database.NotificationStore, ttl time.Duration) *Service {
	return &Service{
		ads:           ads,
		versions:      versions,
		reviews:       reviews,
		notifications: notifications,
		ttl:           ttl,
		now:           time.Now,
	}
}

// NewToken returns a random 40 character hex token.
func NewToken() string {
	a := uuid.New()
	b := uuid.New()
	return hex.EncodeToString(a[:]) + hex.EncodeToString(b[:4])
}

// LinkRequest is the input for CreateLink.
type LinkRequest struct {
	AdID        string `json:"ad_id"`
	ClientEmail string `json:"client_email"`
	ClientName  string `json:"client_name"`
}

// CreateLink issues a review token for the ad and moves the ad to in_review.
func (s *Service) CreateLink(ctx context.Context, req LinkRequest) (*database.ReviewToken, error) {
	email := strings.TrimSpace(req.ClientEmail)
	if email == "" || !strings.Contains(email, "@") {
		return nil, ErrInvalidEmail
	}
	ad, err := s.ads.GetAd(ctx, req.AdID)
	if err != nil {
		return nil, fmt.Errorf("get ad: %w", err)
	}
	if ad == nil {
		return nil, ErrAdNotFound
	}

	token := &database.ReviewToken{
		AdID:        ad.ID,
		Token:       NewToken(),
		ClientEmail: email,
		ClientName:  strings.TrimSpace(req.ClientName),
		ExpiresAt:   s.now().Add(s.ttl),
	}
	if err := s.reviews.CreateReviewToken(ctx, token); err != nil {
		return nil, fmt.Errorf("create review token: %w", err)
	}
	if err := s.ads.UpdateAdStatus(ctx, ad.ID, database.AdStatusInReview); err != nil {
		return nil, fmt.Errorf("update ad status: %w", err)
	}
	return token, nil
}

// Page is what the public review page shows.
type Page struct {
	Token     *database.ReviewToken `json:"token"`
	Ad        *database.Ad          `json:"ad,omitempty"`
	Version   *database.Version     `json:"version"`
	Submitted bool                  `json:"submitted"`
}

// Lookup resolves a token for the review page. A used token yields a
// submitted page without ad data; an expired one yields ErrTokenExpired.
func (s *Service) Lookup(ctx context.Context, token string) (*Page, error) {
	tok, err := s.reviews.GetReviewToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("get review token: %w", err)
	}
	if tok == nil {
		return nil, ErrInvalidToken
	}
	if err := tok.Usable(s.now()); err != nil {
		if errors.Is(err, database.ErrTokenUsed) {
			return &Page{Token: tok, Submitted: true}, nil
		}
		return nil, err
	}

	ad, err := s.ads.GetAd(ctx, tok.AdID)
	if err != nil {
		return nil, fmt.Errorf("get ad: %w", err)
	}
	if ad == nil {
		return nil, ErrAdNotFound
	}
	version, err := s.versions.GetSelectedVersion(ctx, ad.ID)
	if err != nil {
		return nil, fmt.Errorf("get selected version: %w", err)
	}
	return &Page{Token: tok, Ad: ad, Version: version}, nil
}

// Response is a client's submission on a review link.
type Response struct {
	Response database.ReviewResponse `json:"response"`
	Feedback string                  `json:"feedback"`
}

// Respond records the client's answer, moves the ad to the matching status
// and notifies the ad owner. A token accepts exactly one response.
func (s *Service) Respond(ctx context.Context, token string, resp Response) (*database.Notification, error) {
	if !resp.Response.IsValid() {
		return nil, ErrInvalidResponse
	}
	feedback := strings.TrimSpace(resp.Feedback)
	if resp.Response == database.ReviewChangesRequested && feedback == "" {
		return nil, ErrFeedbackRequired
	}

	tok, err := s.reviews.GetReviewToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("get review token: %w", err)
	}
	if tok == nil {
		return nil, ErrInvalidToken
	}
	now := s.now()
	if err := tok.Usable(now); err != nil {
		return nil, err
	}
	ad, err := s.ads.GetAd(ctx, tok.AdID)
	if err != nil {
		return nil, fmt.Errorf("get ad: %w", err)
	}
	if ad == nil {
		return nil, ErrAdNotFound
	}

	if err := s.reviews.SubmitReviewResponse(ctx, token, resp.Response, feedback, now); err != nil {
		return nil, err
	}
	if err := s.ads.UpdateAdStatus(ctx, ad.ID, resp.Response.AdStatus()); err != nil {
		return nil, fmt.Errorf("update ad status: %w", err)
	}

	n := notificationFor(ad, tok, resp.Response, feedback)
	if err := s.notifications.CreateNotification(ctx, n); err != nil {
		return nil, fmt.Errorf("create notification: %w", err)
	}
	return n, nil
}

func notificationFor(ad *database.Ad, tok *database.ReviewToken, resp database.ReviewResponse, feedback string) *database.Notification {
	n := &database.Notification{
		UserID:   ad.UserID,
		Type:     resp.NotificationType(),
		AdID:     ad.ID,
		Metadata: map[string]any{"client_email": tok.ClientEmail},
	}
	switch resp {
	case database.ReviewApproved:
		n.Title = "Ad Approved!"
		n.Message = fmt.Sprintf("%s approved %q", tok.Reviewer(), ad.DisplayName())
	case database.ReviewChangesRequested:
		n.Title = "Changes Requested"
		n.Message = fmt.Sprintf("%s requested changes on %q", tok.Reviewer(), ad.DisplayName())
		n.Metadata["feedback"] = feedback
	}
	return n
}
