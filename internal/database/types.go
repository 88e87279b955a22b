package database

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/kozaktomas/adproof/internal/canvas"
)

var (
	// ErrNotFound is returned by mutations that target a missing row.
	ErrNotFound = errors.New("not found")
	// ErrTokenExpired is returned for review tokens past their expiry.
	ErrTokenExpired = errors.New("review link has expired")
	// ErrTokenUsed is returned for review tokens that already received a response.
	ErrTokenUsed = errors.New("review link has already been used")
)

type Client struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SizePreset is a named size a publication accepts.
type SizePreset struct {
	Name   string `json:"name"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type Publication struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	DPIDefault  int          `json:"dpi_default"`
	MinFontSize int          `json:"min_font_size"`
	BleedPx     int          `json:"bleed_px"`
	SafePx      int          `json:"safe_px"`
	SizePresets []SizePreset `json:"size_presets"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

type PublicationIssue struct {
	ID            string    `json:"id"`
	PublicationID string    `json:"publication_id"`
	ClientID      string    `json:"client_id"`
	IssueDate     time.Time `json:"issue_date"`
	CreatedAt     time.Time `json:"created_at"`
}

// AdSize is a catalog entry of a standard print ad size.
type AdSize struct {
	ID        string    `json:"id"`
	SizeID    string    `json:"size_id"`
	Fraction  string    `json:"ad_size_fraction"`
	Words     string    `json:"ad_size_words"`
	WidthIn   float64   `json:"width_in"`
	HeightIn  float64   `json:"height_in"`
	DPI       int       `json:"dpi"`
	WidthPx   int       `json:"width_px"`
	HeightPx  int       `json:"height_px"`
	CreatedAt time.Time `json:"created_at"`
}

// SizeSpec is the ad's canonical size in pixels.
type SizeSpec struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type Ad struct {
	ID                 string      `json:"id"`
	UserID             string      `json:"user_id"`
	ClientName         string      `json:"client_name"`
	AdName             string      `json:"ad_name"`
	PublicationID      string      `json:"publication_id,omitempty"`
	PublicationIssueID string      `json:"publication_issue,omitempty"`
	AdSizeID           string      `json:"ad_size_id,omitempty"`
	AspectRatio        AspectRatio `json:"aspect_ratio,omitempty"`
	SizeSpec           SizeSpec    `json:"size_spec"`
	DPI                int         `json:"dpi"`
	BleedPx            *int        `json:"bleed_px"`
	SafePx             *int        `json:"safe_px"`
	MinFontSize        *int        `json:"min_font_size"`
	Brief              string      `json:"brief"`
	Copy               string      `json:"copy"`
	Status             AdStatus    `json:"status"`
	TargetDate         *time.Time  `json:"target_date,omitempty"`
	CreatedAt          time.Time   `json:"created_at"`
	UpdatedAt          time.Time   `json:"updated_at"`
}

// DocumentSpec resolves the ad's print document. Bleed and safe margins fall
// back from the ad's overrides to the publication's values, then to zero.
func (a *Ad) DocumentSpec(pub *Publication) canvas.DocumentSpec {
	doc := canvas.DocumentSpec{
		WidthPx:  a.SizeSpec.Width,
		HeightPx: a.SizeSpec.Height,
		DPI:      a.DPI,
	}
	switch {
	case a.BleedPx != nil:
		doc.BleedPx = *a.BleedPx
	case pub != nil:
		doc.BleedPx = pub.BleedPx
	}
	switch {
	case a.SafePx != nil:
		doc.SafePx = *a.SafePx
	case pub != nil:
		doc.SafePx = pub.SafePx
	}
	if doc.DPI == 0 && pub != nil {
		doc.DPI = pub.DPIDefault
	}
	return doc
}

// DisplayName is the ad name, or the client name for unnamed ads.
func (a *Ad) DisplayName() string {
	if a.AdName != "" {
		return a.AdName
	}
	return a.ClientName
}

// AdFilter narrows ListAds.
type AdFilter struct {
	Statuses           []AdStatus
	PublicationIssueID string
	UserID             string
}

// AdSpecsUpdate carries optional overrides; nil fields are left unchanged.
type AdSpecsUpdate struct {
	BleedPx     *int `json:"bleed_px"`
	SafePx      *int `json:"safe_px"`
	MinFontSize *int `json:"min_font_size"`
}

type Asset struct {
	ID        string    `json:"id"`
	AdID      string    `json:"ad_id"`
	Type      AssetType `json:"type"`
	URL       string    `json:"url"`
	Width     *int      `json:"width"`
	Height    *int      `json:"height"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Version is one image candidate for an ad. ImageTransform is nil until the
// user positions and saves it; it is stored in the editor's zoom 1 box.
type Version struct {
	ID             string            `json:"id"`
	AdID           string            `json:"ad_id"`
	Source         VersionSource     `json:"source"`
	LayoutJSON     json.RawMessage   `json:"layout_json,omitempty"`
	PreviewURL     string            `json:"preview_url"`
	IsSelected     bool              `json:"is_selected"`
	ImageTransform *canvas.Transform `json:"image_transform"`
	Status         VersionStatus     `json:"status"`
	CreatedAt      time.Time         `json:"created_at"`
}

type ReviewToken struct {
	ID          string          `json:"id"`
	AdID        string          `json:"ad_id"`
	Token       string          `json:"token"`
	ClientEmail string          `json:"client_email"`
	ClientName  string          `json:"client_name,omitempty"`
	ExpiresAt   time.Time       `json:"expires_at"`
	UsedAt      *time.Time      `json:"used_at"`
	Response    *ReviewResponse `json:"response"`
	Feedback    string          `json:"feedback,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Usable checks that the token can still receive a response at now.
func (t *ReviewToken) Usable(now time.Time) error {
	if t.UsedAt != nil {
		return ErrTokenUsed
	}
	if now.After(t.ExpiresAt) {
		return ErrTokenExpired
	}
	return nil
}

// Reviewer is the client's name, or email when no name was given.
func (t *ReviewToken) Reviewer() string {
	if t.ClientName != "" {
		return t.ClientName
	}
	return t.ClientEmail
}

type Notification struct {
	ID        string           `json:"id"`
	UserID    string           `json:"user_id"`
	Type      NotificationType `json:"type"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	AdID      string           `json:"ad_id,omitempty"`
	Metadata  map[string]any   `json:"metadata"`
	ReadAt    *time.Time       `json:"read_at"`
	CreatedAt time.Time        `json:"created_at"`
}
