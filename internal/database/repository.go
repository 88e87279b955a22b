package database

import (
	"context"
	"time"

	"github.com/kozaktomas/adproof/internal/canvas"
)

// CatalogStore provides access to clients, publications, issues and ad sizes
type CatalogStore interface {
	ListClients(ctx context.Context) ([]Client, error)
	// GetClient returns nil if the client does not exist
	GetClient(ctx context.Context, id string) (*Client, error)
	CreateClient(ctx context.Context, client *Client) error

	ListPublications(ctx context.Context) ([]Publication, error)
	// GetPublication returns nil if the publication does not exist
	GetPublication(ctx context.Context, id string) (*Publication, error)
	CreatePublication(ctx context.Context, pub *Publication) error

	// ListPublicationIssues returns issues of a publication ordered by issue date
	ListPublicationIssues(ctx context.Context, publicationID string) ([]PublicationIssue, error)
	CreatePublicationIssue(ctx context.Context, issue *PublicationIssue) error

	ListAdSizes(ctx context.Context) ([]AdSize, error)
	// GetAdSize returns nil if the ad size does not exist
	GetAdSize(ctx context.Context, id string) (*AdSize, error)
	// UpsertAdSize inserts or updates an ad size keyed by SizeID
	UpsertAdSize(ctx context.Context, size *AdSize) error
}

// AdStore provides access to ads and their uploaded assets
type AdStore interface {
	// ListAds returns ads matching the filter, newest first
	ListAds(ctx context.Context, filter AdFilter) ([]Ad, error)
	// GetAd returns nil if the ad does not exist
	GetAd(ctx context.Context, id string) (*Ad, error)
	CreateAd(ctx context.Context, ad *Ad) error
	// UpdateAdStatus returns ErrNotFound if the ad does not exist
	UpdateAdStatus(ctx context.Context, id string, status AdStatus) error
	// UpdateAdSpecs sets the non-nil overrides, returns ErrNotFound if the ad does not exist
	UpdateAdSpecs(ctx context.Context, id string, specs AdSpecsUpdate) error

	ListAssets(ctx context.Context, adID string) ([]Asset, error)
	CreateAsset(ctx context.Context, asset *Asset) error
}

// VersionStore provides access to generated image versions
type VersionStore interface {
	// ListVersions returns versions of an ad, newest first
	ListVersions(ctx context.Context, adID string) ([]Version, error)
	// GetVersion returns nil if the version does not exist
	GetVersion(ctx context.Context, id string) (*Version, error)
	// GetSelectedVersion returns nil if the ad has no selected version
	GetSelectedVersion(ctx context.Context, adID string) (*Version, error)
	// CreateVersion inserts a selected version and deselects the ad's other versions
	CreateVersion(ctx context.Context, version *Version) error
	// SetSelectedVersion selects exactly one version of the ad
	SetSelectedVersion(ctx context.Context, adID, versionID string) error
	UpdateVersionStatus(ctx context.Context, id string, status VersionStatus) error
	// SaveTransform stores the image transform; saving the same value twice is a no-op
	SaveTransform(ctx context.Context, id string, t canvas.Transform) error
}

// ReviewStore provides access to client review links
type ReviewStore interface {
	CreateReviewToken(ctx context.Context, token *ReviewToken) error
	// GetReviewToken returns nil if the token does not exist
	GetReviewToken(ctx context.Context, token string) (*ReviewToken, error)
	ListReviewTokens(ctx context.Context, adID string) ([]ReviewToken, error)
	// SubmitReviewResponse marks the token used. Returns ErrTokenUsed if it already was.
	SubmitReviewResponse(ctx context.Context, token string, response ReviewResponse, feedback string, at time.Time) error
}

// NotificationStore provides access to in-app notifications
type NotificationStore interface {
	CreateNotification(ctx context.Context, n *Notification) error
	// ListNotifications returns the user's newest notifications first
	ListNotifications(ctx context.Context, userID string, limit int) ([]Notification, error)
	UnreadCount(ctx context.Context, userID string) (int, error)
	// MarkRead returns ErrNotFound if the notification does not belong to the user
	MarkRead(ctx context.Context, userID, id string) error
	MarkAllRead(ctx context.Context, userID string) error
}
