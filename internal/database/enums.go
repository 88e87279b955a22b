package database

import "fmt"

// AdStatus is the workflow state of an ad.
type AdStatus string

const (
	AdStatusDraft    AdStatus = "draft"
	AdStatusInReview AdStatus = "in_review"
	AdStatusApproved AdStatus = "approved"
	AdStatusExported AdStatus = "exported"
)

// IsValid returns true if the status is a known ad status.
func (s AdStatus) IsValid() bool {
	switch s {
	case AdStatusDraft, AdStatusInReview, AdStatusApproved, AdStatusExported:
		return true
	}
	return false
}

// VersionStatus is the curation state of a generated version.
type VersionStatus string

const (
	VersionStatusPending   VersionStatus = "pending"
	VersionStatusKept      VersionStatus = "kept"
	VersionStatusDiscarded VersionStatus = "discarded"
)

func (s VersionStatus) IsValid() bool {
	switch s {
	case VersionStatusPending, VersionStatusKept, VersionStatusDiscarded:
		return true
	}
	return false
}

// VersionSource tells how a version's image was produced.
type VersionSource string

const (
	VersionSourceAI     VersionSource = "ai"
	VersionSourceManual VersionSource = "manual"
)

func (s VersionSource) IsValid() bool {
	switch s {
	case VersionSourceAI, VersionSourceManual:
		return true
	}
	return false
}

// AssetType classifies uploaded ad assets.
type AssetType string

const (
	AssetTypeProduct AssetType = "product"
	AssetTypeLogo    AssetType = "logo"
)

func (t AssetType) IsValid() bool {
	switch t {
	case AssetTypeProduct, AssetTypeLogo:
		return true
	}
	return false
}

// ReviewResponse is a client's answer on a review link.
type ReviewResponse string

const (
	ReviewApproved         ReviewResponse = "approved"
	ReviewChangesRequested ReviewResponse = "changes_requested"
)

func (r ReviewResponse) IsValid() bool {
	switch r {
	case ReviewApproved, ReviewChangesRequested:
		return true
	}
	return false
}

// AdStatus returns the ad status a review response moves the ad to.
func (r ReviewResponse) AdStatus() AdStatus {
	switch r {
	case ReviewApproved:
		return AdStatusApproved
	case ReviewChangesRequested:
		return AdStatusDraft
	}
	panic(fmt.Sprintf("unhandled review response %q", string(r)))
}

// NotificationType is the kind of in-app notification.
type NotificationType string

const (
	NotificationReviewApproved         NotificationType = "review_approved"
	NotificationReviewChangesRequested NotificationType = "review_changes_requested"
	NotificationAdGenerated            NotificationType = "ad_generated"
	NotificationSystem                 NotificationType = "system"
)

func (t NotificationType) IsValid() bool {
	switch t {
	case NotificationReviewApproved, NotificationReviewChangesRequested, NotificationAdGenerated, NotificationSystem:
		return true
	}
	return false
}

// NotificationType returns the notification emitted for a review response.
func (r ReviewResponse) NotificationType() NotificationType {
	switch r {
	case ReviewApproved:
		return NotificationReviewApproved
	case ReviewChangesRequested:
		return NotificationReviewChangesRequested
	}
	panic(fmt.Sprintf("unhandled review response %q", string(r)))
}

// AspectRatio is the aspect ratio chosen for ads without a publication size.
type AspectRatio string

const (
	AspectSquare    AspectRatio = "1:1"
	AspectPortrait  AspectRatio = "3:4"
	AspectLandscape AspectRatio = "4:3"
	AspectStory     AspectRatio = "9:16"
	AspectWide      AspectRatio = "16:9"
)

func (a AspectRatio) IsValid() bool {
	switch a {
	case AspectSquare, AspectPortrait, AspectLandscape, AspectStory, AspectWide:
		return true
	}
	return false
}
