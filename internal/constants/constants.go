// Package constants provides shared constants used across the codebase.
// Centralizing these values ensures consistency and makes them easier to modify.
package constants

// Image constants
const (
	// MaxImageBytes is the largest preview image the compositor will fetch (50MB)
	MaxImageBytes = 50 << 20

	// MaxSourcePixels is the largest decoded preview image in pixels (100 megapixels)
	MaxSourcePixels = 100_000_000

	// ThumbnailMaxSize is the maximum dimension (width or height) of asset thumbnails
	ThumbnailMaxSize = 480
)

// Review constants
const (
	// DefaultReviewTokenTTLHours is how long a review link stays valid
	DefaultReviewTokenTTLHours = 168

	// DefaultReviewRateLimit is the number of review responses allowed per client IP per minute
	DefaultReviewRateLimit = 10
)

// Export constants
const (
	// DefaultExportConcurrency is the default number of ads exported in parallel
	DefaultExportConcurrency = 4

	// CompositeSuffix and OriginalSuffix name the two export artifacts
	CompositeSuffix = "composite"
	OriginalSuffix  = "original"
)

// Generation constants
const (
	// DefaultGenerateTimeoutSeconds bounds a single webhook call
	DefaultGenerateTimeoutSeconds = 180
)
