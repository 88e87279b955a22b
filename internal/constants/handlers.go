// Package constants provides shared constants used across the codebase.
package constants

import "time"

// Handler pagination constants
const (
	// MaxHandlerPageSize caps the limit query parameter
	MaxHandlerPageSize = 500

	// DefaultNotificationLimit is the number of notifications returned by default
	DefaultNotificationLimit = 50
)

// Job constants
const (
	// EventChannelBuffer is the buffer size for event channels
	EventChannelBuffer = 100

	// JobRetention is how long finished generation jobs stay queryable
	JobRetention = time.Hour

	// JobPruneInterval is how often finished jobs are pruned
	JobPruneInterval = 10 * time.Minute
)

// File upload constants
const (
	// MaxUploadSize is the maximum file upload size in bytes (100MB)
	MaxUploadSize = 100 << 20
)
