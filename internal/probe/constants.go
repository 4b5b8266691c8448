package probe

import "time"

// Defaults mirrored from config.New for callers that build a Config by hand.
const (
	DefaultFunctionName = "update-hourly-details"
	DefaultTable        = "hourly_details"
	DefaultSampleSize   = 5
	DefaultPollInterval = 3 * time.Second
	DefaultPollTimeout  = 120 * time.Second
)

// File permission constants.
const (
	directoryPermission = 0750
	filePermission      = 0600
)
