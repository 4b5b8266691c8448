package probe

import "errors"

// Sentinel errors reported in Result.Err.
var (
	ErrTriggerRejected = errors.New("trigger not accepted")
	ErrNoRows          = errors.New("no rows within poll budget")
)
