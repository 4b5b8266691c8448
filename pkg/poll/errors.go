package poll

import "errors"

// ErrTimeout is returned when the poll budget runs out before the condition holds.
var ErrTimeout = errors.New("poll budget exhausted")
