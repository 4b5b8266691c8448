package supabase

import (
	"errors"
	"fmt"
)

// Sentinel errors.
var (
	ErrUnexpectedStatus = errors.New("unexpected HTTP status")
	ErrDecodeResponse   = errors.New("decode response")
)

// StatusError carries a non-success response that ended an operation.
type StatusError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: HTTP %d: %s", e.Op, e.StatusCode, e.Body)
}

// Unwrap lets callers match ErrUnexpectedStatus.
func (e *StatusError) Unwrap() error { return ErrUnexpectedStatus }
