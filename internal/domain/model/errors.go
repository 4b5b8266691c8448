package model

import "errors"

// Sentinel errors for domain values.
var (
	ErrInvalidWindow = errors.New("invalid request window")
)
