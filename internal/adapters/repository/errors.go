package repository

import "errors"

// Sentinel kinds for repository errors.
var (
	ErrOpen  = errors.New("open database")
	ErrQuery = errors.New("query rows")
)
