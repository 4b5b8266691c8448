package config

import "errors"

var (
	// ErrInvalidConfig marks a config that loaded but failed validation.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrLoadConfig marks a file, dotenv or env value that could not be read.
	ErrLoadConfig = errors.New("load config failed")
	// ErrMissingCredentials is joined into ErrInvalidConfig when the project
	// URL or the anon key is absent.
	ErrMissingCredentials = errors.New("missing supabase credentials")
)
