// Package config defines probe configuration structures and loading hooks.
//
// Conventions:
// - Defaults come from New; Load layers file and environment on top.
// - Validate runs after overrides and before a run touches the network.
// - External errors are wrapped with this package's sentinel errors.
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Read sources.
const (
	ReadSourceREST     = "rest"
	ReadSourcePostgres = "postgres"
)

// Config contains process configuration.
type Config struct {
	// SupabaseURL is the project base URL, e.g. https://abc.supabase.co.
	SupabaseURL string `koanf:"supabase_url" validate:"required,url"`

	// SupabaseAnonKey is sent as bearer token and apikey header.
	SupabaseAnonKey string `koanf:"supabase_anon_key" validate:"required"`

	// FunctionName is the edge function that starts the hourly update.
	FunctionName string `koanf:"function_name" validate:"required"`

	// Table is polled for rows inside the request window.
	Table string `koanf:"table" validate:"required"`

	// PollInterval is the fixed delay between empty reads.
	PollInterval time.Duration `koanf:"poll_interval" validate:"gt=0"`

	// PollTimeout is the wall-clock budget for the whole poll loop.
	PollTimeout time.Duration `koanf:"poll_timeout" validate:"gt=0"`

	// RequestTimeout bounds every single HTTP round trip.
	RequestTimeout time.Duration `koanf:"request_timeout" validate:"gt=0"`

	// RowLimit caps each read.
	RowLimit int `koanf:"row_limit" validate:"gt=0"`

	// SampleSize is how many found rows are printed.
	SampleSize int `koanf:"sample_size" validate:"gt=0"`

	// WindowHours is the lookback from now.
	WindowHours int `koanf:"window_hours" validate:"gt=0"`

	// Source, LocationID and NOAAStationID are forwarded in the trigger payload.
	Source        string `koanf:"source"`
	LocationID    string `koanf:"location_id"`
	NOAAStationID string `koanf:"noaa_station_id"`

	// Latitude and Longitude add exact-match read filters when set.
	Latitude  string `koanf:"latitude" validate:"omitempty,latitude"`
	Longitude string `koanf:"longitude" validate:"omitempty,longitude"`

	// ReadSource picks the poll backend: rest or postgres.
	ReadSource string `koanf:"read_source" validate:"oneof=rest postgres"`

	// DatabaseURL is the Postgres DSN used when ReadSource is postgres.
	DatabaseURL string `koanf:"database_url" validate:"required_if=ReadSource postgres"`

	// DatabaseMaxConns caps the Postgres pool.
	DatabaseMaxConns int32 `koanf:"database_max_conns" validate:"gt=0"`

	// OutputFile receives every found row as JSON when set.
	OutputFile string `koanf:"output_file"`

	// MetricsFile receives run metrics in Prometheus text format when set.
	MetricsFile string `koanf:"metrics_file"`

	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level" validate:"omitempty,oneof=debug info warn warning error"`

	// LogFormat is text or json.
	LogFormat string `koanf:"log_format" validate:"oneof=text json"`
}

// New creates a Config with defaults. Credentials have no default.
func New() *Config {
	return &Config{
		FunctionName:     "update-hourly-details",
		Table:            "hourly_details",
		PollInterval:     3 * time.Second,
		PollTimeout:      120 * time.Second,
		RequestTimeout:   30 * time.Second,
		RowLimit:         1000,
		SampleSize:       5,
		WindowHours:      24,
		Source:           "test-script",
		ReadSource:       ReadSourceREST,
		DatabaseMaxConns: 2,
		LogLevel:         "info",
		LogFormat:        "text",
	}
}

// BaseURL returns SupabaseURL without trailing slashes.
func (c *Config) BaseURL() string {
	return strings.TrimRight(c.SupabaseURL, "/")
}

// Coordinates parses the optional latitude and longitude filters.
func (c *Config) Coordinates() (lat, lon *float64, err error) {
	lat, err = parseCoordinate("latitude", c.Latitude)
	if err != nil {
		return nil, nil, err
	}
	lon, err = parseCoordinate("longitude", c.Longitude)
	if err != nil {
		return nil, nil, err
	}
	return lat, lon, nil
}

func parseCoordinate(key, raw string) (*float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, key, err)
	}
	return &v, nil
}
