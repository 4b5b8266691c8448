package probe

import (
	"fmt"
	"io"

	"github.com/okian/hourlyprobe/pkg/logger"
)

// SetupLogging initializes the global logger. verbose forces debug level.
func SetupLogging(w io.Writer, level, format string, verbose bool) error {
	if err := logger.Init(logger.WithOutput(w), logger.WithJSON(format == "json")); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	if verbose {
		level = "debug"
	}
	if err := logger.SetLevelString(level); err != nil {
		return fmt.Errorf("failed to set log level: %w", err)
	}
	return nil
}

// ShowHelp prints usage information for the probe to w.
func ShowHelp(w io.Writer) {
	_, _ = io.WriteString(w, `hourlyprobe
===========

Triggers the update-hourly-details edge function for a time window and polls
hourly_details until rows for that window show up or the poll budget runs out.

Usage:
  SUPABASE_URL=https://<project>.supabase.co SUPABASE_ANON_KEY=<anon_key> hourlyprobe [options]

Options:
  -config string
        YAML config file (default: $HOURLYPROBE_CONFIG)
  -env-file string
        dotenv file to read (default: .env)
  -window-hours int
        Lookback from now in hours (default 24)
  -lat string
        Only accept rows at this latitude
  -lon string
        Only accept rows at this longitude
  -location-id string
        location_id forwarded to the function
  -station-id string
        noaa_station_id forwarded to the function
  -output string
        Write every found row to this JSON file
  -metrics-file string
        Write run metrics in Prometheus text format
  -verbose
        Log every poll attempt
  -help
        Show this help message

Environment:
  SUPABASE_URL, SUPABASE_ANON_KEY   required
  HOURLYPROBE_<KEY>                 any config key, e.g. HOURLYPROBE_POLL_TIMEOUT=5m

Exit codes:
  0  rows found
  1  missing or invalid configuration
  2  edge function did not answer 202
  3  no rows within the poll budget
  4  unexpected failure
`)
}
