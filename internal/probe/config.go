package probe

import (
	"time"

	"github.com/okian/hourlyprobe/internal/domain/model"
)

// Config holds configuration for one probe run.
type Config struct {
	FunctionName string        // edge function to invoke
	Table        string        // table to poll
	Window       model.Window  // explicit window; zero means the last WindowHours
	WindowHours  int           // lookback when Window is zero
	Source       string        // payload source tag
	LocationID   string        // optional payload field
	StationID    string        // optional NOAA station id
	Latitude     *float64      // optional read filter
	Longitude    *float64      // optional read filter
	RowLimit     int           // cap per read
	PollInterval time.Duration // fixed delay between empty reads
	PollTimeout  time.Duration // wall-clock budget for polling
	SampleSize   int           // rows printed on success
	OutputFile   string        // optional JSON dump of found rows
	RunID        string        // correlation id for logs
}

func (c *Config) withDefaults() Config {
	out := *c
	if out.FunctionName == "" {
		out.FunctionName = DefaultFunctionName
	}
	if out.Table == "" {
		out.Table = DefaultTable
	}
	if out.Source == "" {
		out.Source = model.DefaultSource
	}
	if out.PollInterval <= 0 {
		out.PollInterval = DefaultPollInterval
	}
	if out.PollTimeout <= 0 {
		out.PollTimeout = DefaultPollTimeout
	}
	if out.SampleSize <= 0 {
		out.SampleSize = DefaultSampleSize
	}
	return out
}
