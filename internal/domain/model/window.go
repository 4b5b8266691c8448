// Package model contains domain models passed between layers.
package model

import (
	"fmt"
	"time"
)

// ISOLayout renders timestamps the way the trigger endpoint and the read
// filters expect them: UTC with millisecond precision.
const ISOLayout = "2006-01-02T15:04:05.000Z"

// DefaultWindowHours is the lookback used when no window is configured.
const DefaultWindowHours = 24

// FormatISO renders t with ISOLayout.
func FormatISO(t time.Time) string {
	return t.UTC().Format(ISOLayout)
}

// Window is the closed range [Start, End] a run asks the backend to process.
type Window struct {
	Start time.Time
	End   time.Time
}

// NewWindow builds a Window, rejecting empty or inverted ranges.
func NewWindow(start, end time.Time) (Window, error) {
	if !start.Before(end) {
		return Window{}, fmt.Errorf("%w: start %s is not before end %s",
			ErrInvalidWindow, FormatISO(start), FormatISO(end))
	}
	return Window{Start: start.UTC(), End: end.UTC()}, nil
}

// LastHours returns the window ending at now and reaching back the given
// number of hours. Non-positive hours fall back to DefaultWindowHours.
func LastHours(now time.Time, hours int) Window {
	if hours <= 0 {
		hours = DefaultWindowHours
	}
	end := now.UTC().Truncate(time.Millisecond)
	return Window{Start: end.Add(-time.Duration(hours) * time.Hour), End: end}
}

// StartISO returns the lower bound formatted with ISOLayout.
func (w Window) StartISO() string { return FormatISO(w.Start) }

// EndISO returns the upper bound formatted with ISOLayout.
func (w Window) EndISO() string { return FormatISO(w.End) }

// Duration is the span covered by the window.
func (w Window) Duration() time.Duration { return w.End.Sub(w.Start) }
