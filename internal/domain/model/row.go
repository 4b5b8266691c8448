package model

import (
	"strconv"
	"time"
)

// Column names the probe filters on.
const (
	ColumnTimestamp = "timestamp"
	ColumnLatitude  = "latitude"
	ColumnLongitude = "longitude"
)

// DefaultRowLimit caps every read.
const DefaultRowLimit = 1000

// Row is a record read back from hourly_details. Only the timestamp and
// coordinates matter to the probe; everything else is passed through.
type Row map[string]any

// Timestamp returns the row timestamp, accepting both decoded JSON strings
// and native time values.
func (r Row) Timestamp() (time.Time, bool) {
	switch v := r[ColumnTimestamp].(type) {
	case time.Time:
		return v, true
	case string:
		ts, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			return time.Time{}, false
		}
		return ts, true
	default:
		return time.Time{}, false
	}
}

// Latitude returns the latitude column when present and numeric.
func (r Row) Latitude() (float64, bool) { return r.number(ColumnLatitude) }

// Longitude returns the longitude column when present and numeric.
func (r Row) Longitude() (float64, bool) { return r.number(ColumnLongitude) }

func (r Row) number(key string) (float64, bool) {
	switch v := r[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(v, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// RowFilter narrows a read to the request window and, optionally, one
// exact coordinate pair.
type RowFilter struct {
	Window    Window
	Latitude  *float64
	Longitude *float64
	Limit     int
}

// EffectiveLimit returns Limit or DefaultRowLimit when unset.
func (f RowFilter) EffectiveLimit() int {
	if f.Limit <= 0 {
		return DefaultRowLimit
	}
	return f.Limit
}

// FormatCoordinate renders a coordinate with the shortest exact decimal form.
func FormatCoordinate(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
