// Package timewindow answers "is this timestamp recent enough" questions
// against an explicit reference time.
package timewindow

import (
	"math"
	"strings"
	"time"
)

// Window is a relative recency filter.
type Window string

const (
	All     Window = "all"
	Last24h Window = "24h"
	Last7d  Window = "7d"
	Last30d Window = "30d"
)

const day = 24 * time.Hour

// ParseWindow normalizes a window name. Unknown names return All and false.
func ParseWindow(s string) (Window, bool) {
	switch w := Window(strings.ToLower(strings.TrimSpace(s))); w {
	case All, Last24h, Last7d, Last30d:
		return w, true
	case "":
		return All, true
	default:
		return All, false
	}
}

// Duration returns the span covered by the window; All and unknown windows
// return 0 and false.
func (w Window) Duration() (time.Duration, bool) {
	switch w {
	case Last24h:
		return day, true
	case Last7d:
		return 7 * day, true
	case Last30d:
		return 30 * day, true
	default:
		return 0, false
	}
}

// InWindow reports whether ts lies within the window ending at now.
// All (and any unknown window) always matches. Unparsable timestamps never
// match a bounded window. Timestamps after now always match, since the data
// source clock may run ahead of ours.
func InWindow(ts string, w Window, now time.Time) bool {
	d, bounded := w.Duration()
	if !bounded {
		return true
	}
	t, ok := Parse(ts, now.Location())
	if !ok {
		return false
	}
	return now.Sub(t) <= d
}

// Within24h is the strict "last 24 hours" test used for counters.
func Within24h(ts string, now time.Time) bool {
	return InWindow(ts, Last24h, now)
}

var zonedLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999Z0700",
	"2006-01-02T15:04Z07:00",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999Z0700",
	time.RFC1123Z,
	time.RFC1123,
}

var localLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04",
}

// Parse reads an ISO-8601 style timestamp. Timestamps with an offset keep it,
// date-time values without one are read in loc, and bare dates are UTC.
func Parse(ts string, loc *time.Location) (time.Time, bool) {
	ts = strings.TrimSpace(ts)
	if ts == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, ts); err == nil {
			return t, true
		}
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, ts, loc); err == nil {
			return t, true
		}
	}
	if t, err := time.ParseInLocation("2006-01-02", ts, time.UTC); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// SortKey converts a timestamp to milliseconds since the epoch for ordering.
// Unparsable timestamps sort as the oldest possible value.
func SortKey(ts string, loc *time.Location) float64 {
	t, ok := Parse(ts, loc)
	if !ok {
		return math.Inf(-1)
	}
	return float64(t.UnixMilli())
}
