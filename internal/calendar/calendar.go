// Package calendar parses provider timestamps and compares their calendar
// dates. Provider timestamps are local wall-clock times, so dates are taken
// as written and never converted between zones.
package calendar

import "time"

// DateLayout is the YYYY-MM-DD form used for requested dates.
const DateLayout = "2006-01-02"

var timestampLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	time.RFC3339,
	time.RFC3339Nano,
}

// ParseTimestamp parses a provider timestamp.
func ParseTimestamp(s string) (time.Time, bool) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// DateOf returns the YYYY-MM-DD calendar date of a provider timestamp.
func DateOf(timestamp string) (string, bool) {
	t, ok := ParseTimestamp(timestamp)
	if !ok {
		return "", false
	}
	return t.Format(DateLayout), true
}

// SameDay reports whether two timestamps fall on the same calendar date.
// The second result is false when either timestamp cannot be parsed.
func SameDay(a, b string) (same bool, ok bool) {
	da, okA := DateOf(a)
	db, okB := DateOf(b)
	if !okA || !okB {
		return false, false
	}
	return da == db, true
}

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}
