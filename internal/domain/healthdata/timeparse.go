// internal/domain/healthdata/timeparse.go
package healthdata

import (
	"strings"
	"time"
)

// Layouts accepted for full timestamps. A timestamp keeps the date and clock
// reading it was written with; a trailing offset is accepted but not applied,
// so the calendar date always matches the first 10 characters.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02 15:04:05Z07:00",
}

var clockLayouts = []string{
	"15:04:05",
	"15:04",
	"3:04 PM",
	"3:04PM",
	"3:04:05 PM",
	"03:04 PM",
}

const dayLayout = "2006-01-02"

// parseTimestamp parses a date-time string as wall-clock time in loc.
// Date-only strings do not match.
func parseTimestamp(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if len(s) <= len(dayLayout) {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), loc), true
		}
	}
	return time.Time{}, false
}

// parseDay parses the YYYY-MM-DD prefix of s.
func parseDay(s string, loc *time.Location) (time.Time, bool) {
	key, ok := dateKey(strings.TrimSpace(s))
	if !ok {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation(dayLayout, key, loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// parseDayAndClock joins a date string with a separate time-of-day string.
func parseDayAndClock(day, clock string, loc *time.Location) (time.Time, bool) {
	d, ok := parseDay(day, loc)
	if !ok {
		return time.Time{}, false
	}
	clock = strings.ToUpper(strings.TrimSpace(clock))
	for _, layout := range clockLayouts {
		c, err := time.Parse(layout, clock)
		if err != nil {
			continue
		}
		return time.Date(d.Year(), d.Month(), d.Day(), c.Hour(), c.Minute(), c.Second(), 0, loc), true
	}
	return time.Time{}, false
}

// formatShortDate renders a YYYY-MM-DD key as "Jan 2". Keys that are not
// dates are returned unchanged.
func formatShortDate(key string) string {
	t, err := time.Parse(dayLayout, key)
	if err != nil {
		return key
	}
	return t.Format("Jan 2")
}
