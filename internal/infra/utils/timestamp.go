package utils

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// TimestampLayout is the canonical ISO-8601 form used for task events.
// UTC renders with an explicit +00:00 offset.
const TimestampLayout = "2006-01-02T15:04:05.999999-07:00"

var (
	ErrEmptyTimestamp  = errors.New("empty timestamp")
	ErrUnknownTimeZone = errors.New("unknown time zone")
)

var clockLayouts = []string{"15:04", "15:04:05", "3:04pm", "3pm", "3:04PM", "3PM"}

// zoneOffsets resolves the abbreviations time.Parse does not know for UTC.
// CST is read as US Central and IST as India.
var zoneOffsets = map[string]int{
	"HST":  -10 * 3600,
	"AKST": -9 * 3600,
	"AKDT": -8 * 3600,
	"PST":  -8 * 3600,
	"PDT":  -7 * 3600,
	"MST":  -7 * 3600,
	"MDT":  -6 * 3600,
	"CST":  -6 * 3600,
	"CDT":  -5 * 3600,
	"EST":  -5 * 3600,
	"EDT":  -4 * 3600,
	"WET":  0,
	"WEST": 1 * 3600,
	"BST":  1 * 3600,
	"CET":  1 * 3600,
	"CEST": 2 * 3600,
	"EET":  2 * 3600,
	"EEST": 3 * 3600,
	"MSK":  3 * 3600,
	"IST":  5*3600 + 1800,
	"SGT":  8 * 3600,
	"HKT":  8 * 3600,
	"JST":  9 * 3600,
	"KST":  9 * 3600,
	"ACST": 9*3600 + 1800,
	"AEST": 10 * 3600,
	"AEDT": 11 * 3600,
	"NZST": 12 * 3600,
	"NZDT": 13 * 3600,
}

// NormalizeTimestamp parses a free-form date/time string into a UTC instant.
// Strings without an explicit zone are read as UTC; zone abbreviations that
// cannot be resolved are rejected. The words now, today, yesterday and
// tomorrow are resolved against now, and they and plain dates may be followed
// by a clock time such as 9:30 or 10am.
func NormalizeTimestamp(raw string, now time.Time) (time.Time, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return time.Time{}, ErrEmptyTimestamp
	}

	if t, ok, err := parseRelative(value, now.UTC()); ok {
		if err != nil {
			return time.Time{}, err
		}
		return truncate(t), nil
	}

	t, err := dateparse.ParseIn(value, time.UTC)
	if err != nil {
		if withClock, ok := parseDateClock(value); ok {
			return truncate(withClock), nil
		}
		return time.Time{}, fmt.Errorf("parsing %q: %w", value, err)
	}

	t, err = resolveZone(t)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing %q: %w", value, err)
	}

	return truncate(t.UTC()), nil
}

// resolveZone fixes instants parsed with a zone abbreviation unknown to the
// time package, which it records with a zero offset.
func resolveZone(t time.Time) (time.Time, error) {
	name, offset := t.Zone()
	switch strings.ToUpper(name) {
	case "", "UTC", "GMT", "Z":
		return t, nil
	}
	if offset != 0 {
		return t, nil
	}

	known, ok := zoneOffsets[strings.ToUpper(name)]
	if !ok {
		return time.Time{}, fmt.Errorf("%w %q", ErrUnknownTimeZone, name)
	}

	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(),
		time.FixedZone(strings.ToUpper(name), known)), nil
}

// parseDateClock handles "<date> [at] <clock>" where dateparse rejects the
// clock, as in "Jan 2, 2025 10am".
func parseDateClock(value string) (time.Time, bool) {
	fields := strings.Fields(value)
	for n := 1; n <= 2 && n < len(fields); n++ {
		offset, ok := parseClock(strings.ToLower(strings.Join(fields[len(fields)-n:], "")))
		if !ok {
			continue
		}

		dateFields := fields[:len(fields)-n]
		if strings.EqualFold(dateFields[len(dateFields)-1], "at") {
			dateFields = dateFields[:len(dateFields)-1]
		}
		if len(dateFields) == 0 {
			return time.Time{}, false
		}

		day, err := dateparse.ParseIn(strings.Join(dateFields, " "), time.UTC)
		if err != nil {
			return time.Time{}, false
		}
		day = day.UTC()
		if day.Hour() != 0 || day.Minute() != 0 || day.Second() != 0 || day.Nanosecond() != 0 {
			return time.Time{}, false
		}
		return day.Add(offset), true
	}

	return time.Time{}, false
}

// parseClock reads a wall clock time such as 9:30, 21:15:00, 3pm or 3:30pm
// as an offset from midnight.
func parseClock(clock string) (time.Duration, bool) {
	for _, layout := range clockLayouts {
		parsed, err := time.Parse(layout, clock)
		if err != nil {
			continue
		}
		return time.Duration(parsed.Hour())*time.Hour +
			time.Duration(parsed.Minute())*time.Minute +
			time.Duration(parsed.Second())*time.Second, true
	}
	return 0, false
}

// FormatTimestamp renders t in the canonical layout, in UTC.
func FormatTimestamp(t time.Time) string {
	return truncate(t.UTC()).Format(TimestampLayout)
}

func parseRelative(value string, now time.Time) (time.Time, bool, error) {
	fields := strings.Fields(strings.ToLower(value))
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	var day time.Time
	switch fields[0] {
	case "now":
		if len(fields) > 1 {
			return time.Time{}, true, fmt.Errorf("parsing %q: unexpected %q after now", value, fields[1])
		}
		return now, true, nil
	case "today":
		day = midnight
	case "yesterday":
		day = midnight.AddDate(0, 0, -1)
	case "tomorrow":
		day = midnight.AddDate(0, 0, 1)
	default:
		return time.Time{}, false, nil
	}

	if len(fields) == 1 {
		return day, true, nil
	}

	clock := strings.Join(fields[1:], "")
	clock = strings.TrimPrefix(clock, "at")
	if offset, ok := parseClock(clock); ok {
		return day.Add(offset), true, nil
	}

	return time.Time{}, true, fmt.Errorf("parsing %q: unknown clock time %q", value, clock)
}

func truncate(t time.Time) time.Time {
	return t.Truncate(time.Microsecond)
}
