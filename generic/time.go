package generic

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// =============================================================================
// MONTH-DAY - Calendar day without a year (recurring date filter)
// =============================================================================

type MonthDay struct {
	Month time.Month
	Day   int
}

// ParseMonthDay parses "MM-DD" (leading zeros optional).
func ParseMonthDay(s string) (MonthDay, error) {
	parts := strings.Split(strings.TrimSpace(s), "-")
	if len(parts) != 2 {
		return MonthDay{}, fmt.Errorf("month-day %q: want MM-DD", s)
	}
	month, err := strconv.Atoi(parts[0])
	if err != nil || month < 1 || month > 12 {
		return MonthDay{}, fmt.Errorf("month-day %q: invalid month", s)
	}
	day, err := strconv.Atoi(parts[1])
	if err != nil || day < 1 || day > daysIn(time.Month(month)) {
		return MonthDay{}, fmt.Errorf("month-day %q: invalid day", s)
	}
	return MonthDay{Month: time.Month(month), Day: day}, nil
}

// Matches reports whether t falls on this month and day, in t's own location.
func (md MonthDay) Matches(t time.Time) bool {
	return t.Month() == md.Month && t.Day() == md.Day
}

func (md MonthDay) String() string {
	return fmt.Sprintf("%02d-%02d", int(md.Month), md.Day)
}

// daysIn uses a leap year so 02-29 is accepted.
func daysIn(m time.Month) int {
	return time.Date(2024, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// =============================================================================
// TIMESTAMPS
// =============================================================================

// timestampLayouts are tried in order. Snapshots written by the web client use
// RFC 3339 with milliseconds and a Z suffix; hand-edited files sometimes drop
// the offset or the time entirely.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp parses an ISO 8601 timestamp. The returned time keeps the
// offset written in the string; timestamps without one are read as UTC.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp format")
}

// DatePrefix returns the YYYY-MM-DD part of a timestamp string as written,
// without parsing it.
func DatePrefix(s string) string {
	if len(s) > 10 {
		return s[:10]
	}
	return s
}
