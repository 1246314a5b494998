package timegrid

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// ParseDate parses "YYYY-MM-DD" as a local calendar date at midnight.
// The triple is split by hand and fed to time.Date with the local location;
// time.Parse would yield UTC and shift the weekday near timezone boundaries.
func ParseDate(s string) (time.Time, error) {
	parts := strings.SplitN(s, "-", 3)
	if len(parts) != 3 {
		return time.Time{}, fmt.Errorf("invalid date: %q", s)
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid year in %q: %w", s, err)
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid month in %q: %w", s, err)
	}
	day, err := strconv.Atoi(parts[2])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid day in %q: %w", s, err)
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, fmt.Errorf("date out of range: %q", s)
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.Local), nil
}

// FormatDate renders a time as "YYYY-MM-DD" in its own location.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// Weekday returns the day of week for a date string, 0=Sunday..6=Saturday.
func Weekday(date string) (int, error) {
	t, err := ParseDate(date)
	if err != nil {
		return 0, err
	}
	return int(t.Weekday()), nil
}

// SameDay reports whether two times fall on the same local calendar day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// MinutesOfDay returns the minutes elapsed since local midnight.
func MinutesOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}
