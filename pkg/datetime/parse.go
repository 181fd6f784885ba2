// Package datetime provides date and time utility functions.
package datetime

import (
	"fmt"
	"strings"
	"time"

	"github.com/iwvelando/campaign-planner/pkg/constants"
)

const (
	// DateLayout is the format expected in requests and configuration files and
	// is also the output date format.
	DateLayout = constants.DateLayout

	hoursPerDay = 24
)

// MustParseTime parses a date string using the given layout and panics on error.
// This is intended for use in tests where the date string is known to be valid.
func MustParseTime(layout, dateStr string) time.Time {
	t, err := time.Parse(layout, dateStr)
	if err != nil {
		panic(err)
	}
	return t
}

// ParseDate parses an ISO-8601 calendar date (YYYY-MM-DD) into midnight UTC.
func ParseDate(date string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(date))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected %s: %w", date, DateLayout, err)
	}
	return t, nil
}

// Truncate drops the clock part of t, keeping its calendar date in UTC.
func Truncate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysInclusive returns the number of calendar days from start to end counting
// both ends. It is zero or negative when end is before start.
func DaysInclusive(start, end time.Time) int {
	s, e := Truncate(start), Truncate(end)
	return int(e.Sub(s).Hours()/hoursPerDay) + 1
}

// AddDays offsets a calendar date by n days.
func AddDays(t time.Time, n int) time.Time {
	return t.AddDate(0, 0, n)
}

// Format renders a date in DateLayout.
func Format(t time.Time) string {
	return t.Format(DateLayout)
}

// DateRange returns every calendar date from start to end inclusive in
// ascending order. It is empty when end is before start.
func DateRange(start, end time.Time) []time.Time {
	days := DaysInclusive(start, end)
	if days < 1 {
		return nil
	}
	dates := make([]time.Time, days)
	first := Truncate(start)
	for i := range dates {
		dates[i] = AddDays(first, i)
	}
	return dates
}

// WithinRange reports whether t falls on a calendar day between start and end inclusive.
func WithinRange(t, start, end time.Time) bool {
	day := Truncate(t)
	return !day.Before(Truncate(start)) && !day.After(Truncate(end))
}
