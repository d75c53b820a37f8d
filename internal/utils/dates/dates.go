// Package dates holds calendar-date helpers. All valuation dates are UTC
// midnights so that equal calendar days compare equal.
package dates

import (
	"fmt"
	"time"
)

// Layout is the wire format for valuation dates.
const Layout = "2006-01-02"

// DateOnly truncates t to midnight UTC of its UTC calendar day.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Today returns the UTC calendar date of now.
func Today(now time.Time) time.Time {
	return DateOnly(now)
}

// Tomorrow returns the UTC calendar date following now.
func Tomorrow(now time.Time) time.Time {
	return DateOnly(now).AddDate(0, 0, 1)
}

// IsToday reports whether date falls on the same UTC calendar day as now.
func IsToday(date, now time.Time) bool {
	return DateOnly(date).Equal(Today(now))
}

// IsFuture reports whether date is on or after tomorrow relative to now.
func IsFuture(date, now time.Time) bool {
	return !DateOnly(date).Before(Tomorrow(now))
}

// Parse reads a YYYY-MM-DD date. Impossible calendar dates are rejected.
func Parse(s string) (time.Time, error) {
	t, err := time.Parse(Layout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD: %w", s, err)
	}
	return t.UTC(), nil
}

// Format renders a date in wire format.
func Format(t time.Time) string {
	return DateOnly(t).Format(Layout)
}

// Range returns every calendar day from..to inclusive. It returns nil when from is after to.
func Range(from, to time.Time) []time.Time {
	from, to = DateOnly(from), DateOnly(to)
	if from.After(to) {
		return nil
	}
	days := make([]time.Time, 0, int(to.Sub(from).Hours()/24)+1)
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}
