// Package slots is the single source of truth for the bookable time-of-day
// universe. Every availability query and every creation path must go through
// it so the two can never drift apart.
package slots

import (
	"fmt"
	"time"
)

const (
	// Business day runs 09:00 to 21:00; the last bookable slot starts 20:30.
	openingMinutes  = 9 * 60
	closingMinutes  = 21 * 60
	intervalMinutes = 30

	DateLayout = "2006-01-02"
)

// Generate returns the fixed, date-independent sequence of bookable
// half-hour slots as zero-padded HH:MM strings, ascending.
func Generate() []string {
	out := make([]string, 0, (closingMinutes-openingMinutes)/intervalMinutes)
	for m := openingMinutes; m < closingMinutes; m += intervalMinutes {
		out = append(out, fmt.Sprintf("%02d:%02d", m/60, m%60))
	}
	return out
}

// Contains reports whether t is a member of the slot universe.
func Contains(t string) bool {
	for _, s := range Generate() {
		if s == t {
			return true
		}
	}
	return false
}

// ParseDate parses a calendar date in YYYY-MM-DD form, normalized to
// midnight UTC.
func ParseDate(s string) (time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return d, nil
}

// NormalizeDate strips the time-of-day component, yielding the midnight-UTC
// day bucket the appointment belongs to. Stored dates may carry non-midnight
// timestamps depending on the caller, so every comparison normalizes first.
func NormalizeDate(d time.Time) time.Time {
	y, m, day := d.UTC().Date()
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

// DayRange returns the canonical [startOfDay, startOfDay+24h) window used by
// all conflict and availability queries.
func DayRange(d time.Time) (time.Time, time.Time) {
	start := NormalizeDate(d)
	return start, start.Add(24 * time.Hour)
}

// BeforeToday reports whether d falls strictly before now's calendar day.
func BeforeToday(d, now time.Time) bool {
	return NormalizeDate(d).Before(NormalizeDate(now))
}
