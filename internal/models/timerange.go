package models

import (
	"fmt"
	"time"
)

// TimeRange is a half-open hourly interval [Start, End) on a calendar day.
type TimeRange struct {
	Date  string
	Start int
	End   int
}

// Overlaps reports whether both ranges share at least one hour on the same day.
// Ranges that only touch at an endpoint do not overlap.
func (r TimeRange) Overlaps(o TimeRange) bool {
	if r.Date != o.Date {
		return false
	}
	return r.Start < o.End && o.Start < r.End
}

// Hours is the length of the range in hours.
func (r TimeRange) Hours() int {
	return r.End - r.Start
}

// WithinOperatingHours reports whether the range fits the bookable window.
func (r TimeRange) WithinOperatingHours() bool {
	return r.Start >= OpeningHour && r.End <= ClosingHour
}

// ParseDate parses a YYYY-MM-DD calendar day as a UTC midnight.
func ParseDate(date string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, date, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", date)
	}
	return t, nil
}

// IsWeekend reports whether the calendar day falls on Saturday or Sunday.
// The weekday is taken from the UTC calendar so the result never depends on
// the server's local zone.
func IsWeekend(date string) (bool, error) {
	t, err := ParseDate(date)
	if err != nil {
		return false, err
	}
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday, nil
}
