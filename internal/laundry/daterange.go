package laundry

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// DateRange is a span of calendar days, inclusive on both ends.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// NewDateRange builds a range from two dates without validating it.
func NewDateRange(start, end time.Time) DateRange {
	return DateRange{Start: start, End: end}
}

// ParseDateRange parses YYYY-MM-DD bounds. Empty strings yield zero times.
func ParseDateRange(start, end string) (DateRange, error) {
	var rng DateRange
	if start != "" {
		t, err := time.Parse(dateLayout, start)
		if err != nil {
			return DateRange{}, fmt.Errorf("parse start date: %w", err)
		}
		rng.Start = t
	}
	if end != "" {
		t, err := time.Parse(dateLayout, end)
		if err != nil {
			return DateRange{}, fmt.Errorf("parse end date: %w", err)
		}
		rng.End = t
	}
	return rng, nil
}

// Valid reports whether both bounds are set and Start is not after End.
func (r DateRange) Valid() bool {
	if r.Start.IsZero() || r.End.IsZero() {
		return false
	}
	return !Day(r.Start).After(Day(r.End))
}

// Contains reports whether t falls on a day within the range. Both bounds are inclusive.
func (r DateRange) Contains(t time.Time) bool {
	d := Day(t)
	return !d.Before(Day(r.Start)) && !d.After(Day(r.End))
}

// Label renders the range for document headers.
func (r DateRange) Label() string {
	return fmt.Sprintf("%s to %s", FormatDay(r.Start), FormatDay(r.End))
}

// Day truncates t to its calendar day, keeping the wall-clock date of t's location.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// FormatDay renders t as YYYY-MM-DD.
func FormatDay(t time.Time) string {
	return t.Format(dateLayout)
}
