package domain

import (
	"context"
	"time"
)

// DateLayout is the format of calendar dates on the wire
const DateLayout = "2006-01-02"

// DateOf returns the calendar date of t as seen in loc.
// Dates are represented as midnight UTC so they compare and format without a zone.
func DateOf(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// AddDays returns date shifted by n calendar days
func AddDays(date time.Time, n int) time.Time {
	return date.AddDate(0, 0, n)
}

// ParseDate parses a YYYY-MM-DD string
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}

// FormatDate formats a calendar date as YYYY-MM-DD
func FormatDate(date time.Time) string {
	return date.Format(DateLayout)
}

// DayBounds returns the instants at which date starts and ends in loc
func DayBounds(date time.Time, loc *time.Location) (time.Time, time.Time) {
	if loc == nil {
		loc = time.UTC
	}
	start := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1)
}

// DisplayDate returns a user-friendly label for date relative to today
func DisplayDate(date, today time.Time) string {
	switch {
	case date.Equal(today):
		return "today"
	case date.Equal(AddDays(today, 1)):
		return "tomorrow"
	case date.Before(today):
		return "overdue since " + date.Format("2 Jan 2006")
	}
	return date.Format("2 Jan 2006")
}

type locationKey struct{}

// WithLocation returns a context carrying the reviewer's location
func WithLocation(ctx context.Context, loc *time.Location) context.Context {
	return context.WithValue(ctx, locationKey{}, loc)
}

// LocationFromContext returns the reviewer's location, if one was set
func LocationFromContext(ctx context.Context) (*time.Location, bool) {
	loc, ok := ctx.Value(locationKey{}).(*time.Location)
	return loc, ok && loc != nil
}
