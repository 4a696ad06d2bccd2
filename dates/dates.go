// Package dates provides a timezone-safe calendar date value used throughout
// the task recurrence engine. A Date is either a plain calendar date or a
// date-time; date-only values are always stored as midnight UTC so that
// comparing, hashing and formatting them never drifts across local timezones.
package dates

import (
	"fmt"
	"strings"
	"time"
)

// Layouts accepted for task-record fields and recurrence sub-fields.
const (
	LayoutDate     = "2006-01-02"
	LayoutDateTime = "2006-01-02T15:04"

	compactDate     = "20060102"
	compactDateTime = "20060102T150405Z"
)

// Date is an immutable calendar date, optionally carrying a time of day.
// The zero value is "no date".
type Date struct {
	t       time.Time
	hasTime bool
}

// New returns a date-only value stored as midnight UTC.
func New(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// NewDateTime returns a date carrying a time of day.
func NewDateTime(year int, month time.Month, day, hour, min int) Date {
	return Date{t: time.Date(year, month, day, hour, min, 0, 0, time.UTC), hasTime: true}
}

// FromTime converts a time.Time into a date-time value, preserving the wall
// clock reading and discarding the zone.
func FromTime(t time.Time) Date {
	return NewDateTime(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute())
}

// Parse reads the task-record formats: "2006-01-02" or "2006-01-02T15:04"
// (local wall clock, no offset). Seconds are tolerated on date-times.
func Parse(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, fmt.Errorf("empty date string")
	}
	if !strings.Contains(s, "T") {
		t, err := time.ParseInLocation(LayoutDate, s, time.UTC)
		if err != nil {
			return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
		}
		return Date{t: t}, nil
	}
	for _, layout := range []string{LayoutDateTime, "2006-01-02T15:04:05"} {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return Date{t: t, hasTime: true}, nil
		}
	}
	return Date{}, fmt.Errorf("invalid date-time %q", s)
}

// ParseCompact reads the iCalendar-style compact formats used inside
// recurrence strings: "20060102" or "20060102T150405Z".
func ParseCompact(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if strings.Contains(s, "T") {
		t, err := time.Parse(compactDateTime, s)
		if err != nil {
			return Date{}, fmt.Errorf("invalid compact date-time %q: %w", s, err)
		}
		return Date{t: t.UTC(), hasTime: true}, nil
	}
	t, err := time.Parse(compactDate, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid compact date %q: %w", s, err)
	}
	return Date{t: time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)}, nil
}

// IsZero reports whether d is the "no date" value.
func (d Date) IsZero() bool { return d.t.IsZero() }

// HasTime reports whether d carries a time of day.
func (d Date) HasTime() bool { return d.hasTime }

// Time exposes the underlying instant (midnight UTC for date-only values).
func (d Date) Time() time.Time { return d.t }

// DatePart strips the time of day, returning the plain calendar date.
func (d Date) DatePart() Date {
	return New(d.t.Year(), d.t.Month(), d.t.Day())
}

// At returns the same calendar date carrying the given time of day.
func (d Date) At(hour, min int) Date {
	return NewDateTime(d.t.Year(), d.t.Month(), d.t.Day(), hour, min)
}

// Clock returns the time of day, or 0:00 for date-only values.
func (d Date) Clock() (hour, min int) {
	return d.t.Hour(), d.t.Minute()
}

// AddDays returns the calendar date n days later (earlier for negative n).
func (d Date) AddDays(n int) Date {
	next := d.t.AddDate(0, 0, n)
	return Date{t: next, hasTime: d.hasTime}
}

// Weekday returns the day of week of the calendar date.
func (d Date) Weekday() time.Weekday { return d.t.Weekday() }

// Before reports whether d's calendar date precedes o's, ignoring time of day.
func (d Date) Before(o Date) bool {
	return d.DatePart().t.Before(o.DatePart().t)
}

// After reports whether d's calendar date follows o's, ignoring time of day.
func (d Date) After(o Date) bool {
	return d.DatePart().t.After(o.DatePart().t)
}

// SameDay reports whether both values fall on the same calendar date.
func (d Date) SameDay(o Date) bool {
	return d.DatePart().t.Equal(o.DatePart().t)
}

// Key returns the canonical "2006-01-02" form used as a set key.
func (d Date) Key() string { return d.t.Format(LayoutDate) }

// String renders the task-record form of the value.
func (d Date) String() string {
	if d.hasTime {
		return d.t.Format(LayoutDateTime)
	}
	return d.t.Format(LayoutDate)
}

// Compact renders the recurrence-string form of the value.
func (d Date) Compact() string {
	if d.hasTime {
		return d.t.Format(compactDateTime)
	}
	return d.t.Format(compactDate)
}

// Max returns the later of the two calendar dates.
func Max(a, b Date) Date {
	if b.After(a) {
		return b
	}
	return a
}
