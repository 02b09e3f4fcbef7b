/*
Package roster provides the core availability resolution engine.

PURPOSE:
  This package contains the types and algorithms that decide, for any
  user and calendar date, whether that person is available in the
  morning and/or afternoon. Availability is derived from layered
  recurring weekly rules, alternating-week patterns, and per-date
  manual exceptions.

KEY CONCEPTS IN THIS FILE (date.go):
  - Date: A calendar day (UTC, day granularity)
  - DateRange: An inclusive [start, end] span of days
  - OpenEnd: The far-future sentinel used by open-ended rules

DESIGN PRINCIPLES:
  1. Day granularity: All scheduling math works on whole days; there
     are no times of day beyond the AM/PM half-day split.
  2. Totality: Resolution never errors - missing configuration always
     degrades to "unavailable".
  3. Value semantics: Date and DateRange are small comparable values.

SEE ALSO:
  - parity.go: Week numbering and parity strategies
  - availability.go: Rule and exception entities
  - resolver.go: The resolution algorithm
*/
package roster

import (
	"fmt"
	"time"
)

// =============================================================================
// DATE - Calendar day (UTC, day granularity)
// =============================================================================

type Date struct {
	t time.Time
}

// NewDate constructs a Date from year/month/day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return Date{t: t.UTC()}, nil
}

// MustDate parses a YYYY-MM-DD string and panics on failure. Test helper.
func MustDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// FromTime truncates a time.Time to a Date.
func FromTime(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// Today returns the current date.
func Today() Date {
	return FromTime(time.Now())
}

// OpenEnd is the sentinel used for rules with no end date. Any real
// scheduling date sorts before it.
func OpenEnd() Date { return NewDate(2100, time.January, 1) }

// Comparison
func (d Date) Before(other Date) bool        { return d.t.Before(other.t) }
func (d Date) After(other Date) bool         { return d.t.After(other.t) }
func (d Date) Equal(other Date) bool         { return d.t.Equal(other.t) }
func (d Date) BeforeOrEqual(other Date) bool { return !d.After(other) }
func (d Date) AfterOrEqual(other Date) bool  { return !d.Before(other) }

// Arithmetic
func (d Date) AddDays(n int) Date { return Date{t: d.t.AddDate(0, 0, n)} }

// Properties
func (d Date) Year() int             { return d.t.Year() }
func (d Date) Month() time.Month     { return d.t.Month() }
func (d Date) Day() int              { return d.t.Day() }
func (d Date) Weekday() time.Weekday { return d.t.Weekday() }
func (d Date) IsZero() bool          { return d.t.IsZero() }
func (d Date) Time() time.Time       { return d.t }

func (d Date) IsWeekend() bool {
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

func (d Date) String() string { return d.t.Format("2006-01-02") }

// DaysBetween returns the whole-day distance from a to b.
func DaysBetween(a, b Date) int {
	return int(b.t.Sub(a.t).Hours() / 24)
}

// JSON encoding is the wire format used by the storage collaborator:
// bare YYYY-MM-DD strings.

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" || s == `""` {
		*d = Date{}
		return nil
	}
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("invalid date JSON: %s", s)
	}
	parsed, err := ParseDate(s[1 : len(s)-1])
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// =============================================================================
// DATE RANGE - Inclusive [Start, End] span
// =============================================================================

type DateRange struct {
	Start Date
	End   Date
}

// Contains returns true if d is within [Start, End].
func (r DateRange) Contains(d Date) bool {
	return d.AfterOrEqual(r.Start) && d.BeforeOrEqual(r.End)
}

// Days enumerates every day in the range in ascending order.
func (r DateRange) Days() []Date {
	var days []Date
	for cur := r.Start; cur.BeforeOrEqual(r.End); cur = cur.AddDays(1) {
		days = append(days, cur)
	}
	return days
}

func (r DateRange) String() string {
	return "[" + r.Start.String() + ", " + r.End.String() + "]"
}
