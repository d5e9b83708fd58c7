package engine

import (
	"encoding/json"
	"time"
)

// =============================================================================
// DATE - Day-granularity time point (payroll never cares about hours)
// =============================================================================

type Date struct {
	Time time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func Today() Date {
	now := time.Now()
	return NewDate(now.Year(), now.Month(), now.Day())
}

// ParseDate parses "2006-01-02". The zero Date is returned on failure;
// callers that accept external input validate with IsZero.
func ParseDate(s string) Date {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}
	}
	return Date{Time: t}
}

// Comparison
func (d Date) Before(o Date) bool        { return d.normalize().Before(o.normalize()) }
func (d Date) Equal(o Date) bool         { return d.normalize().Equal(o.normalize()) }
func (d Date) After(o Date) bool         { return d.normalize().After(o.normalize()) }
func (d Date) BeforeOrEqual(o Date) bool { return d.Before(o) || d.Equal(o) }
func (d Date) AfterOrEqual(o Date) bool  { return d.After(o) || d.Equal(o) }

func (d Date) normalize() time.Time {
	return time.Date(d.Time.Year(), d.Time.Month(), d.Time.Day(), 0, 0, 0, 0, time.UTC)
}

// Arithmetic
func (d Date) AddDays(n int) Date   { return Date{Time: d.Time.AddDate(0, 0, n)} }
func (d Date) AddMonths(n int) Date { return Date{Time: d.Time.AddDate(0, n, 0)} }
func (d Date) AddYears(n int) Date  { return Date{Time: d.Time.AddDate(n, 0, 0)} }

// Properties
func (d Date) Year() int         { return d.Time.Year() }
func (d Date) Month() time.Month { return d.Time.Month() }
func (d Date) Day() int          { return d.Time.Day() }
func (d Date) IsZero() bool      { return d.Time.IsZero() }

func (d Date) String() string { return d.Time.Format("2006-01-02") }

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// =============================================================================
// DATE UTILITIES
// =============================================================================

func DaysBetween(from, to Date) int {
	return int(to.normalize().Sub(from.normalize()).Hours() / 24)
}

// CompletedYears is floor division of elapsed days by 365. The severance
// indemnities count whole years this way; a partial final year contributes
// only through proration, never through the per-year components.
func CompletedYears(from, to Date) int {
	days := DaysBetween(from, to)
	if days < 0 {
		return 0
	}
	return days / 365
}

func StartOfYear(year int) Date { return NewDate(year, time.January, 1) }
func EndOfYear(year int) Date   { return NewDate(year, time.December, 31) }

// =============================================================================
// DATE SPAN - Inclusive date range
// =============================================================================

type DateSpan struct {
	Start Date
	End   Date
}

// Contains returns true if the date is within the span [Start, End].
func (s DateSpan) Contains(d Date) bool {
	return d.AfterOrEqual(s.Start) && d.BeforeOrEqual(s.End)
}

// Days returns the number of calendar days in the span, inclusive.
func (s DateSpan) Days() int {
	return DaysBetween(s.Start, s.End) + 1
}

func (s DateSpan) Valid() bool {
	return !s.Start.IsZero() && !s.End.IsZero() && !s.End.Before(s.Start)
}

func (s DateSpan) String() string {
	return "[" + s.Start.String() + ", " + s.End.String() + "]"
}
