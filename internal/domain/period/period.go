// Package period models calendar months used as reporting windows.
package period

import (
	"errors"
	"fmt"
	"time"
)

// Layout is the textual form of a period, e.g. "2026-03".
const Layout = "2006-01"

// ErrInvalidPeriod is returned when a period cannot be parsed.
var ErrInvalidPeriod = errors.New("invalid period")

// Period is a calendar month in UTC.
type Period struct {
	Year  int
	Month time.Month
}

// Of returns the period containing t.
func Of(t time.Time) Period {
	t = t.UTC()
	return Period{Year: t.Year(), Month: t.Month()}
}

// Parse reads a period in Layout form.
func Parse(s string) (Period, error) {
	t, err := time.Parse(Layout, s)
	if err != nil {
		return Period{}, fmt.Errorf("%w: %q", ErrInvalidPeriod, s)
	}
	return Of(t), nil
}

// ParseOr parses s, falling back to def when s is empty.
func ParseOr(s string, def Period) (Period, error) {
	if s == "" {
		return def, nil
	}
	return Parse(s)
}

// Start is the first instant of the period.
func (p Period) Start() time.Time {
	return time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC)
}

// End is the first instant after the period.
func (p Period) End() time.Time {
	return p.Start().AddDate(0, 1, 0)
}

// Contains reports whether t falls inside the period.
func (p Period) Contains(t time.Time) bool {
	t = t.UTC()
	return t.Year() == p.Year && t.Month() == p.Month
}

// ContainsDate reports whether the calendar date of t falls inside the
// period. The date is read in t's own location, not converted to UTC.
func (p Period) ContainsDate(t time.Time) bool {
	return t.Year() == p.Year && t.Month() == p.Month
}

// Previous is the immediately preceding month.
func (p Period) Previous() Period { return Of(p.Start().AddDate(0, -1, 0)) }

// Next is the immediately following month.
func (p Period) Next() Period { return Of(p.End()) }

// Before reports whether p is strictly earlier than o.
func (p Period) Before(o Period) bool {
	if p.Year != o.Year {
		return p.Year < o.Year
	}
	return p.Month < o.Month
}

func (p Period) String() string { return p.Start().Format(Layout) }

// MarshalText implements encoding.TextMarshaler.
func (p Period) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Period) UnmarshalText(b []byte) error {
	v, err := Parse(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// Navigate moves p by step months and clamps the result to the dashboard's
// browsable range: January of now's year through now's month.
func Navigate(now time.Time, p Period, step int) Period {
	target := Of(p.Start().AddDate(0, step, 0))
	current := Of(now)
	floor := Period{Year: current.Year, Month: time.January}
	switch {
	case target.Before(floor):
		return floor
	case current.Before(target):
		return current
	}
	return target
}
