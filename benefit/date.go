package benefit

import (
	"time"
)

// =============================================================================
// DATE - Calendar-day value type (no time component)
// =============================================================================

// Date is a calendar date with no time-of-day. All cycle arithmetic operates
// on dates already resolved to the household's timezone; see DateIn for the
// resolution step.
type Date struct {
	Time time.Time
}

// Constructors
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// Today returns the current date in the given location. A nil location
// means UTC.
func Today(loc *time.Location) Date {
	return DateIn(time.Now(), loc)
}

// DateIn resolves a timestamp to the calendar date observed in loc.
// This is the only place a wall-clock time enters the engine.
func DateIn(t time.Time, loc *time.Location) Date {
	if loc == nil {
		loc = time.UTC
	}
	local := t.In(loc)
	return NewDate(local.Year(), local.Month(), local.Day())
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, err
	}
	return NewDate(t.Year(), t.Month(), t.Day()), nil
}

// Comparison
func (d Date) Before(other Date) bool        { return d.normalize().Before(other.normalize()) }
func (d Date) Equal(other Date) bool         { return d.normalize().Equal(other.normalize()) }
func (d Date) After(other Date) bool         { return d.normalize().After(other.normalize()) }
func (d Date) BeforeOrEqual(other Date) bool { return d.Before(other) || d.Equal(other) }
func (d Date) AfterOrEqual(other Date) bool  { return d.After(other) || d.Equal(other) }

func (d Date) normalize() time.Time {
	return time.Date(d.Time.Year(), d.Time.Month(), d.Time.Day(), 0, 0, 0, 0, time.UTC)
}

// Arithmetic
func (d Date) AddDays(n int) Date { return Date{Time: d.normalize().AddDate(0, 0, n)} }

// Properties
func (d Date) Year() int         { return d.Time.Year() }
func (d Date) Month() time.Month { return d.Time.Month() }
func (d Date) Day() int          { return d.Time.Day() }
func (d Date) IsZero() bool      { return d.Time.IsZero() }

func (d Date) String() string { return d.normalize().Format("2006-01-02") }

// =============================================================================
// CALENDAR UTILITIES
// =============================================================================

// DaysBetween returns the signed calendar-day difference to - from.
func DaysBetween(from, to Date) int {
	return int(to.normalize().Sub(from.normalize()).Hours() / 24)
}

// DaysUntil returns the calendar days from reference to target: positive for
// future dates, zero for the same day, negative for the past. Time-of-day
// never factors in because Date carries none.
func DaysUntil(target, reference Date) int {
	return DaysBetween(reference, target)
}

// DaysInMonth returns the number of days in the given month.
func DaysInMonth(year int, month time.Month) int {
	// Day 0 of the next month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ClampDay clamps a nominal day-of-month to the month's actual length, so an
// anchor of 31 lands on Feb 28/29, Apr 30, and so on. Clamping is always
// toward the end of the month, never a rollover into the next.
func ClampDay(year int, month time.Month, day int) int {
	if max := DaysInMonth(year, month); day > max {
		return max
	}
	return day
}
