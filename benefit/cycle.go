/*
cycle.go - Recurrence windows for benefit cycles

PURPOSE:
  Computes the active accounting window [start, end) for a benefit given its
  recurrence anchor and a reference date. This is the only calendar-aware
  code in the engine, so every month-end and leap-year decision is made here
  and nowhere else.

CLAMPING POLICY:
  A nominal anchor day that exceeds the target month's length clamps to the
  last day of that month. The nominal day is NOT sticky-forward: an anchor
  of 31 yields Jan 31, Feb 28, Mar 31 - each month clamps independently.
  Feb 29 anchors clamp to Feb 28 in non-leap years. Clamping never rolls
  into the next month and never raises an error; a benefit always has a
  well-defined current window.

BOUNDARY POLICY:
  Windows are half-open: start inclusive, end exclusive. A reference date
  equal to a boundary belongs to the window that STARTS on it.

SEE ALSO:
  - date.go: Date type and ClampDay
  - classify.go: Consumes DaysUntil(window.End, today) for urgency
*/
package benefit

import (
	"fmt"
	"time"
)

// =============================================================================
// CYCLE ANCHOR - Recurrence rule
// =============================================================================

type CyclePeriod string

const (
	Monthly   CyclePeriod = "monthly"
	Quarterly CyclePeriod = "quarterly"
	Yearly    CyclePeriod = "yearly"
)

// CycleAnchor defines when a benefit's usage window resets.
//
// For Monthly, Day is the day-of-month (1-31) the window starts on.
// For Quarterly and Yearly, (Month, Day) is the first cycle start within a
// year; quarterly cycles then recur every 3 months from that month.
// Immutable once attached to a Benefit or Source.
type CycleAnchor struct {
	Period CyclePeriod
	Day    int
	Month  time.Month // unused for Monthly
}

// Window is the half-open date range [Start, End) during which usage counts
// toward the current period.
type Window struct {
	Start Date
	End   Date
}

// Contains reports whether d falls inside the window, honoring the
// start-inclusive, end-exclusive convention.
func (w Window) Contains(d Date) bool {
	return d.AfterOrEqual(w.Start) && d.Before(w.End)
}

func (w Window) String() string {
	return "[" + w.Start.String() + ", " + w.End.String() + ")"
}

// =============================================================================
// WINDOW COMPUTATION
// =============================================================================

// WindowFor returns the cycle window containing the reference date: the
// most recent anchor occurrence at or before ref, through (exclusive) the
// next occurrence.
func (a CycleAnchor) WindowFor(ref Date) Window {
	switch a.Period {
	case Monthly:
		return a.monthlyWindow(ref)
	case Quarterly:
		return a.steppedWindow(ref, 3)
	case Yearly:
		return a.steppedWindow(ref, 12)
	default:
		// Unknown periods degrade to monthly rather than erroring.
		return a.monthlyWindow(ref)
	}
}

func (a CycleAnchor) monthlyWindow(ref Date) Window {
	idx := monthIndex(ref.Year(), ref.Month())
	start := anchorInMonth(idx, a.Day)
	if start.After(ref) {
		idx--
		start = anchorInMonth(idx, a.Day)
	}
	return Window{Start: start, End: anchorInMonth(idx+1, a.Day)}
}

// steppedWindow handles quarterly (step=3) and yearly (step=12) cycles.
// The anchor (Month, Day) fixes which months are cycle starts; the window
// start is the bucket boundary at or before ref.
func (a CycleAnchor) steppedWindow(ref Date, step int) Window {
	anchorMonth := int(a.Month) - 1
	idx := monthIndex(ref.Year(), ref.Month())

	// Distance in months from the last cycle-start month at or before ref.
	offset := ((idx-anchorMonth)%step + step) % step
	startIdx := idx - offset

	start := anchorInMonth(startIdx, a.Day)
	if start.After(ref) {
		startIdx -= step
		start = anchorInMonth(startIdx, a.Day)
	}
	return Window{Start: start, End: anchorInMonth(startIdx+step, a.Day)}
}

// monthIndex flattens (year, month) into a single month count so cycle
// arithmetic never wraps at year boundaries.
func monthIndex(year int, month time.Month) int {
	return year*12 + int(month) - 1
}

// anchorInMonth places the nominal anchor day in the month at idx, clamped
// to the month's length.
func anchorInMonth(idx, day int) Date {
	year, month := idx/12, time.Month(idx%12+1)
	return NewDate(year, month, ClampDay(year, month, day))
}

// =============================================================================
// LABELS
// =============================================================================

// Label renders a human-readable description of the recurrence rule. It
// round-trips the anchor's meaning but promises nothing about format
// stability.
func (a CycleAnchor) Label() string {
	switch a.Period {
	case Monthly:
		return fmt.Sprintf("Monthly on day %d", a.Day)
	case Quarterly:
		return fmt.Sprintf("Quarterly from %s %d", a.Month.String()[:3], a.Day)
	case Yearly:
		return fmt.Sprintf("Yearly on %s %d", a.Month.String()[:3], a.Day)
	default:
		return string(a.Period)
	}
}
