package benefit_test

import (
	"testing"
	"time"

	"github.com/homeperks/benefit-engine/benefit"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func date(year int, month time.Month, day int) benefit.Date {
	return benefit.NewDate(year, month, day)
}

func monthlyAnchor(day int) benefit.CycleAnchor {
	return benefit.CycleAnchor{Period: benefit.Monthly, Day: day}
}

func quarterlyAnchor(month time.Month, day int) benefit.CycleAnchor {
	return benefit.CycleAnchor{Period: benefit.Quarterly, Month: month, Day: day}
}

func yearlyAnchor(month time.Month, day int) benefit.CycleAnchor {
	return benefit.CycleAnchor{Period: benefit.Yearly, Month: month, Day: day}
}

func assertWindow(t *testing.T, w benefit.Window, start, end benefit.Date) {
	t.Helper()
	if !w.Start.Equal(start) {
		t.Errorf("window start = %s, want %s", w.Start, start)
	}
	if !w.End.Equal(end) {
		t.Errorf("window end = %s, want %s", w.End, end)
	}
}

// =============================================================================
// MONTHLY WINDOWS
// =============================================================================

func TestMonthlyWindow_MidCycle(t *testing.T) {
	// GIVEN: Monthly anchor on day 25
	// WHEN: Reference is Feb 10, between the Jan 25 and Feb 25 resets
	// THEN: Window is [Jan 25, Feb 25)

	w := monthlyAnchor(25).WindowFor(date(2025, time.February, 10))
	assertWindow(t, w, date(2025, time.January, 25), date(2025, time.February, 25))
}

func TestMonthlyWindow_StartBoundaryBelongsToNewWindow(t *testing.T) {
	// GIVEN: Monthly anchor on day 25
	// WHEN: Reference IS the reset date
	// THEN: The window starting that day applies (start inclusive)

	w := monthlyAnchor(25).WindowFor(date(2025, time.February, 25))
	assertWindow(t, w, date(2025, time.February, 25), date(2025, time.March, 25))
}

func TestMonthlyWindow_EndClampsToShortMonth(t *testing.T) {
	// GIVEN: Monthly anchor on day 30, which February doesn't have
	// WHEN: Reference is Feb 10 of a non-leap year
	// THEN: Window end clamps to the last day of February, no rollover

	w := monthlyAnchor(30).WindowFor(date(2025, time.February, 10))
	assertWindow(t, w, date(2025, time.January, 30), date(2025, time.February, 28))
}

func TestMonthlyWindow_Day31ClampsEachMonthIndependently(t *testing.T) {
	// An anchor of 31 is not sticky-forward: Feb clamps to 28, March
	// returns to 31.

	w := monthlyAnchor(31).WindowFor(date(2025, time.March, 15))
	assertWindow(t, w, date(2025, time.February, 28), date(2025, time.March, 31))

	w = monthlyAnchor(31).WindowFor(date(2025, time.April, 1))
	assertWindow(t, w, date(2025, time.March, 31), date(2025, time.April, 30))
}

func TestMonthlyWindow_LeapFebruary(t *testing.T) {
	w := monthlyAnchor(31).WindowFor(date(2024, time.February, 15))
	assertWindow(t, w, date(2024, time.January, 31), date(2024, time.February, 29))
}

func TestMonthlyWindow_YearRollover(t *testing.T) {
	// GIVEN: Monthly anchor on day 15
	// WHEN: Reference is Jan 3, before this month's reset
	// THEN: Window started Dec 15 of the previous year

	w := monthlyAnchor(15).WindowFor(date(2025, time.January, 3))
	assertWindow(t, w, date(2024, time.December, 15), date(2025, time.January, 15))
}

// =============================================================================
// QUARTERLY WINDOWS
// =============================================================================

func TestQuarterlyWindow_MidCycle(t *testing.T) {
	// GIVEN: Quarterly cycles resetting Feb/May/Aug/Nov on the 15th
	// WHEN: Reference is Jul 1
	// THEN: Window is [May 15, Aug 15)

	w := quarterlyAnchor(time.February, 15).WindowFor(date(2025, time.July, 1))
	assertWindow(t, w, date(2025, time.May, 15), date(2025, time.August, 15))
}

func TestQuarterlyWindow_BeforeFirstResetOfYear(t *testing.T) {
	// WHEN: Reference is Feb 10, before the Feb 15 reset
	// THEN: Window reaches back to Nov 15 of the previous year

	w := quarterlyAnchor(time.February, 15).WindowFor(date(2025, time.February, 10))
	assertWindow(t, w, date(2024, time.November, 15), date(2025, time.February, 15))
}

func TestQuarterlyWindow_ClampInShortMonth(t *testing.T) {
	// GIVEN: Quarterly cycles from Jan 31 (Jan/Apr/Jul/Oct)
	// WHEN: Reference is May 1
	// THEN: Start clamps to Apr 30, end lands back on Jul 31

	w := quarterlyAnchor(time.January, 31).WindowFor(date(2025, time.May, 1))
	assertWindow(t, w, date(2025, time.April, 30), date(2025, time.July, 31))
}

func TestQuarterlyWindow_StartBoundary(t *testing.T) {
	w := quarterlyAnchor(time.February, 15).WindowFor(date(2025, time.May, 15))
	assertWindow(t, w, date(2025, time.May, 15), date(2025, time.August, 15))
}

// =============================================================================
// YEARLY WINDOWS
// =============================================================================

func TestYearlyWindow_MidCycle(t *testing.T) {
	w := yearlyAnchor(time.June, 1).WindowFor(date(2025, time.October, 10))
	assertWindow(t, w, date(2025, time.June, 1), date(2026, time.June, 1))
}

func TestYearlyWindow_BeforeAnniversary(t *testing.T) {
	w := yearlyAnchor(time.June, 1).WindowFor(date(2025, time.March, 10))
	assertWindow(t, w, date(2024, time.June, 1), date(2025, time.June, 1))
}

func TestYearlyWindow_Feb29ClampsInNonLeapYear(t *testing.T) {
	// GIVEN: Yearly anchor on Feb 29
	// WHEN: Reference falls in a non-leap year
	// THEN: The occurrence clamps to Feb 28, never rolls to Mar 1

	w := yearlyAnchor(time.February, 29).WindowFor(date(2025, time.March, 1))
	assertWindow(t, w, date(2025, time.February, 28), date(2026, time.February, 28))
}

func TestYearlyWindow_Feb29InLeapYear(t *testing.T) {
	w := yearlyAnchor(time.February, 29).WindowFor(date(2024, time.March, 1))
	assertWindow(t, w, date(2024, time.February, 29), date(2025, time.February, 28))
}

// =============================================================================
// WINDOW PROPERTIES
// =============================================================================

func TestWindowFor_ContainsReference(t *testing.T) {
	// For any anchor, the computed window must contain the reference date
	// and satisfy start < end.

	anchors := []benefit.CycleAnchor{
		monthlyAnchor(1), monthlyAnchor(15), monthlyAnchor(28), monthlyAnchor(31),
		quarterlyAnchor(time.January, 1), quarterlyAnchor(time.March, 31),
		yearlyAnchor(time.February, 29), yearlyAnchor(time.December, 31),
	}
	refs := []benefit.Date{
		date(2024, time.February, 29), date(2025, time.January, 1),
		date(2025, time.February, 28), date(2025, time.June, 15),
		date(2025, time.December, 31),
	}

	for _, anchor := range anchors {
		for _, ref := range refs {
			w := anchor.WindowFor(ref)
			if !w.Start.Before(w.End) {
				t.Errorf("%s at %s: start %s not before end %s", anchor.Label(), ref, w.Start, w.End)
			}
			if !w.Contains(ref) {
				t.Errorf("%s at %s: window %s does not contain reference", anchor.Label(), ref, w)
			}
		}
	}
}

func TestWindowContains_HalfOpen(t *testing.T) {
	w := benefit.Window{Start: date(2025, time.March, 1), End: date(2025, time.April, 1)}

	if !w.Contains(date(2025, time.March, 1)) {
		t.Error("start date should be inside the window")
	}
	if w.Contains(date(2025, time.April, 1)) {
		t.Error("end date should be outside the window")
	}
	if w.Contains(date(2025, time.February, 28)) {
		t.Error("date before start should be outside the window")
	}
}

// =============================================================================
// DAY COUNTS AND LABELS
// =============================================================================

func TestDaysUntil(t *testing.T) {
	ref := date(2025, time.March, 10)

	if got := benefit.DaysUntil(date(2025, time.March, 15), ref); got != 5 {
		t.Errorf("future: got %d, want 5", got)
	}
	if got := benefit.DaysUntil(ref, ref); got != 0 {
		t.Errorf("same day: got %d, want 0", got)
	}
	if got := benefit.DaysUntil(date(2025, time.March, 1), ref); got != -9 {
		t.Errorf("past: got %d, want -9", got)
	}
}

func TestDateIn_ResolvesTimezone(t *testing.T) {
	// 2025-03-10 03:00 UTC is still 2025-03-09 in New York.
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skip("tzdata unavailable")
	}

	utc := time.Date(2025, time.March, 10, 3, 0, 0, 0, time.UTC)
	if got := benefit.DateIn(utc, ny); !got.Equal(date(2025, time.March, 9)) {
		t.Errorf("got %s, want 2025-03-09", got)
	}
	if got := benefit.DateIn(utc, nil); !got.Equal(date(2025, time.March, 10)) {
		t.Errorf("nil loc: got %s, want 2025-03-10", got)
	}
}

func TestCycleLabels(t *testing.T) {
	cases := []struct {
		anchor benefit.CycleAnchor
		want   string
	}{
		{monthlyAnchor(15), "Monthly on day 15"},
		{quarterlyAnchor(time.March, 10), "Quarterly from Mar 10"},
		{yearlyAnchor(time.December, 25), "Yearly on Dec 25"},
	}
	for _, c := range cases {
		if got := c.anchor.Label(); got != c.want {
			t.Errorf("Label() = %q, want %q", got, c.want)
		}
	}
}
