// Package schedule implements the working-time clock used to timestamp
// simulated events. Instants outside the working window are translated
// forward by the length of the closed period they fall in, so durations
// carry over across nights and weekends.
package schedule

import "time"

// WorkWeek defines the working window: Monday through Friday, hour of day
// in [Opening, Closing).
type WorkWeek struct {
	// Opening is the first working hour of the day, inclusive.
	Opening int

	// Closing is the first non-working hour of the day, exclusive bound
	// of the window.
	Closing int
}

// Default returns the standard nine-to-six working week.
func Default() WorkWeek {
	return WorkWeek{Opening: 9, Closing: 18}
}

// New returns a WorkWeek clamped to a sane window: Opening in [0,23] and
// Closing in (Opening, 24].
func New(opening, closing int) WorkWeek {
	if opening < 0 {
		opening = 0
	}
	if opening > 23 {
		opening = 23
	}
	if closing <= opening {
		closing = opening + 1
	}
	if closing > 24 {
		closing = 24
	}
	return WorkWeek{Opening: opening, Closing: closing}
}

// Contains reports whether t falls inside the working window.
func (w WorkWeek) Contains(t time.Time) bool {
	if wd := t.Weekday(); wd == time.Saturday || wd == time.Sunday {
		return false
	}
	return t.Hour() >= w.Opening && t.Hour() < w.Closing
}

// Advance adds elapsed to t and rolls the result forward until it lands
// inside the working window. Time past closing resumes after the next
// opening: an instant 15 minutes past closing on a Friday becomes 15
// minutes past opening on Monday. The loop terminates for any finite
// input since every roll moves strictly forward and the hour lands in
// the window after at most one overnight shift.
func (w WorkWeek) Advance(t time.Time, elapsed time.Duration) time.Time {
	t = t.Add(elapsed)
	for !w.Contains(t) {
		switch {
		case t.Hour() >= w.Closing:
			// Shift across the overnight gap into the next morning.
			t = t.Add(time.Duration(24-w.Closing+w.Opening) * time.Hour)
		case t.Hour() < w.Opening:
			// Shift past the small hours to the same day's opening.
			t = t.Add(time.Duration(w.Opening) * time.Hour)
		}
		switch t.Weekday() {
		case time.Saturday:
			t = t.AddDate(0, 0, 2)
		case time.Sunday:
			t = t.AddDate(0, 0, 1)
		}
	}
	return t
}

// AdvanceMinutes is Advance with the elapsed duration given in whole
// minutes, the unit activity durations are simulated in.
func (w WorkWeek) AdvanceMinutes(t time.Time, minutes int) time.Time {
	return w.Advance(t, time.Duration(minutes)*time.Minute)
}
