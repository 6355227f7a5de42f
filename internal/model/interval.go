package model

import "time"

// Interval is a half-open [Start, End) range measured from midnight of a day.
type Interval struct {
	Start time.Duration
	End   time.Duration
}

// IntervalAt returns the interval that starts at t and lasts d.
func IntervalAt(t TimeOfDay, d time.Duration) Interval {
	start := t.Offset()
	return Interval{Start: start, End: start + d}
}

// Overlaps reports whether the two intervals share at least one instant.
func (i Interval) Overlaps(other Interval) bool {
	return i.Start < other.End && other.Start < i.End
}

func (i Interval) Empty() bool { return i.End <= i.Start }
