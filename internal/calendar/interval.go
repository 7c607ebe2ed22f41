// Package calendar holds the time arithmetic shared by availability and booking:
// half-open intervals, civil dates resolved in an explicit IANA zone, and an
// injectable clock.
package calendar

import "time"

// Interval is a half-open time range [Start, Start+Duration).
type Interval struct {
	Start    time.Time
	Duration time.Duration
}

// NewInterval builds an interval from a start instant and a length in minutes.
func NewInterval(start time.Time, minutes int) Interval {
	return Interval{Start: start, Duration: time.Duration(minutes) * time.Minute}
}

// End returns the exclusive end instant.
func (i Interval) End() time.Time {
	return i.Start.Add(i.Duration)
}

// Within reports whether i lies entirely inside outer.
func (i Interval) Within(outer Interval) bool {
	return !i.Start.Before(outer.Start) && !i.End().After(outer.End())
}

// Overlaps reports whether a and b share at least one instant.
// An interval ending at 10:00 does not overlap one starting at 10:00.
func Overlaps(a, b Interval) bool {
	return a.Start.Before(b.End()) && b.Start.Before(a.End())
}

// OverlapsAny reports whether candidate overlaps any interval in set.
func OverlapsAny(candidate Interval, set []Interval) bool {
	for _, iv := range set {
		if Overlaps(candidate, iv) {
			return true
		}
	}
	return false
}
