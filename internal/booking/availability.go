package booking

import (
	"iter"
	"time"

	"github.com/nekogravitycat/salon-booking-backend/internal/businesshours"
	"github.com/nekogravitycat/salon-booking-backend/internal/calendar"
)

// Slots yields, in chronological order, every start instant on day at which an
// appointment of length duration fits inside one open range of hours and
// overlaps none of the committed intervals. Candidates starting before
// notBefore are skipped. The sequence is computed on each iteration.
func Slots(
	day calendar.Date,
	duration time.Duration,
	hours *businesshours.BusinessHours,
	loc *time.Location,
	committed []calendar.Interval,
	notBefore time.Time,
) iter.Seq[time.Time] {
	return func(yield func(time.Time) bool) {
		if duration <= 0 {
			return
		}
		step := hours.Granularity()
		for _, open := range hours.OpenIntervals(day, loc) {
			end := open.End()
			for start := open.Start; !start.Add(duration).After(end); start = start.Add(step) {
				if start.Before(notBefore) {
					continue
				}
				if calendar.OverlapsAny(calendar.Interval{Start: start, Duration: duration}, committed) {
					continue
				}
				if !yield(start) {
					return
				}
			}
		}
	}
}

// fitsOpenRange reports whether iv lies inside a single open range of hours.
func fitsOpenRange(iv calendar.Interval, hours *businesshours.BusinessHours, loc *time.Location) bool {
	day := calendar.DateOf(iv.Start.In(loc))
	for _, open := range hours.OpenIntervals(day, loc) {
		if iv.Within(open) {
			return true
		}
	}
	return false
}
