package businesshours

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/salon-booking-backend/internal/calendar"
	"github.com/nekogravitycat/salon-booking-backend/internal/pkg/apperror"
)

// MinSlotMinutes is the smallest slot granularity the shop may configure.
const MinSlotMinutes = 5

var (
	ErrNotConfigured     = apperror.New(http.StatusServiceUnavailable, "business hours are not configured")
	ErrInvalidTimeZone   = apperror.New(http.StatusBadRequest, "invalid time zone")
	ErrInvalidSlotLength = apperror.New(http.StatusBadRequest, "slot granularity must be at least 5 minutes")
	ErrInvalidRange      = apperror.New(http.StatusBadRequest, "opening range must close after it opens")
	ErrOverlappingRanges = apperror.New(http.StatusBadRequest, "opening ranges on the same day must not overlap")
)

// Range is one open period of a day, e.g. 09:00–12:00.
type Range struct {
	Open  calendar.WallClock
	Close calendar.WallClock
}

// BusinessHours is the weekly opening schedule of the shop.
type BusinessHours struct {
	TimeZone    string
	SlotMinutes int
	Weekly      map[time.Weekday][]Range
	UpdatedAt   time.Time
}

// Granularity returns the step between candidate slot starts.
func (b *BusinessHours) Granularity() time.Duration {
	m := b.SlotMinutes
	if m < MinSlotMinutes {
		m = MinSlotMinutes
	}
	return time.Duration(m) * time.Minute
}

// Location resolves the configured IANA zone.
func (b *BusinessHours) Location() (*time.Location, error) {
	return calendar.LoadLocation(b.TimeZone)
}

// OpenIntervals returns the absolute open intervals on date d, in order.
// A closed weekday yields nil.
func (b *BusinessHours) OpenIntervals(d calendar.Date, loc *time.Location) []calendar.Interval {
	ranges := b.Weekly[d.Weekday()]
	if len(ranges) == 0 {
		return nil
	}

	out := make([]calendar.Interval, 0, len(ranges))
	for _, r := range ranges {
		start := r.Open.On(d, loc)
		end := r.Close.On(d, loc)
		if !end.After(start) {
			continue
		}
		out = append(out, calendar.Interval{Start: start, Duration: end.Sub(start)})
	}
	return out
}
