package http

import (
	"strings"
	"time"

	"github.com/nekogravitycat/salon-booking-backend/internal/businesshours"
	"github.com/nekogravitycat/salon-booking-backend/internal/calendar"
)

type RangeBody struct {
	Open  string `json:"open" binding:"required"`
	Close string `json:"close" binding:"required"`
}

// BusinessHoursBody is both the PUT payload and the GET response.
// Weekly is keyed by lower-case English weekday name.
type BusinessHoursBody struct {
	TimeZone    string                 `json:"time_zone" binding:"required"`
	SlotMinutes int                    `json:"slot_minutes" binding:"required,min=5"`
	Weekly      map[string][]RangeBody `json:"weekly" binding:"required"`
	UpdatedAt   *time.Time             `json:"updated_at,omitempty"`
}

func weekdayFromName(name string) (time.Weekday, bool) {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.EqualFold(d.String(), name) {
			return d, true
		}
	}
	return 0, false
}

// ToModel converts the payload, parsing every wall clock value.
func (b *BusinessHoursBody) ToModel() (*businesshours.BusinessHours, error) {
	out := &businesshours.BusinessHours{
		TimeZone:    b.TimeZone,
		SlotMinutes: b.SlotMinutes,
		Weekly:      make(map[time.Weekday][]businesshours.Range),
	}
	for name, ranges := range b.Weekly {
		day, ok := weekdayFromName(name)
		if !ok {
			return nil, businesshours.ErrInvalidRange
		}
		for _, r := range ranges {
			open, err := calendar.ParseWallClock(r.Open)
			if err != nil {
				return nil, err
			}
			close, err := calendar.ParseWallClock(r.Close)
			if err != nil {
				return nil, err
			}
			out.Weekly[day] = append(out.Weekly[day], businesshours.Range{Open: open, Close: close})
		}
	}
	return out, nil
}

func NewBusinessHoursBody(b *businesshours.BusinessHours) BusinessHoursBody {
	weekly := make(map[string][]RangeBody, len(b.Weekly))
	for day, ranges := range b.Weekly {
		items := make([]RangeBody, len(ranges))
		for i, r := range ranges {
			items[i] = RangeBody{Open: r.Open.String(), Close: r.Close.String()}
		}
		weekly[strings.ToLower(day.String())] = items
	}

	resp := BusinessHoursBody{
		TimeZone:    b.TimeZone,
		SlotMinutes: b.SlotMinutes,
		Weekly:      weekly,
	}
	if !b.UpdatedAt.IsZero() {
		updated := b.UpdatedAt
		resp.UpdatedAt = &updated
	}
	return resp
}
