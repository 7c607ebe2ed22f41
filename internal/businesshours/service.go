package businesshours

import (
	"context"
	"sort"
	"time"
)

type Service interface {
	Get(ctx context.Context) (*BusinessHours, error)
	Replace(ctx context.Context, hours *BusinessHours) (*BusinessHours, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Get(ctx context.Context) (*BusinessHours, error) {
	return s.repo.Get(ctx)
}

func (s *service) Replace(ctx context.Context, hours *BusinessHours) (*BusinessHours, error) {
	if err := validate(hours); err != nil {
		return nil, err
	}
	if err := s.repo.Replace(ctx, hours); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx)
}

// validate checks the schedule and sorts each day's ranges by opening time.
func validate(hours *BusinessHours) error {
	if _, err := hours.Location(); err != nil {
		return ErrInvalidTimeZone
	}
	if hours.SlotMinutes < MinSlotMinutes {
		return ErrInvalidSlotLength
	}

	for day, ranges := range hours.Weekly {
		if day < time.Sunday || day > time.Saturday {
			return ErrInvalidRange
		}
		for _, r := range ranges {
			if r.Close.Minutes() <= r.Open.Minutes() {
				return ErrInvalidRange
			}
		}

		sort.Slice(ranges, func(i, j int) bool {
			return ranges[i].Open.Minutes() < ranges[j].Open.Minutes()
		})
		for i := 1; i < len(ranges); i++ {
			if ranges[i].Open.Minutes() < ranges[i-1].Close.Minutes() {
				return ErrOverlappingRanges
			}
		}
	}
	return nil
}
