package catalog

import (
	"context"
	"strings"
)

type CreateRequest struct {
	Name            string
	Category        string
	DurationMinutes int
	Price           int64
	Active          bool
}

type UpdateRequest struct {
	Name            *string
	Category        *string
	DurationMinutes *int
	Price           *int64
	Active          *bool
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Item, error)
	GetByID(ctx context.Context, id string) (*Item, error)
	List(ctx context.Context, filter Filter) ([]*Item, int, error)
	Update(ctx context.Context, id string, req UpdateRequest) (*Item, error)
	Delete(ctx context.Context, id string) error
	// Resolve loads the given items for booking. Every id must exist and be active.
	Resolve(ctx context.Context, ids []string) (Selection, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func validDuration(m int) bool {
	return m > 0 && m%5 == 0
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Item, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, ErrEmptyName
	}
	if !validDuration(req.DurationMinutes) {
		return nil, ErrInvalidDuration
	}
	if req.Price < 0 {
		return nil, ErrInvalidPrice
	}

	item := &Item{
		Name:            strings.TrimSpace(req.Name),
		Category:        strings.TrimSpace(req.Category),
		DurationMinutes: req.DurationMinutes,
		Price:           req.Price,
		Active:          req.Active,
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Item, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Item, int, error) {
	return s.repo.List(ctx, filter)
}

// Update edits an item. Appointments keep the price they were booked at, so
// catalog edits never change existing bookings.
func (s *service) Update(ctx context.Context, id string, req UpdateRequest) (*Item, error) {
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return nil, ErrEmptyName
		}
		item.Name = strings.TrimSpace(*req.Name)
	}
	if req.Category != nil {
		item.Category = strings.TrimSpace(*req.Category)
	}
	if req.DurationMinutes != nil {
		if !validDuration(*req.DurationMinutes) {
			return nil, ErrInvalidDuration
		}
		item.DurationMinutes = *req.DurationMinutes
	}
	if req.Price != nil {
		if *req.Price < 0 {
			return nil, ErrInvalidPrice
		}
		item.Price = *req.Price
	}
	if req.Active != nil {
		item.Active = *req.Active
	}

	if err := s.repo.Update(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *service) Resolve(ctx context.Context, ids []string) (Selection, error) {
	if len(ids) == 0 {
		return Selection{}, nil
	}

	found, err := s.repo.GetMany(ctx, ids)
	if err != nil {
		return Selection{}, err
	}
	byID := make(map[string]*Item, len(found))
	for _, it := range found {
		byID[it.ID] = it
	}

	sel := Selection{Items: make([]*Item, 0, len(ids))}
	for _, id := range ids {
		it, ok := byID[id]
		if !ok || !it.Active {
			return Selection{}, ErrItemUnavailable
		}
		sel.Items = append(sel.Items, it)
	}
	return sel, nil
}
