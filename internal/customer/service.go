package customer

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Service defines business logic related to customers.
type Service interface {
	GetByID(ctx context.Context, id string) (*Customer, error)
	// FindOrCreate returns the customer with in.Email, creating it when missing.
	// It joins the caller's transaction when ctx carries one.
	FindOrCreate(ctx context.Context, in Input) (*Customer, error)
}

type service struct {
	repo Repository
}

// NewService creates a new customer Service.
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) GetByID(ctx context.Context, id string) (*Customer, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) FindOrCreate(ctx context.Context, in Input) (*Customer, error) {
	email := normalizeEmail(in.Email)
	if email == "" {
		return nil, ErrEmailRequired
	}

	existing, err := s.repo.GetByEmail(ctx, email)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("failed to look up customer by email: %w", err)
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, ErrNameRequired
	}

	c := &Customer{
		Name:  name,
		Email: email,
		Phone: strings.TrimSpace(in.Phone),
	}
	if err := s.repo.Create(ctx, c); err != nil {
		// Someone else provisioned the same email between our read and insert.
		if errors.Is(err, ErrEmailAlreadyUsed) {
			return s.repo.GetByEmail(ctx, email)
		}
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}
	return c, nil
}

// normalizeEmail trims spaces and lowercases the email.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
