package customer

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nekogravitycat/salon-booking-backend/internal/db"
)

type Repository interface {
	GetByID(ctx context.Context, id string) (*Customer, error)
	GetByEmail(ctx context.Context, email string) (*Customer, error)
	Create(ctx context.Context, c *Customer) error
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Customer, error) {
	const query = `
		SELECT id, name, email, phone, created_at
		FROM public.customers
		WHERE id = $1
	`
	return r.getOne(ctx, query, id)
}

func (r *pgxRepository) GetByEmail(ctx context.Context, email string) (*Customer, error) {
	const query = `
		SELECT id, name, email, phone, created_at
		FROM public.customers
		WHERE email = $1
	`
	return r.getOne(ctx, query, email)
}

func (r *pgxRepository) getOne(ctx context.Context, query string, arg any) (*Customer, error) {
	var c Customer
	err := db.Conn(ctx, r.pool).QueryRow(ctx, query, arg).
		Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || db.IsInvalidText(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get customer failed: %w", err)
	}
	return &c, nil
}

// Create inserts the customer. ON CONFLICT keeps an enclosing transaction usable
// when the email already exists; that case is reported as ErrEmailAlreadyUsed.
func (r *pgxRepository) Create(ctx context.Context, c *Customer) error {
	const query = `
		INSERT INTO public.customers (name, email, phone)
		VALUES ($1, $2, $3)
		ON CONFLICT (email) DO NOTHING
		RETURNING id, created_at
	`
	err := db.Conn(ctx, r.pool).QueryRow(ctx, query, c.Name, c.Email, c.Phone).
		Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || db.IsUniqueViolation(err) {
			return ErrEmailAlreadyUsed
		}
		return fmt.Errorf("create customer failed: %w", err)
	}
	return nil
}
