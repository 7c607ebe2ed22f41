package customer

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	byEmail map[string]*Customer
	seq     int

	// racer, when set, is inserted right before Create to simulate a concurrent writer.
	racer *Customer
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{byEmail: make(map[string]*Customer)}
}

func (r *fakeRepo) GetByID(ctx context.Context, id string) (*Customer, error) {
	for _, c := range r.byEmail {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, ErrNotFound
}

func (r *fakeRepo) GetByEmail(ctx context.Context, email string) (*Customer, error) {
	if c, ok := r.byEmail[email]; ok {
		return c, nil
	}
	return nil, ErrNotFound
}

func (r *fakeRepo) Create(ctx context.Context, c *Customer) error {
	if r.racer != nil {
		r.byEmail[r.racer.Email] = r.racer
		r.racer = nil
	}
	if _, ok := r.byEmail[c.Email]; ok {
		return ErrEmailAlreadyUsed
	}
	r.seq++
	c.ID = fmt.Sprintf("cust-%d", r.seq)
	r.byEmail[c.Email] = c
	return nil
}

func TestFindOrCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("creates with normalized email", func(t *testing.T) {
		repo := newFakeRepo()
		svc := NewService(repo)

		c, err := svc.FindOrCreate(ctx, Input{Name: " Ada ", Email: " Ada@Example.COM ", Phone: "555"})
		require.NoError(t, err)
		assert.Equal(t, "ada@example.com", c.Email)
		assert.Equal(t, "Ada", c.Name)
		assert.Len(t, repo.byEmail, 1)
	})

	t.Run("returns existing customer", func(t *testing.T) {
		repo := newFakeRepo()
		repo.byEmail["ada@example.com"] = &Customer{ID: "existing", Email: "ada@example.com", Name: "Ada"}
		svc := NewService(repo)

		c, err := svc.FindOrCreate(ctx, Input{Name: "Someone Else", Email: "ADA@example.com"})
		require.NoError(t, err)
		assert.Equal(t, "existing", c.ID)
		assert.Equal(t, "Ada", c.Name)
	})

	t.Run("recovers from concurrent insert", func(t *testing.T) {
		repo := newFakeRepo()
		repo.racer = &Customer{ID: "winner", Email: "ada@example.com", Name: "Ada"}
		svc := NewService(repo)

		c, err := svc.FindOrCreate(ctx, Input{Name: "Ada", Email: "ada@example.com"})
		require.NoError(t, err)
		assert.Equal(t, "winner", c.ID)
	})

	t.Run("validation", func(t *testing.T) {
		svc := NewService(newFakeRepo())

		_, err := svc.FindOrCreate(ctx, Input{Name: "Ada"})
		assert.True(t, errors.Is(err, ErrEmailRequired))

		_, err = svc.FindOrCreate(ctx, Input{Email: "ada@example.com"})
		assert.True(t, errors.Is(err, ErrNameRequired))
	})
}
