package catalog

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	items map[string]*Item
	seq   int
}

func newFakeRepo(items ...*Item) *fakeRepo {
	r := &fakeRepo{items: make(map[string]*Item)}
	for _, it := range items {
		r.items[it.ID] = it
	}
	return r
}

func (r *fakeRepo) Create(ctx context.Context, it *Item) error {
	r.seq++
	it.ID = fmt.Sprintf("item-%d", r.seq)
	r.items[it.ID] = it
	return nil
}

func (r *fakeRepo) GetByID(ctx context.Context, id string) (*Item, error) {
	it, ok := r.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *it
	return &cp, nil
}

func (r *fakeRepo) GetMany(ctx context.Context, ids []string) ([]*Item, error) {
	var out []*Item
	for _, id := range ids {
		if it, ok := r.items[id]; ok {
			out = append(out, it)
		}
	}
	return out, nil
}

func (r *fakeRepo) List(ctx context.Context, filter Filter) ([]*Item, int, error) {
	var out []*Item
	for _, it := range r.items {
		if filter.ActiveOnly && !it.Active {
			continue
		}
		out = append(out, it)
	}
	return out, len(out), nil
}

func (r *fakeRepo) Update(ctx context.Context, it *Item) error {
	if _, ok := r.items[it.ID]; !ok {
		return ErrNotFound
	}
	r.items[it.ID] = it
	return nil
}

func (r *fakeRepo) Delete(ctx context.Context, id string) error {
	delete(r.items, id)
	return nil
}

func TestCreateValidation(t *testing.T) {
	svc := NewService(newFakeRepo())
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateRequest{Name: "  ", DurationMinutes: 30})
	assert.ErrorIs(t, err, ErrEmptyName)

	_, err = svc.Create(ctx, CreateRequest{Name: "Cut", DurationMinutes: 0})
	assert.ErrorIs(t, err, ErrInvalidDuration)

	_, err = svc.Create(ctx, CreateRequest{Name: "Cut", DurationMinutes: 32})
	assert.ErrorIs(t, err, ErrInvalidDuration)

	_, err = svc.Create(ctx, CreateRequest{Name: "Cut", DurationMinutes: 30, Price: -1})
	assert.ErrorIs(t, err, ErrInvalidPrice)

	it, err := svc.Create(ctx, CreateRequest{Name: " Cut ", DurationMinutes: 30, Price: 4500, Active: true})
	require.NoError(t, err)
	assert.Equal(t, "Cut", it.Name)
	assert.NotEmpty(t, it.ID)
}

func TestUpdatePartial(t *testing.T) {
	repo := newFakeRepo(&Item{ID: "a", Name: "Cut", DurationMinutes: 30, Price: 4500, Active: true})
	svc := NewService(repo)

	price := int64(5000)
	it, err := svc.Update(context.Background(), "a", UpdateRequest{Price: &price})
	require.NoError(t, err)
	assert.Equal(t, int64(5000), it.Price)
	assert.Equal(t, 30, it.DurationMinutes)

	bad := 7
	_, err = svc.Update(context.Background(), "a", UpdateRequest{DurationMinutes: &bad})
	assert.ErrorIs(t, err, ErrInvalidDuration)

	_, err = svc.Update(context.Background(), "missing", UpdateRequest{Price: &price})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResolve(t *testing.T) {
	repo := newFakeRepo(
		&Item{ID: "cut", DurationMinutes: 30, Price: 4500, Active: true},
		&Item{ID: "color", DurationMinutes: 60, Price: 9000, Active: true},
		&Item{ID: "retired", DurationMinutes: 15, Price: 1000, Active: false},
	)
	svc := NewService(repo)
	ctx := context.Background()

	sel, err := svc.Resolve(ctx, []string{"color", "cut"})
	require.NoError(t, err)
	assert.Equal(t, []string{"color", "cut"}, sel.IDs())
	assert.Equal(t, 90, sel.TotalMinutes())
	assert.Equal(t, int64(13500), sel.TotalPrice())

	_, err = svc.Resolve(ctx, []string{"cut", "retired"})
	assert.ErrorIs(t, err, ErrItemUnavailable)

	_, err = svc.Resolve(ctx, []string{"ghost"})
	assert.ErrorIs(t, err, ErrItemUnavailable)

	sel, err = svc.Resolve(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, sel.TotalMinutes())
}
