package catalog

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/salon-booking-backend/internal/pkg/apperror"
)

var (
	ErrNotFound        = apperror.NewKind(http.StatusNotFound, apperror.KindNotFound, "service not found")
	ErrEmptyName       = apperror.New(http.StatusBadRequest, "name cannot be empty")
	ErrInvalidDuration = apperror.New(http.StatusBadRequest, "duration must be a positive multiple of 5 minutes")
	ErrInvalidPrice    = apperror.New(http.StatusBadRequest, "price cannot be negative")
	ErrItemUnavailable = apperror.New(http.StatusBadRequest, "one or more services are unknown or inactive")
)

// Item is a bookable service offered by the shop (e.g. "Women's cut").
type Item struct {
	ID              string
	Name            string
	Category        string
	DurationMinutes int
	Price           int64 // minor currency units
	Active          bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Filter defines parameters for listing items.
type Filter struct {
	Category   string
	ActiveOnly bool
	Page       int
	PageSize   int
}

// Selection is a resolved set of items booked together in one visit.
type Selection struct {
	Items []*Item
}

// IDs returns the item ids in selection order.
func (s Selection) IDs() []string {
	ids := make([]string, len(s.Items))
	for i, it := range s.Items {
		ids[i] = it.ID
	}
	return ids
}

// TotalMinutes is the combined duration of the visit.
func (s Selection) TotalMinutes() int {
	total := 0
	for _, it := range s.Items {
		total += it.DurationMinutes
	}
	return total
}

// TotalPrice is the combined catalog price at the time of resolution.
func (s Selection) TotalPrice() int64 {
	var total int64
	for _, it := range s.Items {
		total += it.Price
	}
	return total
}
