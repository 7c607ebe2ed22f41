package http

import (
	"time"

	"github.com/nekogravitycat/salon-booking-backend/internal/catalog"
	"github.com/nekogravitycat/salon-booking-backend/internal/pkg/request"
)

// ListItemsRequest defines query parameters for listing services.
type ListItemsRequest struct {
	request.ListParams
	Category        string `form:"category"`
	IncludeInactive bool   `form:"include_inactive"`
}

type ItemResponse struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Category        string    `json:"category"`
	DurationMinutes int       `json:"duration_minutes"`
	Price           int64     `json:"price"`
	Active          bool      `json:"active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func NewItemResponse(it *catalog.Item) ItemResponse {
	return ItemResponse{
		ID:              it.ID,
		Name:            it.Name,
		Category:        it.Category,
		DurationMinutes: it.DurationMinutes,
		Price:           it.Price,
		Active:          it.Active,
		CreatedAt:       it.CreatedAt,
		UpdatedAt:       it.UpdatedAt,
	}
}

type CreateItemBody struct {
	Name            string `json:"name" binding:"required"`
	Category        string `json:"category"`
	DurationMinutes int    `json:"duration_minutes" binding:"required,min=5"`
	Price           int64  `json:"price" binding:"min=0"`
	Active          *bool  `json:"active"`
}

type UpdateItemBody struct {
	Name            *string `json:"name"`
	Category        *string `json:"category"`
	DurationMinutes *int    `json:"duration_minutes" binding:"omitempty,min=5"`
	Price           *int64  `json:"price" binding:"omitempty,min=0"`
	Active          *bool   `json:"active"`
}
