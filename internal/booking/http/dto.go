package http

import (
	"time"

	"github.com/nekogravitycat/salon-booking-backend/internal/booking"
	"github.com/nekogravitycat/salon-booking-backend/internal/pkg/request"
)

// AvailabilityQuery defines query parameters for GET /v1/availability.
// Either duration_minutes or service_ids must be given.
type AvailabilityQuery struct {
	Date            string   `form:"date" binding:"required"`
	DurationMinutes int      `form:"duration_minutes" binding:"omitempty,min=1"`
	ServiceIDs      []string `form:"service_ids" binding:"omitempty,dive,uuid"`
	// IncludeOwnHold lists the caller's currently held slot as available.
	IncludeOwnHold bool `form:"include_own_hold"`
}

type AvailabilityResponse struct {
	Date            string      `json:"date"`
	TimeZone        string      `json:"time_zone"`
	DurationMinutes int         `json:"duration_minutes"`
	Slots           []time.Time `json:"slots"`
}

func NewAvailabilityResponse(a *booking.Availability) AvailabilityResponse {
	slots := a.Slots
	if slots == nil {
		slots = []time.Time{}
	}
	return AvailabilityResponse{
		Date:            a.Date.String(),
		TimeZone:        a.TimeZone,
		DurationMinutes: a.DurationMinutes,
		Slots:           slots,
	}
}

type CreateHoldBody struct {
	ServiceIDs      []string  `json:"service_ids" binding:"omitempty,dive,uuid"`
	StartTime       time.Time `json:"start_time" binding:"required"`
	DurationMinutes int       `json:"duration_minutes" binding:"omitempty,min=1"`
	ResourceID      string    `json:"resource_id"`
}

type HoldResponse struct {
	HoldID          string    `json:"hold_id"`
	ResourceID      string    `json:"resource_id"`
	ServiceIDs      []string  `json:"service_ids"`
	StartTime       time.Time `json:"start_time"`
	EndTime         time.Time `json:"end_time"`
	DurationMinutes int       `json:"duration_minutes"`
	QuotedPrice     int64     `json:"quoted_price"`
	Status          string    `json:"status"`
	ExpiresAt       time.Time `json:"expires_at"`
}

func NewHoldResponse(h *booking.Hold) HoldResponse {
	ids := h.ServiceIDs
	if ids == nil {
		ids = []string{}
	}
	return HoldResponse{
		HoldID:          h.ID,
		ResourceID:      h.ResourceID,
		ServiceIDs:      ids,
		StartTime:       h.StartTime,
		EndTime:         h.Interval().End(),
		DurationMinutes: int(h.Duration / time.Minute),
		QuotedPrice:     h.QuotedPrice,
		Status:          string(h.Status),
		ExpiresAt:       h.ExpiresAt,
	}
}

type CustomerBody struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required,email"`
	Phone string `json:"phone"`
}

// FinalizeBody is the payload for POST /v1/holds/:id/finalize.
// Either customer_id or customer must be provided.
type FinalizeBody struct {
	CustomerID  string        `json:"customer_id" binding:"omitempty,uuid"`
	Customer    *CustomerBody `json:"customer"`
	Price       *int64        `json:"price" binding:"required,min=0"`
	AutoConfirm bool          `json:"auto_confirm"`
}

type FinalizeResponse struct {
	AppointmentID string              `json:"appointment_id"`
	Appointment   AppointmentResponse `json:"appointment"`
}

type AppointmentResponse struct {
	ID              string    `json:"id"`
	ResourceID      string    `json:"resource_id"`
	CustomerID      string    `json:"customer_id"`
	ServiceIDs      []string  `json:"service_ids"`
	HoldID          *string   `json:"hold_id,omitempty"`
	StartTime       time.Time `json:"start_time"`
	EndTime         time.Time `json:"end_time"`
	DurationMinutes int       `json:"duration_minutes"`
	Status          string    `json:"status"`
	BookedPrice     int64     `json:"booked_price"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func NewAppointmentResponse(a *booking.Appointment) AppointmentResponse {
	ids := a.ServiceIDs
	if ids == nil {
		ids = []string{}
	}
	return AppointmentResponse{
		ID:              a.ID,
		ResourceID:      a.ResourceID,
		CustomerID:      a.CustomerID,
		ServiceIDs:      ids,
		HoldID:          a.HoldID,
		StartTime:       a.StartTime,
		EndTime:         a.Interval().End(),
		DurationMinutes: int(a.Duration / time.Minute),
		Status:          string(a.Status),
		BookedPrice:     a.BookedPrice,
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
}

// ListAppointmentsRequest defines query parameters for listing appointments.
type ListAppointmentsRequest struct {
	request.ListParams
	Status     string     `form:"status" binding:"omitempty,oneof=pending confirmed cancelled"`
	CustomerID string     `form:"customer_id" binding:"omitempty,uuid"`
	From       *time.Time `form:"from" time_format:"2006-01-02T15:04:05Z07:00"`
	To         *time.Time `form:"to" time_format:"2006-01-02T15:04:05Z07:00"`
}

type UpdateAppointmentBody struct {
	Status string `json:"status" binding:"required,oneof=pending confirmed cancelled"`
}
