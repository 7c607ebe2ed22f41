package booking

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/salon-booking-backend/internal/calendar"
	"github.com/nekogravitycat/salon-booking-backend/internal/pkg/apperror"
)

// DefaultResourceID is the single schedulable resource: the shop itself.
const DefaultResourceID = "shop"

var (
	ErrOverlap      = apperror.NewKind(http.StatusConflict, apperror.KindOverlap, "requested time is no longer available")
	ErrExpired      = apperror.NewKind(http.StatusGone, apperror.KindExpired, "hold has expired")
	ErrHoldNotFound = apperror.NewKind(http.StatusNotFound, apperror.KindNotFound, "hold not found")
	ErrNotFound     = apperror.NewKind(http.StatusNotFound, apperror.KindNotFound, "appointment not found")

	ErrPermissionDenied       = apperror.New(http.StatusForbidden, "permission denied")
	ErrSessionRequired        = apperror.New(http.StatusUnauthorized, "session is required")
	ErrInvalidDuration        = apperror.New(http.StatusBadRequest, "duration must be positive")
	ErrInvalidPrice           = apperror.New(http.StatusBadRequest, "price cannot be negative")
	ErrStartTimePast          = apperror.New(http.StatusBadRequest, "cannot hold a slot in the past")
	ErrOutsideBookingWindow   = apperror.New(http.StatusBadRequest, "date is outside the booking window")
	ErrOutsideBusinessHours   = apperror.New(http.StatusBadRequest, "requested time is outside business hours")
	ErrUnknownResource        = apperror.New(http.StatusBadRequest, "unknown resource")
	ErrCustomerRequired       = apperror.New(http.StatusBadRequest, "customer id or customer details are required")
	ErrInvalidStatus          = apperror.New(http.StatusBadRequest, "invalid appointment status")
	ErrInvalidStatusChange    = apperror.New(http.StatusConflict, "appointment status cannot change this way")
	ErrAppointmentUpdateRaced = apperror.New(http.StatusConflict, "appointment was modified concurrently, try again")
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled:
		return true
	}
	return false
}

// canBecome reports whether an appointment may move from s to next.
// Cancelled is terminal; reopening would need a fresh overlap check.
func (s Status) canBecome(next Status) bool {
	switch s {
	case StatusPending:
		return next == StatusConfirmed || next == StatusCancelled
	case StatusConfirmed:
		return next == StatusCancelled
	}
	return false
}

type HoldStatus string

const (
	HoldActive   HoldStatus = "active"
	HoldConsumed HoldStatus = "consumed"
	HoldReleased HoldStatus = "released"
	// HoldExpired is never stored. An active hold whose lease has lapsed reports it.
	HoldExpired HoldStatus = "expired"
)

// Hold is a short lease on an interval owned by an anonymous browser session.
type Hold struct {
	ID          string
	ResourceID  string
	SessionID   string
	ServiceIDs  []string
	StartTime   time.Time
	Duration    time.Duration
	QuotedPrice int64
	Status      HoldStatus
	ExpiresAt   time.Time
	CreatedAt   time.Time
}

func (h *Hold) Interval() calendar.Interval {
	return calendar.Interval{Start: h.StartTime, Duration: h.Duration}
}

// EffectiveStatus is the stored status with passive expiry applied at now.
func (h *Hold) EffectiveStatus(now time.Time) HoldStatus {
	if h.Status == HoldActive && !now.Before(h.ExpiresAt) {
		return HoldExpired
	}
	return h.Status
}

// Live reports whether the hold still blocks its interval at now.
func (h *Hold) Live(now time.Time) bool {
	return h.EffectiveStatus(now) == HoldActive
}

type Appointment struct {
	ID          string
	ResourceID  string
	CustomerID  string
	ServiceIDs  []string
	HoldID      *string
	StartTime   time.Time
	Duration    time.Duration
	Status      Status
	BookedPrice int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (a *Appointment) Interval() calendar.Interval {
	return calendar.Interval{Start: a.StartTime, Duration: a.Duration}
}

type Filter struct {
	CustomerID string
	Status     string
	From       *time.Time // appointments ending after this instant
	To         *time.Time // appointments starting before this instant
	Page       int
	PageSize   int
}
