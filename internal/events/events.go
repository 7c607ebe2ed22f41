// Package events publishes domain events to RabbitMQ for downstream consumers
// such as notification workers.
package events

import (
	"context"
	"time"
)

// AppointmentFinalizedKey is the routing key (and queue name) for finalized appointments.
const AppointmentFinalizedKey = "appointment.finalized"

// AppointmentFinalized is emitted after a hold has been converted into an appointment.
type AppointmentFinalized struct {
	AppointmentID string    `json:"appointment_id"`
	HoldID        string    `json:"hold_id"`
	CustomerID    string    `json:"customer_id"`
	ServiceIDs    []string  `json:"service_ids"`
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
	Status        string    `json:"status"`
	BookedPrice   int64     `json:"booked_price"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// Publisher delivers domain events. Implementations must be safe for concurrent use.
type Publisher interface {
	PublishAppointmentFinalized(ctx context.Context, event AppointmentFinalized) error
	Close() error
}

type nopPublisher struct{}

// NewNopPublisher returns a Publisher that drops every event. It is used when no
// broker is configured.
func NewNopPublisher() Publisher {
	return nopPublisher{}
}

func (nopPublisher) PublishAppointmentFinalized(context.Context, AppointmentFinalized) error {
	return nil
}

func (nopPublisher) Close() error { return nil }
