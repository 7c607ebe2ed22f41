package booking

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nekogravitycat/salon-booking-backend/internal/businesshours"
	"github.com/nekogravitycat/salon-booking-backend/internal/calendar"
	"github.com/nekogravitycat/salon-booking-backend/internal/catalog"
	"github.com/nekogravitycat/salon-booking-backend/internal/customer"
	"github.com/nekogravitycat/salon-booking-backend/internal/db"
	"github.com/nekogravitycat/salon-booking-backend/internal/events"
)

const (
	DefaultHoldTTL           = 10 * time.Minute
	DefaultMaxRetries        = 3
	DefaultBookingWindowDays = 90
)

// HoursProvider supplies the shop's weekly schedule.
type HoursProvider interface {
	Get(ctx context.Context) (*businesshours.BusinessHours, error)
}

// Catalog resolves the services a visit is made of.
type Catalog interface {
	Resolve(ctx context.Context, ids []string) (catalog.Selection, error)
}

// Customers looks up or provisions the person an appointment is for.
type Customers interface {
	GetByID(ctx context.Context, id string) (*customer.Customer, error)
	FindOrCreate(ctx context.Context, in customer.Input) (*customer.Customer, error)
}

type AvailabilityRequest struct {
	Date            calendar.Date
	DurationMinutes int
	ServiceIDs      []string
	ResourceID      string
	// ExcludeSessionID ignores that session's own live hold, so a client that is
	// re-picking a time still sees the slot it currently holds.
	ExcludeSessionID string
}

type Availability struct {
	Date            calendar.Date
	TimeZone        string
	DurationMinutes int
	Slots           []time.Time
}

type CreateHoldRequest struct {
	SessionID       string
	ResourceID      string
	ServiceIDs      []string
	StartTime       time.Time
	DurationMinutes int // 0 means the combined duration of ServiceIDs
}

type FinalizeRequest struct {
	HoldID      string
	SessionID   string
	CustomerID  string
	Customer    *customer.Input
	Price       int64
	AutoConfirm bool
}

type Service interface {
	Availability(ctx context.Context, req AvailabilityRequest) (*Availability, error)
	CreateHold(ctx context.Context, req CreateHoldRequest) (*Hold, error)
	GetHold(ctx context.Context, id, sessionID string) (*Hold, error)
	FinalizeHold(ctx context.Context, req FinalizeRequest) (*Appointment, error)
	ReleaseHold(ctx context.Context, id, sessionID string) error

	GetAppointment(ctx context.Context, id string) (*Appointment, error)
	ListAppointments(ctx context.Context, filter Filter) ([]*Appointment, int, error)
	UpdateAppointmentStatus(ctx context.Context, id string, status Status) (*Appointment, error)
}

type Option func(*service)

// WithHoldTTL sets how long a hold reserves its interval.
func WithHoldTTL(ttl time.Duration) Option {
	return func(s *service) {
		if ttl > 0 {
			s.holdTTL = ttl
		}
	}
}

// WithMaxRetries sets how many times a conflicting transaction is retried.
func WithMaxRetries(n int) Option {
	return func(s *service) {
		if n >= 0 {
			s.maxRetries = n
		}
	}
}

// WithBookingWindowDays sets how many days ahead of today may be booked.
func WithBookingWindowDays(days int) Option {
	return func(s *service) {
		if days >= 0 {
			s.windowDays = days
		}
	}
}

type service struct {
	repo      Repository
	hours     HoursProvider
	catalog   Catalog
	customers Customers
	publisher events.Publisher
	clock     calendar.Clock
	log       *zap.Logger

	holdTTL    time.Duration
	maxRetries int
	windowDays int
}

func NewService(
	repo Repository,
	hours HoursProvider,
	cat Catalog,
	customers Customers,
	publisher events.Publisher,
	clock calendar.Clock,
	log *zap.Logger,
	opts ...Option,
) Service {
	s := &service{
		repo:       repo,
		hours:      hours,
		catalog:    cat,
		customers:  customers,
		publisher:  publisher,
		clock:      clock,
		log:        log,
		holdTTL:    DefaultHoldTTL,
		maxRetries: DefaultMaxRetries,
		windowDays: DefaultBookingWindowDays,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func resolveResource(id string) (string, error) {
	if id == "" || id == DefaultResourceID {
		return DefaultResourceID, nil
	}
	return "", ErrUnknownResource
}

// inWindow reports whether day lies between today and today+windowDays in loc.
func (s *service) inWindow(day calendar.Date, loc *time.Location) bool {
	ahead := day.DaysSince(calendar.Today(s.clock, loc))
	return ahead >= 0 && ahead <= s.windowDays
}

// runTx runs fn in a transaction, retrying it while the store reports a
// conflict with a concurrent transaction. When retries run out it returns
// exhausted.
func (s *service) runTx(ctx context.Context, op string, exhausted error, fn func(ctx context.Context) error) error {
	for attempt := 0; ; attempt++ {
		err := s.repo.WithTx(ctx, fn)
		if !errors.Is(err, db.ErrTxConflict) {
			return err
		}
		if attempt >= s.maxRetries {
			s.log.Info("transaction retries exhausted", zap.String("op", op), zap.Int("attempts", attempt+1))
			return exhausted
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		s.log.Debug("retrying conflicting transaction", zap.String("op", op), zap.Int("attempt", attempt+1))
	}
}

func (s *service) Availability(ctx context.Context, req AvailabilityRequest) (*Availability, error) {
	resourceID, err := resolveResource(req.ResourceID)
	if err != nil {
		return nil, err
	}

	var sel catalog.Selection
	if len(req.ServiceIDs) > 0 {
		if sel, err = s.catalog.Resolve(ctx, req.ServiceIDs); err != nil {
			return nil, err
		}
	}
	minutes, err := visitMinutes(req.DurationMinutes, sel)
	if err != nil {
		return nil, err
	}

	hours, err := s.hours.Get(ctx)
	if err != nil {
		return nil, err
	}
	loc, err := hours.Location()
	if err != nil {
		return nil, err
	}
	if !s.inWindow(req.Date, loc) {
		return nil, ErrOutsideBookingWindow
	}

	now := s.clock.Now()
	span := req.Date.Span(loc)
	committed, err := s.committed(ctx, resourceID, span, now, req.ExcludeSessionID)
	if err != nil {
		return nil, err
	}

	duration := time.Duration(minutes) * time.Minute
	return &Availability{
		Date:            req.Date,
		TimeZone:        hours.TimeZone,
		DurationMinutes: minutes,
		Slots:           slices.Collect(Slots(req.Date, duration, hours, loc, committed, now)),
	}, nil
}

// committed returns every interval in window that is taken at now: non-cancelled
// appointments plus live holds (optionally ignoring one session's holds).
func (s *service) committed(ctx context.Context, resourceID string, window calendar.Interval, now time.Time, excludeSessionID string) ([]calendar.Interval, error) {
	appts, err := s.repo.AppointmentIntervals(ctx, resourceID, window)
	if err != nil {
		return nil, err
	}
	holds, err := s.repo.LiveHoldIntervals(ctx, resourceID, window, now, excludeSessionID)
	if err != nil {
		return nil, err
	}
	return append(appts, holds...), nil
}

// visitMinutes picks the interval length for a request. Zero means the
// combined duration of the selected services; an explicit value may extend
// that but never shorten it.
func visitMinutes(requested int, sel catalog.Selection) (int, error) {
	minutes := requested
	if minutes == 0 {
		minutes = sel.TotalMinutes()
	}
	if minutes <= 0 || minutes < sel.TotalMinutes() {
		return 0, ErrInvalidDuration
	}
	return minutes, nil
}

func (s *service) CreateHold(ctx context.Context, req CreateHoldRequest) (*Hold, error) {
	if req.SessionID == "" {
		return nil, ErrSessionRequired
	}
	resourceID, err := resolveResource(req.ResourceID)
	if err != nil {
		return nil, err
	}
	if req.DurationMinutes < 0 {
		return nil, ErrInvalidDuration
	}

	sel, err := s.catalog.Resolve(ctx, req.ServiceIDs)
	if err != nil {
		return nil, err
	}
	minutes, err := visitMinutes(req.DurationMinutes, sel)
	if err != nil {
		return nil, err
	}

	hours, err := s.hours.Get(ctx)
	if err != nil {
		return nil, err
	}
	loc, err := hours.Location()
	if err != nil {
		return nil, err
	}

	iv := calendar.NewInterval(req.StartTime.UTC(), minutes)
	if iv.Start.Before(s.clock.Now()) {
		return nil, ErrStartTimePast
	}
	if !s.inWindow(calendar.DateOf(iv.Start.In(loc)), loc) {
		return nil, ErrOutsideBookingWindow
	}
	if !fitsOpenRange(iv, hours, loc) {
		return nil, ErrOutsideBusinessHours
	}

	hold := &Hold{
		ID:          uuid.NewString(),
		ResourceID:  resourceID,
		SessionID:   req.SessionID,
		ServiceIDs:  sel.IDs(),
		StartTime:   iv.Start,
		Duration:    iv.Duration,
		QuotedPrice: sel.TotalPrice(),
		Status:      HoldActive,
	}

	err = s.runTx(ctx, "create_hold", ErrOverlap, func(ctx context.Context) error {
		now := s.clock.Now()

		// A session holds at most one slot; picking a new one gives up the old.
		if _, err := s.repo.ReleaseSessionHolds(ctx, resourceID, req.SessionID); err != nil {
			return err
		}

		taken, err := s.committed(ctx, resourceID, iv, now, "")
		if err != nil {
			return err
		}
		if calendar.OverlapsAny(iv, taken) {
			return ErrOverlap
		}

		hold.ExpiresAt = now.Add(s.holdTTL)
		return s.repo.CreateHold(ctx, hold)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("hold created",
		zap.String("hold_id", hold.ID),
		zap.String("session_id", hold.SessionID),
		zap.Time("start", hold.StartTime),
		zap.Duration("duration", hold.Duration),
		zap.Time("expires_at", hold.ExpiresAt),
	)
	return hold, nil
}

func (s *service) GetHold(ctx context.Context, id, sessionID string) (*Hold, error) {
	h, err := s.repo.GetHold(ctx, id)
	if err != nil {
		return nil, err
	}
	if h.SessionID != sessionID {
		return nil, ErrPermissionDenied
	}
	h.Status = h.EffectiveStatus(s.clock.Now())
	return h, nil
}

func (s *service) FinalizeHold(ctx context.Context, req FinalizeRequest) (*Appointment, error) {
	if req.SessionID == "" {
		return nil, ErrSessionRequired
	}
	if req.Price < 0 {
		return nil, ErrInvalidPrice
	}
	if req.CustomerID == "" && req.Customer == nil {
		return nil, ErrCustomerRequired
	}

	var appt *Appointment
	err := s.runTx(ctx, "finalize_hold", ErrOverlap, func(ctx context.Context) error {
		now := s.clock.Now()

		hold, err := s.repo.GetHoldForUpdate(ctx, req.HoldID)
		if err != nil {
			return err
		}
		if hold.Status != HoldActive {
			return ErrHoldNotFound
		}
		if hold.SessionID != req.SessionID {
			return ErrPermissionDenied
		}
		if hold.EffectiveStatus(now) == HoldExpired {
			return ErrExpired
		}

		iv := hold.Interval()
		booked, err := s.repo.AppointmentIntervals(ctx, hold.ResourceID, iv)
		if err != nil {
			return err
		}
		if calendar.OverlapsAny(iv, booked) {
			return ErrOverlap
		}

		cust, err := s.resolveCustomer(ctx, req)
		if err != nil {
			return err
		}

		status := StatusPending
		if req.AutoConfirm {
			status = StatusConfirmed
		}
		holdID := hold.ID
		a := &Appointment{
			ResourceID:  hold.ResourceID,
			CustomerID:  cust.ID,
			ServiceIDs:  hold.ServiceIDs,
			HoldID:      &holdID,
			StartTime:   hold.StartTime,
			Duration:    hold.Duration,
			Status:      status,
			BookedPrice: req.Price,
		}
		if err := s.repo.CreateAppointment(ctx, a); err != nil {
			return err
		}
		if err := s.repo.SetHoldStatus(ctx, hold.ID, HoldActive, HoldConsumed); err != nil {
			return err
		}
		appt = a
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("hold finalized",
		zap.String("hold_id", req.HoldID),
		zap.String("appointment_id", appt.ID),
		zap.String("status", string(appt.Status)),
	)
	s.publishFinalized(ctx, appt)
	return appt, nil
}

func (s *service) resolveCustomer(ctx context.Context, req FinalizeRequest) (*customer.Customer, error) {
	if req.CustomerID != "" {
		return s.customers.GetByID(ctx, req.CustomerID)
	}
	return s.customers.FindOrCreate(ctx, *req.Customer)
}

// publishFinalized is best effort; the appointment is already committed.
func (s *service) publishFinalized(ctx context.Context, a *Appointment) {
	var holdID string
	if a.HoldID != nil {
		holdID = *a.HoldID
	}
	event := events.AppointmentFinalized{
		AppointmentID: a.ID,
		HoldID:        holdID,
		CustomerID:    a.CustomerID,
		ServiceIDs:    a.ServiceIDs,
		StartTime:     a.StartTime,
		EndTime:       a.Interval().End(),
		Status:        string(a.Status),
		BookedPrice:   a.BookedPrice,
		OccurredAt:    s.clock.Now(),
	}
	if err := s.publisher.PublishAppointmentFinalized(ctx, event); err != nil {
		s.log.Warn("failed to publish appointment event", zap.String("appointment_id", a.ID), zap.Error(err))
	}
}

func (s *service) ReleaseHold(ctx context.Context, id, sessionID string) error {
	if sessionID == "" {
		return ErrSessionRequired
	}

	released := false
	err := s.runTx(ctx, "release_hold", db.ErrTxConflict, func(ctx context.Context) error {
		released = false
		hold, err := s.repo.GetHoldForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if hold.SessionID != sessionID {
			return ErrPermissionDenied
		}
		// Consumed, released and expired holds are already free.
		if !hold.Live(s.clock.Now()) {
			return nil
		}
		if err := s.repo.SetHoldStatus(ctx, hold.ID, HoldActive, HoldReleased); err != nil {
			return err
		}
		released = true
		return nil
	})
	if err != nil {
		return err
	}

	if released {
		s.log.Info("hold released", zap.String("hold_id", id), zap.String("session_id", sessionID))
	}
	return nil
}

func (s *service) GetAppointment(ctx context.Context, id string) (*Appointment, error) {
	return s.repo.GetAppointment(ctx, id)
}

func (s *service) ListAppointments(ctx context.Context, filter Filter) ([]*Appointment, int, error) {
	if filter.Status != "" && !Status(filter.Status).Valid() {
		return nil, 0, ErrInvalidStatus
	}
	return s.repo.ListAppointments(ctx, filter)
}

func (s *service) UpdateAppointmentStatus(ctx context.Context, id string, status Status) (*Appointment, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	var appt *Appointment
	err := s.runTx(ctx, "update_appointment_status", ErrAppointmentUpdateRaced, func(ctx context.Context) error {
		a, err := s.repo.GetAppointment(ctx, id)
		if err != nil {
			return err
		}
		if a.Status != status {
			if !a.Status.canBecome(status) {
				return ErrInvalidStatusChange
			}
			if err := s.repo.UpdateAppointmentStatus(ctx, id, status); err != nil {
				return err
			}
			if a, err = s.repo.GetAppointment(ctx, id); err != nil {
				return err
			}
		}
		appt = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return appt, nil
}
