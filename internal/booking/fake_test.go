package booking

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nekogravitycat/salon-booking-backend/internal/businesshours"
	"github.com/nekogravitycat/salon-booking-backend/internal/calendar"
	"github.com/nekogravitycat/salon-booking-backend/internal/catalog"
	"github.com/nekogravitycat/salon-booking-backend/internal/customer"
	"github.com/nekogravitycat/salon-booking-backend/internal/db"
	"github.com/nekogravitycat/salon-booking-backend/internal/events"
)

type inTxKey struct{}

// fakeRepo is an in-memory Repository. Transactions run one at a time and roll
// back on error, which gives the same outcome as serializable isolation.
type fakeRepo struct {
	mu    sync.Mutex
	holds map[string]*Hold
	appts map[string]*Appointment
	seq   int

	// conflicts makes the next N transactions fail with db.ErrTxConflict after
	// running, as if the store had detected a concurrent writer.
	conflicts int
	txCount   int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		holds: make(map[string]*Hold),
		appts: make(map[string]*Appointment),
	}
}

func (r *fakeRepo) lock(ctx context.Context) func() {
	if ctx.Value(inTxKey{}) != nil {
		return func() {}
	}
	r.mu.Lock()
	return r.mu.Unlock
}

func cloneHolds(in map[string]*Hold) map[string]*Hold {
	out := make(map[string]*Hold, len(in))
	for k, v := range in {
		c := *v
		out[k] = &c
	}
	return out
}

func cloneAppts(in map[string]*Appointment) map[string]*Appointment {
	out := make(map[string]*Appointment, len(in))
	for k, v := range in {
		c := *v
		out[k] = &c
	}
	return out
}

func (r *fakeRepo) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(inTxKey{}) != nil {
		return fn(ctx)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.txCount++
	holds, appts, seq := cloneHolds(r.holds), cloneAppts(r.appts), r.seq
	rollback := func() {
		r.holds, r.appts, r.seq = holds, appts, seq
	}

	if err := fn(context.WithValue(ctx, inTxKey{}, true)); err != nil {
		rollback()
		return err
	}
	if r.conflicts > 0 {
		r.conflicts--
		rollback()
		return fmt.Errorf("%w: injected", db.ErrTxConflict)
	}
	return nil
}

func (r *fakeRepo) AppointmentIntervals(ctx context.Context, resourceID string, window calendar.Interval) ([]calendar.Interval, error) {
	defer r.lock(ctx)()
	var out []calendar.Interval
	for _, a := range r.appts {
		if a.ResourceID == resourceID && a.Status != StatusCancelled && calendar.Overlaps(a.Interval(), window) {
			out = append(out, a.Interval())
		}
	}
	return out, nil
}

func (r *fakeRepo) LiveHoldIntervals(ctx context.Context, resourceID string, window calendar.Interval, now time.Time, excludeSessionID string) ([]calendar.Interval, error) {
	defer r.lock(ctx)()
	var out []calendar.Interval
	for _, h := range r.holds {
		if h.ResourceID != resourceID || !h.Live(now) {
			continue
		}
		if excludeSessionID != "" && h.SessionID == excludeSessionID {
			continue
		}
		if calendar.Overlaps(h.Interval(), window) {
			out = append(out, h.Interval())
		}
	}
	return out, nil
}

func (r *fakeRepo) CreateHold(ctx context.Context, h *Hold) error {
	defer r.lock(ctx)()
	c := *h
	r.holds[h.ID] = &c
	return nil
}

func (r *fakeRepo) GetHold(ctx context.Context, id string) (*Hold, error) {
	defer r.lock(ctx)()
	h, ok := r.holds[id]
	if !ok {
		return nil, ErrHoldNotFound
	}
	c := *h
	return &c, nil
}

func (r *fakeRepo) GetHoldForUpdate(ctx context.Context, id string) (*Hold, error) {
	return r.GetHold(ctx, id)
}

func (r *fakeRepo) SetHoldStatus(ctx context.Context, id string, from, to HoldStatus) error {
	defer r.lock(ctx)()
	h, ok := r.holds[id]
	if !ok || h.Status != from {
		return ErrHoldNotFound
	}
	h.Status = to
	return nil
}

func (r *fakeRepo) ReleaseSessionHolds(ctx context.Context, resourceID, sessionID string) (int64, error) {
	defer r.lock(ctx)()
	var n int64
	for _, h := range r.holds {
		if h.ResourceID == resourceID && h.SessionID == sessionID && h.Status == HoldActive {
			h.Status = HoldReleased
			n++
		}
	}
	return n, nil
}

func (r *fakeRepo) CreateAppointment(ctx context.Context, a *Appointment) error {
	defer r.lock(ctx)()
	// Mirrors the exclusion constraint on appointments.
	for _, other := range r.appts {
		if other.ResourceID == a.ResourceID && other.Status != StatusCancelled &&
			calendar.Overlaps(other.Interval(), a.Interval()) {
			return ErrOverlap
		}
	}
	r.seq++
	a.ID = fmt.Sprintf("appt-%d", r.seq)
	c := *a
	r.appts[a.ID] = &c
	return nil
}

func (r *fakeRepo) GetAppointment(ctx context.Context, id string) (*Appointment, error) {
	defer r.lock(ctx)()
	a, ok := r.appts[id]
	if !ok {
		return nil, ErrNotFound
	}
	c := *a
	return &c, nil
}

func (r *fakeRepo) ListAppointments(ctx context.Context, filter Filter) ([]*Appointment, int, error) {
	defer r.lock(ctx)()
	var out []*Appointment
	for _, a := range r.appts {
		if filter.Status != "" && string(a.Status) != filter.Status {
			continue
		}
		if filter.CustomerID != "" && a.CustomerID != filter.CustomerID {
			continue
		}
		c := *a
		out = append(out, &c)
	}
	return out, len(out), nil
}

func (r *fakeRepo) UpdateAppointmentStatus(ctx context.Context, id string, status Status) error {
	defer r.lock(ctx)()
	a, ok := r.appts[id]
	if !ok {
		return ErrNotFound
	}
	a.Status = status
	return nil
}

// insertAppointment seeds a committed appointment outside any hold.
func (r *fakeRepo) insertAppointment(start time.Time, minutes int, status Status) *Appointment {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	a := &Appointment{
		ID:         fmt.Sprintf("appt-%d", r.seq),
		ResourceID: DefaultResourceID,
		CustomerID: "seed",
		StartTime:  start,
		Duration:   time.Duration(minutes) * time.Minute,
		Status:     status,
	}
	r.appts[a.ID] = a
	return a
}

func (r *fakeRepo) holdStatus(id string) HoldStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.holds[id].Status
}

func (r *fakeRepo) appointmentCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.appts)
}

type fakeHours struct {
	hours *businesshours.BusinessHours
}

func (f fakeHours) Get(ctx context.Context) (*businesshours.BusinessHours, error) {
	if f.hours == nil {
		return nil, businesshours.ErrNotConfigured
	}
	return f.hours, nil
}

type fakeCatalog struct {
	items map[string]*catalog.Item
}

func (f fakeCatalog) Resolve(ctx context.Context, ids []string) (catalog.Selection, error) {
	sel := catalog.Selection{}
	for _, id := range ids {
		it, ok := f.items[id]
		if !ok || !it.Active {
			return catalog.Selection{}, catalog.ErrItemUnavailable
		}
		sel.Items = append(sel.Items, it)
	}
	return sel, nil
}

type fakeCustomers struct {
	mu      sync.Mutex
	byEmail map[string]*customer.Customer
}

func newFakeCustomers() *fakeCustomers {
	return &fakeCustomers{byEmail: make(map[string]*customer.Customer)}
}

func (f *fakeCustomers) GetByID(ctx context.Context, id string) (*customer.Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.byEmail {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, customer.ErrNotFound
}

func (f *fakeCustomers) FindOrCreate(ctx context.Context, in customer.Input) (*customer.Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.byEmail[in.Email]; ok {
		return c, nil
	}
	c := &customer.Customer{ID: "cust-" + in.Email, Name: in.Name, Email: in.Email, Phone: in.Phone}
	f.byEmail[in.Email] = c
	return c, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.AppointmentFinalized
	err    error
}

func (p *recordingPublisher) PublishAppointmentFinalized(ctx context.Context, e events.AppointmentFinalized) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

