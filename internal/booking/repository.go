package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nekogravitycat/salon-booking-backend/internal/calendar"
	"github.com/nekogravitycat/salon-booking-backend/internal/db"
)

type Repository interface {
	// WithTx runs fn in a serializable transaction. A conflict with a
	// concurrent transaction is reported as db.ErrTxConflict.
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error

	// AppointmentIntervals returns the intervals of non-cancelled appointments
	// for the resource that overlap window.
	AppointmentIntervals(ctx context.Context, resourceID string, window calendar.Interval) ([]calendar.Interval, error)
	// LiveHoldIntervals returns the intervals of holds that are active and
	// unexpired at now and overlap window. Holds owned by excludeSessionID are
	// skipped when it is set.
	LiveHoldIntervals(ctx context.Context, resourceID string, window calendar.Interval, now time.Time, excludeSessionID string) ([]calendar.Interval, error)

	CreateHold(ctx context.Context, h *Hold) error
	GetHold(ctx context.Context, id string) (*Hold, error)
	// GetHoldForUpdate reads the hold and locks it until the transaction ends.
	GetHoldForUpdate(ctx context.Context, id string) (*Hold, error)
	// SetHoldStatus moves the hold from one status to another. It fails with
	// ErrHoldNotFound if the hold is not currently in status from.
	SetHoldStatus(ctx context.Context, id string, from, to HoldStatus) error
	// ReleaseSessionHolds releases every active hold the session owns on the resource.
	ReleaseSessionHolds(ctx context.Context, resourceID, sessionID string) (int64, error)

	CreateAppointment(ctx context.Context, a *Appointment) error
	GetAppointment(ctx context.Context, id string) (*Appointment, error)
	ListAppointments(ctx context.Context, filter Filter) ([]*Appointment, int, error)
	UpdateAppointmentStatus(ctx context.Context, id string, status Status) error
}

type pgxRepository struct {
	pool *pgxpool.Pool
	tx   *db.TxManager
}

func NewPgxRepository(pool *pgxpool.Pool, tx *db.TxManager) Repository {
	return &pgxRepository{pool: pool, tx: tx}
}

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

func (r *pgxRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.tx.WithTx(ctx, fn)
}

// overlapping narrows a query to rows whose [start_time, end_time) overlaps
// window, the same half-open test as calendar.Overlaps.
func overlapping(q squirrel.SelectBuilder, window calendar.Interval) squirrel.SelectBuilder {
	return q.
		Where(squirrel.Lt{"start_time": window.End()}).
		Where(squirrel.Gt{"end_time": window.Start})
}

func (r *pgxRepository) AppointmentIntervals(ctx context.Context, resourceID string, window calendar.Interval) ([]calendar.Interval, error) {
	q := psql.Select("start_time", "end_time").
		From("public.appointments").
		Where(squirrel.Eq{"resource_id": resourceID}).
		Where(squirrel.NotEq{"status": StatusCancelled})
	q = overlapping(q, window).OrderBy("start_time")

	return r.intervals(ctx, q)
}

func (r *pgxRepository) LiveHoldIntervals(ctx context.Context, resourceID string, window calendar.Interval, now time.Time, excludeSessionID string) ([]calendar.Interval, error) {
	q := psql.Select("start_time", "end_time").
		From("public.holds").
		Where(squirrel.Eq{"resource_id": resourceID, "status": HoldActive}).
		Where(squirrel.Gt{"expires_at": now})
	if excludeSessionID != "" {
		q = q.Where(squirrel.NotEq{"session_id": excludeSessionID})
	}
	q = overlapping(q, window).OrderBy("start_time")

	return r.intervals(ctx, q)
}

func (r *pgxRepository) intervals(ctx context.Context, q squirrel.SelectBuilder) ([]calendar.Interval, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build interval query failed: %w", err)
	}

	rows, err := db.Conn(ctx, r.pool).Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query intervals failed: %w", err)
	}
	defer rows.Close()

	var out []calendar.Interval
	for rows.Next() {
		var start, end time.Time
		if err := rows.Scan(&start, &end); err != nil {
			return nil, fmt.Errorf("scan interval failed: %w", err)
		}
		out = append(out, calendar.Interval{Start: start, Duration: end.Sub(start)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate intervals failed: %w", err)
	}
	return out, nil
}

func (r *pgxRepository) CreateHold(ctx context.Context, h *Hold) error {
	query, args, err := psql.Insert("public.holds").
		Columns("id", "resource_id", "session_id", "service_ids", "start_time", "end_time",
			"quoted_price", "status", "expires_at").
		Values(h.ID, h.ResourceID, h.SessionID, h.ServiceIDs, h.StartTime, h.Interval().End(),
			h.QuotedPrice, h.Status, h.ExpiresAt).
		Suffix("RETURNING created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create hold query failed: %w", err)
	}

	if err := db.Conn(ctx, r.pool).QueryRow(ctx, query, args...).Scan(&h.CreatedAt); err != nil {
		return fmt.Errorf("create hold failed: %w", err)
	}
	return nil
}

var holdColumns = []string{
	"id", "resource_id", "session_id", "service_ids", "start_time", "end_time",
	"quoted_price", "status", "expires_at", "created_at",
}

func (r *pgxRepository) GetHold(ctx context.Context, id string) (*Hold, error) {
	return r.getHold(ctx, id, false)
}

func (r *pgxRepository) GetHoldForUpdate(ctx context.Context, id string) (*Hold, error) {
	return r.getHold(ctx, id, true)
}

func (r *pgxRepository) getHold(ctx context.Context, id string, forUpdate bool) (*Hold, error) {
	q := psql.Select(holdColumns...).
		From("public.holds").
		Where(squirrel.Eq{"id": id})
	if forUpdate {
		q = q.Suffix("FOR UPDATE")
	}
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get hold query failed: %w", err)
	}

	var h Hold
	var end time.Time
	err = db.Conn(ctx, r.pool).QueryRow(ctx, query, args...).Scan(
		&h.ID, &h.ResourceID, &h.SessionID, &h.ServiceIDs, &h.StartTime, &end,
		&h.QuotedPrice, &h.Status, &h.ExpiresAt, &h.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || db.IsInvalidText(err) {
			return nil, ErrHoldNotFound
		}
		return nil, fmt.Errorf("get hold failed: %w", err)
	}
	h.Duration = end.Sub(h.StartTime)
	return &h, nil
}

func (r *pgxRepository) SetHoldStatus(ctx context.Context, id string, from, to HoldStatus) error {
	query, args, err := psql.Update("public.holds").
		Set("status", to).
		Where(squirrel.Eq{"id": id, "status": from}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update hold query failed: %w", err)
	}

	ct, err := db.Conn(ctx, r.pool).Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update hold failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrHoldNotFound
	}
	return nil
}

func (r *pgxRepository) ReleaseSessionHolds(ctx context.Context, resourceID, sessionID string) (int64, error) {
	query, args, err := psql.Update("public.holds").
		Set("status", HoldReleased).
		Where(squirrel.Eq{"resource_id": resourceID, "session_id": sessionID, "status": HoldActive}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build release session holds query failed: %w", err)
	}

	ct, err := db.Conn(ctx, r.pool).Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("release session holds failed: %w", err)
	}
	return ct.RowsAffected(), nil
}

func (r *pgxRepository) CreateAppointment(ctx context.Context, a *Appointment) error {
	query, args, err := psql.Insert("public.appointments").
		Columns("resource_id", "customer_id", "service_ids", "hold_id", "start_time", "end_time",
			"status", "booked_price").
		Values(a.ResourceID, a.CustomerID, a.ServiceIDs, a.HoldID, a.StartTime, a.Interval().End(),
			a.Status, a.BookedPrice).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create appointment query failed: %w", err)
	}

	err = db.Conn(ctx, r.pool).QueryRow(ctx, query, args...).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	switch {
	case err == nil:
		return nil
	case db.IsExclusionViolation(err):
		return ErrOverlap
	case db.IsUniqueViolation(err):
		// appointments_hold_idx: the hold was already turned into an appointment.
		return ErrHoldNotFound
	default:
		return fmt.Errorf("create appointment failed: %w", err)
	}
}

var appointmentColumns = []string{
	"id", "resource_id", "customer_id", "service_ids", "hold_id", "start_time", "end_time",
	"status", "booked_price", "created_at", "updated_at",
}

func scanAppointment(row pgx.Row, extra ...any) (*Appointment, error) {
	var a Appointment
	var end time.Time
	dest := []any{
		&a.ID, &a.ResourceID, &a.CustomerID, &a.ServiceIDs, &a.HoldID, &a.StartTime, &end,
		&a.Status, &a.BookedPrice, &a.CreatedAt, &a.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	a.Duration = end.Sub(a.StartTime)
	return &a, nil
}

func (r *pgxRepository) GetAppointment(ctx context.Context, id string) (*Appointment, error) {
	query, args, err := psql.Select(appointmentColumns...).
		From("public.appointments").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get appointment query failed: %w", err)
	}

	a, err := scanAppointment(db.Conn(ctx, r.pool).QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || db.IsInvalidText(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get appointment failed: %w", err)
	}
	return a, nil
}

func (r *pgxRepository) ListAppointments(ctx context.Context, filter Filter) ([]*Appointment, int, error) {
	query := psql.Select(append(appointmentColumns, "count(*) OVER() AS total_count")...).
		From("public.appointments")

	if filter.CustomerID != "" {
		query = query.Where(squirrel.Eq{"customer_id": filter.CustomerID})
	}
	if filter.Status != "" {
		query = query.Where(squirrel.Eq{"status": filter.Status})
	}
	// Date range filtering (intersection logic)
	if filter.From != nil {
		query = query.Where(squirrel.Gt{"end_time": *filter.From})
	}
	if filter.To != nil {
		query = query.Where(squirrel.Lt{"start_time": *filter.To})
	}

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	offset := (filter.Page - 1) * filter.PageSize

	query = query.OrderBy("start_time ASC").
		Limit(uint64(filter.PageSize)).
		Offset(uint64(offset))

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list appointments query failed: %w", err)
	}

	rows, err := db.Conn(ctx, r.pool).Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list appointments failed: %w", err)
	}
	defer rows.Close()

	var appts []*Appointment
	var total int
	for rows.Next() {
		a, err := scanAppointment(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("scan appointment failed: %w", err)
		}
		appts = append(appts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate appointments failed: %w", err)
	}
	return appts, total, nil
}

func (r *pgxRepository) UpdateAppointmentStatus(ctx context.Context, id string, status Status) error {
	query, args, err := psql.Update("public.appointments").
		Set("status", status).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update appointment query failed: %w", err)
	}

	ct, err := db.Conn(ctx, r.pool).Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update appointment failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
