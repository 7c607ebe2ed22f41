package businesshours

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
	Get(ctx context.Context) (*BusinessHours, error)
	Replace(ctx context.Context, hours *BusinessHours) error
}

type pgxRepository struct {
	pool *pgxpool.Pool
	tx   *db.TxManager
}

func NewPgxRepository(pool *pgxpool.Pool, tx *db.TxManager) Repository {
	return &pgxRepository{pool: pool, tx: tx}
}

func (r *pgxRepository) Get(ctx context.Context) (*BusinessHours, error) {
	conn := db.Conn(ctx, r.pool)

	var b BusinessHours
	err := conn.QueryRow(ctx,
		`SELECT time_zone, slot_minutes, updated_at FROM public.business_hours WHERE id = 1`,
	).Scan(&b.TimeZone, &b.SlotMinutes, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotConfigured
		}
		return nil, fmt.Errorf("get business hours failed: %w", err)
	}

	// Cast TIME to text so it scans straight into the wall clock parser.
	rows, err := conn.Query(ctx, `
		SELECT weekday, open_time::text, close_time::text
		FROM public.business_hour_ranges
		ORDER BY weekday, open_time
	`)
	if err != nil {
		return nil, fmt.Errorf("list business hour ranges failed: %w", err)
	}
	defer rows.Close()

	b.Weekly = make(map[time.Weekday][]Range)
	for rows.Next() {
		var (
			day         int
			open, close string
		)
		if err := rows.Scan(&day, &open, &close); err != nil {
			return nil, fmt.Errorf("scan business hour range failed: %w", err)
		}
		o, err := calendar.ParseWallClock(open)
		if err != nil {
			return nil, fmt.Errorf("stored open time %q: %w", open, err)
		}
		c, err := calendar.ParseWallClock(close)
		if err != nil {
			return nil, fmt.Errorf("stored close time %q: %w", close, err)
		}
		// TIME cannot hold 24:00, a close of 00:00 means midnight at the end of the day.
		if c.Minutes() == 0 {
			c = calendar.WallClock{Hour: 24}
		}
		b.Weekly[time.Weekday(day)] = append(b.Weekly[time.Weekday(day)], Range{Open: o, Close: c})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate business hour ranges failed: %w", err)
	}

	return &b, nil
}

func (r *pgxRepository) Replace(ctx context.Context, hours *BusinessHours) error {
	return r.tx.WithTx(ctx, func(ctx context.Context) error {
		conn := db.Conn(ctx, r.pool)

		if _, err := conn.Exec(ctx, `
			INSERT INTO public.business_hours (id, time_zone, slot_minutes, updated_at)
			VALUES (1, $1, $2, now())
			ON CONFLICT (id) DO UPDATE
			SET time_zone = EXCLUDED.time_zone, slot_minutes = EXCLUDED.slot_minutes, updated_at = now()
		`, hours.TimeZone, hours.SlotMinutes); err != nil {
			return fmt.Errorf("upsert business hours failed: %w", err)
		}

		if _, err := conn.Exec(ctx, `DELETE FROM public.business_hour_ranges`); err != nil {
			return fmt.Errorf("clear business hour ranges failed: %w", err)
		}

		psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
		insert := psql.Insert("public.business_hour_ranges").Columns("weekday", "open_time", "close_time")
		count := 0
		for day, ranges := range hours.Weekly {
			for _, rg := range ranges {
				closeStr := rg.Close.String()
				if rg.Close.Hour == 24 {
					closeStr = "00:00"
				}
				insert = insert.Values(int(day), rg.Open.String(), closeStr)
				count++
			}
		}
		if count == 0 {
			return nil
		}

		query, args, err := insert.ToSql()
		if err != nil {
			return fmt.Errorf("build insert business hour ranges query failed: %w", err)
		}
		if _, err := conn.Exec(ctx, query, args...); err != nil {
			return fmt.Errorf("insert business hour ranges failed: %w", err)
		}
		return nil
	})
}
