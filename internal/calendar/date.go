package calendar

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidDate      = errors.New("date must be formatted as YYYY-MM-DD")
	ErrInvalidWallClock = errors.New("time of day must be formatted as HH:MM")
	ErrInvalidTimeZone  = errors.New("unknown time zone")
)

const dateLayout = "2006-01-02"

// Date is a civil calendar date with no zone attached.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return DateOf(t), nil
}

// DateOf returns the civil date of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// Today returns the current civil date in loc.
func Today(clk Clock, loc *time.Location) Date {
	return DateOf(clk.Now().In(loc))
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// Weekday returns the day of the week of d.
func (d Date) Weekday() time.Weekday {
	return time.Date(d.Year, d.Month, d.Day, 12, 0, 0, 0, time.UTC).Weekday()
}

// DaysSince returns the number of calendar days from other to d (negative if d is earlier).
func (d Date) DaysSince(other Date) int {
	a := time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
	b := time.Date(other.Year, other.Month, other.Day, 0, 0, 0, 0, time.UTC)
	return int(a.Sub(b).Hours() / 24)
}

// Span returns the instants covering the whole of d in loc, from local midnight to the next.
func (d Date) Span(loc *time.Location) Interval {
	start := time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
	end := time.Date(d.Year, d.Month, d.Day+1, 0, 0, 0, 0, loc)
	return Interval{Start: start, Duration: end.Sub(start)}
}

// WallClock is a time of day such as 09:30.
type WallClock struct {
	Hour   int
	Minute int
}

// ParseWallClock accepts "HH:MM" and "HH:MM:SS" (seconds are dropped).
// "24:00" is accepted as the end of the day.
func ParseWallClock(s string) (WallClock, error) {
	if s == "24:00" || s == "24:00:00" {
		return WallClock{Hour: 24}, nil
	}
	t, err := time.Parse("15:04", s)
	if err != nil {
		t, err = time.Parse("15:04:05", s)
	}
	if err != nil {
		return WallClock{}, ErrInvalidWallClock
	}
	return WallClock{Hour: t.Hour(), Minute: t.Minute()}, nil
}

func (w WallClock) String() string {
	return fmt.Sprintf("%02d:%02d", w.Hour, w.Minute)
}

// Minutes returns minutes since midnight.
func (w WallClock) Minutes() int {
	return w.Hour*60 + w.Minute
}

// On resolves w on date d in loc to an absolute instant.
func (w WallClock) On(d Date, loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, w.Hour, w.Minute, 0, 0, loc)
}

// LoadLocation wraps time.LoadLocation with a package error.
func LoadLocation(name string) (*time.Location, error) {
	if name == "" {
		return nil, ErrInvalidTimeZone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidTimeZone, name)
	}
	return loc, nil
}
