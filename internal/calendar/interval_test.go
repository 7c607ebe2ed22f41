package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOverlaps(t *testing.T) {
	at := func(h, m int) time.Time { return time.Date(2026, 3, 2, h, m, 0, 0, time.UTC) }

	tests := []struct {
		name string
		a    Interval
		b    Interval
		want bool
	}{
		{"identical", NewInterval(at(10, 0), 30), NewInterval(at(10, 0), 30), true},
		{"partial from left", NewInterval(at(9, 45), 30), NewInterval(at(10, 0), 30), true},
		{"partial from right", NewInterval(at(10, 15), 30), NewInterval(at(10, 0), 30), true},
		{"contained", NewInterval(at(10, 5), 10), NewInterval(at(10, 0), 30), true},
		{"containing", NewInterval(at(9, 0), 180), NewInterval(at(10, 0), 30), true},
		{"touching end", NewInterval(at(9, 30), 30), NewInterval(at(10, 0), 30), false},
		{"touching start", NewInterval(at(10, 30), 30), NewInterval(at(10, 0), 30), false},
		{"disjoint", NewInterval(at(8, 0), 30), NewInterval(at(10, 0), 30), false},
		{"zero length inside", Interval{Start: at(10, 10)}, NewInterval(at(10, 0), 30), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Overlaps(tt.a, tt.b))
			assert.Equal(t, tt.want, Overlaps(tt.b, tt.a), "overlap must be symmetric")
		})
	}
}

func TestOverlapsAny(t *testing.T) {
	base := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	set := []Interval{NewInterval(base, 30), NewInterval(base.Add(2*time.Hour), 60)}

	assert.True(t, OverlapsAny(NewInterval(base.Add(2*time.Hour+30*time.Minute), 15), set))
	assert.False(t, OverlapsAny(NewInterval(base.Add(30*time.Minute), 90), set))
	assert.False(t, OverlapsAny(NewInterval(base, 30), nil))
}

func TestWithin(t *testing.T) {
	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	outer := NewInterval(base, 8*60)

	assert.True(t, NewInterval(base, 30).Within(outer))
	assert.True(t, NewInterval(base.Add(7*time.Hour+30*time.Minute), 30).Within(outer))
	assert.False(t, NewInterval(base.Add(7*time.Hour+45*time.Minute), 30).Within(outer))
	assert.False(t, NewInterval(base.Add(-time.Minute), 30).Within(outer))
}
