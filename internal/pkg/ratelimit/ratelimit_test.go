package ratelimit

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLocalLimiter(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	l := NewLocal(Config{Capacity: 2, RefillEvery: 10 * time.Second}).(*localLimiter)
	l.now = func() time.Time { return now }

	d, err := l.Allow(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.Equal(t, int64(1), d.Remaining)

	d, _ = l.Allow(ctx, "s1")
	assert.True(t, d.Allowed)

	d, _ = l.Allow(ctx, "s1")
	assert.False(t, d.Allowed)
	assert.InDelta(t, float64(10*time.Second), float64(d.RetryAfter), float64(time.Millisecond))

	// Buckets are per key.
	d, _ = l.Allow(ctx, "s2")
	assert.True(t, d.Allowed)

	now = now.Add(10 * time.Second)
	d, _ = l.Allow(ctx, "s1")
	assert.True(t, d.Allowed)
}

func TestLocalLimiterDropsIdleBuckets(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	l := NewLocal(Config{Capacity: 2, RefillEvery: 10 * time.Second}).(*localLimiter)
	l.now = func() time.Time { return now }

	for _, key := range []string{"s1", "s2", "s3"} {
		_, err := l.Allow(ctx, key)
		require.NoError(t, err)
	}
	require.Len(t, l.buckets, 3)

	now = now.Add(15 * time.Second)
	_, _ = l.Allow(ctx, "s1")
	assert.Len(t, l.buckets, 3, "buckets are kept until they have fully refilled")

	now = now.Add(10 * time.Second)
	_, _ = l.Allow(ctx, "s4")
	assert.Len(t, l.buckets, 2)
	assert.Contains(t, l.buckets, "s1")
	assert.Contains(t, l.buckets, "s4")

	// A dropped key starts over with a full bucket.
	d, _ := l.Allow(ctx, "s2")
	assert.True(t, d.Allowed)
	assert.Equal(t, int64(1), d.Remaining)
}

type stubLimiter struct {
	d   Decision
	err error
}

func (s stubLimiter) Allow(context.Context, string) (Decision, error) { return s.d, s.err }

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := Config{Capacity: 5, RefillEvery: time.Second}
	key := func(c *gin.Context) string { return "k" }

	serve := func(l Limiter) *httptest.ResponseRecorder {
		r := gin.New()
		r.POST("/holds", Middleware(l, cfg, key, zap.NewNop()), func(c *gin.Context) {
			c.Status(http.StatusCreated)
		})
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/holds", nil))
		return w
	}

	w := serve(stubLimiter{d: Decision{Allowed: true, Remaining: 4}})
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "5", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "4", w.Header().Get("X-RateLimit-Remaining"))

	w = serve(stubLimiter{d: Decision{RetryAfter: 1500 * time.Millisecond}})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "2", w.Header().Get("Retry-After"))

	w = serve(stubLimiter{err: errors.New("redis down")})
	assert.Equal(t, http.StatusCreated, w.Code, "limiter failures let requests through")
}
