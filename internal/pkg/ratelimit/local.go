package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type localBucket struct {
	lim  *rate.Limiter
	seen time.Time
}

type localLimiter struct {
	cfg Config
	now func() time.Time

	mu        sync.Mutex
	buckets   map[string]*localBucket
	lastSweep time.Time
}

// NewLocal returns an in-process Limiter. Buckets are not shared between
// server instances; it backs deployments without Redis.
func NewLocal(cfg Config) Limiter {
	return &localLimiter{
		cfg:     cfg,
		now:     time.Now,
		buckets: make(map[string]*localBucket),
	}
}

// idleAfter is how long an untouched bucket takes to refill completely. From
// then on it behaves exactly like a fresh one and can be dropped.
func (l *localLimiter) idleAfter() time.Duration {
	return time.Duration(l.cfg.Capacity) * l.cfg.RefillEvery
}

func (l *localLimiter) get(key string, now time.Time) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if idle := l.idleAfter(); now.Sub(l.lastSweep) >= idle {
		for k, b := range l.buckets {
			if now.Sub(b.seen) >= idle {
				delete(l.buckets, k)
			}
		}
		l.lastSweep = now
	}

	b, ok := l.buckets[key]
	if !ok {
		b = &localBucket{lim: rate.NewLimiter(rate.Every(l.cfg.RefillEvery), l.cfg.Capacity)}
		l.buckets[key] = b
	}
	b.seen = now
	return b.lim
}

func (l *localLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	now := l.now()
	lim := l.get(key, now)

	r := lim.ReserveN(now, 1)
	if !r.OK() {
		return Decision{RetryAfter: l.cfg.RefillEvery}, nil
	}
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return Decision{RetryAfter: delay}, nil
	}
	return Decision{Allowed: true, Remaining: int64(lim.TokensAt(now))}, nil
}
