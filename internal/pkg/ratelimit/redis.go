package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// tokenBucket refills whole tokens per elapsed interval and takes one if any
// are left. Returns {allowed, tokens, retry_after_ms}.
var tokenBucket = redis.NewScript(`
	local key = KEYS[1]
	local now_ms = tonumber(ARGV[1])
	local capacity = tonumber(ARGV[2])
	local interval_ms = tonumber(ARGV[3])
	local ttl_seconds = tonumber(ARGV[4])

	local state = redis.call('HMGET', key, 'tokens', 'last_refill_ms')
	local tokens = tonumber(state[1])
	local last_refill = tonumber(state[2])

	if tokens == nil or last_refill == nil then
		tokens = capacity
		last_refill = now_ms
	end

	if interval_ms > 0 then
		local elapsed = math.max(0, now_ms - last_refill)
		local intervals = math.floor(elapsed / interval_ms)
		if intervals > 0 then
			tokens = math.min(capacity, tokens + intervals)
			last_refill = last_refill + (intervals * interval_ms)
		end
	end

	local allowed = 0
	local retry_after_ms = 0
	if tokens > 0 then
		allowed = 1
		tokens = tokens - 1
	else
		retry_after_ms = math.max(0, interval_ms - (now_ms - last_refill))
	end

	redis.call('HSET', key, 'tokens', tokens, 'last_refill_ms', last_refill)
	redis.call('EXPIRE', key, ttl_seconds)

	return { allowed, tokens, retry_after_ms }
`)

type redisLimiter struct {
	rdb    redis.Scripter
	cfg    Config
	prefix string
}

// NewRedis returns a Limiter whose buckets live in Redis and are shared by all
// server instances.
func NewRedis(rdb redis.Scripter, cfg Config, prefix string) Limiter {
	return &redisLimiter{rdb: rdb, cfg: cfg, prefix: prefix}
}

func (l *redisLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	// Keep an idle bucket until it would have refilled completely.
	ttl := time.Duration(l.cfg.Capacity+1) * l.cfg.RefillEvery
	vals, err := tokenBucket.Run(ctx, l.rdb, []string{l.prefix + key},
		time.Now().UnixMilli(),
		l.cfg.Capacity,
		l.cfg.RefillEvery.Milliseconds(),
		int64(ttl/time.Second)+1,
	).Int64Slice()
	if err != nil {
		return Decision{}, fmt.Errorf("run rate limit script failed: %w", err)
	}
	if len(vals) != 3 {
		return Decision{}, fmt.Errorf("unexpected rate limit script result: %v", vals)
	}

	return Decision{
		Allowed:    vals[0] == 1,
		Remaining:  vals[1],
		RetryAfter: time.Duration(vals[2]) * time.Millisecond,
	}, nil
}
