// Package ratelimit implements a token bucket shared through Redis.
package ratelimit

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/redis/go-redis/v9"
)

// bucketScript refills tokens continuously at rate per second, up to
// capacity, then takes one token if available.
// Returns {allowed, remaining, retry_after_ms}.
var bucketScript = redis.NewScript(`
local key = KEYS[1]
local now_ms = tonumber(ARGV[1])
local capacity = tonumber(ARGV[2])
local rate = tonumber(ARGV[3])
local ttl_seconds = tonumber(ARGV[4])

local state = redis.call('HMGET', key, 'tokens', 'updated_ms')
local tokens = tonumber(state[1])
local updated = tonumber(state[2])

if tokens == nil or updated == nil then
	tokens = capacity
	updated = now_ms
end

local elapsed = math.max(0, now_ms - updated)
tokens = math.min(capacity, tokens + elapsed * rate / 1000)

local allowed = 0
local retry_ms = 0
if tokens >= 1 then
	allowed = 1
	tokens = tokens - 1
elseif rate > 0 then
	retry_ms = math.ceil((1 - tokens) * 1000 / rate)
end

redis.call('HSET', key, 'tokens', tokens, 'updated_ms', now_ms)
redis.call('EXPIRE', key, ttl_seconds)

return {allowed, math.floor(tokens), retry_ms}
`)

// Options configure a Limiter.
type Options struct {
	// Capacity is the burst size.
	Capacity int
	// Rate is the number of tokens added per second.
	Rate float64
	// Prefix is prepended to every key.
	Prefix string
}

// Decision is the outcome of a single Allow call.
type Decision struct {
	Allowed    bool
	Remaining  int64
	RetryAfter time.Duration
}

type Limiter struct {
	rdb      redis.Scripter
	capacity int
	rate     float64
	prefix   string
	ttl      time.Duration
	now      func() time.Time
}

func New(rdb redis.Scripter, opts Options) *Limiter {
	prefix := opts.Prefix
	if prefix == "" {
		prefix = "ratelimit"
	}

	// Keep idle buckets until they would be full again.
	ttl := time.Minute
	if opts.Rate > 0 {
		refill := time.Duration(float64(opts.Capacity) / opts.Rate * float64(time.Second))
		if refill > ttl {
			ttl = refill
		}
	}

	return &Limiter{
		rdb:      rdb,
		capacity: opts.Capacity,
		rate:     opts.Rate,
		prefix:   prefix,
		ttl:      ttl,
		now:      time.Now,
	}
}

// Allow takes one token from the bucket identified by key.
func (l *Limiter) Allow(ctx context.Context, key string) (Decision, error) {
	args := []any{
		l.now().UnixMilli(),
		l.capacity,
		l.rate,
		int64(math.Ceil(l.ttl.Seconds())),
	}

	vals, err := bucketScript.Run(ctx, l.rdb, []string{l.prefix + ":" + key}, args...).Int64Slice()
	if err != nil {
		return Decision{}, fmt.Errorf("failed to run rate limit script: %w", err)
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
