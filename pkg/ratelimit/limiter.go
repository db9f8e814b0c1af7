package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Sliding-window limiter over a shared Redis store. The whole
// check-and-record step runs as one Lua script so concurrent requests for
// the same source cannot race between the count and the insert.
//
// Window state is a ZSET of request timestamps (ms). The script trims
// entries older than the window, counts what is left, and either rejects or
// records the new request.
//
// KEYS[1] window zset
// ARGV[1] now (ms), ARGV[2] window (ms), ARGV[3] limit, ARGV[4] member
//
// Returns {allowed, count after the call, reset time (ms)}.
const slidingWindowScript = `
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])

redis.call("ZREMRANGEBYSCORE", key, 0, now - window)

local count = redis.call("ZCARD", key)
if count >= limit then
    local oldest = redis.call("ZRANGE", key, 0, 0, "WITHSCORES")
    local reset = now + window
    if oldest[2] then
        reset = tonumber(oldest[2]) + window
    end
    return {0, count, reset}
end

redis.call("ZADD", key, now, ARGV[4])
redis.call("PEXPIRE", key, window)

return {1, count + 1, now + window}
`

type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

func (r *Result) RetryAfter(now time.Time) time.Duration {
	if r == nil || r.ResetAt.Before(now) {
		return 0
	}
	return r.ResetAt.Sub(now)
}

type Limiter struct {
	client *redis.Client
	script *redis.Script
	limit  int
	window time.Duration
}

func New(client *redis.Client, limit int, window time.Duration) *Limiter {
	return &Limiter{
		client: client,
		script: redis.NewScript(slidingWindowScript),
		limit:  limit,
		window: window,
	}
}

// Allow checks and records one request for the source identity. When the
// store is unreachable the limiter fails open: ingestion availability wins
// over strict enforcement.
func (l *Limiter) Allow(ctx context.Context, source string) *Result {
	var (
		now = time.Now()
		key = fmt.Sprintf("ratelimit:%s", source)
	)

	raw, err := l.script.Run(ctx, l.client, []string{key},
		now.UnixMilli(), l.window.Milliseconds(), l.limit, uuid.NewString()).Result()
	if err != nil {
		log.Ctx(ctx).Error().Msgf("rate limit store unreachable, failing open, err: %v", err)
		return &Result{
			Allowed:   true,
			Limit:     l.limit,
			Remaining: l.limit - 1,
			ResetAt:   now.Add(l.window),
		}
	}

	vals, ok := raw.([]interface{})
	if !ok || len(vals) != 3 {
		log.Ctx(ctx).Error().Msgf("unexpected rate limit script reply: %v", raw)
		return &Result{
			Allowed:   true,
			Limit:     l.limit,
			Remaining: l.limit - 1,
			ResetAt:   now.Add(l.window),
		}
	}

	var (
		allowed = vals[0].(int64) == 1
		count   = int(vals[1].(int64))
		resetAt = time.UnixMilli(vals[2].(int64))
	)

	remaining := l.limit - count
	if remaining < 0 {
		remaining = 0
	}

	return &Result{
		Allowed:   allowed,
		Limit:     l.limit,
		Remaining: remaining,
		ResetAt:   resetAt,
	}
}
