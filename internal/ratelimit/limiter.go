// Package ratelimit enforces a per-minute model-call quota; the vision
// client is gated by it, the reasoning client is not. The configured frame
// cadence must divide into the per-minute quota; if misconfigured, excess
// calls are refused rather than silently queued. Adapted from a
// per-IP/per-user HTTP rate limiter, using a Redis fixed-window counter.
// The caller picks the key (the vision client uses one key shared by every
// camera); the Scope enum is new.
package ratelimit

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
	ErrRedisUnavailable  = errors.New("redis unavailable")
)

// Scope names which collaborator a quota applies to.
type Scope string

const (
	ScopeVision    Scope = "vision"
	ScopeReasoning Scope = "reasoning"
)

type Decision struct {
	Scope      Scope
	Limit      int
	Remaining  int
	Reset      time.Time
	RetryAfter int
	Allowed    bool
}

// LimitConfig is a calls-per-window quota.
type LimitConfig struct {
	Rate   int           `yaml:"rate"`
	Window time.Duration `yaml:"window"`
}

// Limiter enforces LimitConfig quotas using a Redis-backed fixed-window
// counter: INCR the window key, set its expiry on first use, compare
// against the configured rate. Atomic via a single Lua script so
// concurrent camera workers sharing a quota never double count.
type Limiter struct {
	client *redis.Client
}

func NewLimiter(client *redis.Client) *Limiter {
	return &Limiter{client: client}
}

var incrAndExpireScript = redis.NewScript(`
	local current = redis.call("INCR", KEYS[1])
	if tonumber(current) == 1 then
		redis.call("PEXPIRE", KEYS[1], ARGV[1])
	end
	return current
`)

// CheckRateLimit increments the window counter for key and reports whether
// the call is allowed under config. On Redis failure it returns
// ErrRedisUnavailable; callers in this pipeline treat that as fail-open
// (spec has no "rate limiter unavailable" error class of its own — a
// model call that the limiter couldn't gate is still subject to the
// model's own rate-limit response).
func (l *Limiter) CheckRateLimit(ctx context.Context, key string, config LimitConfig) (*Decision, error) {
	count, err := incrAndExpireScript.Run(ctx, l.client, []string{key}, config.Window.Milliseconds()).Int()
	if err != nil {
		return nil, ErrRedisUnavailable
	}

	remaining := config.Rate - count
	if remaining < 0 {
		remaining = 0
	}

	return &Decision{
		Limit:      config.Rate,
		Remaining:  remaining,
		Reset:      time.Now().Add(config.Window),
		RetryAfter: int(config.Window.Seconds()),
		Allowed:    count <= config.Rate,
	}, nil
}
