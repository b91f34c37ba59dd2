package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"boxstudio/internal/shared/constants"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// Config holds rate limiting configuration
type Config struct {
	Enabled        bool
	Limit          int
	WindowDuration time.Duration
}

// Result represents rate limit check result
type Result struct {
	Allowed   bool  `json:"allowed"`
	Limit     int   `json:"limit"`
	Remaining int   `json:"remaining"`
	ResetTime int64 `json:"reset_time"`
}

// Limiter decides whether one more request for a key fits in the current window
type Limiter interface {
	IsAllowed(ctx context.Context, key string) (*Result, error)
}

// RedisLimiter is a sliding-window limiter shared by every replica
type RedisLimiter struct {
	client *redis.Client
	config *Config
}

func NewRedisLimiter(client *redis.Client, config *Config) *RedisLimiter {
	return &RedisLimiter{
		client: client,
		config: config,
	}
}

var slidingWindowScript = redis.NewScript(`
	local key = KEYS[1]
	local window_start = tonumber(ARGV[1])
	local now = tonumber(ARGV[2])
	local limit = tonumber(ARGV[3])
	local window_ms = tonumber(ARGV[4])
	local member = ARGV[5]

	redis.call('ZREMRANGEBYSCORE', key, '-inf', window_start)

	local current_count = redis.call('ZCARD', key)
	if current_count >= limit then
		redis.call('PEXPIRE', key, window_ms)
		return {current_count + 1, 0}
	end

	redis.call('ZADD', key, now, member)
	redis.call('PEXPIRE', key, window_ms)

	return {current_count + 1, limit - current_count - 1}
`)

func (r *RedisLimiter) IsAllowed(ctx context.Context, key string) (*Result, error) {
	if !r.config.Enabled {
		return allowAll(r.config), nil
	}

	now := time.Now()
	windowStart := now.Add(-r.config.WindowDuration)
	// Member must be unique per request or concurrent hits in the same ms collapse
	member := strconv.FormatInt(now.UnixNano(), 10)

	result, err := slidingWindowScript.Run(ctx, r.client, []string{constants.BuildRateLimitKey(key)},
		windowStart.UnixMilli(),
		now.UnixMilli(),
		r.config.Limit,
		r.config.WindowDuration.Milliseconds(),
		member,
	).Result()
	if err != nil {
		return nil, fmt.Errorf("redis eval failed: %w", err)
	}

	values, ok := result.([]interface{})
	if !ok || len(values) != 2 {
		return nil, fmt.Errorf("unexpected redis response")
	}

	currentCount, _ := values[0].(int64)
	remaining, _ := values[1].(int64)

	return &Result{
		Allowed:   int(currentCount) <= r.config.Limit,
		Limit:     r.config.Limit,
		Remaining: int(remaining),
		ResetTime: now.Add(r.config.WindowDuration).Unix(),
	}, nil
}

// LocalLimiter keeps a token bucket per key in process memory
type LocalLimiter struct {
	config   *Config
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

func NewLocalLimiter(config *Config) *LocalLimiter {
	return &LocalLimiter{
		config:   config,
		limiters: make(map[string]*rate.Limiter),
	}
}

func (l *LocalLimiter) limiterFor(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	limiter, ok := l.limiters[key]
	if !ok {
		every := l.config.WindowDuration / time.Duration(l.config.Limit)
		limiter = rate.NewLimiter(rate.Every(every), l.config.Limit)
		l.limiters[key] = limiter
	}
	return limiter
}

func (l *LocalLimiter) IsAllowed(_ context.Context, key string) (*Result, error) {
	if !l.config.Enabled {
		return allowAll(l.config), nil
	}

	now := time.Now()
	limiter := l.limiterFor(key)
	allowed := limiter.AllowN(now, 1)

	remaining := int(limiter.TokensAt(now))
	if remaining < 0 {
		remaining = 0
	}

	return &Result{
		Allowed:   allowed,
		Limit:     l.config.Limit,
		Remaining: remaining,
		ResetTime: now.Add(l.config.WindowDuration).Unix(),
	}, nil
}

func allowAll(config *Config) *Result {
	return &Result{
		Allowed:   true,
		Limit:     config.Limit,
		Remaining: config.Limit,
		ResetTime: time.Now().Add(config.WindowDuration).Unix(),
	}
}
