package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLimiter is a fixed-window counter shared by every instance that uses
// the same Redis.
type RedisLimiter struct {
	client  redis.UniversalClient
	prefix  string
	maxReqs int
	window  time.Duration
}

func NewRedisLimiter(client redis.UniversalClient, prefix string, maxRequests int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{client: client, prefix: prefix, maxReqs: maxRequests, window: window}
}

// Allow increments the counter for key and reports whether it is within the limit.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	if key == "" || l.maxReqs <= 0 {
		return true, nil
	}
	k := l.prefix + key

	count, err := l.client.Incr(ctx, k).Result()
	if err != nil {
		return false, fmt.Errorf("rate limit %s: %w", key, err)
	}
	if count == 1 {
		if err := l.client.Expire(ctx, k, l.window).Err(); err != nil {
			return false, fmt.Errorf("rate limit %s: %w", key, err)
		}
	}
	return count <= int64(l.maxReqs), nil
}

// Fallback consults primary and, when it errors, secondary.
type Fallback struct {
	primary   Limiter
	secondary Limiter
	onError   func(error)
}

func NewFallback(primary, secondary Limiter, onError func(error)) *Fallback {
	return &Fallback{primary: primary, secondary: secondary, onError: onError}
}

func (f *Fallback) Allow(ctx context.Context, key string) (bool, error) {
	ok, err := f.primary.Allow(ctx, key)
	if err == nil {
		return ok, nil
	}
	if f.onError != nil {
		f.onError(err)
	}
	return f.secondary.Allow(ctx, key)
}
