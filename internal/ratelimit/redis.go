package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// requestCountPrefix is the Redis key prefix for per-identity counters.
const requestCountPrefix = "ratelimit:identity:"

// RedisLimiter counts requests per identity in a calendar-day window.
// The counter key carries the UTC date, so a new day starts a fresh
// counter and the window never resets within a day, across restarts.
type RedisLimiter struct {
	client  *redis.Client
	ceiling int64
	now     func() time.Time
}

// NewRedisLimiter creates a limiter backed by Redis with the given ceiling.
func NewRedisLimiter(client *redis.Client, ceiling int) *RedisLimiter {
	return &RedisLimiter{
		client:  client,
		ceiling: int64(ceiling),
		now:     time.Now,
	}
}

// IncrementAndCheck implements Limiter. INCR is atomic in Redis, so
// concurrent increments for the same identity cannot lose updates.
func (l *RedisLimiter) IncrementAndCheck(ctx context.Context, identity string) (Result, error) {
	now := l.now().UTC()
	key := l.key(identity, now)

	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return Result{}, fmt.Errorf("increment request counter: %w", err)
	}

	// First increment of the day sets the expiry at next UTC midnight.
	// Keys linger a day past their window so stragglers stay bounded.
	if count == 1 {
		midnight := now.Truncate(24 * time.Hour).Add(48 * time.Hour)
		if err := l.client.ExpireAt(ctx, key, midnight).Err(); err != nil {
			return Result{}, fmt.Errorf("set counter expiry: %w", err)
		}
	}

	return Result{
		Count:   count,
		Allowed: count <= l.ceiling,
	}, nil
}

// key builds the day-scoped counter key for an identity.
func (l *RedisLimiter) key(identity string, now time.Time) string {
	return requestCountPrefix + now.Format("2006-01-02") + ":" + identity
}
