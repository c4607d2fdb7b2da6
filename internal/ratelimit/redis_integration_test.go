package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/mailgate/mailgate/internal/cache"
	"github.com/mailgate/mailgate/internal/testutil"
)

func TestRedisLimiter_IncrementAndCheck(t *testing.T) {
	ctx := context.Background()
	redisURL := testutil.RequireEnv(t, "REDIS_URL")

	cacheClient, err := cache.New(ctx, redisURL)
	if err != nil {
		t.Fatalf("connect redis: %v", err)
	}
	t.Cleanup(func() {
		_ = cacheClient.Close()
	})

	if err := testutil.FlushRedis(ctx, cacheClient.Client()); err != nil {
		t.Fatalf("flush redis: %v", err)
	}

	l := NewRedisLimiter(cacheClient.Client(), 3)

	identity := testutil.UniqueID("identity")
	for i := 1; i <= 3; i++ {
		result, err := l.IncrementAndCheck(ctx, identity)
		if err != nil {
			t.Fatalf("IncrementAndCheck failed: %v", err)
		}
		if !result.Allowed || result.Count != int64(i) {
			t.Errorf("Request %d: count=%d allowed=%v", i, result.Count, result.Allowed)
		}
	}

	result, err := l.IncrementAndCheck(ctx, identity)
	if err != nil {
		t.Fatalf("IncrementAndCheck failed: %v", err)
	}
	if result.Allowed {
		t.Error("4th request should be blocked")
	}
	if result.Count != 4 {
		t.Errorf("Count = %d, want 4 (counter moves while blocked)", result.Count)
	}

	// The counter key expires after its day window.
	key := l.key(identity, l.now().UTC())
	ttl, err := cacheClient.Client().TTL(ctx, key).Result()
	if err != nil {
		t.Fatalf("read ttl: %v", err)
	}
	if ttl <= 0 || ttl > 48*time.Hour {
		t.Errorf("Counter TTL = %s, want within (0, 48h]", ttl)
	}
}

func TestRedisLimiter_DayRollover(t *testing.T) {
	ctx := context.Background()
	redisURL := testutil.RequireEnv(t, "REDIS_URL")

	cacheClient, err := cache.New(ctx, redisURL)
	if err != nil {
		t.Fatalf("connect redis: %v", err)
	}
	t.Cleanup(func() {
		_ = cacheClient.Close()
	})

	if err := testutil.FlushRedis(ctx, cacheClient.Client()); err != nil {
		t.Fatalf("flush redis: %v", err)
	}

	l := NewRedisLimiter(cacheClient.Client(), 1)
	identity := testutil.UniqueID("identity")

	day1 := time.Date(2026, 3, 1, 23, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return day1 }

	if _, err := l.IncrementAndCheck(ctx, identity); err != nil {
		t.Fatalf("IncrementAndCheck failed: %v", err)
	}
	blocked, err := l.IncrementAndCheck(ctx, identity)
	if err != nil {
		t.Fatalf("IncrementAndCheck failed: %v", err)
	}
	if blocked.Allowed {
		t.Error("Second request on day 1 should be blocked")
	}

	// A new UTC day starts a fresh counter.
	l.now = func() time.Time { return day1.Add(2 * time.Hour) }
	result, err := l.IncrementAndCheck(ctx, identity)
	if err != nil {
		t.Fatalf("IncrementAndCheck failed: %v", err)
	}
	if !result.Allowed || result.Count != 1 {
		t.Errorf("Day 2 first request: count=%d allowed=%v, want 1/true", result.Count, result.Allowed)
	}
}
