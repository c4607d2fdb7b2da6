package ratelimit

import (
	"testing"
	"time"
)

func TestRedisLimiter_KeyFormat(t *testing.T) {
	t.Parallel()

	l := NewRedisLimiter(nil, 5)

	now := time.Date(2026, 3, 1, 15, 30, 0, 0, time.UTC)
	got := l.key("abc123", now)
	want := "ratelimit:identity:2026-03-01:abc123"

	if got != want {
		t.Errorf("key = %q, want %q", got, want)
	}
}

func TestRedisLimiter_KeyRotatesDaily(t *testing.T) {
	t.Parallel()

	l := NewRedisLimiter(nil, 5)

	day1 := time.Date(2026, 3, 1, 23, 59, 0, 0, time.UTC)
	day2 := time.Date(2026, 3, 2, 0, 1, 0, 0, time.UTC)

	if l.key("abc123", day1) == l.key("abc123", day2) {
		t.Error("Keys should differ across UTC days so counters reset")
	}
}
