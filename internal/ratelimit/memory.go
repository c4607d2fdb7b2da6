package ratelimit

import (
	"context"
	"sync"
)

// MemoryLimiter counts requests in a process-lifetime window.
// Counters are monotonically non-decreasing and reset only on restart.
type MemoryLimiter struct {
	ceiling int64

	mu     sync.Mutex
	counts map[string]int64
}

// NewMemoryLimiter creates a limiter with the given request ceiling.
func NewMemoryLimiter(ceiling int) *MemoryLimiter {
	return &MemoryLimiter{
		ceiling: int64(ceiling),
		counts:  make(map[string]int64),
	}
}

// IncrementAndCheck implements Limiter. The mutex makes the
// read-increment-write cycle atomic per identity key.
func (l *MemoryLimiter) IncrementAndCheck(_ context.Context, identity string) (Result, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.counts[identity]++
	count := l.counts[identity]

	return Result{
		Count:   count,
		Allowed: count <= l.ceiling,
	}, nil
}

// Count returns the current counter for an identity without incrementing.
func (l *MemoryLimiter) Count(identity string) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.counts[identity]
}
