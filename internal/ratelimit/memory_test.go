package ratelimit

import (
	"context"
	"sync"
	"testing"
)

func TestMemoryLimiter_AllowsUpToCeiling(t *testing.T) {
	t.Parallel()

	l := NewMemoryLimiter(5)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		result, err := l.IncrementAndCheck(ctx, "alice")
		if err != nil {
			t.Fatalf("IncrementAndCheck failed: %v", err)
		}
		if !result.Allowed {
			t.Errorf("Request %d should be allowed", i)
		}
		if result.Count != int64(i) {
			t.Errorf("Count = %d, want %d", result.Count, i)
		}
	}
}

func TestMemoryLimiter_BlocksPastCeiling(t *testing.T) {
	t.Parallel()

	l := NewMemoryLimiter(5)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := l.IncrementAndCheck(ctx, "alice"); err != nil {
			t.Fatalf("IncrementAndCheck failed: %v", err)
		}
	}

	result, err := l.IncrementAndCheck(ctx, "alice")
	if err != nil {
		t.Fatalf("IncrementAndCheck failed: %v", err)
	}
	if result.Allowed {
		t.Error("6th request should be blocked")
	}
	// The counter keeps moving even when blocked.
	if result.Count != 6 {
		t.Errorf("Count = %d, want 6", result.Count)
	}

	result, err = l.IncrementAndCheck(ctx, "alice")
	if err != nil {
		t.Fatalf("IncrementAndCheck failed: %v", err)
	}
	if result.Count != 7 {
		t.Errorf("Count after blocked request = %d, want 7", result.Count)
	}
}

func TestMemoryLimiter_IdentityIsolation(t *testing.T) {
	t.Parallel()

	l := NewMemoryLimiter(1)
	ctx := context.Background()

	if _, err := l.IncrementAndCheck(ctx, "alice"); err != nil {
		t.Fatalf("IncrementAndCheck failed: %v", err)
	}
	blocked, err := l.IncrementAndCheck(ctx, "alice")
	if err != nil {
		t.Fatalf("IncrementAndCheck failed: %v", err)
	}
	if blocked.Allowed {
		t.Error("alice should be blocked")
	}

	result, err := l.IncrementAndCheck(ctx, "bob")
	if err != nil {
		t.Fatalf("IncrementAndCheck failed: %v", err)
	}
	if !result.Allowed || result.Count != 1 {
		t.Errorf("bob should start fresh, got count=%d allowed=%v", result.Count, result.Allowed)
	}
}

func TestMemoryLimiter_ConcurrentIncrements(t *testing.T) {
	t.Parallel()

	l := NewMemoryLimiter(1000)
	ctx := context.Background()

	const workers = 50
	const perWorker = 20

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				if _, err := l.IncrementAndCheck(ctx, "shared"); err != nil {
					t.Errorf("IncrementAndCheck failed: %v", err)
				}
			}
		}()
	}
	wg.Wait()

	if got := l.Count("shared"); got != workers*perWorker {
		t.Errorf("Count = %d, want %d (lost updates)", got, workers*perWorker)
	}
}

func TestMemoryLimiter_CountDoesNotIncrement(t *testing.T) {
	t.Parallel()

	l := NewMemoryLimiter(5)

	if got := l.Count("alice"); got != 0 {
		t.Errorf("Count for unseen identity = %d, want 0", got)
	}
	l.Count("alice")
	if got := l.Count("alice"); got != 0 {
		t.Errorf("Count should not increment, got %d", got)
	}
}
