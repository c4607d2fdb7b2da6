package metrics

import (
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	AccessRequested       uint64
	TokensIssued          uint64
	TokensVerifiedOK      uint64
	TokensVerifiedExpired uint64
	TokensVerifiedInvalid uint64
	RateLimited           uint64
	DeliveryFailed        uint64
	VerifyDurationCount   uint64
	VerifyDurationTotalNs int64
	EventsPublished       uint64
	EventsDropped         uint64
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	accessRequested       uint64
	tokensIssued          uint64
	tokensVerifiedOK      uint64
	tokensVerifiedExpired uint64
	tokensVerifiedInvalid uint64
	rateLimited           uint64
	deliveryFailed        uint64
	verifyDurationCount   uint64
	verifyDurationTotalNs int64
	eventsPublished       uint64
	eventsDropped         uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		AccessRequested:       atomic.LoadUint64(&m.accessRequested),
		TokensIssued:          atomic.LoadUint64(&m.tokensIssued),
		TokensVerifiedOK:      atomic.LoadUint64(&m.tokensVerifiedOK),
		TokensVerifiedExpired: atomic.LoadUint64(&m.tokensVerifiedExpired),
		TokensVerifiedInvalid: atomic.LoadUint64(&m.tokensVerifiedInvalid),
		RateLimited:           atomic.LoadUint64(&m.rateLimited),
		DeliveryFailed:        atomic.LoadUint64(&m.deliveryFailed),
		VerifyDurationCount:   atomic.LoadUint64(&m.verifyDurationCount),
		VerifyDurationTotalNs: atomic.LoadInt64(&m.verifyDurationTotalNs),
		EventsPublished:       atomic.LoadUint64(&m.eventsPublished),
		EventsDropped:         atomic.LoadUint64(&m.eventsDropped),
	}
}

// IncAccessRequested increments the access request counter.
func (m *InMemoryRecorder) IncAccessRequested() {
	atomic.AddUint64(&m.accessRequested, 1)
}

// IncTokenIssued increments the issued token counter.
func (m *InMemoryRecorder) IncTokenIssued() {
	atomic.AddUint64(&m.tokensIssued, 1)
}

// IncTokenVerified increments the verification counter for the status.
func (m *InMemoryRecorder) IncTokenVerified(status string) {
	switch status {
	case "ok":
		atomic.AddUint64(&m.tokensVerifiedOK, 1)
	case "expired":
		atomic.AddUint64(&m.tokensVerifiedExpired, 1)
	default:
		atomic.AddUint64(&m.tokensVerifiedInvalid, 1)
	}
}

// IncRateLimited increments the rate-limit rejection counter.
func (m *InMemoryRecorder) IncRateLimited() {
	atomic.AddUint64(&m.rateLimited, 1)
}

// IncDeliveryFailed increments the delivery failure counter.
func (m *InMemoryRecorder) IncDeliveryFailed() {
	atomic.AddUint64(&m.deliveryFailed, 1)
}

// ObserveVerifyDuration records a verification duration.
func (m *InMemoryRecorder) ObserveVerifyDuration(duration time.Duration) {
	atomic.AddUint64(&m.verifyDurationCount, 1)
	atomic.AddInt64(&m.verifyDurationTotalNs, duration.Nanoseconds())
}

// IncEventPublished increments the pipeline publish counter for the status.
func (m *InMemoryRecorder) IncEventPublished(status string) {
	if status == "success" {
		atomic.AddUint64(&m.eventsPublished, 1)
		return
	}
	atomic.AddUint64(&m.eventsDropped, 1)
}

// IncEventProcessed is not tracked in memory.
func (m *InMemoryRecorder) IncEventProcessed(status string) {}

// ObserveBatchSize is not tracked in memory.
func (m *InMemoryRecorder) ObserveBatchSize(size int) {}

// SetQueueDepth is not tracked in memory.
func (m *InMemoryRecorder) SetQueueDepth(depth int64) {}
