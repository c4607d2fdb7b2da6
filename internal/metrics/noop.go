package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncAccessRequested is a no-op.
func (n *NoopRecorder) IncAccessRequested() {}

// IncTokenIssued is a no-op.
func (n *NoopRecorder) IncTokenIssued() {}

// IncTokenVerified is a no-op.
func (n *NoopRecorder) IncTokenVerified(status string) {}

// IncRateLimited is a no-op.
func (n *NoopRecorder) IncRateLimited() {}

// IncDeliveryFailed is a no-op.
func (n *NoopRecorder) IncDeliveryFailed() {}

// ObserveVerifyDuration is a no-op.
func (n *NoopRecorder) ObserveVerifyDuration(duration time.Duration) {}

// IncEventPublished is a no-op.
func (n *NoopRecorder) IncEventPublished(status string) {}

// IncEventProcessed is a no-op.
func (n *NoopRecorder) IncEventProcessed(status string) {}

// ObserveBatchSize is a no-op.
func (n *NoopRecorder) ObserveBatchSize(size int) {}

// SetQueueDepth is a no-op.
func (n *NoopRecorder) SetQueueDepth(depth int64) {}
