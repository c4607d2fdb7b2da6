// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Gate flow metrics
	IncAccessRequested()
	IncTokenIssued()
	IncTokenVerified(status string) // status: "ok", "expired", "invalid"
	IncRateLimited()
	IncDeliveryFailed()
	ObserveVerifyDuration(duration time.Duration)

	// Access log pipeline metrics
	IncEventPublished(status string) // status: "success" or "dropped"
	IncEventProcessed(status string) // status: "success", "failed", "skipped"
	ObserveBatchSize(size int)
	SetQueueDepth(depth int64)
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
