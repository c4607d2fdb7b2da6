// Package accesslog provides append-only capture of gate events.
// Events are published to a Redis stream on the request path and flushed
// to PostgreSQL by a background worker; the log is only ever appended to
// and re-read for statistics.
package accesslog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mailgate/mailgate/internal/metrics"
	"github.com/mailgate/mailgate/internal/model"
)

const (
	// StreamKey is the Redis stream for access events.
	StreamKey = "stream:access_events"

	// DeadLetterStreamKey is the Redis stream for poison messages.
	DeadLetterStreamKey = "stream:access_events:dlq"

	// MaxStreamLen is the approximate max length of the stream.
	MaxStreamLen = 100000

	// PublishTimeout is the max time to wait for Redis publish.
	PublishTimeout = 100 * time.Millisecond
)

// EventPayload is the compressed event format for the Redis stream.
type EventPayload struct {
	IdentityHash string `json:"ih"`
	Kind         string `json:"k"`
	OccurredAt   int64  `json:"t"` // Unix milliseconds
}

// Publisher enqueues access events to the Redis stream.
type Publisher struct {
	redis   *redis.Client
	logger  *slog.Logger
	metrics metrics.Recorder
}

// NewPublisher creates a new access event publisher.
func NewPublisher(client *redis.Client, logger *slog.Logger, recorder metrics.Recorder) *Publisher {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &Publisher{
		redis:   client,
		logger:  logger.With("component", "accesslog.publisher"),
		metrics: recorder,
	}
}

// Publish adds an access event to the stream synchronously.
func (p *Publisher) Publish(ctx context.Context, event EventPayload) (string, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return "", fmt.Errorf("marshal event: %w", err)
	}

	result, err := p.redis.XAdd(ctx, &redis.XAddArgs{
		Stream: StreamKey,
		MaxLen: MaxStreamLen,
		Approx: true, // ~MAXLEN for performance
		ID:     "*",  // Auto-generate ID
		Values: map[string]interface{}{
			"payload": string(data),
		},
	}).Result()

	if err != nil {
		return "", fmt.Errorf("xadd: %w", err)
	}

	return result, nil
}

// PublishAsync publishes without blocking the caller.
// Errors are logged but not returned (fire-and-forget).
func (p *Publisher) PublishAsync(event EventPayload) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), PublishTimeout)
		defer cancel()

		streamID, err := p.Publish(ctx, event)
		if err != nil {
			p.logger.Warn("failed to publish access event",
				"kind", event.Kind,
				"error", err,
			)
			p.metrics.IncEventPublished("dropped")
			return
		}

		p.logger.Debug("access event published",
			"kind", event.Kind,
			"stream_id", streamID,
		)
		p.metrics.IncEventPublished("success")
	}()
}

// NewEventPayload builds a payload for an identity hash and event kind.
func NewEventPayload(identityHash string, kind model.EventKind, occurredAt time.Time) EventPayload {
	return EventPayload{
		IdentityHash: identityHash,
		Kind:         string(kind),
		OccurredAt:   occurredAt.UnixMilli(),
	}
}
