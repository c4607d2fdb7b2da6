// Package model defines domain entities for the application.
package model

import "time"

// EventKind distinguishes the two auditable actions in the gate flow.
type EventKind string

const (
	// EventRequested is recorded when an identity requests an access link.
	EventRequested EventKind = "requested"
	// EventAccessed is recorded when a delivered link is successfully verified.
	EventAccessed EventKind = "accessed"
)

// IsValid checks if the event kind is a known value.
func (k EventKind) IsValid() bool {
	return k == EventRequested || k == EventAccessed
}

// AccessEvent is one append-only entry in the access log.
// Entries are only ever inserted and re-read, never mutated.
type AccessEvent struct {
	ID           string    `json:"id"`
	EventID      string    `json:"event_id"`
	IdentityHash string    `json:"identity_hash"`
	Kind         EventKind `json:"kind"`
	OccurredAt   time.Time `json:"occurred_at"`
	CreatedAt    time.Time `json:"created_at"`
}

// Day returns the UTC calendar day the event belongs to.
func (e *AccessEvent) Day() time.Time {
	return e.OccurredAt.UTC().Truncate(24 * time.Hour)
}

// DailyStat is an aggregated per-day view over the access log.
type DailyStat struct {
	Date             time.Time `json:"date"`
	UniqueRequesters int64     `json:"unique_requesters"`
	TotalRequests    int64     `json:"total_requests"`
	TotalAccesses    int64     `json:"total_accesses"`
}
