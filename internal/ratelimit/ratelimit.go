// Package ratelimit bounds how many access links an identity may request
// within a tracking window.
package ratelimit

import "context"

// Result contains the outcome of a limiter check.
type Result struct {
	// Count is the identity's counter value after this increment.
	Count int64
	// Allowed is true iff Count is within the configured ceiling.
	Allowed bool
}

// Limiter tracks request counts per identity and enforces a ceiling.
//
// Implementations must map identical identity strings to the same counter
// slot and must not lose concurrent increments. The attempt is counted
// even when it is blocked: a blocked request still moves the counter.
type Limiter interface {
	// IncrementAndCheck increments the identity's counter and reports
	// whether the new count is within the ceiling.
	IncrementAndCheck(ctx context.Context, identity string) (Result, error)
}
