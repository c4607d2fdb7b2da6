package accesslog

import (
	"fmt"
	"regexp"

	"github.com/mailgate/mailgate/internal/model"
)

// identityHashRegex matches a full hex-encoded SHA-256 digest.
var identityHashRegex = regexp.MustCompile(`^[a-f0-9]{64}$`)

// ValidateEventPayload checks that a payload read off the stream is
// well-formed before it reaches the database.
func ValidateEventPayload(p EventPayload) error {
	if !identityHashRegex.MatchString(p.IdentityHash) {
		return fmt.Errorf("identity_hash must be a 64-char hex digest")
	}
	if !model.EventKind(p.Kind).IsValid() {
		return fmt.Errorf("unknown event kind %q", p.Kind)
	}
	if p.OccurredAt <= 0 {
		return fmt.Errorf("occurred_at is required")
	}
	return nil
}
