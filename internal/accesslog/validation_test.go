package accesslog

import (
	"strings"
	"testing"
	"time"

	"github.com/mailgate/mailgate/internal/model"
)

func validPayload() EventPayload {
	return EventPayload{
		IdentityHash: strings.Repeat("ab", 32),
		Kind:         string(model.EventRequested),
		OccurredAt:   time.Now().UnixMilli(),
	}
}

func TestValidateEventPayload(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*EventPayload)
		wantErr bool
	}{
		{"valid requested", func(p *EventPayload) {}, false},
		{"valid accessed", func(p *EventPayload) { p.Kind = string(model.EventAccessed) }, false},
		{"empty hash", func(p *EventPayload) { p.IdentityHash = "" }, true},
		{"short hash", func(p *EventPayload) { p.IdentityHash = "abc123" }, true},
		{"uppercase hash", func(p *EventPayload) { p.IdentityHash = strings.Repeat("AB", 32) }, true},
		{"non-hex hash", func(p *EventPayload) { p.IdentityHash = strings.Repeat("zz", 32) }, true},
		{"unknown kind", func(p *EventPayload) { p.Kind = "clicked" }, true},
		{"empty kind", func(p *EventPayload) { p.Kind = "" }, true},
		{"zero timestamp", func(p *EventPayload) { p.OccurredAt = 0 }, true},
		{"negative timestamp", func(p *EventPayload) { p.OccurredAt = -1 }, true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p := validPayload()
			tt.mutate(&p)
			err := ValidateEventPayload(p)
			if tt.wantErr && err == nil {
				t.Error("ValidateEventPayload should fail")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("ValidateEventPayload failed: %v", err)
			}
		})
	}
}

func TestNewEventPayload(t *testing.T) {
	t.Parallel()

	occurredAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	hash := strings.Repeat("cd", 32)

	p := NewEventPayload(hash, model.EventAccessed, occurredAt)

	if p.IdentityHash != hash {
		t.Errorf("IdentityHash = %q, want %q", p.IdentityHash, hash)
	}
	if p.Kind != "accessed" {
		t.Errorf("Kind = %q, want accessed", p.Kind)
	}
	if p.OccurredAt != occurredAt.UnixMilli() {
		t.Errorf("OccurredAt = %d, want %d", p.OccurredAt, occurredAt.UnixMilli())
	}

	if err := ValidateEventPayload(p); err != nil {
		t.Errorf("Constructed payload should validate: %v", err)
	}
}
