// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mailgate/mailgate/internal/accesslog"
	"github.com/mailgate/mailgate/internal/identity"
	"github.com/mailgate/mailgate/internal/mailer"
	"github.com/mailgate/mailgate/internal/metrics"
	"github.com/mailgate/mailgate/internal/model"
	"github.com/mailgate/mailgate/internal/ratelimit"
	"github.com/mailgate/mailgate/internal/token"
)

// Service errors.
var (
	ErrInvalidEmail   = errors.New("email is not a valid address in the allowed domain")
	ErrRateLimited    = errors.New("request limit reached for this identity")
	ErrDeliveryFailed = errors.New("access link could not be delivered")
)

// EventPublisher abstracts the access log pipeline for the service.
type EventPublisher interface {
	PublishAsync(event accesslog.EventPayload)
}

// AccessService orchestrates the gate flow: validate, rate limit, issue,
// deliver, and later verify.
type AccessService struct {
	validator *identity.Validator
	limiter   ratelimit.Limiter
	codec     *token.Codec
	notifier  mailer.Notifier
	publisher EventPublisher
	baseURL   string
	logger    *slog.Logger
	metrics   metrics.Recorder
}

// NewAccessService creates a new AccessService.
func NewAccessService(
	validator *identity.Validator,
	limiter ratelimit.Limiter,
	codec *token.Codec,
	notifier mailer.Notifier,
	publisher EventPublisher,
	baseURL string,
	logger *slog.Logger,
	recorder metrics.Recorder,
) *AccessService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &AccessService{
		validator: validator,
		limiter:   limiter,
		codec:     codec,
		notifier:  notifier,
		publisher: publisher,
		baseURL:   baseURL,
		logger:    logger,
		metrics:   recorder,
	}
}

// RequestAccess validates the email, enforces the per-identity ceiling,
// issues a token and emails the magic link.
//
// The rate-limit counter moves even when the request is blocked: a denied
// attempt still counts against the identity. The email plaintext is used
// only to address the message; everywhere else the anonymized hash stands
// in for the identity.
func (s *AccessService) RequestAccess(ctx context.Context, email string) error {
	s.metrics.IncAccessRequested()

	if !s.validator.Validate(email) {
		return ErrInvalidEmail
	}

	normalized := identity.Normalize(email)
	identityHash := identity.Anonymize(normalized)

	result, err := s.limiter.IncrementAndCheck(ctx, identityHash)
	if err != nil {
		return fmt.Errorf("rate limit check: %w", err)
	}

	s.logger.Info("access link requested",
		"identity_hash", identityHash,
		"request_count", result.Count,
		"allowed", result.Allowed,
	)

	if !result.Allowed {
		s.metrics.IncRateLimited()
		return ErrRateLimited
	}

	tokenString, err := s.codec.Issue(normalized)
	if err != nil {
		return fmt.Errorf("issue token: %w", err)
	}
	s.metrics.IncTokenIssued()

	link := mailer.BuildAccessLink(s.baseURL, tokenString)
	body := mailer.BuildAccessBody(link, s.codec.TTL())

	// Single attempt. The issued token stays valid until its own expiry
	// even when delivery fails.
	if err := s.notifier.Send(ctx, normalized, mailer.AccessLinkSubject, body); err != nil {
		s.metrics.IncDeliveryFailed()
		s.logger.Error("access link delivery failed",
			"identity_hash", identityHash,
			"error", err,
		)
		return fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}

	if s.publisher != nil {
		s.publisher.PublishAsync(
			accesslog.NewEventPayload(identityHash, model.EventRequested, time.Now().UTC()),
		)
	}

	return nil
}

// VerifyAccess verifies a token from the entry URL and returns the
// identity it was issued for. Expired and invalid tokens pass through the
// codec's sentinel errors unchanged.
func (s *AccessService) VerifyAccess(ctx context.Context, tokenString string) (string, error) {
	start := time.Now()
	email, err := s.codec.Verify(tokenString)
	s.metrics.ObserveVerifyDuration(time.Since(start))

	if err != nil {
		switch {
		case errors.Is(err, token.ErrExpired):
			s.metrics.IncTokenVerified("expired")
		default:
			s.metrics.IncTokenVerified("invalid")
		}
		return "", err
	}

	s.metrics.IncTokenVerified("ok")

	identityHash := identity.Anonymize(email)
	s.logger.Info("access link verified", "identity_hash", identityHash)

	if s.publisher != nil {
		s.publisher.PublishAsync(
			accesslog.NewEventPayload(identityHash, model.EventAccessed, time.Now().UTC()),
		)
	}

	return email, nil
}
