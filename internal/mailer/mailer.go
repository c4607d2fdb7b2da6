// Package mailer delivers access links by email.
// Delivery is a single fallible attempt: failures are surfaced to the
// caller, never retried or queued.
package mailer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/wneessen/go-mail"

	"github.com/mailgate/mailgate/internal/config"
)

// Notifier sends a message to a recipient.
// The core only requires this capability; transport is an implementation
// detail of the concrete type.
type Notifier interface {
	Send(ctx context.Context, to, subject, body string) error
}

// SMTPMailer sends email via SMTP using go-mail.
type SMTPMailer struct {
	host     string
	port     int
	username string
	password string
	from     string
	fromName string
	tls      bool
}

// NewSMTPMailer creates a mailer from SMTP configuration.
func NewSMTPMailer(cfg *config.Config) (*SMTPMailer, error) {
	if cfg.SMTPHost == "" {
		return nil, fmt.Errorf("SMTP host is required")
	}
	if cfg.SMTPFrom == "" {
		return nil, fmt.Errorf("SMTP from address is required")
	}

	return &SMTPMailer{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		username: cfg.SMTPUsername,
		password: cfg.SMTPPassword,
		from:     cfg.SMTPFrom,
		fromName: cfg.SMTPFromName,
		tls:      cfg.SMTPTLS,
	}, nil
}

// Send delivers a plain-text message. One attempt, no retry.
func (m *SMTPMailer) Send(ctx context.Context, to, subject, body string) error {
	msg := mail.NewMsg()

	if m.fromName != "" {
		if err := msg.FromFormat(m.fromName, m.from); err != nil {
			return fmt.Errorf("setting from address: %w", err)
		}
	} else {
		if err := msg.From(m.from); err != nil {
			return fmt.Errorf("setting from address: %w", err)
		}
	}

	if err := msg.To(to); err != nil {
		return fmt.Errorf("setting to address: %w", err)
	}

	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	opts := []mail.Option{
		mail.WithPort(m.port),
	}

	if m.tls {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
		// Implicit TLS for port 465, STARTTLS for others
		if m.port == 465 {
			opts = append(opts, mail.WithSSL())
		}
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	}

	if m.username != "" && m.password != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(m.username),
			mail.WithPassword(m.password),
		)
	}

	client, err := mail.NewClient(m.host, opts...)
	if err != nil {
		return fmt.Errorf("creating mail client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("sending email: %w", err)
	}

	return nil
}

// AccessLinkSubject is the subject line for access link emails.
const AccessLinkSubject = "Your portal access link"

// BuildAccessLink assembles the magic link for a token.
func BuildAccessLink(baseURL, tokenString string) string {
	return strings.TrimSuffix(baseURL, "/") + "/?token=" + tokenString
}

// BuildAccessBody renders the plain-text body for an access link email.
func BuildAccessBody(link string, ttl time.Duration) string {
	minutes := int(ttl.Minutes())
	return fmt.Sprintf(
		"Here is your access link to the internal portal. It is valid for %d minutes:\n\n%s\n\nIf you did not request this link, you can ignore this message.\n",
		minutes, link,
	)
}
