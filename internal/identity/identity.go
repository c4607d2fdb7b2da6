// Package identity provides email validation and one-way anonymization.
// An identity is a corporate email address, or its hash once anonymized.
package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
)

// Validator checks that an input string is a syntactically valid address
// within the single allowed corporate domain.
type Validator struct {
	domain  string
	pattern *regexp.Regexp
}

// NewValidator compiles the validation pattern for the allowed domain.
// The domain is matched exactly: sub-domains and suffix extensions of the
// configured domain do not validate.
func NewValidator(allowedDomain string) (*Validator, error) {
	domain := strings.ToLower(strings.TrimSpace(allowedDomain))
	if domain == "" {
		return nil, fmt.Errorf("allowed domain must not be empty")
	}

	pattern, err := regexp.Compile(`^[\w.-]+@` + regexp.QuoteMeta(domain) + `$`)
	if err != nil {
		return nil, fmt.Errorf("compile domain pattern: %w", err)
	}

	return &Validator{domain: domain, pattern: pattern}, nil
}

// Domain returns the allowed domain this validator was built for.
func (v *Validator) Domain() string {
	return v.domain
}

// Validate reports whether the input is a well-formed address in the
// allowed domain. No network or MX lookup is performed.
func (v *Validator) Validate(email string) bool {
	return v.pattern.MatchString(strings.ToLower(email))
}

// Normalize lowercases and trims an address so that identical identities
// always map to the same rate-limit slot and anonymized hash.
func Normalize(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Anonymize produces a fixed-length opaque identifier for an email address.
// The digest is deterministic and one-way; the plaintext is never needed
// again once the hash is recorded.
func Anonymize(email string) string {
	sum := sha256.Sum256([]byte(Normalize(email)))
	return hex.EncodeToString(sum[:])
}
