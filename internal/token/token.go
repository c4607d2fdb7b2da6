// Package token provides the signed access token codec.
// Tokens are stateless HS256 JWTs binding an identity to an expiry and an
// access-scope claim. The codec performs no replay detection: a token
// verifies successfully any number of times until its expiry.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// Scope is the fixed access claim carried by every gate token.
// Tokens minted for other purposes must not pass verification here.
const Scope = "gpts"

// Codec errors.
var (
	// ErrExpired is returned when a token is verified past its expiry.
	ErrExpired = errors.New("token expired")
	// ErrInvalid is returned for signature mismatch, malformed encoding,
	// unsupported algorithm, or an unexpected scope claim.
	ErrInvalid = errors.New("token invalid")
)

// claims is the JWT payload. Field names match the wire format of the
// issued tokens: {email, access, exp}.
type claims struct {
	Email  string `json:"email"`
	Access string `json:"access"`
	jwt.RegisteredClaims
}

// Codec signs and verifies access tokens with a symmetric secret.
type Codec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewCodec creates a Codec with the given signing secret and token lifetime.
func NewCodec(secret string, ttl time.Duration) (*Codec, error) {
	if secret == "" {
		return nil, fmt.Errorf("signing secret must not be empty")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("token ttl must be positive, got %s", ttl)
	}
	return &Codec{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// Issue builds and signs a token for the identity, expiring ttl from now.
func (c *Codec) Issue(identity string) (string, error) {
	now := c.now().UTC()

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Email:  identity,
		Access: Scope,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	})

	signed, err := t.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify decodes the token, checks its signature, expiry and scope, and
// returns the identity it was issued for.
//
// Expiry past due yields ErrExpired. Everything else that fails
// verification, including a scope mismatch, yields ErrInvalid so that a
// forged token is indistinguishable from a corrupted one to the caller.
func (c *Codec) Verify(tokenString string) (string, error) {
	parsed, err := jwt.ParseWithClaims(
		tokenString,
		&claims{},
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return c.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrExpired
		}
		return "", ErrInvalid
	}

	payload, ok := parsed.Claims.(*claims)
	if !ok || !parsed.Valid {
		return "", ErrInvalid
	}

	if payload.Access != Scope {
		return "", ErrInvalid
	}
	if payload.Email == "" {
		return "", ErrInvalid
	}

	return payload.Email, nil
}

// TTL returns the configured token lifetime.
func (c *Codec) TTL() time.Duration {
	return c.ttl
}
