// Package media issues and verifies time-limited media URLs.
//
// Caches keep the unsigned media reference only. Every read signs afresh,
// so a cached entry can never hand out a URL past its validity.
package media

import (
	"errors"
	"fmt"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/wayfarer/content-service/internal/pkg/encryption"
)

var (
	// ErrExpired is returned for a token past its validity.
	ErrExpired = errors.New("media: url expired")

	// ErrInvalidToken is returned for a token that cannot be opened.
	ErrInvalidToken = errors.New("media: invalid token")
)

// Signer turns stored media references into access URLs.
type Signer interface {
	// Sign returns an access URL for ref and when it stops working.
	Sign(ref string) (string, time.Time, error)

	// Resolve returns the reference behind a token issued by Sign.
	Resolve(token string) (string, error)
}

type claims struct {
	Ref       string `json:"r"`
	ExpiresAt int64  `json:"e"`
}

// TokenSigner seals the reference and its expiry into the URL.
type TokenSigner struct {
	sealer  encryption.Sealer
	baseURL string
	ttl     time.Duration
	now     func() time.Time
}

// NewTokenSigner creates a signer issuing URLs under baseURL valid for ttl.
func NewTokenSigner(sealer encryption.Sealer, baseURL string, ttl time.Duration) *TokenSigner {
	return &TokenSigner{
		sealer:  sealer,
		baseURL: strings.TrimRight(baseURL, "/"),
		ttl:     ttl,
		now:     time.Now,
	}
}

// WithClock replaces the time source.
func (s *TokenSigner) WithClock(now func() time.Time) *TokenSigner {
	s.now = now
	return s
}

// Sign returns a URL for ref. An empty ref yields an empty URL.
func (s *TokenSigner) Sign(ref string) (string, time.Time, error) {
	if ref == "" {
		return "", time.Time{}, nil
	}

	expires := s.now().Add(s.ttl).UTC()
	payload, err := json.Marshal(claims{Ref: ref, ExpiresAt: expires.Unix()})
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to encode media claims: %w", err)
	}

	token, err := s.sealer.Seal(payload)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign media url: %w", err)
	}
	return s.baseURL + "/" + token, expires, nil
}

// Resolve opens token and checks its expiry.
func (s *TokenSigner) Resolve(token string) (string, error) {
	payload, err := s.sealer.Open(token)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	var c claims
	if err := json.Unmarshal(payload, &c); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !s.now().Before(time.Unix(c.ExpiresAt, 0)) {
		return "", ErrExpired
	}
	return c.Ref, nil
}
