package upstream

import (
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenSource signs short-lived HS256 service tokens for the loan API and
// reuses one until it is close to expiry.
type TokenSource struct {
	secret  []byte
	subject string
	ttl     time.Duration
	now     func() time.Time

	mu      sync.Mutex
	token   string
	expires time.Time
}

func NewTokenSource(secret, subject string, ttl time.Duration) *TokenSource {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &TokenSource{
		secret:  []byte(secret),
		subject: subject,
		ttl:     ttl,
		now:     time.Now,
	}
}

// Token returns a bearer token, or "" when no secret is configured.
func (s *TokenSource) Token() (string, error) {
	if len(s.secret) == 0 {
		return "", nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if s.token != "" && now.Before(s.expires.Add(-s.ttl/5)) {
		return s.token, nil
	}

	expires := now.Add(s.ttl)
	claims := jwt.RegisteredClaims{
		Subject:   s.subject,
		Issuer:    s.subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expires),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign service token: %w", err)
	}

	s.token = signed
	s.expires = expires
	return signed, nil
}
