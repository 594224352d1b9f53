// FILE: logbeacon/src/internal/transport/auth.go
package transport

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const tokenLifetime = 5 * time.Minute

// tokenSigner issues short-lived HS256 bearer tokens for the collector.
type tokenSigner struct {
	secret   []byte
	identity Identity
	now      func() time.Time
}

func newTokenSigner(secret string, identity Identity) *tokenSigner {
	if secret == "" {
		return nil
	}
	return &tokenSigner{
		secret:   []byte(secret),
		identity: identity,
		now:      time.Now,
	}
}

// Sign returns a bearer token. A nil signer returns an empty token.
func (s *tokenSigner) Sign() (string, error) {
	if s == nil {
		return "", nil
	}

	now := s.now()
	claims := jwt.RegisteredClaims{
		Issuer:    s.identity.AppName,
		Subject:   s.identity.SessionID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(tokenLifetime)),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return token, nil
}
