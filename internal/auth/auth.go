// Package auth answers a single question for the API surface: does this
// request carry a valid session. Session issuance (OAuth, login UI) is an
// external concern; the service only verifies tokens.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidSession is returned when a token is missing, malformed or expired.
var ErrInvalidSession = errors.New("invalid session")

// Session identifies an authenticated caller.
type Session struct {
	Subject   string
	ExpiresAt time.Time
}

// SessionVerifier validates a bearer token and returns the session it carries.
type SessionVerifier interface {
	Verify(token string) (*Session, error)
}

// VerifierFunc adapts a function to the SessionVerifier interface.
type VerifierFunc func(token string) (*Session, error)

func (f VerifierFunc) Verify(token string) (*Session, error) {
	return f(token)
}

// JWTVerifier verifies HS256-signed session tokens.
type JWTVerifier struct {
	secret []byte
}

// NewJWTVerifier creates a verifier for the given signing secret.
func NewJWTVerifier(secret string) *JWTVerifier {
	return &JWTVerifier{secret: []byte(secret)}
}

// Verify parses and validates a token. Any failure collapses to
// ErrInvalidSession: callers only need "has a session or not".
func (v *JWTVerifier) Verify(token string) (*Session, error) {
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidSession
	}

	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok {
		return nil, ErrInvalidSession
	}

	session := &Session{Subject: claims.Subject}
	if claims.ExpiresAt != nil {
		session.ExpiresAt = claims.ExpiresAt.Time
	}
	return session, nil
}

// Issue mints a signed session token. Used by the CLI and tests; in a real
// deployment tokens come from the identity provider.
func (v *JWTVerifier) Issue(subject string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(v.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}
