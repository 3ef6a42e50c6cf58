// Package auth provides session tokens, password hashing and the route gate
// for the admin pages.
//
// SESSION FLOW:
//  1. Admin submits the login form (or finishes GitHub sign-in)
//  2. The service verifies the credential and asks TokenService for a token
//  3. The token goes into an HttpOnly cookie
//  4. RequireAuth verifies the signature on every gated request and puts the
//     principal in the request context
//  5. Logout deletes the cookie
//
// WHY JWT?
// There is no server-side session table. Everything needed to trust a
// request (principal, expiry) is inside the signed token, and verifying it
// takes the secret only, no DB lookup.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/xid"
)

const (
	issuer = "portfolio"

	// DefaultSessionTTL is how long an admin stays signed in.
	DefaultSessionTTL = 12 * time.Hour
)

// TokenService signs and verifies session tokens with an HMAC secret.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenService creates a TokenService with the given secret and lifetime.
// A zero ttl selects DefaultSessionTTL.
func NewTokenService(secret string, ttl time.Duration) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: session secret must be at least 16 characters")
	}
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &TokenService{secret: []byte(secret), ttl: ttl}, nil
}

// TTL is the lifetime of tokens from Generate. Cookies use it as MaxAge.
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

type claims struct {
	jwt.RegisteredClaims
}

// Generate creates a signed token for principal with the service's TTL.
func (s *TokenService) Generate(principal string) (string, error) {
	return s.GenerateWithDuration(principal, s.ttl)
}

// GenerateWithDuration creates a token with a custom expiry.
//
// Each token gets its own ID (jti) so two logins by the same admin in the
// same second still produce distinct tokens, and so a token can be named in
// logs without printing the token itself.
func (s *TokenService) GenerateWithDuration(principal string, d time.Duration) (string, error) {
	if principal == "" {
		return "", errors.New("auth: principal must not be empty")
	}

	now := time.Now()
	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        xid.New().String(),
			Subject:   principal,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(d)),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// Validate verifies a token and returns the principal it names.
//
// jwt.WithValidMethods pins HS256 so a token claiming "alg":"none" (or an
// asymmetric algorithm keyed with our secret) is rejected before the key
// function runs.
func (s *TokenService) Validate(tokenStr string) (string, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", fmt.Errorf("auth: token expired")
		}
		return "", fmt.Errorf("auth: invalid token: %w", err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("auth: invalid token claims")
	}

	if c.Subject == "" {
		return "", fmt.Errorf("auth: token has no subject")
	}

	return c.Subject, nil
}
