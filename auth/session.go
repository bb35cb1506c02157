// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const CookieName = "classvote_session"

// Claims is what the session carries between requests. Votes is a cache of
// the ledger taken after the last mutation; it is for display only.
type Claims struct {
	StudentID string   `json:"student_id,omitempty"`
	Votes     []string `json:"votes,omitempty"`
	Admin     bool     `json:"admin,omitempty"`
	jwt.RegisteredClaims
}

// Sessions signs and verifies session cookies.
type Sessions struct {
	secret []byte
	ttl    time.Duration
	secure bool
	now    func() time.Time
}

func NewSessions(secret string, ttl time.Duration, secure bool) *Sessions {
	return &Sessions{secret: []byte(secret), ttl: ttl, secure: secure, now: time.Now}
}

// Sign returns the signed token for claims.
func (s *Sessions) Sign(claims Claims) (string, error) {
	now := s.now()
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(s.ttl))

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session: %w", err)
	}
	return token, nil
}

// Parse verifies a token and returns its claims.
func (s *Sessions) Parse(token string) (Claims, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return claims, nil
}

// Issue writes the session cookie.
func (s *Sessions) Issue(w http.ResponseWriter, claims Claims) error {
	token, err := s.Sign(claims)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.ttl.Seconds()),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Read returns the claims of the request's session cookie.
func (s *Sessions) Read(r *http.Request) (Claims, error) {
	cookie, err := r.Cookie(CookieName)
	if errors.Is(err, http.ErrNoCookie) {
		return Claims{}, ErrNoSession
	}
	if err != nil {
		return Claims{}, err
	}
	return s.Parse(cookie.Value)
}

// Clear expires the session cookie.
func (s *Sessions) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
