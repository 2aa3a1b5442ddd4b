package auth

import (
	"log/slog"
	"strings"
	"sync"
	"time"
)

// Session is the narrow view of the signed-in session that the API client
// depends on. Invalidate is called when the server rejects the token.
type Session interface {
	Token() string
	OnInvalidated(fn func())
	Invalidate()
}

// TokenSession holds a bearer token in memory. The clear callback removes
// persisted credentials when the session is invalidated.
type TokenSession struct {
	mu        sync.Mutex
	token     string
	clear     func() error
	listeners []func()
}

// NewSession returns a session for token. clear may be nil.
func NewSession(token string, clear func() error) *TokenSession {
	return &TokenSession{token: normalizeToken(token), clear: clear}
}

// Token returns the current bearer token, or "" when signed out.
func (s *TokenSession) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// SetToken replaces the token, e.g. after login.
func (s *TokenSession) SetToken(token string) {
	s.mu.Lock()
	s.token = normalizeToken(token)
	s.mu.Unlock()
}

// OnInvalidated registers fn to run when the session is invalidated.
func (s *TokenSession) OnInvalidated(fn func()) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

// Invalidate clears the token and notifies listeners. Invalidating a session
// that is already signed out is a no-op, so listeners never fire twice in a
// row.
func (s *TokenSession) Invalidate() {
	s.mu.Lock()
	if s.token == "" {
		s.mu.Unlock()
		return
	}
	s.token = ""
	clear := s.clear
	listeners := append([]func(){}, s.listeners...)
	s.mu.Unlock()

	if clear != nil {
		if err := clear(); err != nil {
			slog.Error("failed to clear stored credentials", "error", err)
		}
	}
	for _, fn := range listeners {
		fn()
	}
}

// Claims decodes the current token. It returns nil when signed out or when
// the token cannot be decoded.
func (s *TokenSession) Claims() *Claims {
	token := s.Token()
	if token == "" {
		return nil
	}
	claims, err := ParseClaims(token)
	if err != nil {
		return nil
	}
	return claims
}

// Usable reports whether a session holds a token that has not yet expired.
// Opaque tokens that are not JWTs are passed through to the server.
func Usable(s Session, now time.Time) bool {
	token := s.Token()
	if token == "" {
		return false
	}
	claims, err := ParseClaims(token)
	if err != nil {
		return true
	}
	return !claims.Expired(now)
}

// normalizeToken drops values that leak from unset storage slots.
func normalizeToken(token string) string {
	token = strings.TrimSpace(token)
	if token == "undefined" || token == "null" {
		return ""
	}
	return token
}
