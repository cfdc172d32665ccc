package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/aussiebroadwan/authkit/pkg/jwtx"
)

// User is the profile record delivered alongside a token pair. The SDK
// persists it verbatim and otherwise treats it as opaque.
type User struct {
	UserID           string         `json:"user_id"`
	Name             string         `json:"name,omitempty"`
	Email            string         `json:"email,omitempty"`
	Phone            string         `json:"phone,omitempty"`
	CustomAttributes map[string]any `json:"custom_attributes,omitempty"`
}

// State is the derived freshness of a Session. It is computed on demand,
// never stored.
type State int

const (
	// StateValid means both tokens are usable.
	StateValid State = iota

	// StateSessionExpired means the short-lived session token has lapsed
	// but the refresh token can still mint a new one.
	StateSessionExpired

	// StateRefreshExpired means the refresh token itself has lapsed and the
	// user must authenticate again.
	StateRefreshExpired
)

func (s State) String() string {
	switch s {
	case StateValid:
		return "valid"
	case StateSessionExpired:
		return "session-expired"
	case StateRefreshExpired:
		return "refresh-expired"
	default:
		return "unknown"
	}
}

// Session pairs a short-lived session token with the refresh token that
// renews it, plus the user profile both belong to. Token updates happen in
// place so every holder of the Session observes a refresh without
// re-fetching it. All access goes through a read/write lock so concurrent
// readers always see a consistent token pair.
type Session struct {
	mu           sync.RWMutex
	sessionToken *jwtx.Token
	refreshToken *jwtx.Token
	user         User
}

// New decodes both JWTs and builds a Session. Either token failing to decode
// fails the whole construction; a Session is never partially built.
func New(sessionJWT, refreshJWT string, user User) (*Session, error) {
	sessionToken, err := jwtx.Parse(sessionJWT)
	if err != nil {
		return nil, fmt.Errorf("session token: %w", err)
	}
	refreshToken, err := jwtx.Parse(refreshJWT)
	if err != nil {
		return nil, fmt.Errorf("refresh token: %w", err)
	}
	return FromTokens(sessionToken, refreshToken, user), nil
}

// FromTokens builds a Session from already-decoded tokens.
func FromTokens(sessionToken, refreshToken *jwtx.Token, user User) *Session {
	return &Session{
		sessionToken: sessionToken,
		refreshToken: refreshToken,
		user:         user,
	}
}

// SessionToken returns the current short-lived token.
func (s *Session) SessionToken() *jwtx.Token {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessionToken
}

// RefreshToken returns the current refresh token.
func (s *Session) RefreshToken() *jwtx.Token {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshToken
}

// SessionJWT returns the raw session token string for transport.
func (s *Session) SessionJWT() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessionToken.Raw()
}

// RefreshJWT returns the raw refresh token string for transport.
func (s *Session) RefreshJWT() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshToken.Raw()
}

// User returns the profile attached to this session.
func (s *Session) User() User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// SetUser replaces the profile in place.
func (s *Session) SetUser(user User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = user
}

// State reports the session's freshness right now.
func (s *Session) State() State {
	return s.StateAt(time.Now())
}

// StateAt reports the session's freshness at the given instant. An expired
// refresh token dominates an expired session token: once refresh is gone
// there is nothing left to renew with.
func (s *Session) StateAt(now time.Time) State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if exp, ok := s.refreshToken.Expiration(); ok && !exp.After(now) {
		return StateRefreshExpired
	}
	if exp, ok := s.sessionToken.Expiration(); ok && !exp.After(now) {
		return StateSessionExpired
	}
	return StateValid
}

// Update replaces the session token and, when newRefresh is non-nil, the
// refresh token. A refresh response may omit a new refresh token, meaning
// "keep using the old one". Both writes happen under one critical section so
// readers never observe a token pair from two different responses.
func (s *Session) Update(newSession, newRefresh *jwtx.Token) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessionToken = newSession
	if newRefresh != nil {
		s.refreshToken = newRefresh
	}
}
