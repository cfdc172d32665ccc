package session

import (
	"context"
	"log/slog"

	"github.com/aussiebroadwan/authkit/pkg/slogx"
)

// Record is the externally persisted form of a Session: the two raw token
// strings plus the serialized user profile. It round-trips through
// Save/Load back to an equivalent Session.
type Record struct {
	SessionJWT string `json:"session_jwt"`
	RefreshJWT string `json:"refresh_jwt"`
	User       User   `json:"user"`
}

// Storage persists the current session record across application runs.
// Implementations live under pkg/store. Load returns (nil, nil) when
// nothing is persisted.
type Storage interface {
	Save(ctx context.Context, rec Record) error
	Load(ctx context.Context) (*Record, error)
	Remove(ctx context.Context) error
}

// Manager binds a Lifecycle to a Storage so the persisted copy tracks the
// in-memory session. Storage failures are logged and ignored: the in-memory
// session stays authoritative.
type Manager struct {
	lifecycle *Lifecycle
	storage   Storage
	logger    *slog.Logger
}

// NewManager wires lifecycle and storage together, then attempts to adopt a
// previously persisted session as current. A persisted record that no longer
// decodes is discarded.
func NewManager(ctx context.Context, lifecycle *Lifecycle, storage Storage, logger *slog.Logger) *Manager {
	m := &Manager{
		lifecycle: lifecycle,
		storage:   storage,
		logger:    slogx.Or(logger),
	}
	m.loadPersisted(ctx)
	return m
}

// Session returns the current session, or nil.
func (m *Manager) Session() *Session {
	return m.lifecycle.Session()
}

// SetSession makes s the current session and persists it, or removes the
// persisted copy when s is nil. Setting the session that is already current
// is a no-op.
func (m *Manager) SetSession(ctx context.Context, s *Session) {
	if m.lifecycle.Session() == s {
		return
	}
	m.lifecycle.SetSession(s)
	m.persist(ctx, s)
}

// ClearSession drops the current session and its persisted copy. This is
// the logout path.
func (m *Manager) ClearSession(ctx context.Context) {
	m.SetSession(ctx, nil)
}

// RefreshIfNeeded delegates to the lifecycle and re-persists the session
// when the refresh actually replaced its token.
func (m *Manager) RefreshIfNeeded(ctx context.Context) error {
	s := m.lifecycle.Session()
	if s == nil {
		return nil
	}

	before := s.SessionJWT()
	if err := m.lifecycle.RefreshIfNeeded(ctx); err != nil {
		return err
	}
	if s.SessionJWT() != before {
		m.persist(ctx, s)
	}
	return nil
}

func (m *Manager) persist(ctx context.Context, s *Session) {
	if s == nil {
		if err := m.storage.Remove(ctx); err != nil {
			m.logger.Warn("failed to remove persisted session", "error", err)
		}
		return
	}

	rec := Record{
		SessionJWT: s.SessionJWT(),
		RefreshJWT: s.RefreshJWT(),
		User:       s.User(),
	}
	if err := m.storage.Save(ctx, rec); err != nil {
		m.logger.Warn("failed to persist session", "error", err)
	}
}

func (m *Manager) loadPersisted(ctx context.Context) {
	rec, err := m.storage.Load(ctx)
	if err != nil {
		m.logger.Warn("failed to load persisted session", "error", err)
		return
	}
	if rec == nil {
		return
	}

	s, err := New(rec.SessionJWT, rec.RefreshJWT, rec.User)
	if err != nil {
		m.logger.Warn("discarding undecodable persisted session", "error", err)
		if err := m.storage.Remove(ctx); err != nil {
			m.logger.Warn("failed to remove persisted session", "error", err)
		}
		return
	}
	m.lifecycle.SetSession(s)
}
