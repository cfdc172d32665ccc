// Package sqlite persists the session record in an embedded SQLite
// database, for hosts that already keep their state in one.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/authkit/pkg/session"

	_ "modernc.org/sqlite"
)

// Store keeps the session record in a single-row table.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the database at dsn and applies pending
// migrations.
func NewStore(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	s := &Store{db: db}
	if err := s.applyMigrations(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: migrations failed: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Ping verifies the database connection is still alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Save(ctx context.Context, rec session.Record) error {
	userJSON, err := json.Marshal(rec.User)
	if err != nil {
		return fmt.Errorf("sqlite: failed to encode user: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO current_session (id, session_jwt, refresh_jwt, user_json, updated_at)
		VALUES (1, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			session_jwt = excluded.session_jwt,
			refresh_jwt = excluded.refresh_jwt,
			user_json   = excluded.user_json,
			updated_at  = excluded.updated_at
	`, rec.SessionJWT, rec.RefreshJWT, string(userJSON), time.Now().UTC())
	return err
}

func (s *Store) Load(ctx context.Context) (*session.Record, error) {
	var rec session.Record
	var userJSON string

	row := s.db.QueryRowContext(ctx, `
		SELECT session_jwt, refresh_jwt, user_json FROM current_session WHERE id = 1
	`)
	if err := row.Scan(&rec.SessionJWT, &rec.RefreshJWT, &userJSON); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	if err := json.Unmarshal([]byte(userJSON), &rec.User); err != nil {
		return nil, fmt.Errorf("sqlite: failed to decode user: %w", err)
	}
	return &rec, nil
}

func (s *Store) Remove(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM current_session WHERE id = 1`)
	return err
}
