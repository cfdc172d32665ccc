// Package file persists the session record to a single file on disk, sealed
// with authenticated encryption so raw tokens never touch the filesystem in
// the clear. This is the default store for long-running desktop and CLI
// hosts.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/aussiebroadwan/authkit/pkg/cryptox"
	"github.com/aussiebroadwan/authkit/pkg/session"
)

// Store writes the sealed session record to one file. Writes go through a
// temp file and rename so a crash never leaves a half-written record.
type Store struct {
	path   string
	sealer *cryptox.Sealer
}

// NewStore creates a store at path, deriving the sealing key from secret.
func NewStore(path string, secret []byte) (*Store, error) {
	sealer, err := cryptox.NewSealer(secret)
	if err != nil {
		return nil, err
	}
	return &Store{path: path, sealer: sealer}, nil
}

func (s *Store) Save(ctx context.Context, rec session.Record) error {
	plaintext, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("file: failed to encode record: %w", err)
	}
	sealed, err := s.sealer.Seal(plaintext)
	if err != nil {
		return err
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, sealed, 0o600); err != nil {
		return fmt.Errorf("file: failed to write record: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("file: failed to replace record: %w", err)
	}
	return nil
}

func (s *Store) Load(ctx context.Context) (*session.Record, error) {
	sealed, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("file: failed to read record: %w", err)
	}

	plaintext, err := s.sealer.Open(sealed)
	if err != nil {
		return nil, err
	}

	var rec session.Record
	if err := json.Unmarshal(plaintext, &rec); err != nil {
		return nil, fmt.Errorf("file: failed to decode record: %w", err)
	}
	return &rec, nil
}

func (s *Store) Remove(ctx context.Context) error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("file: failed to remove record: %w", err)
	}
	return nil
}

// DefaultPath returns a per-user location for the session file, e.g.
// ~/.config/<app>/session.bin on Linux.
func DefaultPath(app string) (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("file: no user config dir: %w", err)
	}
	dir = filepath.Join(dir, app)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("file: failed to create config dir: %w", err)
	}
	return filepath.Join(dir, "session.bin"), nil
}
