// Package memory provides an in-process session store. Nothing survives the
// process; it exists for tests and for hosts that explicitly want no
// persistence.
package memory

import (
	"context"
	"sync"

	"github.com/aussiebroadwan/authkit/pkg/session"
)

// Store holds at most one session record in memory.
type Store struct {
	mu  sync.Mutex
	rec *session.Record
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{}
}

func (s *Store) Save(ctx context.Context, rec session.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rec = &rec
	return nil
}

func (s *Store) Load(ctx context.Context) (*session.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rec == nil {
		return nil, nil
	}
	rec := *s.rec
	return &rec, nil
}

func (s *Store) Remove(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rec = nil
	return nil
}
