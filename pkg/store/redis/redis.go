// Package redis persists the session record in Redis, for server-side hosts
// of the SDK that keep per-service credentials in a shared cache.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/authkit/pkg/session"

	goredis "github.com/redis/go-redis/v9"
)

// DefaultKey is the Redis key used when none is configured.
const DefaultKey = "authkit:session"

// Store keeps the session record under a single Redis key. The caller owns
// the client's lifecycle; the store never closes it.
type Store struct {
	client *goredis.Client
	key    string
	ttl    time.Duration
}

// NewStore wraps an existing Redis client. An empty key uses DefaultKey; a
// zero ttl persists the record without expiry.
func NewStore(client *goredis.Client, key string, ttl time.Duration) *Store {
	if key == "" {
		key = DefaultKey
	}
	return &Store{client: client, key: key, ttl: ttl}
}

func (s *Store) Save(ctx context.Context, rec session.Record) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("redis: failed to encode record: %w", err)
	}
	return s.client.Set(ctx, s.key, payload, s.ttl).Err()
}

func (s *Store) Load(ctx context.Context) (*session.Record, error) {
	payload, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var rec session.Record
	if err := json.Unmarshal(payload, &rec); err != nil {
		return nil, fmt.Errorf("redis: failed to decode record: %w", err)
	}
	return &rec, nil
}

func (s *Store) Remove(ctx context.Context) error {
	return s.client.Del(ctx, s.key).Err()
}
