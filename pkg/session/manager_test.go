package session_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/authkit/pkg/session"
	"github.com/stretchr/testify/require"
)

// fakeStorage is an in-memory Storage with switchable failure modes.
type fakeStorage struct {
	mu     sync.Mutex
	rec    *session.Record
	failed bool
}

func (f *fakeStorage) Save(ctx context.Context, rec session.Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failed {
		return errors.New("disk full")
	}
	f.rec = &rec
	return nil
}

func (f *fakeStorage) Load(ctx context.Context) (*session.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failed {
		return nil, errors.New("disk gone")
	}
	return f.rec, nil
}

func (f *fakeStorage) Remove(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failed {
		return errors.New("disk stuck")
	}
	f.rec = nil
	return nil
}

func (f *fakeStorage) stored() *session.Record {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rec
}

func newTestLifecycle(auth session.Refresher, now time.Time) *session.Lifecycle {
	return session.NewLifecycle(auth, session.LifecycleConfig{
		CheckInterval: time.Hour,
		Now:           func() time.Time { return now },
	})
}

func TestManagerAdoptsPersistedSession(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	t.Run("valid record round-trips", func(t *testing.T) {
		s := newTestSession(t, now.Add(time.Hour), now.Add(24*time.Hour))
		storage := &fakeStorage{rec: &session.Record{
			SessionJWT: s.SessionJWT(),
			RefreshJWT: s.RefreshJWT(),
			User:       s.User(),
		}}

		lc := newTestLifecycle(&fakeRefresher{}, now)
		defer lc.SetSession(nil)
		m := session.NewManager(ctx, lc, storage, nil)

		adopted := m.Session()
		require.NotNil(t, adopted)
		require.Equal(t, s.SessionJWT(), adopted.SessionJWT())
		require.Equal(t, "U1", adopted.User().UserID)
		require.Equal(t, s.SessionToken().ProjectID(), adopted.SessionToken().ProjectID())
	})

	t.Run("nothing persisted", func(t *testing.T) {
		m := session.NewManager(ctx, newTestLifecycle(&fakeRefresher{}, now), &fakeStorage{}, nil)
		require.Nil(t, m.Session())
	})

	t.Run("undecodable record is discarded and removed", func(t *testing.T) {
		storage := &fakeStorage{rec: &session.Record{SessionJWT: "garbage", RefreshJWT: "garbage"}}
		m := session.NewManager(ctx, newTestLifecycle(&fakeRefresher{}, now), storage, nil)
		require.Nil(t, m.Session())
		require.Nil(t, storage.stored())
	})

	t.Run("load failure leaves an empty manager", func(t *testing.T) {
		m := session.NewManager(ctx, newTestLifecycle(&fakeRefresher{}, now), &fakeStorage{failed: true}, nil)
		require.Nil(t, m.Session())
	})
}

func TestManagerSetSession(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	t.Run("persists on set, removes on clear", func(t *testing.T) {
		storage := &fakeStorage{}
		lc := newTestLifecycle(&fakeRefresher{}, now)
		defer lc.SetSession(nil)
		m := session.NewManager(ctx, lc, storage, nil)

		s := newTestSession(t, now.Add(time.Hour), now.Add(24*time.Hour))
		m.SetSession(ctx, s)
		require.Same(t, s, lc.Session())
		require.NotNil(t, storage.stored())
		require.Equal(t, s.RefreshJWT(), storage.stored().RefreshJWT)

		m.ClearSession(ctx)
		require.Nil(t, m.Session())
		require.Nil(t, storage.stored())
	})

	t.Run("storage failure is not fatal", func(t *testing.T) {
		storage := &fakeStorage{failed: true}
		lc := newTestLifecycle(&fakeRefresher{}, now)
		defer lc.SetSession(nil)
		m := session.NewManager(ctx, lc, storage, nil)

		s := newTestSession(t, now.Add(time.Hour), now.Add(24*time.Hour))
		m.SetSession(ctx, s)
		// in-memory session stays authoritative
		require.Same(t, s, m.Session())
	})
}

func TestManagerRefreshIfNeeded(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	t.Run("re-persists after the token changes", func(t *testing.T) {
		fresh := mintJWT(t, "P1", now.Add(time.Hour))
		auth := &fakeRefresher{sessionJWT: fresh}
		storage := &fakeStorage{}
		lc := newTestLifecycle(auth, now)
		defer lc.SetSession(nil)
		m := session.NewManager(ctx, lc, storage, nil)

		m.SetSession(ctx, newTestSession(t, now.Add(10*time.Second), now.Add(24*time.Hour)))
		require.NoError(t, m.RefreshIfNeeded(ctx))
		require.Equal(t, fresh, storage.stored().SessionJWT)
	})

	t.Run("no change means no write", func(t *testing.T) {
		storage := &fakeStorage{}
		lc := newTestLifecycle(&fakeRefresher{}, now)
		defer lc.SetSession(nil)
		m := session.NewManager(ctx, lc, storage, nil)

		s := newTestSession(t, now.Add(time.Hour), now.Add(24*time.Hour))
		m.SetSession(ctx, s)
		before := storage.stored()

		require.NoError(t, m.RefreshIfNeeded(ctx))
		require.Same(t, before, storage.stored())
	})

	t.Run("refresh error propagates", func(t *testing.T) {
		boom := errors.New("identity service down")
		lc := newTestLifecycle(&fakeRefresher{err: boom}, now)
		defer lc.SetSession(nil)
		m := session.NewManager(ctx, lc, &fakeStorage{}, nil)

		m.SetSession(ctx, newTestSession(t, now.Add(10*time.Second), now.Add(24*time.Hour)))
		require.ErrorIs(t, m.RefreshIfNeeded(ctx), boom)
	})
}
