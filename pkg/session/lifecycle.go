package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aussiebroadwan/authkit/pkg/jwtx"
	"github.com/aussiebroadwan/authkit/pkg/slogx"
)

// Default freshness parameters. A session is refreshed ahead of its actual
// expiry so callers never hand out a token that dies mid-request.
const (
	DefaultStalenessAllowance = time.Minute
	DefaultCheckInterval      = 30 * time.Second
)

// Refresher exchanges a refresh token for a new token pair against the
// remote identity service. An empty returned refresh JWT means "keep the
// current one".
type Refresher interface {
	Refresh(ctx context.Context, refreshJWT string) (sessionJWT, newRefreshJWT string, err error)
}

// LifecycleConfig tunes a Lifecycle. Zero fields get defaults.
type LifecycleConfig struct {
	// StalenessAllowance is the lead time before actual expiry at which a
	// session counts as due for refresh. Default one minute.
	StalenessAllowance time.Duration

	// CheckInterval is the cadence of the background staleness check.
	// Default 30 seconds.
	CheckInterval time.Duration

	// Logger receives background refresh outcomes. Nil discards them.
	Logger *slog.Logger

	// Now overrides the clock for tests.
	Now func() time.Time
}

// Lifecycle keeps at most one Session fresh. It holds a non-owning reference
// to the current session; ownership stays with the application (usually via
// a Manager). Swapping the current session deterministically stops the
// previous background check before the next one starts, so two checks never
// run concurrently for one Lifecycle.
type Lifecycle struct {
	auth      Refresher
	staleness time.Duration
	interval  time.Duration
	logger    *slog.Logger
	now       func() time.Time

	// mu guards current and the background check handles. The still-current
	// test before applying a background result happens under it, atomically
	// with any swap.
	mu      sync.Mutex
	current *Session
	stopCh  chan struct{}
	doneCh  chan struct{}

	// refreshMu serializes refresh calls so two near-simultaneous callers
	// cannot double-issue a network refresh for the same staleness window.
	refreshMu sync.Mutex
}

// NewLifecycle builds a Lifecycle around the given Refresher.
func NewLifecycle(auth Refresher, cfg LifecycleConfig) *Lifecycle {
	if cfg.StalenessAllowance <= 0 {
		cfg.StalenessAllowance = DefaultStalenessAllowance
	}
	if cfg.CheckInterval <= 0 {
		cfg.CheckInterval = DefaultCheckInterval
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Lifecycle{
		auth:      auth,
		staleness: cfg.StalenessAllowance,
		interval:  cfg.CheckInterval,
		logger:    slogx.Or(cfg.Logger),
		now:       cfg.Now,
	}
}

// Session returns the current session, or nil.
func (l *Lifecycle) Session() *Session {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.current
}

// SetSession swaps the current session. The previous background check is
// fully stopped before a new one starts. Passing nil stops background
// checking entirely.
func (l *Lifecycle) SetSession(s *Session) {
	l.mu.Lock()
	if l.current == s {
		l.mu.Unlock()
		return
	}

	oldStop, oldDone := l.stopCh, l.doneCh
	l.current = s
	l.stopCh, l.doneCh = nil, nil

	var stopCh, doneCh chan struct{}
	if s != nil {
		stopCh = make(chan struct{})
		doneCh = make(chan struct{})
		l.stopCh, l.doneCh = stopCh, doneCh
	}
	l.mu.Unlock()

	// Wait outside the lock: the outgoing loop may be applying a result,
	// which needs mu.
	if oldStop != nil {
		close(oldStop)
		<-oldDone
	}

	if s != nil {
		go l.run(s, stopCh, doneCh)
	}
}

// ShouldRefresh reports whether the session's token is inside the staleness
// window. A session token without an expiry is never due.
func (l *Lifecycle) ShouldRefresh(s *Session) bool {
	if s == nil {
		return false
	}
	exp, ok := s.SessionToken().Expiration()
	if !ok {
		return false
	}
	return !exp.After(l.now().Add(l.staleness))
}

// RefreshIfNeeded refreshes the current session if it is due and applies the
// result in place. It is safe to call from any number of goroutines: dueness
// is re-checked under the refresh lock, and a successful refresh advances
// the expiry so a queued second caller observes "not due" and returns.
// Unlike the background check, failures here propagate to the caller.
func (l *Lifecycle) RefreshIfNeeded(ctx context.Context) error {
	s := l.Session()
	if !l.ShouldRefresh(s) {
		return nil
	}

	l.refreshMu.Lock()
	defer l.refreshMu.Unlock()

	if !l.ShouldRefresh(s) {
		return nil
	}
	return l.refresh(ctx, s, false)
}

// refresh issues the network call and applies the result. With onlyIfCurrent
// set, the result is dropped when s was swapped out mid-flight; the
// still-current check and the update happen atomically under mu.
func (l *Lifecycle) refresh(ctx context.Context, s *Session, onlyIfCurrent bool) error {
	sessionJWT, refreshJWT, err := l.auth.Refresh(ctx, s.RefreshJWT())
	if err != nil {
		return err
	}

	newSession, err := jwtx.Parse(sessionJWT)
	if err != nil {
		return fmt.Errorf("refreshed session token: %w", err)
	}
	var newRefresh *jwtx.Token
	if refreshJWT != "" {
		if newRefresh, err = jwtx.Parse(refreshJWT); err != nil {
			return fmt.Errorf("refreshed refresh token: %w", err)
		}
	}

	if onlyIfCurrent {
		l.mu.Lock()
		defer l.mu.Unlock()
		if l.current != s {
			return nil
		}
	}
	s.Update(newSession, newRefresh)
	return nil
}

// run is the background staleness check. Errors never reach the
// application; a failed refresh is logged and retried on the next tick.
func (l *Lifecycle) run(s *Session, stopCh, doneCh chan struct{}) {
	defer close(doneCh)

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			if !l.ShouldRefresh(s) {
				continue
			}

			l.refreshMu.Lock()
			if l.ShouldRefresh(s) {
				if err := l.refresh(context.Background(), s, true); err != nil {
					l.logger.Debug("background session refresh failed", "error", err)
				}
			}
			l.refreshMu.Unlock()
		}
	}
}
