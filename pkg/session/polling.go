package session

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/authkit/pkg/slogx"
)

// Default polling parameters for out-of-band completion, e.g. waiting for an
// enchanted link to be clicked on another device.
const (
	DefaultPollInterval = time.Second
	DefaultPollDeadline = 10 * time.Minute
)

// CheckFunc asks the identity service whether an out-of-band flow has
// completed. It returns the completed Session, or an error classified as
// ErrPending (keep waiting), ErrNetwork (transient, keep waiting), or
// anything else (fail immediately).
type CheckFunc func(ctx context.Context) (*Session, error)

// PollerConfig tunes a Poller. Zero fields get defaults.
type PollerConfig struct {
	Interval time.Duration
	Deadline time.Duration
	Logger   *slog.Logger
	Now      func() time.Time
}

// Poller repeatedly invokes a check operation until it yields a session,
// the deadline passes, or the context is cancelled.
type Poller struct {
	interval time.Duration
	deadline time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

// NewPoller builds a Poller.
func NewPoller(cfg PollerConfig) *Poller {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultPollInterval
	}
	if cfg.Deadline <= 0 {
		cfg.Deadline = DefaultPollDeadline
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Poller{
		interval: cfg.Interval,
		deadline: cfg.Deadline,
		logger:   slogx.Or(cfg.Logger),
		now:      cfg.Now,
	}
}

// Wait runs the polling loop. The first check happens immediately, before
// any sleep. Pending outcomes wait one interval and fail with
// ErrPollDeadline once the wall-clock deadline passes. Transient network
// outcomes also wait, but past the deadline the last transport error itself
// is returned so the caller can tell "nobody clicked the link" apart from
// "the network was down". Any other error aborts at once. Cancellation is
// observed at the top of every iteration and during sleeps.
//
// The deadline is wall-clock based: a slow check call cannot stretch the
// effective polling window.
func (p *Poller) Wait(ctx context.Context, check CheckFunc) (*Session, error) {
	deadline := p.now().Add(p.deadline)

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		s, err := check(ctx)
		switch {
		case err == nil:
			return s, nil

		case errors.Is(err, ErrPending):
			if err := p.sleep(ctx); err != nil {
				return nil, err
			}
			if p.now().After(deadline) {
				return nil, ErrPollDeadline
			}

		case errors.Is(err, ErrNetwork):
			p.logger.Debug("transient failure while polling", "error", err)
			if serr := p.sleep(ctx); serr != nil {
				return nil, serr
			}
			if p.now().After(deadline) {
				return nil, err
			}

		default:
			return nil, err
		}
	}
}

func (p *Poller) sleep(ctx context.Context) error {
	timer := time.NewTimer(p.interval)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
