package session

import "errors"

var (
	// ErrPending is the expected steady state of an out-of-band flow: the
	// user has not completed the link on the other device yet. Check
	// operations wrap it so the poller keeps waiting instead of failing.
	ErrPending = errors.New("session: authentication still pending")

	// ErrNetwork marks a transient transport failure. The poller swallows
	// it until the deadline rather than aborting a multi-minute wait over a
	// single blip.
	ErrNetwork = errors.New("session: transient network failure")

	// ErrPollDeadline is returned when the polling window elapses while the
	// flow is still pending.
	ErrPollDeadline = errors.New("session: polling deadline exceeded")
)
