package authkit

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/authkit/pkg/api"
	"github.com/aussiebroadwan/authkit/pkg/session"
	"github.com/aussiebroadwan/authkit/pkg/slogx"
	"github.com/aussiebroadwan/authkit/pkg/store/memory"
)

// Config configures a Client. ProjectID and BaseURL are required; everything
// else falls back to sensible defaults.
type Config struct {
	// ProjectID scopes the client to one identity project.
	ProjectID string

	// BaseURL is the identity service origin.
	BaseURL string

	// Storage persists the current session across restarts. Nil keeps the
	// session in memory only.
	Storage session.Storage

	// HTTPClient overrides the default bounded-timeout client.
	HTTPClient *http.Client

	// StalenessAllowance is how long before expiry a session token counts as
	// stale. Zero uses session.DefaultStalenessAllowance.
	StalenessAllowance time.Duration

	// CheckInterval is the background refresh check cadence. Zero uses
	// session.DefaultCheckInterval.
	CheckInterval time.Duration

	// PollInterval and PollDeadline bound out-of-band sign-in waits. Zero
	// uses the session package defaults.
	PollInterval time.Duration
	PollDeadline time.Duration

	// Logger receives debug and warning logs. Nil discards them.
	Logger *slog.Logger
}

// Client is the front door of the SDK. It bundles the identity service API
// client, the session manager that persists and auto-refreshes the current
// session, and the poller that drives out-of-band sign-in flows.
type Client struct {
	api      *api.Client
	sessions *session.Manager
	poller   *session.Poller
}

// New builds a Client and adopts any persisted session from cfg.Storage. The
// context bounds the initial storage load only.
func New(ctx context.Context, cfg Config) (*Client, error) {
	apiClient, err := api.NewClient(api.Config{
		ProjectID:  cfg.ProjectID,
		BaseURL:    cfg.BaseURL,
		HTTPClient: cfg.HTTPClient,
		Logger:     cfg.Logger,
	})
	if err != nil {
		return nil, err
	}

	storage := cfg.Storage
	if storage == nil {
		storage = memory.NewStore()
	}

	logger := slogx.Or(cfg.Logger)
	lifecycle := session.NewLifecycle(apiClient, session.LifecycleConfig{
		StalenessAllowance: cfg.StalenessAllowance,
		CheckInterval:      cfg.CheckInterval,
		Logger:             logger,
	})

	return &Client{
		api:      apiClient,
		sessions: session.NewManager(ctx, lifecycle, storage, logger),
		poller: session.NewPoller(session.PollerConfig{
			Interval: cfg.PollInterval,
			Deadline: cfg.PollDeadline,
			Logger:   logger,
		}),
	}, nil
}

// API exposes the underlying identity service client for direct calls.
func (c *Client) API() *api.Client { return c.api }

// Session returns the current session, or nil when signed out.
func (c *Client) Session() *session.Session {
	return c.sessions.Session()
}

// SetSessionTokens installs a session from raw JWTs obtained elsewhere, for
// example from a server-side exchange.
func (c *Client) SetSessionTokens(ctx context.Context, sessionJWT, refreshJWT string, user session.User) error {
	s, err := session.New(sessionJWT, refreshJWT, user)
	if err != nil {
		return err
	}
	c.sessions.SetSession(ctx, s)
	return nil
}

// RefreshIfNeeded refreshes the current session in place when it is stale.
func (c *Client) RefreshIfNeeded(ctx context.Context) error {
	return c.sessions.RefreshIfNeeded(ctx)
}

// SignOut drops the current session and removes it from storage.
func (c *Client) SignOut(ctx context.Context) {
	c.sessions.ClearSession(ctx)
}

// SignInEnchantedLink starts an enchanted link flow for loginID, emailing the
// user a link that continues at redirectURL. The returned flow carries the
// masked email for display and the pending reference to wait on.
func (c *Client) SignInEnchantedLink(ctx context.Context, loginID, redirectURL string) (*api.EnchantedLinkFlow, error) {
	return c.api.StartEnchantedLink(ctx, loginID, redirectURL)
}

// WaitForEnchantedLink polls until the user clicks the link, then installs
// the resulting session and returns it. It returns session.ErrPollDeadline
// when the user never completes the flow in time.
func (c *Client) WaitForEnchantedLink(ctx context.Context, flow *api.EnchantedLinkFlow) (*session.Session, error) {
	s, err := c.api.WaitForEnchantedLink(ctx, c.poller, flow)
	if err != nil {
		return nil, err
	}
	c.sessions.SetSession(ctx, s)
	return s, nil
}

// ErrSignedOut reports an operation that needs a session when none is set.
var ErrSignedOut = errors.New("authkit: no active session")

// SessionJWT returns the current session token for use as a bearer
// credential, refreshing it first when stale.
func (c *Client) SessionJWT(ctx context.Context) (string, error) {
	if err := c.sessions.RefreshIfNeeded(ctx); err != nil {
		return "", err
	}
	s := c.sessions.Session()
	if s == nil {
		return "", ErrSignedOut
	}
	return s.SessionJWT(), nil
}
