package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aussiebroadwan/authkit/pkg/idx"
	"github.com/aussiebroadwan/authkit/pkg/session"
	"github.com/aussiebroadwan/authkit/pkg/slogx"
	"golang.org/x/time/rate"
)

// DefaultTimeout bounds every identity-service call. Polling waits happen in
// the session package, never inside a single request.
const DefaultTimeout = 10 * time.Second

// RateLimit caps the client's outbound request rate. The default keeps a
// misbehaving retry loop from hammering the identity service.
type RateLimit struct {
	RequestsPerWindow int
	Window            time.Duration
	Burst             int
}

// DefaultRateLimit allows 60 requests per minute with a burst of 10, enough
// for a 1s polling cadence with headroom for foreground calls.
var DefaultRateLimit = RateLimit{
	RequestsPerWindow: 60,
	Window:            time.Minute,
	Burst:             10,
}

// Config configures a Client. Zero fields get defaults; ProjectID is
// required.
type Config struct {
	// ProjectID scopes every call to one tenant project and is the issuer
	// the SDK expects on returned tokens.
	ProjectID string

	// BaseURL is the identity service origin.
	BaseURL string

	// HTTPClient overrides the default bounded-timeout client.
	HTTPClient *http.Client

	// RateLimit overrides DefaultRateLimit.
	RateLimit RateLimit

	// Logger receives request-level debug logs. Nil discards them.
	Logger *slog.Logger
}

// Client talks to the remote identity service. It implements
// session.Refresher and provides the check operations the polling loop
// drives. All failures come back classified for the poller: transport
// errors wrap session.ErrNetwork, "authorization pending" responses wrap
// session.ErrPending, everything else is a fatal *Error.
type Client struct {
	projectID  string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewClient builds a Client for the given project.
func NewClient(cfg Config) (*Client, error) {
	if cfg.ProjectID == "" {
		return nil, errors.New("api: project id is required")
	}
	if cfg.BaseURL == "" {
		return nil, errors.New("api: base url is required")
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: DefaultTimeout}
	}

	rl := cfg.RateLimit
	if rl.RequestsPerWindow <= 0 || rl.Window <= 0 {
		rl = DefaultRateLimit
	}
	if rl.Burst <= 0 {
		rl.Burst = rl.RequestsPerWindow
	}
	every := rl.Window / time.Duration(rl.RequestsPerWindow)

	return &Client{
		projectID:  cfg.ProjectID,
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		httpClient: cfg.HTTPClient,
		limiter:    rate.NewLimiter(rate.Every(every), rl.Burst),
		logger:     slogx.Or(cfg.Logger),
	}, nil
}

// ProjectID returns the project this client is scoped to.
func (c *Client) ProjectID() string { return c.projectID }

// post sends a JSON request and decodes the 2xx response body into out. The
// bearer credential is "{projectID}" alone or "{projectID}:{jwt}" when a
// token accompanies the call. It returns the response so callers can read
// cookies set by the service.
func (c *Client) post(ctx context.Context, path string, bearer string, body, out any) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	requestID := idx.New()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", requestID.String())
	credential := c.projectID
	if bearer != "" {
		credential += ":" + bearer
	}
	req.Header.Set("Authorization", "Bearer "+credential)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.logger.Debug("request failed", "path", path, "request_id", requestID, "error", err)
		return nil, fmt.Errorf("%w: %v", session.ErrNetwork, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", session.ErrNetwork, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Debug("request rejected",
			"path", path, "request_id", requestID, "status", resp.StatusCode)
		return nil, parseErrorResponse(resp, respBody)
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return nil, fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return resp, nil
}
