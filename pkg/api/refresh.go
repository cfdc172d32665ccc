package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/aussiebroadwan/authkit/pkg/jwtx"
	"github.com/aussiebroadwan/authkit/pkg/session"
)

// RefreshCookieName is the cookie under which hosted sign-in pages deliver
// refresh tokens. A browser redirect chain can legitimately set it more than
// once, which is why responses go through jwtx.SelectRefreshToken.
const RefreshCookieName = "AKR"

// jwtResponse is the token payload every authentication endpoint returns.
// The refresh JWT may be absent from the body when the service delivers it
// via cookie instead, and absent entirely on a refresh ("keep the old one").
type jwtResponse struct {
	SessionJWT string       `json:"session_jwt"`
	RefreshJWT string       `json:"refresh_jwt,omitempty"`
	User       session.User `json:"user"`
}

// Refresh exchanges a refresh token for a new session token. It implements
// session.Refresher; an empty returned refresh JWT means the service rotated
// nothing and the current one stays in use.
func (c *Client) Refresh(ctx context.Context, refreshJWT string) (string, string, error) {
	var jr jwtResponse
	if _, err := c.post(ctx, "/v1/auth/refresh", refreshJWT, struct{}{}, &jr); err != nil {
		return "", "", err
	}
	return jr.SessionJWT, jr.RefreshJWT, nil
}

// sessionFromResponse assembles a Session out of a completed flow response.
// When the body carries no refresh JWT it falls back to the response's
// refresh cookies, selecting the best candidate for this client's project.
func (c *Client) sessionFromResponse(resp *http.Response, jr jwtResponse) (*session.Session, error) {
	refreshJWT := jr.RefreshJWT
	if refreshJWT == "" {
		var candidates []string
		for _, cookie := range resp.Cookies() {
			if cookie.Name == RefreshCookieName && cookie.Value != "" {
				candidates = append(candidates, cookie.Value)
			}
		}

		token, err := jwtx.SelectRefreshToken(candidates, c.projectID, time.Now())
		if err != nil {
			return nil, fmt.Errorf("refresh token cookies: %w", err)
		}
		refreshJWT = token.Raw()
	}

	return session.New(jr.SessionJWT, refreshJWT, jr.User)
}
