package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/aussiebroadwan/authkit/pkg/session"
)

// Error codes returned by the identity service.
const (
	// ErrorCodePending means the out-of-band step has not been completed
	// yet. It is the expected steady state while polling.
	ErrorCodePending = "authorization_pending"

	ErrorCodeInvalidGrant  = "invalid_grant"
	ErrorCodeInvalidToken  = "invalid_token"
	ErrorCodeFlowExpired   = "flow_expired"
	ErrorCodeInvalidMethod = "invalid_request"
	ErrorCodeServerError   = "server_error"
)

// Error is a structured failure response from the identity service.
type Error struct {
	// StatusCode is the HTTP status the service answered with.
	StatusCode int `json:"-"`

	// Code is the machine-readable error code (e.g. "invalid_grant").
	Code string `json:"error"`

	// Description is a human-readable description of the error.
	Description string `json:"error_description"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("api: %s: %s", e.Code, e.Description)
}

// parseErrorResponse turns a non-2xx response into a classified error.
//
// The classification feeds the polling loop: "authorization pending" maps to
// session.ErrPending so the poller keeps waiting, and 5xx responses map to
// session.ErrNetwork so a gateway blip does not abort a multi-minute wait.
// Everything else is a fatal *Error.
func parseErrorResponse(resp *http.Response, body []byte) error {
	apiErr := &Error{
		StatusCode:  resp.StatusCode,
		Code:        ErrorCodeServerError,
		Description: fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
	}
	if parsed := (Error{}); json.Unmarshal(body, &parsed) == nil && parsed.Code != "" {
		apiErr.Code = parsed.Code
		apiErr.Description = parsed.Description
	}

	switch {
	case apiErr.Code == ErrorCodePending:
		return fmt.Errorf("%w: %s", session.ErrPending, apiErr.Description)
	case resp.StatusCode >= http.StatusInternalServerError:
		return fmt.Errorf("%w: %v", session.ErrNetwork, apiErr)
	default:
		return apiErr
	}
}
