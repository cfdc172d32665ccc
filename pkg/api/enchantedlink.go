package api

import (
	"context"

	"github.com/aussiebroadwan/authkit/pkg/cryptox"
	"github.com/aussiebroadwan/authkit/pkg/idx"
	"github.com/aussiebroadwan/authkit/pkg/session"
)

// EnchantedLinkFlow is the handle for one in-progress cross-device sign-in.
// The caller keeps it, polls with it, and can abandon it by cancelling the
// polling context; there is no ambient "current flow" anywhere in the SDK.
type EnchantedLinkFlow struct {
	// Ref correlates every request of this flow in logs.
	Ref idx.Ref

	// LinkID is shown to the user so they can pick the matching link out of
	// the email on the other device.
	LinkID string

	// PendingRef is the opaque server reference polled for completion.
	PendingRef string

	// MaskedEmail echoes where the link was sent, partially redacted.
	MaskedEmail string

	// verifier stays on this device; only its hash left in the start call.
	verifier string
}

type enchantedLinkStartRequest struct {
	LoginID     string `json:"login_id"`
	RedirectURL string `json:"redirect_url,omitempty"`
	Challenge   string `json:"challenge"`
}

type enchantedLinkStartResponse struct {
	LinkID      string `json:"link_id"`
	PendingRef  string `json:"pending_ref"`
	MaskedEmail string `json:"masked_email"`
}

type enchantedLinkPendingRequest struct {
	PendingRef string `json:"pending_ref"`
	Verifier   string `json:"verifier"`
}

// StartEnchantedLink asks the service to email a sign-in link to loginID and
// returns the flow handle to poll with. The flow is bound to this device by
// a verifier/challenge pair so a completed session can only be collected by
// the initiator.
func (c *Client) StartEnchantedLink(ctx context.Context, loginID, redirectURL string) (*EnchantedLinkFlow, error) {
	verifier, err := cryptox.GenerateVerifier()
	if err != nil {
		return nil, err
	}

	req := enchantedLinkStartRequest{
		LoginID:     loginID,
		RedirectURL: redirectURL,
		Challenge:   cryptox.ChallengeFor(verifier),
	}
	var resp enchantedLinkStartResponse
	if _, err := c.post(ctx, "/v1/auth/enchantedlink/signin", "", req, &resp); err != nil {
		return nil, err
	}

	return &EnchantedLinkFlow{
		Ref:         idx.New(),
		LinkID:      resp.LinkID,
		PendingRef:  resp.PendingRef,
		MaskedEmail: resp.MaskedEmail,
		verifier:    verifier,
	}, nil
}

// CheckEnchantedLink asks once whether the flow has completed. Until the
// link is clicked the service answers "authorization pending", which comes
// back wrapped as session.ErrPending.
func (c *Client) CheckEnchantedLink(ctx context.Context, flow *EnchantedLinkFlow) (*session.Session, error) {
	req := enchantedLinkPendingRequest{
		PendingRef: flow.PendingRef,
		Verifier:   flow.verifier,
	}
	var jr jwtResponse
	resp, err := c.post(ctx, "/v1/auth/enchantedlink/session", "", req, &jr)
	if err != nil {
		return nil, err
	}
	return c.sessionFromResponse(resp, jr)
}

// WaitForEnchantedLink polls the flow until it completes, the poller's
// deadline passes, or ctx is cancelled.
func (c *Client) WaitForEnchantedLink(ctx context.Context, poller *session.Poller, flow *EnchantedLinkFlow) (*session.Session, error) {
	c.logger.Debug("waiting for enchanted link", "flow", flow.Ref, "link_id", flow.LinkID)
	return poller.Wait(ctx, func(ctx context.Context) (*session.Session, error) {
		return c.CheckEnchantedLink(ctx, flow)
	})
}
