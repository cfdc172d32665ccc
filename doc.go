/*
Package authkit is a client SDK for a hosted identity service. It decodes and
models the service's session and refresh JWTs, keeps the current session fresh
in the background, persists it across restarts, and drives out-of-band sign-in
flows such as enchanted links.

# Client

Client is the front door. It wires the API transport, the session manager,
and the sign-in poller together:

	kit, err := authkit.New(ctx, authkit.Config{
		ProjectID: "P2abc123",
		BaseURL:   "https://auth.example.com",
		Storage:   fileStore,
	})

A persisted session is adopted at construction, so a restarted application
comes back signed in when the stored tokens still decode.

# Sign-in

Enchanted link sign-in is a two-step wait. Start the flow, show the user the
masked email, then block until they click the link:

	flow, err := kit.SignInEnchantedLink(ctx, "user@example.com", redirectURL)
	if err != nil {
		return err
	}
	s, err := kit.WaitForEnchantedLink(ctx, flow)

WaitForEnchantedLink polls the service and classifies failures: pending checks
keep waiting, transient network errors are retried until the deadline, and
anything else fails immediately.

# Sessions

The current session refreshes itself in the background while it is set.
Callers that need the raw token ask for it on demand:

	jwt, err := kit.SessionJWT(ctx)

which refreshes first when the token is within the staleness allowance of
expiry. Lower level pieces live in pkg/session, pkg/jwtx, pkg/api and the
pkg/store backends for callers that want to compose them differently.
*/
package authkit
