package jwtx

import "errors"

var (
	// Decode errors. Each maps to a distinct failure stage so callers can
	// tell a truncated token apart from a corrupted payload.
	ErrInvalidFormat   = errors.New("jwtx: token is not a three segment compact JWT")
	ErrInvalidEncoding = errors.New("jwtx: payload segment is not valid base64url")
	ErrInvalidData     = errors.New("jwtx: payload is not a JSON object")

	// Claim errors. Wrapped with the claim name via %w.
	ErrMissingClaim = errors.New("jwtx: missing required claim")
	ErrInvalidClaim = errors.New("jwtx: invalid claim")

	// Tenant lookup errors. These never escape the authorization accessors,
	// which reduce them to an empty result.
	ErrMissingTenant = errors.New("jwtx: tenant not present in token")
	ErrInvalidTenant = errors.New("jwtx: malformed tenant entry")

	// Selection errors.
	ErrNoCandidates   = errors.New("jwtx: no candidate token decoded successfully")
	ErrIssuerMismatch = errors.New("jwtx: no candidate token matches the expected project")
)
