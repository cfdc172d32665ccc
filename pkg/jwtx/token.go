package jwtx

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Reserved claim names. Everything else in the payload is surfaced through
// CustomClaims.
var reservedClaims = map[string]struct{}{
	"aud":         {},
	"sub":         {},
	"iss":         {},
	"iat":         {},
	"exp":         {},
	"tenants":     {},
	"permissions": {},
	"roles":       {},
}

// Token is an immutable view over a decoded compact JWT. It keeps the raw
// string for transport re-use and exposes typed accessors over the claim map.
// Construct it with Parse; the zero value is not usable.
type Token struct {
	raw       string
	claims    jwt.MapClaims
	subject   string
	issuer    string
	expiresAt time.Time // zero when the token never expires
	issuedAt  time.Time // zero when absent
}

// Parse decodes raw into a Token. The subject and issuer claims are
// mandatory; expiration is optional but must be well-typed when present.
// A missing or unparseable issued-at claim is treated as absent.
func Parse(raw string) (*Token, error) {
	claims, err := DecodePayload(raw)
	if err != nil {
		return nil, err
	}

	subject, err := claims.GetSubject()
	if err != nil {
		return nil, fmt.Errorf("%w: sub", ErrInvalidClaim)
	}
	if subject == "" {
		return nil, fmt.Errorf("%w: sub", ErrMissingClaim)
	}

	issuer, err := claims.GetIssuer()
	if err != nil {
		return nil, fmt.Errorf("%w: iss", ErrInvalidClaim)
	}
	if issuer == "" {
		return nil, fmt.Errorf("%w: iss", ErrMissingClaim)
	}

	token := &Token{
		raw:     raw,
		claims:  claims,
		subject: subject,
		issuer:  issuer,
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return nil, fmt.Errorf("%w: exp", ErrInvalidClaim)
	}
	if exp != nil {
		token.expiresAt = exp.Time
	}

	// Issued-at is only used for tie-breaking during selection, so a bad
	// value degrades to "absent" rather than failing the decode.
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		token.issuedAt = iat.Time
	}

	return token, nil
}

// Raw returns the original compact token string.
func (t *Token) Raw() string { return t.raw }

// Subject returns the authenticated subject id.
func (t *Token) Subject() string { return t.subject }

// Issuer returns the issuer claim verbatim.
func (t *Token) Issuer() string { return t.issuer }

// ProjectID returns the effective project id: the trailing path segment of
// the issuer claim, or the whole claim when it carries no path.
func (t *Token) ProjectID() string {
	if i := strings.LastIndexByte(t.issuer, '/'); i >= 0 {
		return t.issuer[i+1:]
	}
	return t.issuer
}

// Expiration returns the expiry time and whether the token has one.
func (t *Token) Expiration() (time.Time, bool) {
	return t.expiresAt, !t.expiresAt.IsZero()
}

// IssuedAt returns the issued-at time and whether the token carries one.
func (t *Token) IssuedAt() (time.Time, bool) {
	return t.issuedAt, !t.issuedAt.IsZero()
}

// IsExpired reports whether the token's expiry has passed. Tokens without an
// expiration claim never expire.
func (t *Token) IsExpired() bool {
	return t.expiredAt(time.Now())
}

func (t *Token) expiredAt(now time.Time) bool {
	return !t.expiresAt.IsZero() && !t.expiresAt.After(now)
}

// CustomClaims returns a copy of the non-reserved claims.
func (t *Token) CustomClaims() map[string]any {
	custom := make(map[string]any)
	for name, value := range t.claims {
		if _, reserved := reservedClaims[name]; !reserved {
			custom[name] = value
		}
	}
	return custom
}

// Permissions returns the permissions granted by this token. With an empty
// tenant it reads the top level claim; otherwise it reads only the named
// tenant's entry. Authorization queries never fail: a missing or malformed
// claim yields an empty slice.
func (t *Token) Permissions(tenant string) []string {
	items, _ := t.authorizationItems("permissions", tenant)
	return items
}

// Roles returns the roles granted by this token, scoped like Permissions.
func (t *Token) Roles(tenant string) []string {
	items, _ := t.authorizationItems("roles", tenant)
	return items
}

func (t *Token) authorizationItems(claim, tenant string) ([]string, error) {
	source := map[string]any(t.claims)

	if tenant != "" {
		tenants, ok := t.claims["tenants"].(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingTenant, tenant)
		}
		entry, ok := tenants[tenant]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingTenant, tenant)
		}
		source, ok = entry.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrInvalidTenant, tenant)
		}
	}

	values, ok := source[claim].([]any)
	if !ok {
		return nil, nil
	}

	items := make([]string, 0, len(values))
	for _, value := range values {
		if s, ok := value.(string); ok {
			items = append(items, s)
		}
	}
	return items, nil
}
