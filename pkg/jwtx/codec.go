package jwtx

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// DecodePayload extracts the claim map from a compact JWT without verifying
// its signature. Tokens arrive over channels the SDK already trusts (TLS to
// the identity service or a same-origin redirect), so only structure is
// checked here: three dot-separated segments with a base64url JSON object in
// the middle.
func DecodePayload(raw string) (jwt.MapClaims, error) {
	segments := strings.Split(raw, ".")
	if len(segments) != 3 {
		return nil, fmt.Errorf("%w: got %d segments", ErrInvalidFormat, len(segments))
	}

	payload, err := decodeSegment(segments[1])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEncoding, err)
	}

	var claims jwt.MapClaims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidData, err)
	}

	return claims, nil
}

// decodeSegment decodes a base64url segment, accepting both padded and
// unpadded forms since issuers differ on padding.
func decodeSegment(segment string) ([]byte, error) {
	return base64.RawURLEncoding.DecodeString(strings.TrimRight(segment, "="))
}
