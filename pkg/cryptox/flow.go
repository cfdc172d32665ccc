// Package cryptox holds the small crypto surface the SDK needs: random
// verifier/challenge pairs for redirect flows and authenticated encryption
// for session records at rest. No token signature work happens here.
package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
)

// VerifierSize is the entropy of a flow verifier in bytes (256 bits, 43
// chars base64url).
const VerifierSize = 32

// GenerateVerifier creates the random secret a redirect flow keeps on the
// initiating device. It is returned base64url encoded without padding.
func GenerateVerifier() (string, error) {
	buf := make([]byte, VerifierSize)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate flow verifier: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// ChallengeFor derives the challenge sent to the identity service when the
// flow starts: base64url(SHA-256(verifier)). The service echoes it back so
// the completing device can be tied to the initiating one.
func ChallengeFor(verifier string) string {
	sum := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
