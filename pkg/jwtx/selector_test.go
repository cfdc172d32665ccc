package jwtx_test

import (
	"testing"
	"time"

	"github.com/aussiebroadwan/authkit/pkg/jwtx"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func mintCandidate(t *testing.T, issuer string, expiresAt, issuedAt time.Time) string {
	t.Helper()

	claims := jwt.MapClaims{"sub": "U1", "iss": issuer}
	if !expiresAt.IsZero() {
		claims["exp"] = expiresAt.Unix()
	}
	if !issuedAt.IsZero() {
		claims["iat"] = issuedAt.Unix()
	}
	return mintToken(t, claims)
}

func TestSelectRefreshToken(t *testing.T) {
	now := time.Now()

	expired := mintCandidate(t, "A", now.Add(-time.Hour), now.Add(-2*time.Hour))
	older := mintCandidate(t, "A", now.Add(time.Hour), now.Add(-20*time.Minute))
	newer := mintCandidate(t, "A", now.Add(time.Hour), now.Add(-10*time.Minute))

	t.Run("prefers valid then newest for every order", func(t *testing.T) {
		permutations := [][]string{
			{expired, older, newer},
			{expired, newer, older},
			{older, expired, newer},
			{older, newer, expired},
			{newer, expired, older},
			{newer, older, expired},
		}
		for _, candidates := range permutations {
			token, err := jwtx.SelectRefreshToken(candidates, "A", now)
			require.NoError(t, err)
			require.Equal(t, newer, token.Raw())
		}
	})

	t.Run("falls back to expired candidate when nothing is valid", func(t *testing.T) {
		token, err := jwtx.SelectRefreshToken([]string{expired}, "A", now)
		require.NoError(t, err)
		require.Equal(t, expired, token.Raw())
	})

	t.Run("undecodable candidates are skipped", func(t *testing.T) {
		token, err := jwtx.SelectRefreshToken([]string{"garbage", older}, "A", now)
		require.NoError(t, err)
		require.Equal(t, older, token.Raw())
	})

	t.Run("no decodable candidates", func(t *testing.T) {
		_, err := jwtx.SelectRefreshToken([]string{"garbage", "also.not.a-token"}, "A", now)
		require.ErrorIs(t, err, jwtx.ErrNoCandidates)
	})

	t.Run("issuer mismatch", func(t *testing.T) {
		other := mintCandidate(t, "https://auth.example.com/B", now.Add(time.Hour), now)
		_, err := jwtx.SelectRefreshToken([]string{other}, "A", now)
		require.ErrorIs(t, err, jwtx.ErrIssuerMismatch)
	})

	t.Run("wrong issuer ranked first still rejected", func(t *testing.T) {
		fresher := mintCandidate(t, "B", now.Add(time.Hour), now)
		token, err := jwtx.SelectRefreshToken([]string{fresher, older}, "A", now)
		require.NoError(t, err)
		require.Equal(t, older, token.Raw())
	})

	t.Run("missing issued-at ranks after dated candidates", func(t *testing.T) {
		undated := mintCandidate(t, "A", now.Add(time.Hour), time.Time{})
		token, err := jwtx.SelectRefreshToken([]string{undated, older}, "A", now)
		require.NoError(t, err)
		require.Equal(t, older, token.Raw())
	})
}
