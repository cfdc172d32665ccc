package jwtx_test

import (
	"testing"
	"time"

	"github.com/aussiebroadwan/authkit/pkg/jwtx"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Run("round trips raw string", func(t *testing.T) {
		raw := mintToken(t, jwt.MapClaims{"sub": "U1", "iss": "P1"})

		token, err := jwtx.Parse(raw)
		require.NoError(t, err)
		require.Equal(t, raw, token.Raw())
		require.Equal(t, "U1", token.Subject())
		require.Equal(t, "P1", token.Issuer())
	})

	t.Run("missing subject", func(t *testing.T) {
		_, err := jwtx.Parse(mintToken(t, jwt.MapClaims{"iss": "P1"}))
		require.ErrorIs(t, err, jwtx.ErrMissingClaim)
	})

	t.Run("non-string subject", func(t *testing.T) {
		_, err := jwtx.Parse(mintToken(t, jwt.MapClaims{"sub": 42, "iss": "P1"}))
		require.ErrorIs(t, err, jwtx.ErrInvalidClaim)
	})

	t.Run("missing issuer", func(t *testing.T) {
		_, err := jwtx.Parse(mintToken(t, jwt.MapClaims{"sub": "U1"}))
		require.ErrorIs(t, err, jwtx.ErrMissingClaim)
	})

	t.Run("malformed expiration is fatal", func(t *testing.T) {
		_, err := jwtx.Parse(mintToken(t, jwt.MapClaims{"sub": "U1", "iss": "P1", "exp": "soon"}))
		require.ErrorIs(t, err, jwtx.ErrInvalidClaim)
	})

	t.Run("malformed issued-at is tolerated", func(t *testing.T) {
		token, err := jwtx.Parse(mintToken(t, jwt.MapClaims{"sub": "U1", "iss": "P1", "iat": "yesterday"}))
		require.NoError(t, err)

		_, ok := token.IssuedAt()
		require.False(t, ok)
	})
}

func TestTokenExpiration(t *testing.T) {
	t.Run("past expiry", func(t *testing.T) {
		exp := time.Now().Add(-time.Minute)
		token, err := jwtx.Parse(mintToken(t, jwt.MapClaims{
			"sub": "U1", "iss": "P1", "exp": exp.Unix(),
		}))
		require.NoError(t, err)
		require.True(t, token.IsExpired())

		got, ok := token.Expiration()
		require.True(t, ok)
		require.WithinDuration(t, exp, got, time.Second)
	})

	t.Run("future expiry", func(t *testing.T) {
		token, err := jwtx.Parse(mintToken(t, jwt.MapClaims{
			"sub": "U1", "iss": "P1", "exp": time.Now().Add(time.Hour).Unix(),
		}))
		require.NoError(t, err)
		require.False(t, token.IsExpired())
	})

	t.Run("no expiry never expires", func(t *testing.T) {
		token, err := jwtx.Parse(mintToken(t, jwt.MapClaims{"sub": "U1", "iss": "P1"}))
		require.NoError(t, err)
		require.False(t, token.IsExpired())

		_, ok := token.Expiration()
		require.False(t, ok)
	})
}

func TestTokenProjectID(t *testing.T) {
	t.Run("issuer with path", func(t *testing.T) {
		token, err := jwtx.Parse(mintToken(t, jwt.MapClaims{
			"sub": "U1", "iss": "https://auth.example.com/v1/P123",
		}))
		require.NoError(t, err)
		require.Equal(t, "P123", token.ProjectID())
	})

	t.Run("bare issuer", func(t *testing.T) {
		token, err := jwtx.Parse(mintToken(t, jwt.MapClaims{"sub": "U1", "iss": "P123"}))
		require.NoError(t, err)
		require.Equal(t, "P123", token.ProjectID())
	})
}

func TestTokenCustomClaims(t *testing.T) {
	token, err := jwtx.Parse(mintToken(t, jwt.MapClaims{
		"sub":         "U1",
		"iss":         "P1",
		"exp":         time.Now().Add(time.Hour).Unix(),
		"permissions": []string{"admin"},
		"tenants":     map[string]any{},
		"plan":        "pro",
		"beta":        true,
	}))
	require.NoError(t, err)

	custom := token.CustomClaims()
	require.Equal(t, map[string]any{"plan": "pro", "beta": true}, custom)
}

func TestTokenAuthorization(t *testing.T) {
	token, err := jwtx.Parse(mintToken(t, jwt.MapClaims{
		"sub":         "U1",
		"iss":         "P1",
		"permissions": []string{"read", "write"},
		"roles":       []string{"editor"},
		"tenants": map[string]any{
			"acme": map[string]any{
				"permissions": []string{"billing"},
				"roles":       []string{"owner"},
			},
			"broken": "not an object",
		},
	}))
	require.NoError(t, err)

	t.Run("top level", func(t *testing.T) {
		require.Equal(t, []string{"read", "write"}, token.Permissions(""))
		require.Equal(t, []string{"editor"}, token.Roles(""))
	})

	t.Run("tenant scoped", func(t *testing.T) {
		require.Equal(t, []string{"billing"}, token.Permissions("acme"))
		require.Equal(t, []string{"owner"}, token.Roles("acme"))
	})

	t.Run("tenant never falls back to top level", func(t *testing.T) {
		require.Empty(t, token.Permissions("unknown"))
		require.Empty(t, token.Roles("unknown"))
	})

	t.Run("malformed tenant entry", func(t *testing.T) {
		require.Empty(t, token.Permissions("broken"))
	})

	t.Run("token without any authorization claims", func(t *testing.T) {
		bare, err := jwtx.Parse(mintToken(t, jwt.MapClaims{"sub": "U1", "iss": "P1"}))
		require.NoError(t, err)
		require.Empty(t, bare.Permissions(""))
		require.Empty(t, bare.Permissions("acme"))
		require.Empty(t, bare.Roles(""))
	})
}
