package memory_test

import (
	"context"
	"testing"

	"github.com/aussiebroadwan/authkit/pkg/session"
	"github.com/aussiebroadwan/authkit/pkg/store/memory"
	"github.com/stretchr/testify/require"
)

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()

	loaded, err := s.Load(ctx)
	require.NoError(t, err)
	require.Nil(t, loaded)

	rec := session.Record{
		SessionJWT: "a.b.c",
		RefreshJWT: "d.e.f",
		User:       session.User{UserID: "U1", Email: "t@example.com"},
	}
	require.NoError(t, s.Save(ctx, rec))

	loaded, err = s.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, rec, *loaded)

	require.NoError(t, s.Remove(ctx))
	loaded, err = s.Load(ctx)
	require.NoError(t, err)
	require.Nil(t, loaded)
}
