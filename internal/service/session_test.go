package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipeshare/backend/internal/testhelpers"
)

func TestMemorySessionStoreExpires(t *testing.T) {
	store := NewMemorySessionStore()
	now := time.Now()
	store.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, store.Revoke(ctx, "abc", time.Minute))
	revoked, err := store.IsRevoked(ctx, "abc")
	require.NoError(t, err)
	assert.True(t, revoked)

	now = now.Add(2 * time.Minute)
	revoked, err = store.IsRevoked(ctx, "abc")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, store.Revoke(ctx, "expired", -time.Second))
	revoked, _ = store.IsRevoked(ctx, "expired")
	assert.False(t, revoked)
}

func TestRedisSessionStore(t *testing.T) {
	client := testhelpers.SetupRedis(t)
	store := NewRedisSessionStore(client)
	ctx := context.Background()

	revoked, err := store.IsRevoked(ctx, "abc")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, store.Revoke(ctx, "abc", time.Minute))
	revoked, err = store.IsRevoked(ctx, "abc")
	require.NoError(t, err)
	assert.True(t, revoked)

	ttl, err := client.TTL(ctx, "revoked_token:abc").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
}
