package auth

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTokenIsRandom(t *testing.T) {
	a, err := newToken()
	require.NoError(t, err)
	b, err := newToken()
	require.NoError(t, err)
	assert.Len(t, a, 43)
	assert.NotEqual(t, a, b)
}

// Runs against a real server when EDITAL_TEST_REDIS_ADDR is set.
func TestRedisTokenStore(t *testing.T) {
	addr := os.Getenv("EDITAL_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("EDITAL_TEST_REDIS_ADDR not set")
	}
	ctx := context.Background()
	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })
	store := NewRedisTokenStore(client, time.Minute)

	token, err := store.Issue(ctx, Identity{UserID: "u1", Email: "ana@example.com"})
	require.NoError(t, err)
	id, err := store.Resolve(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, Identity{UserID: "u1", Email: "ana@example.com"}, id)

	require.NoError(t, store.Revoke(ctx, token))
	_, err = store.Resolve(ctx, token)
	assert.ErrorIs(t, err, ErrTokenUnknown)
	_, err = store.Resolve(ctx, "")
	assert.ErrorIs(t, err, ErrTokenUnknown)
}
