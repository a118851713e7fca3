package caching

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) CacheService {
	t.Helper()
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	c := NewRedisCacheService(addr, "", 0, logger)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestTokenKey(t *testing.T) {
	assert.Equal(t, "rentpolicy:token:abc", tokenKey("abc"))
}

func TestRedisCacheService_TokenRoundTrip(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()
	token := uuid.NewString()

	miss, err := c.GetToken(ctx, token)
	require.NoError(t, err)
	assert.Nil(t, miss)

	entry := &TokenEntry{ActorID: uuid.New(), ExpiresAt: time.Now().Add(time.Hour).UTC().Truncate(time.Second)}
	require.NoError(t, c.SetToken(ctx, token, entry, time.Minute))

	got, err := c.GetToken(ctx, token)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, entry.ActorID, got.ActorID)
	assert.True(t, entry.ExpiresAt.Equal(got.ExpiresAt))

	require.NoError(t, c.DeleteToken(ctx, token))
	got, err = c.GetToken(ctx, token)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisCacheService_IsRateLimited(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()
	key := "test:" + uuid.NewString()

	for i := 0; i < 3; i++ {
		limited, err := c.IsRateLimited(ctx, key, 3, time.Minute)
		require.NoError(t, err)
		assert.False(t, limited, "request %d", i+1)
	}
	limited, err := c.IsRateLimited(ctx, key, 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, limited)
}
