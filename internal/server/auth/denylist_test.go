package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryDenylist(t *testing.T) {
	ctx := context.Background()
	now := t0
	d := NewMemoryDenylist()
	d.now = func() time.Time { return now }

	require.NoError(t, d.Revoke(ctx, "jti-1", t0.Add(time.Hour)))
	revoked, err := d.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, _ = d.IsRevoked(ctx, "jti-2")
	assert.False(t, revoked)

	// already expired tokens are not stored
	require.NoError(t, d.Revoke(ctx, "jti-old", t0.Add(-time.Second)))
	assert.Equal(t, 1, d.Len())

	now = t0.Add(2 * time.Hour)
	revoked, _ = d.IsRevoked(ctx, "jti-1")
	assert.False(t, revoked)

	// next write prunes the stale entry
	require.NoError(t, d.Revoke(ctx, "jti-3", now.Add(time.Hour)))
	assert.Equal(t, 1, d.Len())
}

func TestMemoryDenylist_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := NewMemoryDenylist()
	assert.ErrorIs(t, d.Revoke(ctx, "x", time.Now().Add(time.Hour)), context.Canceled)
	_, err := d.IsRevoked(ctx, "x")
	assert.ErrorIs(t, err, context.Canceled)
}

func newRedisDenylist(t *testing.T) (*RedisDenylist, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	d := NewRedisDenylist(client)
	d.now = fixedClock(t0)
	return d, mr
}

func TestRedisDenylist(t *testing.T) {
	ctx := context.Background()
	d, mr := newRedisDenylist(t)

	require.NoError(t, d.Revoke(ctx, "jti-1", t0.Add(30*time.Minute)))
	assert.Equal(t, 30*time.Minute, mr.TTL(redisKeyPrefix+"jti-1"))

	revoked, err := d.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = d.IsRevoked(ctx, "jti-2")
	require.NoError(t, err)
	assert.False(t, revoked)

	mr.FastForward(31 * time.Minute)
	revoked, err = d.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestRedisDenylist_SkipsExpired(t *testing.T) {
	d, mr := newRedisDenylist(t)

	require.NoError(t, d.Revoke(context.Background(), "jti-old", t0.Add(-time.Minute)))
	assert.False(t, mr.Exists(redisKeyPrefix+"jti-old"))
}

func TestRedisDenylist_ServerDown(t *testing.T) {
	d, mr := newRedisDenylist(t)
	mr.Close()

	_, err := d.IsRevoked(context.Background(), "jti-1")
	assert.Error(t, err)
	assert.Error(t, d.Revoke(context.Background(), "jti-1", t0.Add(time.Hour)))
}

func TestNewRedisDenylistFromURL(t *testing.T) {
	mr := miniredis.RunT(t)

	d, client, err := NewRedisDenylistFromURL("redis://" + mr.Addr() + "/0")
	require.NoError(t, err)
	defer client.Close()

	require.NoError(t, d.Revoke(context.Background(), "jti", time.Now().Add(time.Minute)))
	assert.True(t, mr.Exists(redisKeyPrefix+"jti"))

	_, _, err = NewRedisDenylistFromURL("://bad")
	assert.Error(t, err)
}
