package directory

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/layer-3/walletauth/core"
)

func newRedisDirectory(t *testing.T) (*RedisDirectory, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisDirectory(client), mr
}

func TestRedisDirectory_UpsertAndFind(t *testing.T) {
	ctx := context.Background()
	d, mr := newRedisDirectory(t)

	_, err := d.FindByAddress(ctx, "0xabc")
	require.ErrorIs(t, err, core.ErrUserNotFound)

	first := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	_, err = d.Upsert(ctx, &core.User{ID: "u1", Address: "0xabc", CreatedAt: first, LastSeen: first})
	require.NoError(t, err)
	assert.True(t, mr.Exists("walletauth:user:0xabc"))

	later := first.Add(time.Hour)
	saved, err := d.Upsert(ctx, &core.User{ID: "u2", Address: "0xabc", CreatedAt: later, LastSeen: later})
	require.NoError(t, err)
	assert.Equal(t, "u1", saved.ID)
	assert.True(t, first.Equal(saved.CreatedAt))

	got, err := d.FindByAddress(ctx, "0xabc")
	require.NoError(t, err)
	assert.Equal(t, "u1", got.ID)
	assert.True(t, later.Equal(got.LastSeen))
}

func TestRedisDirectory_Unavailable(t *testing.T) {
	d, mr := newRedisDirectory(t)
	mr.Close()

	_, err := d.FindByAddress(context.Background(), "0xabc")
	require.Error(t, err)
	assert.NotErrorIs(t, err, core.ErrUserNotFound)
}

func TestRedisDirectory_CorruptRecord(t *testing.T) {
	d, mr := newRedisDirectory(t)
	require.NoError(t, mr.Set("walletauth:user:0xabc", "{not json"))

	_, err := d.FindByAddress(context.Background(), "0xabc")
	require.Error(t, err)
}
