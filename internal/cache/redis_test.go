package cache

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mini, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mini.Close)

	client := redis.NewClient(&redis.Options{Addr: mini.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client), mini
}

func TestRedisStoreRoundTripAndExpiry(t *testing.T) {
	store, mini := newRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "participants_4", cachedEvent{ID: 4, Title: "Dela Cruz"}, 60*time.Second))
	require.Equal(t, 60*time.Second, mini.TTL("participants_4"))

	var got cachedEvent
	hit, err := store.Get(ctx, "participants_4", &got)
	require.NoError(t, err)
	require.True(t, hit)
	require.Equal(t, uint(4), got.ID)

	mini.FastForward(61 * time.Second)
	hit, err = store.Get(ctx, "participants_4", &got)
	require.NoError(t, err)
	require.False(t, hit)
}

func TestRedisStoreDeleteAndMiss(t *testing.T) {
	store, mini := newRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "events_1", cachedEvent{ID: 1}, time.Minute))
	require.NoError(t, store.Delete(ctx, "events_1", "events_latest"))
	require.False(t, mini.Exists("events_1"))

	var got cachedEvent
	hit, err := store.Get(ctx, "events_1", &got)
	require.NoError(t, err)
	require.False(t, hit)
}

func TestRedisStoreSurfacesConnectionErrors(t *testing.T) {
	store, mini := newRedisStore(t)
	mini.Close()

	var got cachedEvent
	_, err := store.Get(context.Background(), "events_1", &got)
	require.Error(t, err)
}
