package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oggyb/ridemate/internal/cache"
	"github.com/oggyb/ridemate/internal/config"
)

func newCache(t *testing.T) (*cache.RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	cfg := &config.Config{}
	cfg.Redis.Addr = mr.Addr()
	c := cache.NewRedisCache(cfg)
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

type roomRow struct {
	ID    string `json:"id"`
	Count int    `json:"count"`
}

func TestJSONRoundTripAndTTL(t *testing.T) {
	ctx := context.Background()
	c, mr := newCache(t)

	key := c.KeyForRoomList("A", "B", "2024-06-01")
	assert.Equal(t, "rooms:list:A:B:2024-06-01", key)

	var got []roomRow
	hit, err := c.GetJSON(ctx, key, &got)
	require.NoError(t, err)
	assert.False(t, hit)

	stored, err := c.SetJSONIfVersion(ctx, key, 0, []roomRow{{ID: "r1", Count: 2}}, time.Minute)
	require.NoError(t, err)
	require.True(t, stored)
	hit, err = c.GetJSON(ctx, key, &got)
	require.NoError(t, err)
	require.True(t, hit)
	assert.Equal(t, []roomRow{{ID: "r1", Count: 2}}, got)

	mr.FastForward(2 * time.Minute)
	hit, err = c.GetJSON(ctx, key, &got)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestSetJSONIfVersion_RejectsWriteAfterInvalidate(t *testing.T) {
	ctx := context.Background()
	c, mr := newCache(t)
	key := c.KeyForRoomList("A", "B", "2024-06-01")

	before, err := c.Version(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, int64(0), before)

	// a writer commits and invalidates while a reader is scanning
	require.NoError(t, c.Invalidate(ctx, key))

	stored, err := c.SetJSONIfVersion(ctx, key, before, []roomRow{{ID: "stale"}}, time.Minute)
	require.NoError(t, err)
	assert.False(t, stored)
	assert.False(t, mr.Exists(key))

	after, err := c.Version(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, int64(1), after)
	stored, err = c.SetJSONIfVersion(ctx, key, after, []roomRow{{ID: "fresh"}}, time.Minute)
	require.NoError(t, err)
	assert.True(t, stored)

	require.NoError(t, c.Invalidate(ctx, key))
	assert.False(t, mr.Exists(key))
}

func TestGetJSON_CorruptEntryIsMiss(t *testing.T) {
	ctx := context.Background()
	c, mr := newCache(t)

	require.NoError(t, mr.Set("k", "{not json"))
	var v map[string]any
	hit, err := c.GetJSON(ctx, "k", &v)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.False(t, mr.Exists("k"))
}

func TestPublishSubscribe(t *testing.T) {
	ctx := context.Background()
	c, _ := newCache(t)

	ps, err := c.Subscribe(ctx, "events")
	require.NoError(t, err)
	defer ps.Close()

	require.NoError(t, c.Publish(ctx, "events", []byte("hello")))

	select {
	case msg := <-ps.Channel():
		assert.Equal(t, "hello", msg.Payload)
	case <-time.After(2 * time.Second):
		t.Fatal("no message received")
	}
}
