package notify_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oggyb/ridemate/internal/cache"
	"github.com/oggyb/ridemate/internal/config"
	"github.com/oggyb/ridemate/internal/logger"
	"github.com/oggyb/ridemate/internal/notify"
)

func recv(t *testing.T, sub *notify.Subscription) notify.Event {
	t.Helper()
	select {
	case e := <-sub.Events():
		return e
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return notify.Event{}
	}
}

func assertNoEvent(t *testing.T, sub *notify.Subscription) {
	t.Helper()
	select {
	case e := <-sub.Events():
		t.Fatalf("unexpected event %+v", e)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_MessageNotDeliveredToAuthorClient(t *testing.T) {
	hub := notify.NewHub(logger.Discard())
	author := hub.Subscribe("room-1", "client-a")
	other := hub.Subscribe("room-1", "client-b")
	elsewhere := hub.Subscribe("room-2", "client-c")
	defer author.Close()
	defer other.Close()
	defer elsewhere.Close()

	now := time.Now()
	sent := hub.Deliver(notify.MessageAdded("room-1", "m1", "u1", "client-a", now))
	assert.Equal(t, 1, sent)

	e := recv(t, other)
	assert.Equal(t, notify.EventMessageAdded, e.Type)
	assert.Equal(t, "m1", e.MessageID)
	assertNoEvent(t, author)
	assertNoEvent(t, elsewhere)
}

func TestHub_ParticipantChangesReachEveryone(t *testing.T) {
	hub := notify.NewHub(logger.Discard())
	a := hub.Subscribe("room-1", "client-a")
	b := hub.Subscribe("room-1", "client-b")
	defer a.Close()
	defer b.Close()

	hub.Deliver(notify.ParticipantChanged("room-1", "u1", notify.ChangeJoined, false, "client-a", time.Now()))

	assert.Equal(t, notify.ChangeJoined, recv(t, a).Change)
	assert.Equal(t, notify.ChangeJoined, recv(t, b).Change)
}

func TestHub_CloseUnregisters(t *testing.T) {
	hub := notify.NewHub(logger.Discard())
	sub := hub.Subscribe("room-1", "client-a")
	assert.Equal(t, 1, hub.Subscribers("room-1"))

	sub.Close()
	sub.Close()
	assert.Equal(t, 0, hub.Subscribers("room-1"))

	_, open := <-sub.Events()
	assert.False(t, open)
	assert.Equal(t, 0, hub.Deliver(notify.MessageAdded("room-1", "m", "u", "x", time.Now())))
}

func TestBus_RelaysThroughRedis(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	cfg := &config.Config{}
	cfg.Redis.Addr = mr.Addr()
	redisCache := cache.NewRedisCache(cfg)
	defer redisCache.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := notify.NewHub(logger.Discard())
	bus := notify.NewBus(redisCache, hub, logger.Discard())
	require.NoError(t, bus.Start(ctx))

	sub := hub.Subscribe("room-9", "client-b")
	defer sub.Close()

	require.NoError(t, bus.Publish(ctx, notify.ParticipantChanged("room-9", "u2", notify.ChangeLeft, true, "client-a", time.Now())))

	e := recv(t, sub)
	assert.Equal(t, "room-9", e.RoomID)
	assert.Equal(t, notify.ChangeLeft, e.Change)
	assert.True(t, e.RoomDeleted)
}
