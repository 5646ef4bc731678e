package chat_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oggyb/ridemate/internal/db"
	svcErr "github.com/oggyb/ridemate/internal/errors"
	"github.com/oggyb/ridemate/internal/notify"
	"github.com/oggyb/ridemate/internal/service/chat"
	"github.com/oggyb/ridemate/internal/service/room"
	"github.com/oggyb/ridemate/internal/session"
	"github.com/oggyb/ridemate/internal/testutil"
)

type fixture struct {
	env   *testutil.Env
	chat  *chat.Service
	rooms *room.Service
	alice session.Session
	bob   session.Session
	room  *db.ChatRoom
}

func setup(t *testing.T) *fixture {
	t.Helper()
	env := testutil.NewEnv(t, time.Date(2024, 6, 1, 7, 0, 0, 0, time.UTC))
	f := &fixture{env: env, chat: chat.NewService(env.App), rooms: room.NewService(env.App)}

	a := testutil.CreateUser(t, env.DB, "alice")
	b := testutil.CreateUser(t, env.DB, "bob")
	f.alice = session.FromUser(&a, "client-alice")
	f.bob = session.FromUser(&b, "client-bob")

	r, err := f.rooms.Create(context.Background(), f.alice, room.CreateInput{
		FromLocation:  db.LocationGachonStationExit1,
		ToLocation:    db.LocationMainGate,
		DepartureDate: "2024-06-01",
		DepartureTime: "08:30",
	})
	require.NoError(t, err)
	f.room = r
	return f
}

func TestPost_TrimsAndOrders(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	_, err := f.rooms.Join(ctx, f.bob, f.room.ID)
	require.NoError(t, err)

	m1, err := f.chat.Post(ctx, f.alice, f.room.ID, "  출발합니다  ")
	require.NoError(t, err)
	assert.Equal(t, "출발합니다", m1.Content)
	assert.False(t, m1.CreatedAt.IsZero())
	require.NotNil(t, m1.User)
	assert.Equal(t, "alice", m1.User.Nickname)

	time.Sleep(2 * time.Millisecond)
	_, err = f.chat.Post(ctx, f.bob, f.room.ID, "네")
	require.NoError(t, err)

	msgs, err := f.chat.List(ctx, f.bob, f.room.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "출발합니다", msgs[0].Content)
	assert.Equal(t, "bob", msgs[1].User.Nickname)
	assert.Equal(t, db.Departments[0], msgs[1].User.Department)
}

func TestPost_Rejections(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	_, err := f.chat.Post(ctx, f.alice, f.room.ID, "   ")
	assert.Equal(t, svcErr.KindValidation, svcErr.KindOf(err))

	_, err = f.chat.Post(ctx, f.alice, f.room.ID, strings.Repeat("가", chat.MaxContentLength+1))
	assert.Equal(t, svcErr.KindValidation, svcErr.KindOf(err))

	_, err = f.chat.Post(ctx, f.alice, f.room.ID, strings.Repeat("가", chat.MaxContentLength))
	assert.NoError(t, err)

	_, err = f.chat.Post(ctx, f.bob, f.room.ID, "let me in")
	assert.ErrorIs(t, err, svcErr.ErrNotParticipant)

	_, err = f.chat.Post(ctx, f.alice, "missing", "hello")
	assert.ErrorIs(t, err, svcErr.ErrRoomNotFound)

	_, err = f.chat.List(ctx, f.bob, f.room.ID)
	assert.ErrorIs(t, err, svcErr.ErrNotParticipant)

	var n int64
	require.NoError(t, f.env.DB.Model(&db.Message{}).Count(&n).Error)
	assert.Equal(t, int64(1), n)
}

func TestSubscribe_SkipsOwnMessages(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	_, err := f.rooms.Join(ctx, f.bob, f.room.ID)
	require.NoError(t, err)

	aliceSub, err := f.chat.Subscribe(ctx, f.alice, f.room.ID)
	require.NoError(t, err)
	defer aliceSub.Close()
	bobSub, err := f.chat.Subscribe(ctx, f.bob, f.room.ID)
	require.NoError(t, err)
	defer bobSub.Close()

	msg, err := f.chat.Post(ctx, f.alice, f.room.ID, "hi")
	require.NoError(t, err)

	select {
	case e := <-bobSub.Events():
		assert.Equal(t, notify.EventMessageAdded, e.Type)
		assert.Equal(t, msg.ID, e.MessageID)
		assert.Equal(t, "client-alice", e.Origin)
	case <-time.After(time.Second):
		t.Fatal("bob got no event")
	}

	select {
	case e := <-aliceSub.Events():
		t.Fatalf("author received own message event %+v", e)
	case <-time.After(50 * time.Millisecond):
	}

	// the same user on another client still hears it
	otherTab := f.alice
	otherTab.ClientID = "client-alice-2"
	second, err := f.chat.Subscribe(ctx, otherTab, f.room.ID)
	require.NoError(t, err)
	defer second.Close()
	_, err = f.chat.Post(ctx, f.alice, f.room.ID, "again")
	require.NoError(t, err)
	select {
	case e := <-second.Events():
		assert.Equal(t, notify.EventMessageAdded, e.Type)
	case <-time.After(time.Second):
		t.Fatal("second client got no event")
	}
}

func TestSubscribe_ParticipantsOnly(t *testing.T) {
	f := setup(t)
	_, err := f.chat.Subscribe(context.Background(), f.bob, f.room.ID)
	assert.ErrorIs(t, err, svcErr.ErrNotParticipant)
}

func TestEnds(t *testing.T) {
	now := time.Now()
	assert.True(t, chat.Ends(notify.ParticipantChanged("r", "u1", notify.ChangeLeft, false, "", now), "u1"))
	assert.False(t, chat.Ends(notify.ParticipantChanged("r", "u2", notify.ChangeLeft, false, "", now), "u1"))
	assert.True(t, chat.Ends(notify.ParticipantChanged("r", "u2", notify.ChangeLeft, true, "", now), "u1"))
	assert.False(t, chat.Ends(notify.MessageAdded("r", "m", "u1", "", now), "u1"))
}
