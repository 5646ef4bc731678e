package repository_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/oggyb/ridemate/internal/db"
	svcErr "github.com/oggyb/ridemate/internal/errors"
	"github.com/oggyb/ridemate/internal/repository"
	"github.com/oggyb/ridemate/internal/testutil"
)

var joinedAt = time.Date(2024, 5, 31, 9, 0, 0, 0, time.UTC)

func newRoom(t *testing.T, repo *repository.RoomRepository, creator db.User, date, at string) db.ChatRoom {
	t.Helper()
	room := db.ChatRoom{
		Title:           at + " test",
		FromLocation:    db.LocationGachonStationExit1,
		ToLocation:      db.LocationAIBuilding,
		DepartureDate:   date,
		DepartureTime:   at,
		MaxParticipants: 4,
		CreatedBy:       creator.ID,
		Status:          db.RoomActive,
	}
	require.NoError(t, repo.Create(context.Background(), &room, joinedAt))
	return room
}

func countRows(t *testing.T, gdb *gorm.DB, model any, where string, args ...any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, gdb.Model(model).Where(where, args...).Count(&n).Error)
	return n
}

func TestRoomCreate_AddsConfirmedCreator(t *testing.T) {
	gdb := testutil.NewDB(t)
	repo := repository.NewRoomRepository(gdb)
	a := testutil.CreateUser(t, gdb, "alice")

	room := newRoom(t, repo, a, "2024-06-01", "08:30")

	assert.NotEmpty(t, room.ID)
	assert.Equal(t, 1, room.ParticipantCount)

	got, err := repo.Get(context.Background(), room.ID)
	require.NoError(t, err)
	require.Len(t, got.Participants, 1)
	assert.Equal(t, a.ID, got.Participants[0].UserID)
	assert.True(t, got.Participants[0].Confirmed)
	assert.Equal(t, "alice", got.Creator.Nickname)
}

func TestRoomCreate_RollsBackWhenCreatorInsertFails(t *testing.T) {
	gdb := testutil.NewDB(t)
	repo := repository.NewRoomRepository(gdb)
	a := testutil.CreateUser(t, gdb, "alice")

	// force the participant insert to fail
	require.NoError(t, gdb.Exec("DROP TABLE room_participants").Error)

	room := db.ChatRoom{
		Title: "x", FromLocation: db.LocationMainGate, ToLocation: db.LocationAIBuilding,
		DepartureDate: "2024-06-01", DepartureTime: "08:30", MaxParticipants: 4,
		CreatedBy: a.ID, Status: db.RoomActive,
	}
	assert.Error(t, repo.Create(context.Background(), &room, joinedAt))
	assert.Equal(t, int64(0), countRows(t, gdb, &db.ChatRoom{}, "1 = 1"))
}

func TestRoomJoin_CapacityAndDuplicates(t *testing.T) {
	ctx := context.Background()
	gdb := testutil.NewDB(t)
	repo := repository.NewRoomRepository(gdb)

	creator := testutil.CreateUser(t, gdb, "creator")
	room := newRoom(t, repo, creator, "2024-06-01", "08:30")

	var riders []db.User
	for i := 0; i < 4; i++ {
		riders = append(riders, testutil.CreateUser(t, gdb, fmt.Sprintf("rider%d", i)))
	}

	for _, u := range riders[:3] {
		m, err := repo.Join(ctx, room.ID, u.ID, joinedAt)
		require.NoError(t, err)
		assert.False(t, m.Participant.Confirmed)
		assert.Equal(t, room.ID, m.Room.ID)
	}

	// already a participant, also full: duplicate wins
	_, err := repo.Join(ctx, room.ID, riders[0].ID, joinedAt)
	assert.ErrorIs(t, err, svcErr.ErrAlreadyJoined)

	_, err = repo.Join(ctx, room.ID, riders[3].ID, joinedAt)
	assert.ErrorIs(t, err, svcErr.ErrRoomFull)

	assert.Equal(t, int64(4), countRows(t, gdb, &db.RoomParticipant{}, "room_id = ?", room.ID))
	got, err := repo.Get(ctx, room.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, got.ParticipantCount)
}

func TestRoomJoin_AlreadyJoinedBelowCapacity(t *testing.T) {
	ctx := context.Background()
	gdb := testutil.NewDB(t)
	repo := repository.NewRoomRepository(gdb)

	creator := testutil.CreateUser(t, gdb, "creator")
	b := testutil.CreateUser(t, gdb, "bob")
	room := newRoom(t, repo, creator, "2024-06-01", "08:30")

	_, err := repo.Join(ctx, room.ID, b.ID, joinedAt)
	require.NoError(t, err)
	_, err = repo.Join(ctx, room.ID, b.ID, joinedAt)
	assert.ErrorIs(t, err, svcErr.ErrAlreadyJoined)

	assert.Equal(t, int64(1), countRows(t, gdb, &db.RoomParticipant{}, "room_id = ? AND user_id = ?", room.ID, b.ID))
	got, err := repo.Get(ctx, room.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.ParticipantCount)
}

func TestRoomJoin_ClosedAndMissing(t *testing.T) {
	ctx := context.Background()
	gdb := testutil.NewDB(t)
	repo := repository.NewRoomRepository(gdb)

	creator := testutil.CreateUser(t, gdb, "creator")
	b := testutil.CreateUser(t, gdb, "bob")
	room := newRoom(t, repo, creator, "2024-06-01", "08:30")
	require.NoError(t, gdb.Model(&db.ChatRoom{}).Where("id = ?", room.ID).Update("status", db.RoomClosed).Error)

	_, err := repo.Join(ctx, room.ID, b.ID, joinedAt)
	assert.ErrorIs(t, err, svcErr.ErrRoomClosed)

	_, err = repo.Join(ctx, "missing", b.ID, joinedAt)
	assert.ErrorIs(t, err, svcErr.ErrRoomNotFound)
}

func TestRoomJoin_ConcurrentNeverExceedsCapacity(t *testing.T) {
	ctx := context.Background()
	gdb := testutil.NewDB(t)
	repo := repository.NewRoomRepository(gdb)

	creator := testutil.CreateUser(t, gdb, "creator")
	room := newRoom(t, repo, creator, "2024-06-01", "08:30")

	const joiners = 10
	users := make([]db.User, joiners)
	for i := range users {
		users[i] = testutil.CreateUser(t, gdb, fmt.Sprintf("user%02d", i))
	}

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		joined int
		full   int
	)
	for _, u := range users {
		wg.Add(1)
		go func(userID string) {
			defer wg.Done()
			_, err := repo.Join(ctx, room.ID, userID, joinedAt)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				joined++
			case assert.ErrorIs(t, err, svcErr.ErrRoomFull):
				full++
			}
		}(u.ID)
	}
	wg.Wait()

	assert.Equal(t, 3, joined)
	assert.Equal(t, joiners-3, full)
	assert.Equal(t, int64(4), countRows(t, gdb, &db.RoomParticipant{}, "room_id = ?", room.ID))
}

func TestRoomLeave_ConcurrentLastTwoCascadeOnce(t *testing.T) {
	ctx := context.Background()
	gdb := testutil.NewDB(t)
	repo := repository.NewRoomRepository(gdb)

	a := testutil.CreateUser(t, gdb, "alice")
	b := testutil.CreateUser(t, gdb, "bob")
	room := newRoom(t, repo, a, "2024-06-01", "08:30")
	_, err := repo.Join(ctx, room.ID, b.ID, joinedAt)
	require.NoError(t, err)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		deleted int
		failed  []error
	)
	for _, u := range []db.User{a, b} {
		wg.Add(1)
		go func(userID string) {
			defer wg.Done()
			res, err := repo.Leave(ctx, room.ID, userID)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed = append(failed, err)
				return
			}
			if res.RoomDeleted {
				deleted++
			}
		}(u.ID)
	}
	wg.Wait()

	assert.Empty(t, failed)
	assert.Equal(t, 1, deleted)
	assert.Equal(t, int64(0), countRows(t, gdb, &db.ChatRoom{}, "id = ?", room.ID))
	assert.Equal(t, int64(0), countRows(t, gdb, &db.RoomParticipant{}, "room_id = ?", room.ID))
}

func TestRoomConfirm_Idempotent(t *testing.T) {
	ctx := context.Background()
	gdb := testutil.NewDB(t)
	repo := repository.NewRoomRepository(gdb)

	creator := testutil.CreateUser(t, gdb, "creator")
	b := testutil.CreateUser(t, gdb, "bob")
	stranger := testutil.CreateUser(t, gdb, "stranger")
	room := newRoom(t, repo, creator, "2024-06-01", "08:30")
	_, err := repo.Join(ctx, room.ID, b.ID, joinedAt)
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		m, err := repo.Confirm(ctx, room.ID, b.ID)
		require.NoError(t, err)
		assert.True(t, m.Participant.Confirmed)
		assert.Equal(t, room.DepartureDate, m.Room.DepartureDate)
	}
	assert.Equal(t, int64(1), countRows(t, gdb, &db.RoomParticipant{}, "room_id = ? AND user_id = ? AND confirmed = ?", room.ID, b.ID, true))

	_, err = repo.Confirm(ctx, room.ID, stranger.ID)
	assert.ErrorIs(t, err, svcErr.ErrNotParticipant)
	_, err = repo.Confirm(ctx, "missing", b.ID)
	assert.ErrorIs(t, err, svcErr.ErrRoomNotFound)
}

func TestRoomLeave_LastParticipantCascades(t *testing.T) {
	ctx := context.Background()
	gdb := testutil.NewDB(t)
	repo := repository.NewRoomRepository(gdb)

	a := testutil.CreateUser(t, gdb, "alice")
	b := testutil.CreateUser(t, gdb, "bob")
	room := newRoom(t, repo, a, "2024-06-01", "08:30")
	other := newRoom(t, repo, b, "2024-06-01", "09:00")

	_, err := repo.Join(ctx, room.ID, b.ID, joinedAt)
	require.NoError(t, err)
	require.NoError(t, gdb.Create(&db.Message{RoomID: room.ID, UserID: a.ID, Content: "hi"}).Error)
	require.NoError(t, gdb.Create(&db.Message{RoomID: other.ID, UserID: b.ID, Content: "keep"}).Error)
	roomID := room.ID
	require.NoError(t, gdb.Create(&db.Report{RoomID: &roomID, ReporterID: a.ID, ReportedID: b.ID, Reason: "late", Status: db.ReportPending}).Error)

	res, err := repo.Leave(ctx, room.ID, b.ID)
	require.NoError(t, err)
	assert.False(t, res.RoomDeleted)
	assert.Equal(t, 1, res.Room.ParticipantCount)
	assert.Equal(t, int64(1), countRows(t, gdb, &db.Message{}, "room_id = ?", room.ID))
	assert.Equal(t, int64(1), countRows(t, gdb, &db.Report{}, "room_id = ?", room.ID))

	_, err = repo.Leave(ctx, room.ID, b.ID)
	assert.ErrorIs(t, err, svcErr.ErrNotParticipant)

	res, err = repo.Leave(ctx, room.ID, a.ID)
	require.NoError(t, err)
	assert.True(t, res.RoomDeleted)

	assert.Equal(t, int64(0), countRows(t, gdb, &db.ChatRoom{}, "id = ?", room.ID))
	assert.Equal(t, int64(0), countRows(t, gdb, &db.Message{}, "room_id = ?", room.ID))
	assert.Equal(t, int64(0), countRows(t, gdb, &db.Report{}, "room_id = ?", room.ID))
	assert.Equal(t, int64(0), countRows(t, gdb, &db.RoomParticipant{}, "room_id = ?", room.ID))

	// unrelated room untouched
	assert.Equal(t, int64(1), countRows(t, gdb, &db.Message{}, "room_id = ?", other.ID))

	_, err = repo.Leave(ctx, room.ID, a.ID)
	assert.ErrorIs(t, err, svcErr.ErrRoomNotFound)
}

func TestRoomListActive_FiltersAndOrders(t *testing.T) {
	ctx := context.Background()
	gdb := testutil.NewDB(t)
	repo := repository.NewRoomRepository(gdb)
	a := testutil.CreateUser(t, gdb, "alice")

	late := newRoom(t, repo, a, "2024-06-01", "18:00")
	early := newRoom(t, repo, a, "2024-06-01", "07:45")
	newRoom(t, repo, a, "2024-06-02", "08:00")
	closed := newRoom(t, repo, a, "2024-06-01", "09:00")
	require.NoError(t, gdb.Model(&db.ChatRoom{}).Where("id = ?", closed.ID).Update("status", db.RoomClosed).Error)

	rooms, err := repo.ListActive(ctx, db.LocationGachonStationExit1, db.LocationAIBuilding, "2024-06-01")
	require.NoError(t, err)
	require.Len(t, rooms, 2)
	assert.Equal(t, early.ID, rooms[0].ID)
	assert.Equal(t, late.ID, rooms[1].ID)
	require.Len(t, rooms[0].Participants, 1)
	assert.Equal(t, "alice", rooms[0].Participants[0].User.Nickname)

	rooms, err = repo.ListActive(ctx, db.LocationAIBuilding, db.LocationGachonStationExit1, "2024-06-01")
	require.NoError(t, err)
	assert.Empty(t, rooms)
}

func TestRoomListForUser(t *testing.T) {
	ctx := context.Background()
	gdb := testutil.NewDB(t)
	repo := repository.NewRoomRepository(gdb)
	a := testutil.CreateUser(t, gdb, "alice")
	b := testutil.CreateUser(t, gdb, "bob")

	second := newRoom(t, repo, a, "2024-06-02", "08:00")
	first := newRoom(t, repo, b, "2024-06-01", "08:00")
	newRoom(t, repo, b, "2024-06-01", "09:00")
	_, err := repo.Join(ctx, first.ID, a.ID, joinedAt)
	require.NoError(t, err)

	rooms, err := repo.ListForUser(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, rooms, 2)
	assert.Equal(t, first.ID, rooms[0].ID)
	assert.Equal(t, second.ID, rooms[1].ID)
}

func TestRoomSweeps(t *testing.T) {
	ctx := context.Background()
	gdb := testutil.NewDB(t)
	repo := repository.NewRoomRepository(gdb)
	a := testutil.CreateUser(t, gdb, "alice")

	old := newRoom(t, repo, a, "2024-05-29", "08:00")
	current := newRoom(t, repo, a, "2024-05-31", "08:00")

	closed, err := repo.CloseDepartedBefore(ctx, "2024-05-30")
	require.NoError(t, err)
	require.Len(t, closed, 1)
	assert.Equal(t, old.ID, closed[0].ID)

	got, err := repo.Get(ctx, old.ID)
	require.NoError(t, err)
	assert.Equal(t, db.RoomClosed, got.Status)
	got, err = repo.Get(ctx, current.ID)
	require.NoError(t, err)
	assert.Equal(t, db.RoomActive, got.Status)

	// orphan left behind by an out-of-band delete
	require.NoError(t, gdb.Where("room_id = ?", current.ID).Delete(&db.RoomParticipant{}).Error)
	require.NoError(t, gdb.Model(&db.ChatRoom{}).Where("id = ?", current.ID).UpdateColumn("participant_count", 0).Error)

	deleted, err := repo.DeleteEmpty(ctx)
	require.NoError(t, err)
	require.Len(t, deleted, 1)
	assert.Equal(t, current.ID, deleted[0].ID)

	exists, err := repo.Exists(ctx, current.ID)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRoomListAll_Paginates(t *testing.T) {
	ctx := context.Background()
	gdb := testutil.NewDB(t)
	repo := repository.NewRoomRepository(gdb)
	a := testutil.CreateUser(t, gdb, "alice")

	for i := 0; i < 5; i++ {
		newRoom(t, repo, a, "2024-06-01", fmt.Sprintf("0%d:00", i))
	}

	seen := map[string]bool{}
	var token *string
	pages := 0
	for {
		rooms, next, err := repo.ListAll(ctx, token, 2)
		require.NoError(t, err)
		for _, r := range rooms {
			assert.False(t, seen[r.ID], "room returned twice")
			seen[r.ID] = true
			assert.Equal(t, "alice", r.Creator.Nickname)
		}
		pages++
		if next == nil {
			break
		}
		token = next
	}
	assert.Len(t, seen, 5)
	assert.Equal(t, 3, pages)
}
