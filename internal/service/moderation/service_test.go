package moderation_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/oggyb/ridemate/internal/api"
	"github.com/oggyb/ridemate/internal/db"
	svcErr "github.com/oggyb/ridemate/internal/errors"
	"github.com/oggyb/ridemate/internal/service/moderation"
	"github.com/oggyb/ridemate/internal/service/room"
	"github.com/oggyb/ridemate/internal/session"
	"github.com/oggyb/ridemate/internal/testutil"
)

type fixture struct {
	env   *testutil.Env
	svc   *moderation.Service
	rooms *room.Service
	alice session.Session
	bob   session.Session
	carol session.Session
	admin session.Session
	room  *db.ChatRoom
}

// setup seeds a room shared by alice and bob; carol is an outsider and
// admin is a moderator.
func setup(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	env := testutil.NewEnv(t, time.Date(2024, 6, 1, 7, 0, 0, 0, time.UTC))
	f := &fixture{env: env, svc: moderation.NewService(env.App), rooms: room.NewService(env.App)}

	mk := func(nick string, opts ...func(*db.User)) session.Session {
		u := testutil.CreateUser(t, env.DB, nick, opts...)
		return session.FromUser(&u, "client-"+nick)
	}
	f.alice, f.bob, f.carol = mk("alice"), mk("bob"), mk("carol")
	f.admin = mk("admin", testutil.Admin)

	r, err := f.rooms.Create(ctx, f.alice, room.CreateInput{
		FromLocation:  db.LocationAIBuilding,
		ToLocation:    db.LocationGachonStationExit1,
		DepartureDate: "2024-06-01",
		DepartureTime: "17:00",
	})
	require.NoError(t, err)
	_, err = f.rooms.Join(ctx, f.bob, r.ID)
	require.NoError(t, err)
	f.room = r
	return f
}

func TestReportScenario(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	report, err := f.svc.FileReport(ctx, f.alice, f.room.ID, f.bob.UserID, "  no show  ")
	require.NoError(t, err)
	assert.Equal(t, db.ReportPending, report.Status)
	assert.Equal(t, "no show", report.Reason)
	assert.Equal(t, "bob", report.Reported.Nickname)

	report, err = f.svc.AdvanceReportStatus(ctx, report.ID, db.ReportReviewed)
	require.NoError(t, err)
	assert.Equal(t, db.ReportReviewed, report.Status)

	report, err = f.svc.AdvanceReportStatus(ctx, report.ID, db.ReportResolved)
	require.NoError(t, err)
	assert.Equal(t, db.ReportResolved, report.Status)

	for _, next := range []string{db.ReportPending, db.ReportReviewed, db.ReportResolved} {
		_, err = f.svc.AdvanceReportStatus(ctx, report.ID, next)
		assert.ErrorIs(t, err, svcErr.ErrInvalidTransition, next)
	}
}

func TestAdvance_RejectsSkipsAndUnknowns(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	report, err := f.svc.FileReport(ctx, f.bob, f.room.ID, f.alice.UserID, "rude")
	require.NoError(t, err)

	_, err = f.svc.AdvanceReportStatus(ctx, report.ID, db.ReportResolved)
	assert.ErrorIs(t, err, svcErr.ErrInvalidTransition)

	_, err = f.svc.AdvanceReportStatus(ctx, report.ID, db.ReportPending)
	assert.ErrorIs(t, err, svcErr.ErrInvalidTransition)

	_, err = f.svc.AdvanceReportStatus(ctx, report.ID, "dismissed")
	assert.Equal(t, svcErr.KindValidation, svcErr.KindOf(err))

	_, err = f.svc.AdvanceReportStatus(ctx, "missing", db.ReportReviewed)
	assert.ErrorIs(t, err, svcErr.ErrReportNotFound)

	got, _, err := f.svc.ListReports(ctx, db.ReportPending, nil, 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
}

func TestFileReport_Rejections(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	_, err := f.svc.FileReport(ctx, f.alice, f.room.ID, f.alice.UserID, "me")
	assert.Equal(t, svcErr.KindValidation, svcErr.KindOf(err))

	_, err = f.svc.FileReport(ctx, f.alice, f.room.ID, f.bob.UserID, "   ")
	assert.Equal(t, svcErr.KindValidation, svcErr.KindOf(err))

	_, err = f.svc.FileReport(ctx, f.carol, f.room.ID, f.bob.UserID, "outsider")
	assert.ErrorIs(t, err, svcErr.ErrNotParticipant)

	_, err = f.svc.FileReport(ctx, f.alice, f.room.ID, f.carol.UserID, "not here")
	assert.ErrorIs(t, err, svcErr.ErrNotParticipant)

	_, err = f.svc.FileReport(ctx, f.alice, "missing", f.bob.UserID, "x")
	assert.ErrorIs(t, err, svcErr.ErrRoomNotFound)

	var n int64
	require.NoError(t, f.env.DB.Model(&db.Report{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestSetUserStatus_LeavesContentVisible(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	require.NoError(t, f.env.DB.Create(&db.Message{RoomID: f.room.ID, UserID: f.bob.UserID, Content: "hi"}).Error)

	u, err := f.svc.SetUserStatus(ctx, f.bob.UserID, db.UserSuspended)
	require.NoError(t, err)
	assert.Equal(t, db.UserSuspended, u.Status)

	msgs, err := f.svc.ListRoomMessages(ctx, f.room.ID)
	require.NoError(t, err)
	assert.Len(t, msgs, 1)

	got, err := f.rooms.Get(ctx, f.alice, f.room.ID)
	require.NoError(t, err)
	assert.True(t, got.HasParticipant(f.bob.UserID))

	_, err = f.svc.SetUserStatus(ctx, f.bob.UserID, "banned")
	assert.Equal(t, svcErr.KindValidation, svcErr.KindOf(err))

	u, err = f.svc.SetUserStatus(ctx, f.bob.UserID, db.UserActive)
	require.NoError(t, err)
	assert.Equal(t, db.UserActive, u.Status)
}

func TestAdminListings(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	users, next, err := f.svc.ListUsers(ctx, "", nil, 3)
	require.NoError(t, err)
	assert.Len(t, users, 3)
	require.NotNil(t, next)
	users, next, err = f.svc.ListUsers(ctx, "", next, 3)
	require.NoError(t, err)
	assert.Len(t, users, 1)
	assert.Nil(t, next)

	bad := "%%%"
	_, _, err = f.svc.ListUsers(ctx, "", &bad, 3)
	assert.Equal(t, svcErr.KindValidation, svcErr.KindOf(err))

	rooms, _, err := f.svc.ListRooms(ctx, nil, 0)
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, "alice", rooms[0].Creator.Nickname)
	assert.Equal(t, 2, rooms[0].ParticipantCount)

	_, err = f.svc.ListRoomMessages(ctx, "missing")
	assert.ErrorIs(t, err, svcErr.ErrRoomNotFound)
}

func TestHandler_AdminOnly(t *testing.T) {
	f := setup(t)
	h := moderation.NewHandler(f.svc)

	ctx := session.WithSession(context.Background(), f.alice)
	_, err := h.ListUsers(ctx, &api.ListUsersRequest{})
	assert.Equal(t, codes.PermissionDenied, status.Code(err))
	assert.Equal(t, "ADMIN_ONLY", svcErr.Reason(err))

	_, err = h.SetUserStatus(ctx, &api.SetUserStatusRequest{UserID: f.bob.UserID, Status: db.UserSuspended})
	assert.Equal(t, codes.PermissionDenied, status.Code(err))

	// any participant may file a report
	resp, err := h.FileReport(ctx, &api.FileReportRequest{RoomID: f.room.ID, ReportedID: f.bob.UserID, Reason: "spam"})
	require.NoError(t, err)
	assert.Equal(t, db.ReportPending, resp.Report.Status)

	adminCtx := session.WithSession(context.Background(), f.admin)
	list, err := h.ListReports(adminCtx, &api.ListReportsRequest{Status: db.ReportPending})
	require.NoError(t, err)
	require.Len(t, list.Reports, 1)
	assert.Equal(t, "alice", list.Reports[0].ReporterNickname)

	_, err = h.ListUsers(context.Background(), &api.ListUsersRequest{})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}
