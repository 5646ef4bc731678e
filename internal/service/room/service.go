package room

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/oggyb/ridemate/internal/app"
	"github.com/oggyb/ridemate/internal/db"
	svcErr "github.com/oggyb/ridemate/internal/errors"
	"github.com/oggyb/ridemate/internal/notify"
	"github.com/oggyb/ridemate/internal/repository"
	"github.com/oggyb/ridemate/internal/session"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// Service implements the room lifecycle: create, join, confirm, leave and
// the listings. Writes are atomic in the repository; after each commit the
// route's listing cache is dropped and a participant event is published.
type Service struct {
	appCtx *app.AppContext
	rooms  *repository.RoomRepository
}

func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx: appCtx,
		rooms:  repository.NewRoomRepository(appCtx.DB),
	}
}

// CreateInput is a departure submitted for a route and date.
type CreateInput struct {
	FromLocation  string
	ToLocation    string
	DepartureDate string
	DepartureTime string
}

// Create persists a new active room with the caller as its confirmed first
// participant.
func (s *Service) Create(ctx context.Context, sess session.Session, in CreateInput) (*db.ChatRoom, error) {
	s.appCtx.Logger.Debug("CreateRoom called", "user", sess.UserID, "from", in.FromLocation, "to", in.ToLocation, "date", in.DepartureDate, "time", in.DepartureTime)

	if err := validateRoute(in.FromLocation, in.ToLocation); err != nil {
		return nil, err
	}
	date, err := normalizeDate(in.DepartureDate)
	if err != nil {
		return nil, err
	}
	at, err := normalizeTime(in.DepartureTime)
	if err != nil {
		return nil, err
	}

	room := &db.ChatRoom{
		Title:           Title(at, in.FromLocation, in.ToLocation),
		FromLocation:    in.FromLocation,
		ToLocation:      in.ToLocation,
		DepartureDate:   date,
		DepartureTime:   at,
		MaxParticipants: s.appCtx.Config.Room.MaxParticipants,
		CreatedBy:       sess.UserID,
		Status:          db.RoomActive,
	}
	now := s.appCtx.Now()
	if err := s.rooms.Create(ctx, room, now); err != nil {
		s.appCtx.Logger.Error("create room failed", "user", sess.UserID, "err", err)
		return nil, err
	}

	s.afterWrite(ctx, room, notify.ParticipantChanged(room.ID, sess.UserID, notify.ChangeJoined, false, sess.ClientID, now))
	return room, nil
}

// Join adds the caller to the room as an unconfirmed participant.
func (s *Service) Join(ctx context.Context, sess session.Session, roomID string) (*db.RoomParticipant, error) {
	s.appCtx.Logger.Debug("JoinRoom called", "user", sess.UserID, "room", roomID)
	if roomID == "" {
		return nil, svcErr.Invalid("room_id", "room_id is required")
	}

	now := s.appCtx.Now()
	m, err := s.rooms.Join(ctx, roomID, sess.UserID, now)
	if err != nil {
		if svcErr.KindOf(err) == svcErr.KindTransient {
			s.appCtx.Logger.Error("join room failed", "user", sess.UserID, "room", roomID, "err", err)
		}
		return nil, err
	}

	s.afterWrite(ctx, &m.Room, notify.ParticipantChanged(roomID, sess.UserID, notify.ChangeJoined, false, sess.ClientID, now))
	return &m.Participant, nil
}

// Confirm marks the caller's participation as confirmed. Idempotent.
func (s *Service) Confirm(ctx context.Context, sess session.Session, roomID string) (*db.RoomParticipant, error) {
	s.appCtx.Logger.Debug("ConfirmParticipation called", "user", sess.UserID, "room", roomID)
	if roomID == "" {
		return nil, svcErr.Invalid("room_id", "room_id is required")
	}

	m, err := s.rooms.Confirm(ctx, roomID, sess.UserID)
	if err != nil {
		return nil, err
	}

	s.afterWrite(ctx, &m.Room, notify.ParticipantChanged(roomID, sess.UserID, notify.ChangeConfirmed, false, sess.ClientID, s.appCtx.Now()))
	return &m.Participant, nil
}

// Leave removes the caller from the room. The last participant leaving
// deletes the room with its messages and reports.
func (s *Service) Leave(ctx context.Context, sess session.Session, roomID string) (*repository.LeaveResult, error) {
	s.appCtx.Logger.Debug("LeaveRoom called", "user", sess.UserID, "room", roomID)
	if roomID == "" {
		return nil, svcErr.Invalid("room_id", "room_id is required")
	}

	res, err := s.rooms.Leave(ctx, roomID, sess.UserID)
	if err != nil {
		if svcErr.KindOf(err) == svcErr.KindTransient {
			s.appCtx.Logger.Error("leave room failed", "user", sess.UserID, "room", roomID, "err", err)
		}
		return nil, err
	}
	if res.RoomDeleted {
		s.appCtx.Logger.Info("room deleted after last participant left", "room", roomID, "user", sess.UserID)
	}

	s.afterWrite(ctx, &res.Room, notify.ParticipantChanged(roomID, sess.UserID, notify.ChangeLeft, res.RoomDeleted, sess.ClientID, s.appCtx.Now()))
	return res, nil
}

// List returns the active rooms of a route on a date, partitioned for the
// caller. The store scan is cached in Redis for Room.ListCacheTTL.
//
// Cache-first strategy:
//  1. Attempts to read rooms:list:<from>:<to>:<date> from Redis.
//  2. On a miss or a Redis failure, falls back to the DB.
//  3. On DB fetch, stores the scan with the configured TTL.
func (s *Service) List(ctx context.Context, sess session.Session, from, to, date string) (*Listing, error) {
	s.appCtx.Logger.Debug("ListRooms called", "user", sess.UserID, "from", from, "to", to, "date", date)

	if err := validateRoute(from, to); err != nil {
		return nil, err
	}
	date, err := normalizeDate(date)
	if err != nil {
		return nil, err
	}

	rooms, err := s.scan(ctx, from, to, date)
	if err != nil {
		return nil, err
	}
	listing := Categorize(rooms, sess.UserID, s.appCtx.Now().In(s.appCtx.Config.Location()))
	return &listing, nil
}

func (s *Service) scan(ctx context.Context, from, to, date string) ([]db.ChatRoom, error) {
	key := s.appCtx.RedisCache.KeyForRoomList(from, to, date)

	var rooms []db.ChatRoom
	hit, err := s.appCtx.RedisCache.GetJSON(ctx, key, &rooms)
	if err != nil {
		s.appCtx.Logger.Warn("room list cache read failed", "key", key, "err", err)
	}
	if hit {
		return rooms, nil
	}

	// A write that commits after the scan below bumps the version, and the
	// stale scan is then not stored.
	version, versionErr := s.appCtx.RedisCache.Version(ctx, key)

	rooms, err = s.rooms.ListActive(ctx, from, to, date)
	if err != nil {
		s.appCtx.Logger.Error("list rooms failed", "key", key, "err", err)
		return nil, err
	}
	if versionErr != nil {
		return rooms, nil
	}
	stored, err := s.appCtx.RedisCache.SetJSONIfVersion(ctx, key, version, rooms, s.appCtx.Config.Room.ListCacheTTL)
	if err != nil {
		s.appCtx.Logger.Warn("room list cache write failed", "key", key, "err", err)
	} else if !stored {
		s.appCtx.Logger.Debug("room list changed during scan, not cached", "key", key)
	}
	return rooms, nil
}

// Get returns one room with its participants.
func (s *Service) Get(ctx context.Context, sess session.Session, roomID string) (*db.ChatRoom, error) {
	s.appCtx.Logger.Debug("GetRoom called", "user", sess.UserID, "room", roomID)
	if roomID == "" {
		return nil, svcErr.Invalid("room_id", "room_id is required")
	}
	return s.rooms.Get(ctx, roomID)
}

// ListMine returns the active rooms the caller participates in.
func (s *Service) ListMine(ctx context.Context, sess session.Session) ([]db.ChatRoom, error) {
	s.appCtx.Logger.Debug("ListMyRooms called", "user", sess.UserID)
	return s.rooms.ListForUser(ctx, sess.UserID)
}

// Sweep closes rooms whose departure date is before yesterday and removes
// rooms left without participants.
func (s *Service) Sweep(ctx context.Context) (closed, deleted int, err error) {
	cutoff := s.appCtx.Today().AddDate(0, 0, -1).Format(dateLayout)

	closedRooms, err := s.rooms.CloseDepartedBefore(ctx, cutoff)
	if err != nil {
		return 0, 0, fmt.Errorf("close departed rooms: %w", err)
	}
	for i := range closedRooms {
		s.invalidate(ctx, &closedRooms[i])
	}

	emptyRooms, err := s.rooms.DeleteEmpty(ctx)
	if err != nil {
		return len(closedRooms), 0, fmt.Errorf("delete empty rooms: %w", err)
	}
	now := s.appCtx.Now()
	for i := range emptyRooms {
		s.afterWrite(ctx, &emptyRooms[i], notify.ParticipantChanged(emptyRooms[i].ID, "", notify.ChangeLeft, true, "", now))
	}
	return len(closedRooms), len(emptyRooms), nil
}

// afterWrite runs once a write has committed. Neither step can undo the
// write, so failures are only logged.
func (s *Service) afterWrite(ctx context.Context, room *db.ChatRoom, e notify.Event) {
	s.invalidate(ctx, room)
	if err := s.appCtx.Events.Publish(ctx, e); err != nil {
		s.appCtx.Logger.Warn("publish room event failed", "room", e.RoomID, "change", e.Change, "err", err)
	}
}

func (s *Service) invalidate(ctx context.Context, room *db.ChatRoom) {
	key := s.appCtx.RedisCache.KeyForRoomList(room.FromLocation, room.ToLocation, room.DepartureDate)
	if err := s.appCtx.RedisCache.Invalidate(ctx, key); err != nil {
		s.appCtx.Logger.Warn("room list cache invalidation failed", "key", key, "err", err)
	}
}

// Title is the display title of a room, e.g. "08:30 가천대역 1번출구→AI공학관".
func Title(departureTime, from, to string) string {
	return fmt.Sprintf("%s %s→%s", departureTime, db.LocationLabel(from), db.LocationLabel(to))
}

func validateRoute(from, to string) error {
	if !db.IsLocation(from) {
		return svcErr.Invalidf("from_location", "unknown location %q", from)
	}
	if !db.IsLocation(to) {
		return svcErr.Invalidf("to_location", "unknown location %q", to)
	}
	if from == to {
		return svcErr.Invalid("to_location", "origin and destination must differ")
	}
	return nil
}

func normalizeDate(s string) (string, error) {
	d, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return "", svcErr.Invalidf("departure_date", "departure_date must be YYYY-MM-DD, got %q", s)
	}
	return d.Format(dateLayout), nil
}

// normalizeTime accepts HH:MM or HH:MM:SS and returns HH:MM.
func normalizeTime(s string) (string, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{timeLayout, time.TimeOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(timeLayout), nil
		}
	}
	return "", svcErr.Invalidf("departure_time", "departure_time must be HH:MM, got %q", s)
}
