package chat

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/oggyb/ridemate/internal/app"
	"github.com/oggyb/ridemate/internal/db"
	svcErr "github.com/oggyb/ridemate/internal/errors"
	"github.com/oggyb/ridemate/internal/notify"
	"github.com/oggyb/ridemate/internal/repository"
	"github.com/oggyb/ridemate/internal/session"
)

// MaxContentLength is the longest message accepted, in characters.
const MaxContentLength = 1000

// Service is the messaging relay: it appends messages to rooms and hands out
// per-room event subscriptions. Only participants may post, read or
// subscribe.
type Service struct {
	appCtx   *app.AppContext
	rooms    *repository.RoomRepository
	messages *repository.MessageRepository
}

func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:   appCtx,
		rooms:    repository.NewRoomRepository(appCtx.DB),
		messages: repository.NewMessageRepository(appCtx.DB),
	}
}

// Post appends a message and notifies the room's other clients.
func (s *Service) Post(ctx context.Context, sess session.Session, roomID, content string) (*db.Message, error) {
	s.appCtx.Logger.Debug("PostMessage called", "user", sess.UserID, "room", roomID)

	if roomID == "" {
		return nil, svcErr.Invalid("room_id", "room_id is required")
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, svcErr.Invalid("content", "message is empty")
	}
	if utf8.RuneCountInString(content) > MaxContentLength {
		return nil, svcErr.Invalidf("content", "message is longer than %d characters", MaxContentLength)
	}

	msg := &db.Message{RoomID: roomID, UserID: sess.UserID, Content: content}
	if err := s.messages.CreateForParticipant(ctx, msg); err != nil {
		if svcErr.KindOf(err) == svcErr.KindTransient {
			s.appCtx.Logger.Error("post message failed", "user", sess.UserID, "room", roomID, "err", err)
		}
		return nil, err
	}

	e := notify.MessageAdded(roomID, msg.ID, sess.UserID, sess.ClientID, msg.CreatedAt)
	if err := s.appCtx.Events.Publish(ctx, e); err != nil {
		s.appCtx.Logger.Warn("publish message event failed", "room", roomID, "message", msg.ID, "err", err)
	}

	stored, err := s.messages.Get(ctx, msg.ID)
	if err != nil {
		// the room may already be gone; the message itself was accepted
		msg.User = &db.User{ID: sess.UserID, Nickname: sess.Nickname}
		return msg, nil
	}
	return stored, nil
}

// List returns the room's messages oldest first.
func (s *Service) List(ctx context.Context, sess session.Session, roomID string) ([]db.Message, error) {
	s.appCtx.Logger.Debug("ListMessages called", "user", sess.UserID, "room", roomID)
	if err := s.requireParticipant(ctx, sess, roomID); err != nil {
		return nil, err
	}
	return s.messages.ListByRoom(ctx, roomID)
}

// Subscribe opens an event subscription on the room for the caller's
// client. Messages the same client posts are not delivered back to it.
func (s *Service) Subscribe(ctx context.Context, sess session.Session, roomID string) (*notify.Subscription, error) {
	s.appCtx.Logger.Debug("Subscribe called", "user", sess.UserID, "room", roomID, "client", sess.ClientID)
	if err := s.requireParticipant(ctx, sess, roomID); err != nil {
		return nil, err
	}
	return s.appCtx.Hub.Subscribe(roomID, sess.ClientID), nil
}

func (s *Service) requireParticipant(ctx context.Context, sess session.Session, roomID string) error {
	if roomID == "" {
		return svcErr.Invalid("room_id", "room_id is required")
	}
	ok, err := s.rooms.IsParticipant(ctx, roomID, sess.UserID)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	exists, err := s.rooms.Exists(ctx, roomID)
	if err != nil {
		return err
	}
	if !exists {
		return svcErr.ErrRoomNotFound
	}
	return svcErr.ErrNotParticipant
}
