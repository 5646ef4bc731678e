package chat

import (
	"context"

	"github.com/oggyb/ridemate/internal/api"
	svcErr "github.com/oggyb/ridemate/internal/errors"
	"github.com/oggyb/ridemate/internal/notify"
	"github.com/oggyb/ridemate/internal/session"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) PostMessage(ctx context.Context, req *api.PostMessageRequest) (*api.PostMessageResponse, error) {
	sess, err := session.Require(ctx)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	msg, err := h.svc.Post(ctx, sess, req.RoomID, req.Content)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return &api.PostMessageResponse{Message: api.MessageFromModel(msg)}, nil
}

func (h *Handler) ListMessages(ctx context.Context, req *api.RoomRequest) (*api.ListMessagesResponse, error) {
	sess, err := session.Require(ctx)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	msgs, err := h.svc.List(ctx, sess, req.RoomID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return &api.ListMessagesResponse{Messages: api.MessagesFromModels(msgs)}, nil
}

// Subscribe streams the room's events until the client goes away, the
// caller leaves the room, or the room is deleted.
func (h *Handler) Subscribe(req *api.RoomRequest, stream api.ChatService_SubscribeServer) error {
	ctx := stream.Context()
	sess, err := session.Require(ctx)
	if err != nil {
		return svcErr.Map(err)
	}
	sub, err := h.svc.Subscribe(ctx, sess, req.RoomID)
	if err != nil {
		return svcErr.Map(err)
	}
	defer sub.Close()

	for {
		select {
		case <-ctx.Done():
			return nil
		case e, ok := <-sub.Events():
			if !ok {
				return nil
			}
			if err := stream.Send(api.EventFromNotify(e)); err != nil {
				return err
			}
			if Ends(e, sess.UserID) {
				return nil
			}
		}
	}
}

// Ends reports whether e terminates userID's subscription to its room.
func Ends(e notify.Event, userID string) bool {
	if e.RoomDeleted {
		return true
	}
	return e.Type == notify.EventParticipantChanged && e.Change == notify.ChangeLeft && e.UserID == userID
}
