package room

import (
	"context"

	"github.com/oggyb/ridemate/internal/api"
	svcErr "github.com/oggyb/ridemate/internal/errors"
	"github.com/oggyb/ridemate/internal/session"
)

// Handler exposes Service as api.RoomServiceServer. It resolves the caller's
// session and maps domain errors to gRPC statuses.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) CreateRoom(ctx context.Context, req *api.CreateRoomRequest) (*api.CreateRoomResponse, error) {
	sess, err := session.Require(ctx)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	room, err := h.svc.Create(ctx, sess, CreateInput{
		FromLocation:  req.FromLocation,
		ToLocation:    req.ToLocation,
		DepartureDate: req.DepartureDate,
		DepartureTime: req.DepartureTime,
	})
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return &api.CreateRoomResponse{Room: api.RoomFromModel(room)}, nil
}

func (h *Handler) JoinRoom(ctx context.Context, req *api.RoomRequest) (*api.ParticipantResponse, error) {
	sess, err := session.Require(ctx)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	p, err := h.svc.Join(ctx, sess, req.RoomID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return &api.ParticipantResponse{Participant: api.ParticipantFromModel(p)}, nil
}

func (h *Handler) ConfirmParticipation(ctx context.Context, req *api.RoomRequest) (*api.ParticipantResponse, error) {
	sess, err := session.Require(ctx)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	p, err := h.svc.Confirm(ctx, sess, req.RoomID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return &api.ParticipantResponse{Participant: api.ParticipantFromModel(p)}, nil
}

func (h *Handler) LeaveRoom(ctx context.Context, req *api.RoomRequest) (*api.LeaveRoomResponse, error) {
	sess, err := session.Require(ctx)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	res, err := h.svc.Leave(ctx, sess, req.RoomID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return &api.LeaveRoomResponse{RoomDeleted: res.RoomDeleted}, nil
}

func (h *Handler) ListRooms(ctx context.Context, req *api.ListRoomsRequest) (*api.ListRoomsResponse, error) {
	sess, err := session.Require(ctx)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	l, err := h.svc.List(ctx, sess, req.FromLocation, req.ToLocation, req.DepartureDate)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return &api.ListRoomsResponse{
		Mine:     api.RoomsFromModels(l.Mine),
		Upcoming: api.RoomsFromModels(l.Upcoming),
		Past:     api.RoomsFromModels(l.Past),
	}, nil
}

func (h *Handler) GetRoom(ctx context.Context, req *api.RoomRequest) (*api.GetRoomResponse, error) {
	sess, err := session.Require(ctx)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	room, err := h.svc.Get(ctx, sess, req.RoomID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return &api.GetRoomResponse{Room: api.RoomFromModel(room)}, nil
}

func (h *Handler) ListMyRooms(ctx context.Context, _ *api.ListMyRoomsRequest) (*api.ListMyRoomsResponse, error) {
	sess, err := session.Require(ctx)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	rooms, err := h.svc.ListMine(ctx, sess)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return &api.ListMyRoomsResponse{Rooms: api.RoomsFromModels(rooms)}, nil
}
