package moderation

import (
	"context"

	"github.com/oggyb/ridemate/internal/api"
	svcErr "github.com/oggyb/ridemate/internal/errors"
	"github.com/oggyb/ridemate/internal/session"
)

// Handler exposes Service over gRPC. It is the authorization boundary for
// the administrator methods.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func requireAdmin(ctx context.Context) error {
	sess, err := session.Require(ctx)
	if err != nil {
		return err
	}
	if !sess.IsAdmin {
		return svcErr.ErrAdminOnly
	}
	return nil
}

func (h *Handler) FileReport(ctx context.Context, req *api.FileReportRequest) (*api.ReportResponse, error) {
	sess, err := session.Require(ctx)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	report, err := h.svc.FileReport(ctx, sess, req.RoomID, req.ReportedID, req.Reason)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return &api.ReportResponse{Report: api.ReportFromModel(report)}, nil
}

func (h *Handler) AdvanceReportStatus(ctx context.Context, req *api.AdvanceReportStatusRequest) (*api.ReportResponse, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, svcErr.Map(err)
	}
	report, err := h.svc.AdvanceReportStatus(ctx, req.ReportID, req.Status)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return &api.ReportResponse{Report: api.ReportFromModel(report)}, nil
}

func (h *Handler) SetUserStatus(ctx context.Context, req *api.SetUserStatusRequest) (*api.UserResponse, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, svcErr.Map(err)
	}
	u, err := h.svc.SetUserStatus(ctx, req.UserID, req.Status)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return &api.UserResponse{User: api.UserFromModel(u, 0)}, nil
}

func (h *Handler) ListReports(ctx context.Context, req *api.ListReportsRequest) (*api.ListReportsResponse, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, svcErr.Map(err)
	}
	reports, next, err := h.svc.ListReports(ctx, req.Status, req.PaginationToken, req.PageSize)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	resp := &api.ListReportsResponse{Reports: make([]*api.Report, 0, len(reports)), NextPaginationToken: next}
	for i := range reports {
		resp.Reports = append(resp.Reports, api.ReportFromModel(&reports[i]))
	}
	return resp, nil
}

func (h *Handler) ListUsers(ctx context.Context, req *api.ListUsersRequest) (*api.ListUsersResponse, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, svcErr.Map(err)
	}
	users, next, err := h.svc.ListUsers(ctx, req.Query, req.PaginationToken, req.PageSize)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	resp := &api.ListUsersResponse{Users: make([]*api.User, 0, len(users)), NextPaginationToken: next}
	for i := range users {
		resp.Users = append(resp.Users, api.UserFromModel(&users[i], 0))
	}
	return resp, nil
}

func (h *Handler) ListRooms(ctx context.Context, req *api.ListAllRoomsRequest) (*api.ListAllRoomsResponse, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, svcErr.Map(err)
	}
	rooms, next, err := h.svc.ListRooms(ctx, req.PaginationToken, req.PageSize)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return &api.ListAllRoomsResponse{Rooms: api.RoomsFromModels(rooms), NextPaginationToken: next}, nil
}

func (h *Handler) ListRoomMessages(ctx context.Context, req *api.RoomRequest) (*api.ListMessagesResponse, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, svcErr.Map(err)
	}
	msgs, err := h.svc.ListRoomMessages(ctx, req.RoomID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return &api.ListMessagesResponse{Messages: api.MessagesFromModels(msgs)}, nil
}
