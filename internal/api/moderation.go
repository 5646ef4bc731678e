package api

import (
	"context"
	"time"

	"google.golang.org/grpc"
)

const ModerationServiceName = pkg + "ModerationService"

type Report struct {
	ID               string    `json:"id"`
	RoomID           string    `json:"room_id,omitempty"`
	ReporterID       string    `json:"reporter_id"`
	ReporterNickname string    `json:"reporter_nickname,omitempty"`
	ReportedID       string    `json:"reported_id"`
	ReportedNickname string    `json:"reported_nickname,omitempty"`
	Reason           string    `json:"reason"`
	Status           string    `json:"status"`
	CreatedAt        time.Time `json:"created_at"`
}

type FileReportRequest struct {
	RoomID     string `json:"room_id"`
	ReportedID string `json:"reported_id"`
	Reason     string `json:"reason"`
}

type ReportResponse struct {
	Report *Report `json:"report"`
}

type AdvanceReportStatusRequest struct {
	ReportID string `json:"report_id"`
	Status   string `json:"status"`
}

type SetUserStatusRequest struct {
	UserID string `json:"user_id"`
	Status string `json:"status"`
}

type UserResponse struct {
	User *User `json:"user"`
}

type ListReportsRequest struct {
	Status          string  `json:"status,omitempty"`
	PageSize        int     `json:"page_size,omitempty"`
	PaginationToken *string `json:"pagination_token,omitempty"`
}

type ListReportsResponse struct {
	Reports             []*Report `json:"reports"`
	NextPaginationToken *string   `json:"next_pagination_token,omitempty"`
}

type ListUsersRequest struct {
	Query           string  `json:"query,omitempty"`
	PageSize        int     `json:"page_size,omitempty"`
	PaginationToken *string `json:"pagination_token,omitempty"`
}

type ListUsersResponse struct {
	Users               []*User `json:"users"`
	NextPaginationToken *string `json:"next_pagination_token,omitempty"`
}

type ListAllRoomsRequest struct {
	PageSize        int     `json:"page_size,omitempty"`
	PaginationToken *string `json:"pagination_token,omitempty"`
}

type ListAllRoomsResponse struct {
	Rooms               []*Room `json:"rooms"`
	NextPaginationToken *string `json:"next_pagination_token,omitempty"`
}

type ModerationServiceServer interface {
	FileReport(context.Context, *FileReportRequest) (*ReportResponse, error)
	AdvanceReportStatus(context.Context, *AdvanceReportStatusRequest) (*ReportResponse, error)
	SetUserStatus(context.Context, *SetUserStatusRequest) (*UserResponse, error)
	ListReports(context.Context, *ListReportsRequest) (*ListReportsResponse, error)
	ListUsers(context.Context, *ListUsersRequest) (*ListUsersResponse, error)
	ListRooms(context.Context, *ListAllRoomsRequest) (*ListAllRoomsResponse, error)
	ListRoomMessages(context.Context, *RoomRequest) (*ListMessagesResponse, error)
}

var ModerationServiceDesc = grpc.ServiceDesc{
	ServiceName: ModerationServiceName,
	HandlerType: (*ModerationServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(ModerationServiceName, "FileReport", ModerationServiceServer.FileReport),
		unary(ModerationServiceName, "AdvanceReportStatus", ModerationServiceServer.AdvanceReportStatus),
		unary(ModerationServiceName, "SetUserStatus", ModerationServiceServer.SetUserStatus),
		unary(ModerationServiceName, "ListReports", ModerationServiceServer.ListReports),
		unary(ModerationServiceName, "ListUsers", ModerationServiceServer.ListUsers),
		unary(ModerationServiceName, "ListRooms", ModerationServiceServer.ListRooms),
		unary(ModerationServiceName, "ListRoomMessages", ModerationServiceServer.ListRoomMessages),
	},
}

func RegisterModerationServiceServer(s grpc.ServiceRegistrar, srv ModerationServiceServer) {
	s.RegisterService(&ModerationServiceDesc, srv)
}

type ModerationServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewModerationServiceClient(cc grpc.ClientConnInterface) *ModerationServiceClient {
	return &ModerationServiceClient{cc: cc}
}

func (c *ModerationServiceClient) FileReport(ctx context.Context, in *FileReportRequest, opts ...grpc.CallOption) (*ReportResponse, error) {
	return invoke[ReportResponse](ctx, c.cc, ModerationServiceName, "FileReport", in, opts...)
}

func (c *ModerationServiceClient) AdvanceReportStatus(ctx context.Context, in *AdvanceReportStatusRequest, opts ...grpc.CallOption) (*ReportResponse, error) {
	return invoke[ReportResponse](ctx, c.cc, ModerationServiceName, "AdvanceReportStatus", in, opts...)
}

func (c *ModerationServiceClient) SetUserStatus(ctx context.Context, in *SetUserStatusRequest, opts ...grpc.CallOption) (*UserResponse, error) {
	return invoke[UserResponse](ctx, c.cc, ModerationServiceName, "SetUserStatus", in, opts...)
}

func (c *ModerationServiceClient) ListReports(ctx context.Context, in *ListReportsRequest, opts ...grpc.CallOption) (*ListReportsResponse, error) {
	return invoke[ListReportsResponse](ctx, c.cc, ModerationServiceName, "ListReports", in, opts...)
}

func (c *ModerationServiceClient) ListUsers(ctx context.Context, in *ListUsersRequest, opts ...grpc.CallOption) (*ListUsersResponse, error) {
	return invoke[ListUsersResponse](ctx, c.cc, ModerationServiceName, "ListUsers", in, opts...)
}

func (c *ModerationServiceClient) ListRooms(ctx context.Context, in *ListAllRoomsRequest, opts ...grpc.CallOption) (*ListAllRoomsResponse, error) {
	return invoke[ListAllRoomsResponse](ctx, c.cc, ModerationServiceName, "ListRooms", in, opts...)
}

func (c *ModerationServiceClient) ListRoomMessages(ctx context.Context, in *RoomRequest, opts ...grpc.CallOption) (*ListMessagesResponse, error) {
	return invoke[ListMessagesResponse](ctx, c.cc, ModerationServiceName, "ListRoomMessages", in, opts...)
}
