package api

import (
	"context"
	"time"

	"google.golang.org/grpc"
)

const RoomServiceName = pkg + "RoomService"

type Participant struct {
	UserID     string    `json:"user_id"`
	Nickname   string    `json:"nickname,omitempty"`
	Department string    `json:"department,omitempty"`
	Confirmed  bool      `json:"confirmed"`
	JoinedAt   time.Time `json:"joined_at"`
}

type Room struct {
	ID               string        `json:"id"`
	Title            string        `json:"title"`
	FromLocation     string        `json:"from_location"`
	ToLocation       string        `json:"to_location"`
	DepartureDate    string        `json:"departure_date"`
	DepartureTime    string        `json:"departure_time"`
	MaxParticipants  int           `json:"max_participants"`
	ParticipantCount int           `json:"participant_count"`
	CreatedBy        string        `json:"created_by"`
	CreatorNickname  string        `json:"creator_nickname,omitempty"`
	Status           string        `json:"status"`
	CreatedAt        time.Time     `json:"created_at"`
	Participants     []Participant `json:"participants,omitempty"`
}

type CreateRoomRequest struct {
	FromLocation  string `json:"from_location"`
	ToLocation    string `json:"to_location"`
	DepartureDate string `json:"departure_date"`
	DepartureTime string `json:"departure_time"`
}

type CreateRoomResponse struct {
	Room *Room `json:"room"`
}

type RoomRequest struct {
	RoomID string `json:"room_id"`
}

type ParticipantResponse struct {
	Participant *Participant `json:"participant"`
}

type LeaveRoomResponse struct {
	RoomDeleted bool `json:"room_deleted"`
}

type ListRoomsRequest struct {
	FromLocation  string `json:"from_location"`
	ToLocation    string `json:"to_location"`
	DepartureDate string `json:"departure_date"`
}

// ListRoomsResponse partitions the listing for the caller.
type ListRoomsResponse struct {
	Mine     []*Room `json:"mine"`
	Upcoming []*Room `json:"upcoming"`
	Past     []*Room `json:"past"`
}

type GetRoomResponse struct {
	Room *Room `json:"room"`
}

type ListMyRoomsRequest struct{}

type ListMyRoomsResponse struct {
	Rooms []*Room `json:"rooms"`
}

type RoomServiceServer interface {
	CreateRoom(context.Context, *CreateRoomRequest) (*CreateRoomResponse, error)
	JoinRoom(context.Context, *RoomRequest) (*ParticipantResponse, error)
	ConfirmParticipation(context.Context, *RoomRequest) (*ParticipantResponse, error)
	LeaveRoom(context.Context, *RoomRequest) (*LeaveRoomResponse, error)
	ListRooms(context.Context, *ListRoomsRequest) (*ListRoomsResponse, error)
	GetRoom(context.Context, *RoomRequest) (*GetRoomResponse, error)
	ListMyRooms(context.Context, *ListMyRoomsRequest) (*ListMyRoomsResponse, error)
}

var RoomServiceDesc = grpc.ServiceDesc{
	ServiceName: RoomServiceName,
	HandlerType: (*RoomServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(RoomServiceName, "CreateRoom", RoomServiceServer.CreateRoom),
		unary(RoomServiceName, "JoinRoom", RoomServiceServer.JoinRoom),
		unary(RoomServiceName, "ConfirmParticipation", RoomServiceServer.ConfirmParticipation),
		unary(RoomServiceName, "LeaveRoom", RoomServiceServer.LeaveRoom),
		unary(RoomServiceName, "ListRooms", RoomServiceServer.ListRooms),
		unary(RoomServiceName, "GetRoom", RoomServiceServer.GetRoom),
		unary(RoomServiceName, "ListMyRooms", RoomServiceServer.ListMyRooms),
	},
}

func RegisterRoomServiceServer(s grpc.ServiceRegistrar, srv RoomServiceServer) {
	s.RegisterService(&RoomServiceDesc, srv)
}

type RoomServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewRoomServiceClient(cc grpc.ClientConnInterface) *RoomServiceClient {
	return &RoomServiceClient{cc: cc}
}

func (c *RoomServiceClient) CreateRoom(ctx context.Context, in *CreateRoomRequest, opts ...grpc.CallOption) (*CreateRoomResponse, error) {
	return invoke[CreateRoomResponse](ctx, c.cc, RoomServiceName, "CreateRoom", in, opts...)
}

func (c *RoomServiceClient) JoinRoom(ctx context.Context, in *RoomRequest, opts ...grpc.CallOption) (*ParticipantResponse, error) {
	return invoke[ParticipantResponse](ctx, c.cc, RoomServiceName, "JoinRoom", in, opts...)
}

func (c *RoomServiceClient) ConfirmParticipation(ctx context.Context, in *RoomRequest, opts ...grpc.CallOption) (*ParticipantResponse, error) {
	return invoke[ParticipantResponse](ctx, c.cc, RoomServiceName, "ConfirmParticipation", in, opts...)
}

func (c *RoomServiceClient) LeaveRoom(ctx context.Context, in *RoomRequest, opts ...grpc.CallOption) (*LeaveRoomResponse, error) {
	return invoke[LeaveRoomResponse](ctx, c.cc, RoomServiceName, "LeaveRoom", in, opts...)
}

func (c *RoomServiceClient) ListRooms(ctx context.Context, in *ListRoomsRequest, opts ...grpc.CallOption) (*ListRoomsResponse, error) {
	return invoke[ListRoomsResponse](ctx, c.cc, RoomServiceName, "ListRooms", in, opts...)
}

func (c *RoomServiceClient) GetRoom(ctx context.Context, in *RoomRequest, opts ...grpc.CallOption) (*GetRoomResponse, error) {
	return invoke[GetRoomResponse](ctx, c.cc, RoomServiceName, "GetRoom", in, opts...)
}

func (c *RoomServiceClient) ListMyRooms(ctx context.Context, in *ListMyRoomsRequest, opts ...grpc.CallOption) (*ListMyRoomsResponse, error) {
	return invoke[ListMyRoomsResponse](ctx, c.cc, RoomServiceName, "ListMyRooms", in, opts...)
}
