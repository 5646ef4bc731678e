package api

import (
	"context"
	"time"

	"google.golang.org/grpc"
)

const ChatServiceName = pkg + "ChatService"

type Message struct {
	ID         string    `json:"id"`
	RoomID     string    `json:"room_id"`
	UserID     string    `json:"user_id"`
	Nickname   string    `json:"nickname,omitempty"`
	Department string    `json:"department,omitempty"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}

type PostMessageRequest struct {
	RoomID  string `json:"room_id"`
	Content string `json:"content"`
}

type PostMessageResponse struct {
	Message *Message `json:"message"`
}

type ListMessagesResponse struct {
	Messages []*Message `json:"messages"`
}

// RoomEvent is a change notification. Subscribers reload the affected
// listing or apply the change themselves.
type RoomEvent struct {
	Type        string    `json:"type"`
	RoomID      string    `json:"room_id"`
	MessageID   string    `json:"message_id,omitempty"`
	UserID      string    `json:"user_id,omitempty"`
	Change      string    `json:"change,omitempty"`
	RoomDeleted bool      `json:"room_deleted,omitempty"`
	Origin      string    `json:"origin,omitempty"`
	At          time.Time `json:"at"`
}

type ChatServiceServer interface {
	PostMessage(context.Context, *PostMessageRequest) (*PostMessageResponse, error)
	ListMessages(context.Context, *RoomRequest) (*ListMessagesResponse, error)
	Subscribe(*RoomRequest, ChatService_SubscribeServer) error
}

// ChatService_SubscribeServer is the server side of a Subscribe stream.
type ChatService_SubscribeServer interface {
	Send(*RoomEvent) error
	grpc.ServerStream
}

type chatSubscribeServer struct {
	grpc.ServerStream
}

func (s *chatSubscribeServer) Send(e *RoomEvent) error {
	return s.ServerStream.SendMsg(e)
}

func subscribeHandler(srv any, stream grpc.ServerStream) error {
	in := new(RoomRequest)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(ChatServiceServer).Subscribe(in, &chatSubscribeServer{stream})
}

var ChatServiceDesc = grpc.ServiceDesc{
	ServiceName: ChatServiceName,
	HandlerType: (*ChatServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(ChatServiceName, "PostMessage", ChatServiceServer.PostMessage),
		unary(ChatServiceName, "ListMessages", ChatServiceServer.ListMessages),
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "Subscribe",
			Handler:       subscribeHandler,
			ServerStreams: true,
		},
	},
}

func RegisterChatServiceServer(s grpc.ServiceRegistrar, srv ChatServiceServer) {
	s.RegisterService(&ChatServiceDesc, srv)
}

type ChatServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewChatServiceClient(cc grpc.ClientConnInterface) *ChatServiceClient {
	return &ChatServiceClient{cc: cc}
}

func (c *ChatServiceClient) PostMessage(ctx context.Context, in *PostMessageRequest, opts ...grpc.CallOption) (*PostMessageResponse, error) {
	return invoke[PostMessageResponse](ctx, c.cc, ChatServiceName, "PostMessage", in, opts...)
}

func (c *ChatServiceClient) ListMessages(ctx context.Context, in *RoomRequest, opts ...grpc.CallOption) (*ListMessagesResponse, error) {
	return invoke[ListMessagesResponse](ctx, c.cc, ChatServiceName, "ListMessages", in, opts...)
}

// ChatService_SubscribeClient receives the events of one room.
type ChatService_SubscribeClient interface {
	Recv() (*RoomEvent, error)
	grpc.ClientStream
}

type chatSubscribeClient struct {
	grpc.ClientStream
}

func (c *chatSubscribeClient) Recv() (*RoomEvent, error) {
	e := new(RoomEvent)
	if err := c.ClientStream.RecvMsg(e); err != nil {
		return nil, err
	}
	return e, nil
}

func (c *ChatServiceClient) Subscribe(ctx context.Context, in *RoomRequest, opts ...grpc.CallOption) (ChatService_SubscribeClient, error) {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	stream, err := c.cc.NewStream(ctx, &ChatServiceDesc.Streams[0], fullMethod(ChatServiceName, "Subscribe"), opts...)
	if err != nil {
		return nil, err
	}
	if err := stream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := stream.CloseSend(); err != nil {
		return nil, err
	}
	return &chatSubscribeClient{stream}, nil
}
