package api

import (
	"context"
	"time"

	"google.golang.org/grpc"
)

const AccountServiceName = pkg + "AccountService"

type User struct {
	ID                   string     `json:"id"`
	Email                string     `json:"email"`
	Name                 string     `json:"name"`
	Phone                string     `json:"phone"`
	Nickname             string     `json:"nickname"`
	Department           string     `json:"department"`
	Status               string     `json:"status"`
	IsAdmin              bool       `json:"is_admin"`
	NicknameUpdatedAt    *time.Time `json:"nickname_updated_at,omitempty"`
	NextNicknameChangeAt *time.Time `json:"next_nickname_change_at,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
}

type Favorite struct {
	ID           string    `json:"id"`
	FromLocation string    `json:"from_location"`
	ToLocation   string    `json:"to_location"`
	CreatedAt    time.Time `json:"created_at"`
}

type RegisterRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
	Name            string `json:"name"`
	Phone           string `json:"phone"`
	Nickname        string `json:"nickname"`
	Department      string `json:"department"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      *User     `json:"user"`
}

type GetProfileRequest struct{}

type UpdateNicknameRequest struct {
	Nickname string `json:"nickname"`
}

type AddFavoriteRequest struct {
	FromLocation string `json:"from_location"`
	ToLocation   string `json:"to_location"`
}

type FavoriteResponse struct {
	Favorite *Favorite `json:"favorite"`
}

type ListFavoritesRequest struct{}

type ListFavoritesResponse struct {
	Favorites []*Favorite `json:"favorites"`
}

type AccountServiceServer interface {
	Register(context.Context, *RegisterRequest) (*UserResponse, error)
	Login(context.Context, *LoginRequest) (*LoginResponse, error)
	GetProfile(context.Context, *GetProfileRequest) (*UserResponse, error)
	UpdateNickname(context.Context, *UpdateNicknameRequest) (*UserResponse, error)
	AddFavorite(context.Context, *AddFavoriteRequest) (*FavoriteResponse, error)
	ListFavorites(context.Context, *ListFavoritesRequest) (*ListFavoritesResponse, error)
}

var AccountServiceDesc = grpc.ServiceDesc{
	ServiceName: AccountServiceName,
	HandlerType: (*AccountServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(AccountServiceName, "Register", AccountServiceServer.Register),
		unary(AccountServiceName, "Login", AccountServiceServer.Login),
		unary(AccountServiceName, "GetProfile", AccountServiceServer.GetProfile),
		unary(AccountServiceName, "UpdateNickname", AccountServiceServer.UpdateNickname),
		unary(AccountServiceName, "AddFavorite", AccountServiceServer.AddFavorite),
		unary(AccountServiceName, "ListFavorites", AccountServiceServer.ListFavorites),
	},
}

var (
	// PublicMethods need no bearer token.
	PublicMethods = map[string]bool{
		fullMethod(AccountServiceName, "Register"): true,
		fullMethod(AccountServiceName, "Login"):    true,
	}

	// SuspendedAllowed are the authenticated methods a suspended user may
	// still call.
	SuspendedAllowed = map[string]bool{
		fullMethod(AccountServiceName, "GetProfile"): true,
	}
)

func RegisterAccountServiceServer(s grpc.ServiceRegistrar, srv AccountServiceServer) {
	s.RegisterService(&AccountServiceDesc, srv)
}

type AccountServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewAccountServiceClient(cc grpc.ClientConnInterface) *AccountServiceClient {
	return &AccountServiceClient{cc: cc}
}

func (c *AccountServiceClient) Register(ctx context.Context, in *RegisterRequest, opts ...grpc.CallOption) (*UserResponse, error) {
	return invoke[UserResponse](ctx, c.cc, AccountServiceName, "Register", in, opts...)
}

func (c *AccountServiceClient) Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*LoginResponse, error) {
	return invoke[LoginResponse](ctx, c.cc, AccountServiceName, "Login", in, opts...)
}

func (c *AccountServiceClient) GetProfile(ctx context.Context, in *GetProfileRequest, opts ...grpc.CallOption) (*UserResponse, error) {
	return invoke[UserResponse](ctx, c.cc, AccountServiceName, "GetProfile", in, opts...)
}

func (c *AccountServiceClient) UpdateNickname(ctx context.Context, in *UpdateNicknameRequest, opts ...grpc.CallOption) (*UserResponse, error) {
	return invoke[UserResponse](ctx, c.cc, AccountServiceName, "UpdateNickname", in, opts...)
}

func (c *AccountServiceClient) AddFavorite(ctx context.Context, in *AddFavoriteRequest, opts ...grpc.CallOption) (*FavoriteResponse, error) {
	return invoke[FavoriteResponse](ctx, c.cc, AccountServiceName, "AddFavorite", in, opts...)
}

func (c *AccountServiceClient) ListFavorites(ctx context.Context, in *ListFavoritesRequest, opts ...grpc.CallOption) (*ListFavoritesResponse, error) {
	return invoke[ListFavoritesResponse](ctx, c.cc, AccountServiceName, "ListFavorites", in, opts...)
}
