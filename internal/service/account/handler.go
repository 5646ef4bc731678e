package account

import (
	"context"
	"time"

	"github.com/oggyb/ridemate/internal/api"
	svcErr "github.com/oggyb/ridemate/internal/errors"
	"github.com/oggyb/ridemate/internal/session"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Register(ctx context.Context, req *api.RegisterRequest) (*api.UserResponse, error) {
	u, err := h.svc.Register(ctx, RegisterInput{
		Email:           req.Email,
		Password:        req.Password,
		PasswordConfirm: req.PasswordConfirm,
		Name:            req.Name,
		Phone:           req.Phone,
		Nickname:        req.Nickname,
		Department:      req.Department,
	})
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return &api.UserResponse{User: api.UserFromModel(u, h.cooldown())}, nil
}

func (h *Handler) Login(ctx context.Context, req *api.LoginRequest) (*api.LoginResponse, error) {
	token, expires, u, err := h.svc.Login(ctx, req.Email, req.Password)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return &api.LoginResponse{Token: token, ExpiresAt: expires, User: api.UserFromModel(u, h.cooldown())}, nil
}

func (h *Handler) GetProfile(ctx context.Context, _ *api.GetProfileRequest) (*api.UserResponse, error) {
	sess, err := session.Require(ctx)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	u, err := h.svc.GetProfile(ctx, sess)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return &api.UserResponse{User: api.UserFromModel(u, h.cooldown())}, nil
}

func (h *Handler) UpdateNickname(ctx context.Context, req *api.UpdateNicknameRequest) (*api.UserResponse, error) {
	sess, err := session.Require(ctx)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	u, err := h.svc.UpdateNickname(ctx, sess, req.Nickname)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return &api.UserResponse{User: api.UserFromModel(u, h.cooldown())}, nil
}

func (h *Handler) AddFavorite(ctx context.Context, req *api.AddFavoriteRequest) (*api.FavoriteResponse, error) {
	sess, err := session.Require(ctx)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	f, err := h.svc.AddFavorite(ctx, sess, req.FromLocation, req.ToLocation)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return &api.FavoriteResponse{Favorite: api.FavoriteFromModel(f)}, nil
}

func (h *Handler) ListFavorites(ctx context.Context, _ *api.ListFavoritesRequest) (*api.ListFavoritesResponse, error) {
	sess, err := session.Require(ctx)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	favs, err := h.svc.ListFavorites(ctx, sess)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	resp := &api.ListFavoritesResponse{Favorites: make([]*api.Favorite, 0, len(favs))}
	for i := range favs {
		resp.Favorites = append(resp.Favorites, api.FavoriteFromModel(&favs[i]))
	}
	return resp, nil
}

func (h *Handler) cooldown() time.Duration {
	return h.svc.appCtx.Config.Account.NicknameCooldown
}
