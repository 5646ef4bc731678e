package account

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/oggyb/ridemate/internal/app"
	"github.com/oggyb/ridemate/internal/db"
	svcErr "github.com/oggyb/ridemate/internal/errors"
	"github.com/oggyb/ridemate/internal/repository"
	"github.com/oggyb/ridemate/internal/session"
)

// Service manages accounts: signup, login, profile, nickname changes and
// favorite routes.
type Service struct {
	appCtx    *app.AppContext
	users     *repository.UserRepository
	favorites *repository.FavoriteRepository

	// BcryptCost is the hashing cost used for new passwords.
	BcryptCost int
}

func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:     appCtx,
		users:      repository.NewUserRepository(appCtx.DB),
		favorites:  repository.NewFavoriteRepository(appCtx.DB),
		BcryptCost: bcrypt.DefaultCost,
	}
}

// RegisterInput is a signup form.
type RegisterInput struct {
	Email           string
	Password        string
	PasswordConfirm string
	Name            string
	Phone           string
	Nickname        string
	Department      string
}

// Register validates the form and creates an active, non-admin account.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*db.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	s.appCtx.Logger.Debug("Register called", "email", email)

	name := strings.TrimSpace(in.Name)
	nickname := strings.TrimSpace(in.Nickname)
	phone := strings.TrimSpace(in.Phone)

	if err := validateEmail(email, s.appCtx.Config.Account.EmailDomain); err != nil {
		return nil, err
	}
	if err := validatePassword(in.Password, in.PasswordConfirm); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, svcErr.Invalid("name", "name is required")
	}
	if err := validatePhone(phone); err != nil {
		return nil, err
	}
	if err := validateNickname(nickname); err != nil {
		return nil, err
	}
	if err := validateDepartment(in.Department); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	u := &db.User{
		Email:        email,
		Name:         name,
		Phone:        phone,
		Nickname:     nickname,
		Department:   in.Department,
		PasswordHash: string(hash),
		Status:       db.UserActive,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if svcErr.KindOf(err) == svcErr.KindTransient {
			s.appCtx.Logger.Error("register failed", "email", email, "err", err)
		}
		return nil, err
	}
	s.appCtx.Logger.Info("user registered", "user", u.ID)
	return u, nil
}

// Login checks credentials and issues a bearer token.
func (s *Service) Login(ctx context.Context, email, password string) (string, time.Time, *db.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	s.appCtx.Logger.Debug("Login called", "email", email)

	u, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, svcErr.ErrUserNotFound) {
		return "", time.Time{}, nil, svcErr.ErrInvalidCredentials
	}
	if err != nil {
		return "", time.Time{}, nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return "", time.Time{}, nil, svcErr.ErrInvalidCredentials
	}

	token, expires, err := s.appCtx.Tokens.Issue(u.ID, u.Nickname)
	if err != nil {
		return "", time.Time{}, nil, err
	}
	return token, expires, u, nil
}

func (s *Service) GetProfile(ctx context.Context, sess session.Session) (*db.User, error) {
	return s.users.GetByID(ctx, sess.UserID)
}

// UpdateNickname renames the caller. Setting the current nickname is a
// no-op; otherwise the previous change must be at least the cooldown ago.
func (s *Service) UpdateNickname(ctx context.Context, sess session.Session, nickname string) (*db.User, error) {
	s.appCtx.Logger.Debug("UpdateNickname called", "user", sess.UserID)

	nickname = strings.TrimSpace(nickname)
	if err := validateNickname(nickname); err != nil {
		return nil, err
	}

	u, err := s.users.GetByID(ctx, sess.UserID)
	if err != nil {
		return nil, err
	}
	if u.Nickname == nickname {
		return u, nil
	}

	now := s.appCtx.Now()
	cooldown := s.appCtx.Config.Account.NicknameCooldown
	if err := s.checkCooldown(u, now); err != nil {
		return nil, err
	}

	taken, err := s.users.NicknameTaken(ctx, nickname, u.ID)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, svcErr.ErrDuplicateNickname
	}

	if err := s.users.UpdateNickname(ctx, u.ID, nickname, now, now.Add(-cooldown)); err != nil {
		if errors.Is(err, svcErr.ErrNicknameCooldown) {
			// lost a race with another rename
			if fresh, getErr := s.users.GetByID(ctx, u.ID); getErr == nil {
				if cdErr := s.checkCooldown(fresh, now); cdErr != nil {
					return nil, cdErr
				}
			}
		}
		return nil, err
	}
	return s.users.GetByID(ctx, u.ID)
}

func (s *Service) checkCooldown(u *db.User, now time.Time) error {
	if u.NicknameUpdatedAt == nil {
		return nil
	}
	next := u.NicknameUpdatedAt.Add(s.appCtx.Config.Account.NicknameCooldown)
	if now.Before(next) {
		return svcErr.WithMessage(svcErr.ErrNicknameCooldown,
			fmt.Sprintf("nickname can be changed again after %s", next.In(s.appCtx.Config.Location()).Format(time.DateTime)))
	}
	return nil
}

// AddFavorite saves a route for the caller.
func (s *Service) AddFavorite(ctx context.Context, sess session.Session, from, to string) (*db.Favorite, error) {
	s.appCtx.Logger.Debug("AddFavorite called", "user", sess.UserID, "from", from, "to", to)
	if err := validateRoute(from, to); err != nil {
		return nil, err
	}
	f := &db.Favorite{UserID: sess.UserID, FromLocation: from, ToLocation: to}
	if err := s.favorites.Create(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

// ListFavorites returns the caller's saved routes, newest first.
func (s *Service) ListFavorites(ctx context.Context, sess session.Session) ([]db.Favorite, error) {
	return s.favorites.ListByUser(ctx, sess.UserID)
}
