package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/oggyb/ridemate/internal/db"
	svcErr "github.com/oggyb/ridemate/internal/errors"
	"github.com/oggyb/ridemate/internal/utils/pagination"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(database *gorm.DB) *UserRepository {
	return &UserRepository{db: database}
}

// Create inserts a new user. Unique violations are reported as
// ErrDuplicateEmail or ErrDuplicateNickname.
func (r *UserRepository) Create(ctx context.Context, u *db.User) error {
	err := r.db.WithContext(ctx).Create(u).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		taken, lookupErr := r.EmailTaken(ctx, u.Email)
		if lookupErr != nil {
			return lookupErr
		}
		if taken {
			return svcErr.ErrDuplicateEmail
		}
		return svcErr.ErrDuplicateNickname
	}
	return err
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*db.User, error) {
	var u db.User
	err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, svcErr.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*db.User, error) {
	var u db.User
	err := r.db.WithContext(ctx).First(&u, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, svcErr.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) EmailTaken(ctx context.Context, email string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&db.User{}).Where("email = ?", email).Count(&n).Error
	return n > 0, err
}

// NicknameTaken reports whether another user already uses nickname.
func (r *UserRepository) NicknameTaken(ctx context.Context, nickname, exceptID string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&db.User{}).
		Where("nickname = ? AND id <> ?", nickname, exceptID).
		Count(&n).Error
	return n > 0, err
}

// UpdateNickname stores a new nickname and its change time. The update only
// applies while the previous change happened at or before lastChangeBy, so
// concurrent renames cannot both slip through the cooldown.
func (r *UserRepository) UpdateNickname(ctx context.Context, id, nickname string, at, lastChangeBy time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&db.User{}).
		Where("id = ? AND (nickname_updated_at IS NULL OR nickname_updated_at <= ?)", id, lastChangeBy.UTC()).
		Updates(map[string]any{"nickname": nickname, "nickname_updated_at": at.UTC()})
	if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
		return svcErr.ErrDuplicateNickname
	}
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return svcErr.ErrNicknameCooldown
	}
	return nil
}

// SetStatus overwrites a user's account status and returns the updated row.
func (r *UserRepository) SetStatus(ctx context.Context, id, status string) (*db.User, error) {
	u, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u.Status == status {
		return u, nil
	}
	if err := r.db.WithContext(ctx).Model(u).Update("status", status).Error; err != nil {
		return nil, err
	}
	u.Status = status
	return u, nil
}

// List returns users newest first. A non-empty query matches name, nickname
// or email by substring.
func (r *UserRepository) List(ctx context.Context, query string, paginationToken *string, limit int) ([]db.User, *string, error) {
	q := r.db.WithContext(ctx).Model(&db.User{})
	if query = strings.TrimSpace(query); query != "" {
		like := "%" + query + "%"
		q = q.Where("users.name LIKE ? OR users.nickname LIKE ? OR users.email LIKE ?", like, like, like)
	}
	q, err := afterCursor(q, "users", paginationToken)
	if err != nil {
		return nil, nil, err
	}

	var users []db.User
	if err := q.Order("created_at DESC, id DESC").Limit(limit + 1).Find(&users).Error; err != nil {
		return nil, nil, err
	}
	users, next := nextPage(users, limit, func(u db.User) pagination.Cursor {
		return pagination.After(u.ID, u.CreatedAt)
	})
	return users, next, nil
}
