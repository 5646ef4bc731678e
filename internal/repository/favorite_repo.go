package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/oggyb/ridemate/internal/db"
	svcErr "github.com/oggyb/ridemate/internal/errors"
)

type FavoriteRepository struct {
	db *gorm.DB
}

func NewFavoriteRepository(database *gorm.DB) *FavoriteRepository {
	return &FavoriteRepository{db: database}
}

// Create saves a route for a user, ErrDuplicateFavorite if already saved.
func (r *FavoriteRepository) Create(ctx context.Context, f *db.Favorite) error {
	err := r.db.WithContext(ctx).Create(f).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return svcErr.ErrDuplicateFavorite
	}
	return err
}

// ListByUser returns a user's favorites newest first.
func (r *FavoriteRepository) ListByUser(ctx context.Context, userID string) ([]db.Favorite, error) {
	var favs []db.Favorite
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&favs).Error
	return favs, err
}
