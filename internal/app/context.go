package app

import (
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/oggyb/ridemate/internal/auth"
	"github.com/oggyb/ridemate/internal/cache"
	"github.com/oggyb/ridemate/internal/config"
	"github.com/oggyb/ridemate/internal/notify"
)

// AppContext holds shared dependencies (Config, DB, Redis, event hub, Logger, etc.)
type AppContext struct {
	Config     *config.Config
	DB         *gorm.DB
	RedisCache *cache.RedisCache
	Logger     *slog.Logger

	// Hub fans room events out to this instance's subscribers. Events is
	// where services publish; it is the Hub itself unless a cross-instance
	// bus is installed.
	Hub    *notify.Hub
	Events notify.Publisher

	Tokens *auth.Tokens
	Now    func() time.Time
}

// New creates a new AppContext with a local event hub and the wall clock.
func New(cfg *config.Config, db *gorm.DB, rdb *cache.RedisCache, logger *slog.Logger) *AppContext {
	hub := notify.NewHub(logger)
	return &AppContext{
		Config:     cfg,
		DB:         db,
		RedisCache: rdb,
		Logger:     logger,
		Hub:        hub,
		Events:     hub,
		Tokens:     auth.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, time.Now),
		Now:        time.Now,
	}
}

// Today returns the current date in the configured timezone.
func (a *AppContext) Today() time.Time {
	now := a.Now().In(a.Config.Location())
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}
