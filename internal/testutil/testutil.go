// Package testutil builds isolated stores and app contexts for tests.
package testutil

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/oggyb/ridemate/internal/app"
	"github.com/oggyb/ridemate/internal/auth"
	"github.com/oggyb/ridemate/internal/cache"
	"github.com/oggyb/ridemate/internal/config"
	"github.com/oggyb/ridemate/internal/db"
	"github.com/oggyb/ridemate/internal/logger"
)

// Password is the plain password of every user made by CreateUser.
const Password = "password1234"

var passwordHash = sync.OnceValue(func() string {
	h, err := bcrypt.GenerateFromPassword([]byte(Password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	return string(h)
})

// Clock is a settable time source.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func NewClock(t time.Time) *Clock { return &Clock{now: t} }

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// NewDB opens a private in-memory sqlite database with the schema migrated.
// A single connection serialises transactions the way a row lock would.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	database, err := gorm.Open(sqlite.Open(dsn), db.GormConfig(logger.Discard(), false))
	require.NoError(t, err)

	sqlDB, err := database.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.Migrate(database))
	return database
}

// Env is a fully wired AppContext backed by sqlite and miniredis.
type Env struct {
	App   *app.AppContext
	DB    *gorm.DB
	Redis *miniredis.Miniredis
	Clock *Clock
}

// NewEnv builds an Env whose clock starts at now.
func NewEnv(t *testing.T, now time.Time) *Env {
	t.Helper()

	mr := miniredis.RunT(t)

	cfg := &config.Config{}
	cfg.App.ENV = "test"
	cfg.App.Timezone = "Asia/Seoul"
	cfg.Redis.Addr = mr.Addr()
	cfg.Auth.JWTSecret = "test-secret"
	cfg.Auth.TokenTTL = time.Hour
	cfg.Room.MaxParticipants = 4
	cfg.Room.ListCacheTTL = 30 * time.Second
	cfg.Room.SweepInterval = time.Minute
	cfg.Account.NicknameCooldown = 14 * 24 * time.Hour
	cfg.Account.EmailDomain = "@gachon.ac.kr"

	database := NewDB(t)
	redisCache := cache.NewRedisCache(cfg)
	t.Cleanup(func() { _ = redisCache.Close() })

	clock := NewClock(now)
	appCtx := app.New(cfg, database, redisCache, logger.Discard())
	appCtx.Now = clock.Now
	appCtx.Tokens = auth.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, clock.Now)

	return &Env{App: appCtx, DB: database, Redis: mr, Clock: clock}
}

// CreateUser inserts an active user whose email and nickname derive from
// nickname.
func CreateUser(t *testing.T, database *gorm.DB, nickname string, opts ...func(*db.User)) db.User {
	t.Helper()
	u := db.User{
		Email:        nickname + "@gachon.ac.kr",
		Name:         nickname,
		Phone:        "010-1234-5678",
		Nickname:     nickname,
		Department:   db.Departments[0],
		PasswordHash: passwordHash(),
		Status:       db.UserActive,
	}
	for _, opt := range opts {
		opt(&u)
	}
	require.NoError(t, database.Create(&u).Error)
	return u
}

// Admin marks a user made by CreateUser as an administrator.
func Admin(u *db.User) { u.IsAdmin = true }

// Suspended marks a user made by CreateUser as suspended.
func Suspended(u *db.User) { u.Status = db.UserSuspended }
