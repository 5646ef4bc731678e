package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/oggyb/ridemate/internal/app"
	"github.com/oggyb/ridemate/internal/cache"
	"github.com/oggyb/ridemate/internal/config"
	"github.com/oggyb/ridemate/internal/db"
	"github.com/oggyb/ridemate/internal/jobs"
	"github.com/oggyb/ridemate/internal/logger"
	"github.com/oggyb/ridemate/internal/notify"
	"github.com/oggyb/ridemate/internal/server"
	"github.com/oggyb/ridemate/internal/service/account"
	"github.com/oggyb/ridemate/internal/service/chat"
	"github.com/oggyb/ridemate/internal/service/moderation"
	"github.com/oggyb/ridemate/internal/service/room"
)

func main() {
	cfg := config.New()

	// Init logger (global singleton)
	logger.InitFromConfig(cfg)
	log := logger.L()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Init DB
	database, err := db.NewDB(cfg, log)
	if err != nil {
		log.Error("failed to init db", "err", err)
		return
	}

	// Init Redis
	redisCache := cache.NewRedisCache(cfg)
	if err := redisCache.Ping(ctx); err != nil {
		log.Error("failed to connect to redis", "err", err)
		return
	}
	defer redisCache.Close()

	appCtx := app.New(cfg, database, redisCache, log)

	// Room events reach subscribers on every instance through Redis.
	bus := notify.NewBus(redisCache, appCtx.Hub, log)
	if err := bus.Start(ctx); err != nil {
		log.Error("failed to start event bus", "err", err)
		return
	}
	appCtx.Events = bus

	if cfg.App.ENV == "development" {
		if _, err := db.SeedTestData(database, time.Now().UTC()); err != nil {
			log.Error("failed to seed", "err", err)
		}
	}

	roomReg := room.NewRegistrar(appCtx)
	chatReg := chat.NewRegistrar(appCtx)
	registrars := []server.Registrar{
		roomReg,
		chatReg,
		moderation.NewRegistrar(appCtx),
		account.NewRegistrar(appCtx),
	}

	sweeper := jobs.NewSweeper(appCtx, roomReg.Service())
	if err := sweeper.Start(); err != nil {
		log.Error("failed to start sweeper", "err", err)
		return
	}
	defer sweeper.Stop()

	httpServer := server.NewHTTPServer(appCtx, chatReg.Service())
	go func() {
		if err := httpServer.Start(ctx); err != nil {
			log.Error("HTTP server stopped", "err", err)
			stop()
		}
	}()

	grpcServer := server.NewGRPCServer(appCtx, registrars...)
	if err := server.StartGRPCServer(ctx, appCtx, grpcServer); err != nil {
		log.Error("failed to start gRPC server", "err", err)
	}
	log.Info("shutting down")
}
