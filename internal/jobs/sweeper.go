// Package jobs runs periodic maintenance in the background.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/oggyb/ridemate/internal/app"
	"github.com/oggyb/ridemate/internal/service/room"
)

// Sweeper periodically closes departed rooms and removes empty ones.
type Sweeper struct {
	rooms     *room.Service
	logger    *slog.Logger
	interval  time.Duration
	scheduler *gocron.Scheduler
}

func NewSweeper(appCtx *app.AppContext, rooms *room.Service) *Sweeper {
	scheduler := gocron.NewScheduler(appCtx.Config.Location())
	scheduler.SingletonModeAll()
	return &Sweeper{
		rooms:     rooms,
		logger:    appCtx.Logger.With("job", "room-sweeper"),
		interval:  appCtx.Config.Room.SweepInterval,
		scheduler: scheduler,
	}
}

// Start schedules the sweep every interval, beginning immediately.
func (s *Sweeper) Start() error {
	if _, err := s.scheduler.Every(s.interval).Do(s.RunOnce); err != nil {
		return fmt.Errorf("failed to schedule room sweeper: %w", err)
	}
	s.scheduler.StartAsync()
	s.logger.Info("room sweeper started", "interval", s.interval)
	return nil
}

// Stop waits for a running sweep and stops scheduling new ones.
func (s *Sweeper) Stop() {
	s.scheduler.Stop()
}

func (s *Sweeper) RunOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	closed, deleted, err := s.rooms.Sweep(ctx)
	if err != nil {
		s.logger.Error("room sweep failed", "closed", closed, "deleted", deleted, "err", err)
		return
	}
	if closed > 0 || deleted > 0 {
		s.logger.Info("room sweep done", "closed", closed, "deleted", deleted)
	}
}
