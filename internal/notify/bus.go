package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/oggyb/ridemate/internal/cache"
)

// Channel is the Redis pub/sub channel carrying room events between instances.
const Channel = "ridemate:room-events"

// Bus publishes events through Redis so every instance's Hub receives them,
// including the publishing one.
type Bus struct {
	redis  *cache.RedisCache
	hub    *Hub
	logger *slog.Logger
}

func NewBus(redis *cache.RedisCache, hub *Hub, logger *slog.Logger) *Bus {
	return &Bus{redis: redis, hub: hub, logger: logger}
}

func (b *Bus) Publish(ctx context.Context, e Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	return b.redis.Publish(ctx, Channel, payload)
}

// Start subscribes and relays events into the hub until ctx is done. It
// returns once the subscription is confirmed.
func (b *Bus) Start(ctx context.Context) error {
	ps, err := b.redis.Subscribe(ctx, Channel)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", Channel, err)
	}

	go func() {
		defer ps.Close()
		ch := ps.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var e Event
				if err := json.Unmarshal([]byte(msg.Payload), &e); err != nil {
					b.logger.Warn("ignoring malformed room event", "err", err)
					continue
				}
				b.hub.Deliver(e)
			}
		}
	}()
	return nil
}
