package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/oggyb/ridemate/internal/config"
	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	Client *redis.Client
}

// NewRedisCache initializes Redis client from config.
// Only Addr is mandatory, Password/DB are optional.
func NewRedisCache(cfg *config.Config) *RedisCache {
	opts := &redis.Options{
		Addr: cfg.Redis.Addr,
	}
	if cfg.Redis.Password != "" {
		opts.Password = cfg.Redis.Password
	}
	if cfg.Redis.DB != 0 {
		opts.DB = cfg.Redis.DB
	}
	return &RedisCache{Client: redis.NewClient(opts)}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.Client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.Client.Close()
}

// KeyForRoomList generates the Redis key for one listing scan.
func (c *RedisCache) KeyForRoomList(from, to, date string) string {
	return fmt.Sprintf("rooms:list:%s:%s:%s", from, to, date)
}

// GetJSON decodes a cached JSON value into dst. A miss returns (false, nil).
func (c *RedisCache) GetJSON(ctx context.Context, key string, dst any) (bool, error) {
	val, err := c.Client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil // cache miss
	} else if err != nil {
		return false, err
	}
	if err := json.Unmarshal(val, dst); err != nil {
		// corrupt entry: drop it and report a miss
		_ = c.Client.Del(ctx, key).Err()
		return false, nil
	}
	return true, nil
}

// versionTTL bounds how long an idle version counter lingers. It only has to
// outlive a single read-then-store window.
const versionTTL = 24 * time.Hour

func versionKey(key string) string { return key + ":version" }

// setIfVersion stores ARGV[2] at KEYS[1] for ARGV[3] ms only while the counter
// at KEYS[2] still equals ARGV[1].
var setIfVersion = redis.NewScript(`
local current = tonumber(redis.call("GET", KEYS[2]) or "0")
if current ~= tonumber(ARGV[1]) then
	return 0
end
redis.call("SET", KEYS[1], ARGV[2], "PX", ARGV[3])
return 1
`)

// Version returns the invalidation counter of key, 0 when it was never
// invalidated.
func (c *RedisCache) Version(ctx context.Context, key string) (int64, error) {
	v, err := c.Client.Get(ctx, versionKey(key)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}

// Invalidate drops the cached value of key and bumps its version, so that a
// reader holding the old version cannot store what it read before.
func (c *RedisCache) Invalidate(ctx context.Context, key string) error {
	_, err := c.Client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.Incr(ctx, versionKey(key))
		pipe.Expire(ctx, versionKey(key), versionTTL)
		return nil
	})
	return err
}

// SetJSONIfVersion stores v as JSON with the given TTL, but only while
// key's version is still version. It reports whether the value was stored.
func (c *RedisCache) SetJSONIfVersion(ctx context.Context, key string, version int64, v any, ttl time.Duration) (bool, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return false, fmt.Errorf("failed to marshal cache value: %w", err)
	}
	stored, err := setIfVersion.Run(ctx, c.Client, []string{key, versionKey(key)}, version, b, ttl.Milliseconds()).Int()
	if err != nil {
		return false, err
	}
	return stored == 1, nil
}

// Publish sends payload on a pub/sub channel.
func (c *RedisCache) Publish(ctx context.Context, channel string, payload []byte) error {
	return c.Client.Publish(ctx, channel, payload).Err()
}

// Subscribe opens a pub/sub subscription. The first receive confirms it so
// callers do not miss messages published right after Subscribe returns.
func (c *RedisCache) Subscribe(ctx context.Context, channel string) (*redis.PubSub, error) {
	ps := c.Client.Subscribe(ctx, channel)
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, err
	}
	return ps, nil
}
