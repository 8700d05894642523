// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/danielhkuo/safeweb/models"
)

const anyDevice = "_all"

// Latest keeps the newest reading per device, and overall, in Redis so the
// live-data endpoint can skip the database.
type Latest struct {
	client *redis.Client
	ttl    time.Duration
}

func New(addr, password string, ttl time.Duration) *Latest {
	return &Latest{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       0,
		}),
		ttl: ttl,
	}
}

// Ping checks the connection at startup.
func (c *Latest) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func Key(deviceID string) string {
	if deviceID == "" {
		deviceID = anyDevice
	}
	return fmt.Sprintf("latest:%s", deviceID)
}

// Get returns the cached latest reading. ok is false on a cache miss.
func (c *Latest) Get(ctx context.Context, deviceID string) (models.LatestReading, bool, error) {
	raw, err := c.client.HGet(ctx, Key(deviceID), "payload").Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return models.LatestReading{}, false, nil
		}
		return models.LatestReading{}, false, err
	}

	var lr models.LatestReading
	if err := json.Unmarshal(raw, &lr); err != nil {
		return models.LatestReading{}, false, fmt.Errorf("corrupt cache entry %s: %w", Key(deviceID), err)
	}
	return lr, true, nil
}

// putNewest stores ARGV[2] under KEYS[1] unless the entry there carries a
// timestamp newer than ARGV[1]. ARGV[3] is the TTL in milliseconds, 0 for none.
var putNewest = redis.NewScript(`
local current = redis.call('HGET', KEYS[1], 'ts')
if current and tonumber(current) > tonumber(ARGV[1]) then
	return 0
end
redis.call('HSET', KEYS[1], 'ts', ARGV[1], 'payload', ARGV[2])
if tonumber(ARGV[3]) > 0 then
	redis.call('PEXPIRE', KEYS[1], ARGV[3])
end
return 1
`)

// Put records lr for its device and overall, unless a newer reading is
// already cached under that key. The compare and write run as one script.
func (c *Latest) Put(ctx context.Context, lr models.LatestReading) error {
	payload, err := json.Marshal(lr)
	if err != nil {
		return err
	}

	for _, device := range []string{lr.DeviceID, ""} {
		err := putNewest.Run(ctx, c.client, []string{Key(device)}, lr.Timestamp, payload, c.ttl.Milliseconds()).Err()
		if err != nil {
			return fmt.Errorf("cache put %s: %w", Key(device), err)
		}
	}
	return nil
}

// Forget drops the cached readings for deviceIDs and the overall entry, so
// the next lookup goes to the database.
func (c *Latest) Forget(ctx context.Context, deviceIDs ...string) error {
	keys := []string{Key("")}
	for _, id := range deviceIDs {
		keys = append(keys, Key(id))
	}
	return c.client.Del(ctx, keys...).Err()
}

func (c *Latest) Close() error {
	return c.client.Close()
}
