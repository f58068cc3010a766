package capacity

import (
	"context"
	"encoding/json"
	"time"

	"lunchbox-orders/internal/models"

	"github.com/go-redis/redis/v8"
)

const cacheKeyPrefix = "capacity:"

// Cache holds short-lived capacity snapshots in Redis. Storefront clients
// poll capacity every few seconds, so a small TTL keeps the derived view
// cheap without holding it stale for long. Any error reads as a miss.
type Cache struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = 5 * time.Second
	}
	return &Cache{Client: client, TTL: ttl}
}

func (c *Cache) Get(ctx context.Context, date string) (models.DailyCapacity, bool) {
	raw, err := c.Client.Get(ctx, cacheKeyPrefix+date).Result()
	if err != nil {
		return models.DailyCapacity{}, false
	}
	var snap models.DailyCapacity
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return models.DailyCapacity{}, false
	}
	return snap, true
}

func (c *Cache) Set(ctx context.Context, snap models.DailyCapacity) {
	raw, err := json.Marshal(snap)
	if err != nil {
		return
	}
	c.Client.Set(ctx, cacheKeyPrefix+snap.Date, raw, c.TTL)
}

func (c *Cache) Delete(ctx context.Context, dateKeys []string) error {
	if len(dateKeys) == 0 {
		return nil
	}
	keys := make([]string, len(dateKeys))
	for i, d := range dateKeys {
		keys[i] = cacheKeyPrefix + d
	}
	return c.Client.Del(ctx, keys...).Err()
}
