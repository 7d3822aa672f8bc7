package redisx

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

func New(addr string) *redis.Client {
	r := redis.NewClient(&redis.Options{Addr: addr})
	_ = r.WithTimeout(2 * time.Second)
	return r
}

// Dedup is a thin once-only gate over Redis SET NX. Redis is advisory here;
// the database carries the real idempotency guarantees.
type Dedup struct {
	RDB *redis.Client
	TTL time.Duration
}

// Seen marks the key and reports whether it was already present.
func (d *Dedup) Seen(ctx context.Context, key string) (bool, error) {
	ok, err := d.RDB.SetNX(ctx, key, "1", d.TTL).Result()
	if err != nil {
		return false, err
	}
	return !ok, nil
}

// StatusCache holds order status blobs keyed per merchant, so one tenant's
// entries are unreachable from another's requests. Redis errors read as
// misses; callers fall through to the database.
type StatusCache struct {
	RDB *redis.Client
	TTL time.Duration
}

func (c *StatusCache) GetStatus(ctx context.Context, merchantID, orderID string) (string, bool) {
	s, err := c.RDB.Get(ctx, fmt.Sprintf(KeyOrderStatus, merchantID, orderID)).Result()
	if err != nil || s == "" {
		return "", false
	}
	return s, true
}

func (c *StatusCache) SetStatus(ctx context.Context, merchantID, orderID, value string) {
	_ = c.RDB.Set(ctx, fmt.Sprintf(KeyOrderStatus, merchantID, orderID), value, c.TTL).Err()
}

