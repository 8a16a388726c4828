package dedup

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const keyPrefix = "agrilink:notified:"

// Redis shares claims between replicas with SET NX.
type Redis struct {
	rdb    goredis.Cmdable
	ttl    time.Duration
	prefix string
}

func NewRedis(rdb goredis.Cmdable, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Redis{rdb: rdb, ttl: ttl, prefix: keyPrefix}
}

func (r *Redis) Claim(ctx context.Context, eventID string) (bool, error) {
	ok, err := r.rdb.SetNX(ctx, r.prefix+eventID, 1, r.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("claim event: %w", err)
	}
	return ok, nil
}

func (r *Redis) Release(ctx context.Context, eventID string) error {
	if err := r.rdb.Del(ctx, r.prefix+eventID).Err(); err != nil {
		return fmt.Errorf("release event: %w", err)
	}
	return nil
}
