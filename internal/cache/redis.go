package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const cooldownPrefix = "cooldown:"

type redisCooldown struct {
	client *redis.Client
}

// NewRedisCooldown returns a cooldown shared across instances via redis.
// Redis expires entries itself, so Sweep is a no-op.
func NewRedisCooldown(client *redis.Client) Cooldown {
	return &redisCooldown{client: client}
}

func (c *redisCooldown) Active(ctx context.Context, key string) (bool, error) {
	err := c.client.Get(ctx, cooldownPrefix+key).Err()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (c *redisCooldown) Set(ctx context.Context, key string, ttl time.Duration) error {
	return c.client.Set(ctx, cooldownPrefix+key, 1, ttl).Err()
}

func (c *redisCooldown) Sweep(context.Context, time.Time) (int, error) {
	return 0, nil
}
