package cache

import (
	"github.com/redis/go-redis/v9"
	"github.com/tributaryhq/tributary/internal/config"
	"go.uber.org/zap"

	"go.uber.org/fx"
)

// ProvideCooldown picks the cooldown backend: redis when configured,
// otherwise the in-process TTL map.
func ProvideCooldown(cfg config.Config, log *zap.Logger) Cooldown {
	if cfg.RedisAddr == "" {
		return NewMemoryCooldown()
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	log.Named("cache").Info("cooldown backed by redis", zap.String("addr", cfg.RedisAddr))
	return NewRedisCooldown(client)
}

// Module provides the auto-merge cooldown cache.
var Module = fx.Module("cache",
	fx.Provide(ProvideCooldown),
)
