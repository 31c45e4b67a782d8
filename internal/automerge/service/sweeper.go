package service

import (
	"context"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/tributaryhq/tributary/internal/cache"
	"github.com/tributaryhq/tributary/internal/clock"
	"github.com/tributaryhq/tributary/internal/config"
)

// RunSweeper periodically evicts expired cooldown entries so the
// in-process backend does not grow without bound. The redis backend
// expires keys itself and its Sweep is a no-op.
func RunSweeper(lc fx.Lifecycle, cfg config.Config, cooldown cache.Cooldown, clk clock.Clock, log *zap.Logger) {
	logger := log.Named("automerge.sweeper")
	stop := make(chan struct{})
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				defer close(done)
				ticker := time.NewTicker(cfg.CooldownSweep)
				defer ticker.Stop()
				for {
					select {
					case <-ticker.C:
						n, err := cooldown.Sweep(context.Background(), clk.Now())
						if err != nil {
							logger.Warn("cooldown sweep failed", zap.Error(err))
							continue
						}
						if n > 0 {
							logger.Debug("cooldown entries evicted", zap.Int("count", n))
						}
					case <-stop:
						return
					}
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			close(stop)
			select {
			case <-done:
			case <-ctx.Done():
				return ctx.Err()
			}
			return nil
		},
	})
}
