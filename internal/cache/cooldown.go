package cache

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
)

// Cooldown suppresses repeated auto-merge attempts on the same contact
// pair. It is a best-effort guard: the merge engine's own pre-checks are
// the correctness backstop, so a lost entry is acceptable.
type Cooldown interface {
	Active(ctx context.Context, key string) (bool, error)
	Set(ctx context.Context, key string, ttl time.Duration) error
	// Sweep evicts expired entries where the backend does not expire
	// them itself. Returns the number removed.
	Sweep(ctx context.Context, now time.Time) (int, error)
}

// PairKey builds a stable cooldown key for a contact pair, independent of
// argument order.
func PairKey(a, b snowflake.ID) string {
	if b < a {
		a, b = b, a
	}
	return a.String() + ":" + b.String()
}

type memoryCooldown struct {
	entries Cache[string, struct{}]
}

// NewMemoryCooldown returns a process-local cooldown backed by a TTL map.
func NewMemoryCooldown() Cooldown {
	return &memoryCooldown{entries: NewTTLCache[string, struct{}]()}
}

func (c *memoryCooldown) Active(_ context.Context, key string) (bool, error) {
	_, ok := c.entries.Get(key)
	return ok, nil
}

func (c *memoryCooldown) Set(_ context.Context, key string, ttl time.Duration) error {
	c.entries.Set(key, struct{}{}, ttl)
	return nil
}

func (c *memoryCooldown) Sweep(_ context.Context, now time.Time) (int, error) {
	return c.entries.Sweep(now), nil
}
