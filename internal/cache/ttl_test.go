package cache

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTTLCacheSetGet(t *testing.T) {
	c := NewTTLCache[string, int]()

	c.Set("a", 1, time.Minute)
	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)

	_, ok = c.Get("missing")
	assert.False(t, ok)

	c.Delete("a")
	_, ok = c.Get("a")
	assert.False(t, ok, "expected a miss after delete")
}

func TestTTLCacheExpiry(t *testing.T) {
	c := NewTTLCache[string, int]()

	c.Set("a", 1, 10*time.Millisecond)
	time.Sleep(30 * time.Millisecond)
	_, ok := c.Get("a")
	assert.False(t, ok, "expected the entry to expire")
}

func TestTTLCacheSweep(t *testing.T) {
	c := NewTTLCache[string, int]()

	c.Set("stale", 1, time.Minute)
	c.Set("fresh", 2, time.Hour)
	require.Equal(t, 2, c.Len())

	removed := c.Sweep(time.Now().Add(30 * time.Minute))
	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, c.Len())

	_, ok := c.Get("fresh")
	assert.True(t, ok, "the fresh entry must survive the sweep")
}

func TestTTLCacheZeroTTLIgnored(t *testing.T) {
	c := NewTTLCache[string, int]()

	c.Set("a", 1, 0)
	assert.Equal(t, 0, c.Len(), "a non-positive TTL must not store anything")
}

func TestPairKeyOrderIndependent(t *testing.T) {
	a := snowflake.ID(100)
	b := snowflake.ID(200)
	assert.Equal(t, PairKey(a, b), PairKey(b, a))
	assert.NotEqual(t, PairKey(a, b), PairKey(a, snowflake.ID(300)))
}

func TestMemoryCooldown(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCooldown()

	active, err := c.Active(ctx, "k")
	require.NoError(t, err)
	assert.False(t, active, "expected no cooldown before Set")

	require.NoError(t, c.Set(ctx, "k", time.Minute))
	active, err = c.Active(ctx, "k")
	require.NoError(t, err)
	assert.True(t, active)

	removed, err := c.Sweep(ctx, time.Now().Add(2*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
}
