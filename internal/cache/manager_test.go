package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/BaSui01/tokenbench/config"
)

type countEntry struct {
	Count  int      `json:"count"`
	Tokens []string `json:"tokens"`
}

func newManager(t *testing.T) (*miniredis.Miniredis, *Manager) {
	t.Helper()
	mr := miniredis.RunT(t)
	m, err := NewManager(config.CacheConfig{
		Enabled:   true,
		Addr:      mr.Addr(),
		TTL:       time.Minute,
		KeyPrefix: "tb:",
	}, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })
	return mr, m
}

func TestNewManager_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewManager(config.CacheConfig{Addr: addr}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), addr)
}

func TestManager_StoreAndLookup(t *testing.T) {
	mr, m := newManager(t)
	ctx := context.Background()

	in := countEntry{Count: 2, Tokens: []string{"Za", "żółć"}}
	require.NoError(t, m.Store(ctx, "bpe:abc", in, 0))

	assert.True(t, mr.Exists("tb:bpe:abc"))
	assert.Equal(t, time.Minute, mr.TTL("tb:bpe:abc"), "zero ttl falls back to default")

	var out countEntry
	hit, err := m.Lookup(ctx, "bpe:abc", &out)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, in, out)
}

func TestManager_LookupMiss(t *testing.T) {
	_, m := newManager(t)

	var out countEntry
	hit, err := m.Lookup(context.Background(), "absent", &out)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Zero(t, out)
}

func TestManager_LookupUndecodable(t *testing.T) {
	mr, m := newManager(t)
	require.NoError(t, mr.Set("tb:broken", "{"))

	var out countEntry
	hit, err := m.Lookup(context.Background(), "broken", &out)
	assert.Error(t, err)
	assert.False(t, hit)
	assert.Equal(t, Stats{}, m.Stats())
}

func TestManager_ExplicitTTLExpires(t *testing.T) {
	mr, m := newManager(t)
	ctx := context.Background()

	require.NoError(t, m.Store(ctx, "short", countEntry{Count: 1}, time.Second))
	mr.FastForward(2 * time.Second)

	hit, err := m.Lookup(ctx, "short", &countEntry{})
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestManager_Forget(t *testing.T) {
	mr, m := newManager(t)
	ctx := context.Background()

	require.NoError(t, m.Store(ctx, "a", 1, 0))
	require.NoError(t, m.Store(ctx, "b", 2, 0))

	n, err := m.Forget(ctx, "a", "b", "never-set")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.Empty(t, mr.Keys())

	n, err = m.Forget(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestManager_Stats(t *testing.T) {
	_, m := newManager(t)
	ctx := context.Background()
	assert.Zero(t, m.Stats().HitRate())

	require.NoError(t, m.Store(ctx, "k", countEntry{Count: 4}, 0))
	for _, key := range []string{"k", "k", "missing"} {
		_, err := m.Lookup(ctx, key, &countEntry{})
		require.NoError(t, err)
	}

	s := m.Stats()
	assert.Equal(t, Stats{Hits: 2, Misses: 1}, s)
	assert.InDelta(t, 2.0/3.0, s.HitRate(), 1e-9)
}

func TestManager_RejectsAfterClose(t *testing.T) {
	mr := miniredis.RunT(t)
	m := NewManagerWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}), config.CacheConfig{}, nil)
	ctx := context.Background()

	require.NoError(t, m.Ping(ctx))
	require.NoError(t, m.Close())
	require.NoError(t, m.Close())

	_, err := m.Lookup(ctx, "k", &countEntry{})
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, m.Store(ctx, "k", 1, 0), ErrClosed)
	_, err = m.Forget(ctx, "k")
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, m.Ping(ctx), ErrClosed)
}
