// Package cache provides internal cache management.
// This package is internal and should not be imported by external projects.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/BaSui01/tokenbench/config"
)

// dialCheckTimeout NewManager 启动时 PING 的超时
const dialCheckTimeout = 5 * time.Second

// ErrClosed 管理器已关闭
var ErrClosed = errors.New("cache manager is closed")

// =============================================================================
// 💾 缓存管理器
// =============================================================================

// Manager 以 JSON 形式存取值，键统一加前缀
type Manager struct {
	client     *redis.Client
	prefix     string
	defaultTTL time.Duration
	logger     *zap.Logger

	closed atomic.Bool
	hits   atomic.Int64
	misses atomic.Int64
}

// NewManager 连接 cfg.Addr，PING 失败时关闭客户端并返回错误
func NewManager(cfg config.CacheConfig, logger *zap.Logger) (*Manager, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), dialCheckTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect redis %s: %w", cfg.Addr, err)
	}

	m := NewManagerWithClient(client, cfg, logger)
	m.logger.Info("cache ready",
		zap.String("addr", cfg.Addr),
		zap.String("prefix", cfg.KeyPrefix),
		zap.Duration("ttl", cfg.TTL),
	)
	return m, nil
}

// NewManagerWithClient 包装已有客户端，不检查连接
func NewManagerWithClient(client *redis.Client, cfg config.CacheConfig, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		client:     client,
		prefix:     cfg.KeyPrefix,
		defaultTTL: cfg.TTL,
		logger:     logger.With(zap.String("component", "cache")),
	}
}

// Lookup 读取 key 并解码到 dest。
// 键不存在时返回 (false, nil)；解码失败视为错误，不计入命中。
func (m *Manager) Lookup(ctx context.Context, key string, dest any) (bool, error) {
	if m.closed.Load() {
		return false, ErrClosed
	}

	raw, err := m.client.Get(ctx, m.prefix+key).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		m.misses.Add(1)
		return false, nil
	case err != nil:
		return false, fmt.Errorf("cache lookup %s: %w", key, err)
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		m.logger.Warn("discarding undecodable cache entry", zap.String("key", key), zap.Error(err))
		return false, fmt.Errorf("decode cache entry %s: %w", key, err)
	}
	m.hits.Add(1)
	return true, nil
}

// Store 编码 value 并写入；ttl 为 0 时使用配置的默认值
func (m *Manager) Store(ctx context.Context, key string, value any, ttl time.Duration) error {
	if m.closed.Load() {
		return ErrClosed
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode cache entry %s: %w", key, err)
	}
	if ttl == 0 {
		ttl = m.defaultTTL
	}
	if err := m.client.Set(ctx, m.prefix+key, data, ttl).Err(); err != nil {
		return fmt.Errorf("cache store %s: %w", key, err)
	}
	return nil
}

// Forget 删除若干键，返回实际删除的数量
func (m *Manager) Forget(ctx context.Context, keys ...string) (int64, error) {
	if m.closed.Load() {
		return 0, ErrClosed
	}
	if len(keys) == 0 {
		return 0, nil
	}
	full := make([]string, 0, len(keys))
	for _, k := range keys {
		full = append(full, m.prefix+k)
	}
	n, err := m.client.Del(ctx, full...).Result()
	if err != nil {
		return 0, fmt.Errorf("cache forget: %w", err)
	}
	return n, nil
}

// Ping 检查 Redis 连接
func (m *Manager) Ping(ctx context.Context) error {
	if m.closed.Load() {
		return ErrClosed
	}
	return m.client.Ping(ctx).Err()
}

// Close 关闭客户端，重复调用无副作用
func (m *Manager) Close() error {
	if !m.closed.CompareAndSwap(false, true) {
		return nil
	}
	s := m.Stats()
	m.logger.Info("cache closed",
		zap.Int64("hits", s.Hits),
		zap.Int64("misses", s.Misses),
		zap.Float64("hit_rate", s.HitRate()),
	)
	return m.client.Close()
}

// =============================================================================
// 📊 统计
// =============================================================================

// Stats 本进程内的查询统计
type Stats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
}

// HitRate 命中率，无查询时为 0
func (s Stats) HitRate() float64 {
	if total := s.Hits + s.Misses; total > 0 {
		return float64(s.Hits) / float64(total)
	}
	return 0
}

// Stats 当前计数快照
func (m *Manager) Stats() Stats {
	return Stats{Hits: m.hits.Load(), Misses: m.misses.Load()}
}
