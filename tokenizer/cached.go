package tokenizer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"go.uber.org/zap"

	"github.com/BaSui01/tokenbench/config"
	"github.com/BaSui01/tokenbench/internal/cache"
)

// 单次缓存读写的超时
const cacheOpTimeout = 2 * time.Second

// CachedAdapter 用 Redis 记忆化分词结果。
// 缓存不可用时直接调用底层分词器，只记录警告。
type CachedAdapter struct {
	inner    Adapter
	identity string
	cache    *cache.Manager
	ttl      time.Duration
	logger   *zap.Logger
	observer func(tokenizer string, hit bool)
}

// CacheOption 缓存选项
type CacheOption func(*CachedAdapter)

// WithCacheLogger 设置日志
func WithCacheLogger(logger *zap.Logger) CacheOption {
	return func(c *CachedAdapter) { c.logger = logger }
}

// WithCacheObserver 每次查询缓存后回调（命中/未命中）
func WithCacheObserver(fn func(tokenizer string, hit bool)) CacheOption {
	return func(c *CachedAdapter) { c.observer = fn }
}

// Identity 分词器后端的身份：规范化的 library 加 model_id。
// 同名但后端或词表不同的分词器身份不同，缓存条目互不共享。
func Identity(cfg config.TokenizerConfig) string {
	lib, err := ParseLibrary(cfg.Library)
	if err != nil {
		lib = Library(cfg.Library)
	}
	return string(lib) + "/" + cfg.ModelID
}

// NewCached 包装分词器。identity 标识后端与词表（见 Identity），参与缓存键；
// ttl 为 0 时使用缓存管理器的默认过期时间。
func NewCached(inner Adapter, identity string, c *cache.Manager, ttl time.Duration, opts ...CacheOption) *CachedAdapter {
	ca := &CachedAdapter{
		inner:    inner,
		identity: identity,
		cache:    c,
		ttl:      ttl,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(ca)
	}
	ca.logger = ca.logger.With(
		zap.String("component", "tokenizer_cache"),
		zap.String("tokenizer", inner.Name()),
		zap.String("identity", identity),
	)
	return ca
}

// cacheKey 分词器名 : 身份摘要 : 文本 SHA-256（不含全局前缀）
func (c *CachedAdapter) cacheKey(text string) string {
	id := sha256.Sum256([]byte(c.identity))
	sum := sha256.Sum256([]byte(text))
	return c.inner.Name() + ":" + hex.EncodeToString(id[:6]) + ":" + hex.EncodeToString(sum[:])
}

// Identity 返回参与缓存键的后端身份
func (c *CachedAdapter) Identity() string {
	return c.identity
}

// Encode implements Adapter.
func (c *CachedAdapter) Encode(text string) (Result, error) {
	key := c.cacheKey(text)

	ctx, cancel := context.WithTimeout(context.Background(), cacheOpTimeout)
	defer cancel()

	var cached Result
	hit, err := c.cache.Lookup(ctx, key, &cached)
	switch {
	case err != nil:
		c.logger.Warn("tokenizer cache read failed, encoding directly", zap.Error(err))
	case hit:
		c.observe(true)
		return cached, nil
	default:
		c.observe(false)
	}

	res, err := c.inner.Encode(text)
	if err != nil {
		return Result{}, err
	}

	if err := c.cache.Store(ctx, key, res, c.ttl); err != nil {
		c.logger.Warn("tokenizer cache write failed", zap.Error(err))
	}
	return res, nil
}

func (c *CachedAdapter) observe(hit bool) {
	if c.observer != nil {
		c.observer(c.inner.Name(), hit)
	}
}

// Name implements Adapter.
func (c *CachedAdapter) Name() string {
	return c.inner.Name()
}

// Unwrap 返回底层分词器
func (c *CachedAdapter) Unwrap() Adapter {
	return c.inner
}
