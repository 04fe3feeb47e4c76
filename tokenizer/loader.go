package tokenizer

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/BaSui01/tokenbench/config"
	"github.com/BaSui01/tokenbench/types"
)

// =============================================================================
// 📦 分词器集合
// =============================================================================

// Set 成功加载的分词器，保持配置顺序
type Set struct {
	names    []string
	adapters map[string]Adapter
}

// NewSet 由已有分词器构建集合，重名时保留第一个
func NewSet(adapters ...Adapter) *Set {
	s := &Set{adapters: make(map[string]Adapter, len(adapters))}
	for _, a := range adapters {
		s.add(a)
	}
	return s
}

func (s *Set) add(a Adapter) bool {
	if _, dup := s.adapters[a.Name()]; dup {
		return false
	}
	s.names = append(s.names, a.Name())
	s.adapters[a.Name()] = a
	return true
}

// Names 返回分词器名称（配置顺序）
func (s *Set) Names() []string {
	return append([]string(nil), s.names...)
}

// Get 按名称获取分词器
func (s *Set) Get(name string) (Adapter, bool) {
	a, ok := s.adapters[name]
	return a, ok
}

// Len 返回分词器数量
func (s *Set) Len() int {
	return len(s.names)
}

// Wrap 返回对每个分词器应用 fn 后的新集合，名称与顺序不变
func (s *Set) Wrap(fn func(Adapter) Adapter) *Set {
	out := &Set{
		names:    s.Names(),
		adapters: make(map[string]Adapter, len(s.adapters)),
	}
	for name, a := range s.adapters {
		out.adapters[name] = fn(a)
	}
	return out
}

// =============================================================================
// 🚀 加载
// =============================================================================

// LoadFailure 一个无法初始化的分词器
type LoadFailure struct {
	Name    string
	Library string
	Err     error
}

// LoadOption 加载选项
type LoadOption func(*loadOptions)

type loadOptions struct {
	factories map[Library]Factory
	onLoad    func(name string, ok bool)
}

// WithFactory 为本次加载替换某个后端的工厂
func WithFactory(lib Library, f Factory) LoadOption {
	return func(o *loadOptions) { o.factories[lib] = f }
}

// WithLoadObserver 每个分词器加载结束后回调
func WithLoadObserver(fn func(name string, ok bool)) LoadOption {
	return func(o *loadOptions) { o.onLoad = fn }
}

// Load 按配置顺序立即初始化所有分词器。
// 初始化失败的分词器记录为 TOKENIZER_INIT 失败并跳过，不影响其余分词器。
func Load(cfgs []config.TokenizerConfig, logger *zap.Logger, opts ...LoadOption) (*Set, []LoadFailure) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("component", "tokenizer_loader"))

	o := &loadOptions{factories: make(map[Library]Factory)}
	for _, opt := range opts {
		opt(o)
	}

	set := NewSet()
	var failures []LoadFailure

	for _, cfg := range cfgs {
		adapter, err := build(cfg, o)
		if err == nil && !set.add(adapter) {
			err = types.NewError(types.ErrTokenizerInit, "duplicate tokenizer name").WithTokenizer(cfg.Name)
		}
		if err != nil {
			failures = append(failures, LoadFailure{Name: cfg.Name, Library: cfg.Library, Err: err})
			logger.Warn("tokenizer unavailable, skipping",
				zap.String("tokenizer", cfg.Name),
				zap.String("library", cfg.Library),
				zap.String("model_id", cfg.ModelID),
				zap.Error(err),
			)
			if o.onLoad != nil {
				o.onLoad(cfg.Name, false)
			}
			continue
		}

		logger.Info("tokenizer loaded",
			zap.String("tokenizer", cfg.Name),
			zap.String("library", cfg.Library),
			zap.String("model_id", cfg.ModelID),
		)
		if o.onLoad != nil {
			o.onLoad(cfg.Name, true)
		}
	}

	return set, failures
}

func build(cfg config.TokenizerConfig, o *loadOptions) (adapter Adapter, err error) {
	lib, err := ParseLibrary(cfg.Library)
	if err != nil {
		return nil, types.NewError(types.ErrTokenizerInit, err.Error()).WithTokenizer(cfg.Name)
	}

	factory, ok := o.factories[lib]
	if !ok {
		factory, err = GetFactory(lib)
		if err != nil {
			return nil, types.NewError(types.ErrTokenizerInit, err.Error()).WithTokenizer(cfg.Name)
		}
	}

	// 部分后端在词表异常时会 panic
	defer func() {
		if r := recover(); r != nil {
			adapter = nil
			err = types.NewError(types.ErrTokenizerInit, "tokenizer initialization panicked").
				WithTokenizer(cfg.Name).
				WithCause(panicError{value: r})
		}
	}()

	adapter, err = factory(cfg)
	if err != nil {
		return nil, types.NewError(types.ErrTokenizerInit, "failed to initialize tokenizer").
			WithTokenizer(cfg.Name).
			WithCause(err)
	}
	return adapter, nil
}

type panicError struct {
	value any
}

func (p panicError) Error() string {
	return fmt.Sprintf("panic: %v", p.value)
}
