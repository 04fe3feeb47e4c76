package tokenizer

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/BaSui01/tokenbench/config"
)

// Adapter 是统一的分词接口，每个实例对应一个配置中的分词器
type Adapter interface {
	// Encode 返回文本的 token 数与可选的 token 字符串
	Encode(text string) (Result, error)

	// Name 返回配置中的显示名称
	Name() string
}

// Result 一次编码的结果。Tokens 为空表示后端不提供 token 字符串。
type Result struct {
	Count  int      `json:"count"`
	Tokens []string `json:"tokens,omitempty"`
}

// Library 分词后端类型
type Library string

const (
	LibraryTiktoken    Library = "tiktoken"
	LibraryTiktokenGo  Library = "tiktoken-go"
	LibraryHuggingFace Library = "huggingface"
	LibraryEstimator   Library = "estimator"
)

// ParseLibrary 解析配置中的 library 字段，"transformers" 是 huggingface 的别名
func ParseLibrary(s string) (Library, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "tiktoken":
		return LibraryTiktoken, nil
	case "tiktoken-go":
		return LibraryTiktokenGo, nil
	case "huggingface", "transformers":
		return LibraryHuggingFace, nil
	case "estimator":
		return LibraryEstimator, nil
	}
	return "", fmt.Errorf("unknown tokenizer library: %q", s)
}

// Factory 根据配置创建分词器
type Factory func(cfg config.TokenizerConfig) (Adapter, error)

// 全局工厂注册表.
var (
	factories   = make(map[Library]Factory)
	factoriesMu sync.RWMutex
)

func init() {
	RegisterFactory(LibraryTiktoken, func(cfg config.TokenizerConfig) (Adapter, error) {
		return NewTiktoken(cfg.Name, cfg.ModelID)
	})
	RegisterFactory(LibraryTiktokenGo, func(cfg config.TokenizerConfig) (Adapter, error) {
		return NewCodec(cfg.Name, cfg.ModelID)
	})
	RegisterFactory(LibraryHuggingFace, func(cfg config.TokenizerConfig) (Adapter, error) {
		return NewHuggingFace(cfg.Name, cfg.ModelID)
	})
	RegisterFactory(LibraryEstimator, func(cfg config.TokenizerConfig) (Adapter, error) {
		return NewEstimator(cfg.Name), nil
	})
}

// RegisterFactory 注册（或替换）某个后端的工厂.
func RegisterFactory(lib Library, f Factory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	factories[lib] = f
}

// GetFactory 返回后端的工厂.
func GetFactory(lib Library) (Factory, error) {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()

	if f, ok := factories[lib]; ok {
		return f, nil
	}
	return nil, fmt.Errorf("no factory registered for library: %s", lib)
}

// Libraries 返回已注册的后端，按名称排序.
func Libraries() []Library {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()

	libs := make([]Library, 0, len(factories))
	for lib := range factories {
		libs = append(libs, lib)
	}
	sort.Slice(libs, func(i, j int) bool { return libs[i] < libs[j] })
	return libs
}
