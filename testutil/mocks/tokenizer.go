// MockAdapter 的分词器适配器测试模拟实现。
//
// 支持按文本固定计数、按空白切分与错误注入场景。
package mocks

import (
	"errors"
	"strings"
	"sync"

	"github.com/BaSui01/tokenbench/tokenizer"
)

// ErrMockEncode 默认注入的编码错误
var ErrMockEncode = errors.New("mock encode failed")

// MockAdapter 是 tokenizer.Adapter 的模拟实现。
// 默认按空白切分计数，WithCount 可为特定文本固定结果。
type MockAdapter struct {
	mu sync.Mutex

	name   string
	counts map[string]int
	err    error
	failOn map[string]bool

	// 行为控制
	failAfter int // 在第 N 次调用后失败，0 表示不启用
	callCount int
	calls     []string
}

// NewMockAdapter 创建新的 MockAdapter
func NewMockAdapter(name string) *MockAdapter {
	return &MockAdapter{
		name:   name,
		counts: make(map[string]int),
		failOn: make(map[string]bool),
	}
}

// WithCount 为文本设置固定 token 数
func (m *MockAdapter) WithCount(text string, count int) *MockAdapter {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counts[text] = count
	return m
}

// WithError 所有调用返回 err
func (m *MockAdapter) WithError(err error) *MockAdapter {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

// WithFailOn 对指定文本返回 ErrMockEncode
func (m *MockAdapter) WithFailOn(text string) *MockAdapter {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failOn[text] = true
	return m
}

// WithFailAfter 在第 n 次调用之后失败
func (m *MockAdapter) WithFailAfter(n int) *MockAdapter {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failAfter = n
	return m
}

// Name implements tokenizer.Adapter.
func (m *MockAdapter) Name() string { return m.name }

// Encode implements tokenizer.Adapter.
func (m *MockAdapter) Encode(text string) (tokenizer.Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.callCount++
	m.calls = append(m.calls, text)

	if m.err != nil {
		return tokenizer.Result{}, m.err
	}
	if m.failOn[text] || (m.failAfter > 0 && m.callCount > m.failAfter) {
		return tokenizer.Result{}, ErrMockEncode
	}

	tokens := strings.Fields(text)
	if n, ok := m.counts[text]; ok {
		return tokenizer.Result{Count: n}, nil
	}
	return tokenizer.Result{Count: len(tokens), Tokens: tokens}, nil
}

// CallCount 返回调用次数
func (m *MockAdapter) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// Calls 返回调用过的文本（按调用顺序）
func (m *MockAdapter) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// Reset 清空调用记录
func (m *MockAdapter) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
	m.calls = nil
}

// NewSet 用给定适配器构造 tokenizer.Set（名称取自 Name()）
func NewSet(adapters ...tokenizer.Adapter) *tokenizer.Set {
	return tokenizer.NewSet(adapters...)
}
