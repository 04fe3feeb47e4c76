package tokenizer

import (
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

// 模型名到 tiktoken 编码的映射，model_id 也可以直接写编码名
var modelEncodings = map[string]string{
	"gpt-4o":                 "o200k_base",
	"gpt-4o-mini":            "o200k_base",
	"gpt-4-turbo":            "cl100k_base",
	"gpt-4":                  "cl100k_base",
	"gpt-3.5-turbo":          "cl100k_base",
	"text-embedding-3-large": "cl100k_base",
	"text-embedding-3-small": "cl100k_base",
}

// TiktokenAdapter 基于 pkoukk/tiktoken-go 的 BPE 分词器.
// token 字符串通过逐个 id 解码得到，可能包含不完整的 UTF-8 字节序列。
type TiktokenAdapter struct {
	name     string
	encoding string
	enc      *tiktoken.Tiktoken
}

// NewTiktoken 立即加载编码（首次使用时可能需要下载 BPE 数据）.
func NewTiktoken(name, modelID string) (*TiktokenAdapter, error) {
	encoding := resolveEncoding(modelID)
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("init tiktoken encoding %s: %w", encoding, err)
	}
	return &TiktokenAdapter{name: name, encoding: encoding, enc: enc}, nil
}

func resolveEncoding(modelID string) string {
	id := strings.TrimSpace(modelID)
	if strings.HasSuffix(id, "_base") || strings.HasSuffix(id, "_edit") {
		return id
	}
	if enc, ok := modelEncodings[id]; ok {
		return enc
	}
	// 尝试前缀匹配，最长前缀优先
	best := ""
	for prefix := range modelEncodings {
		if strings.HasPrefix(id, prefix) && len(prefix) > len(best) {
			best = prefix
		}
	}
	if best != "" {
		return modelEncodings[best]
	}
	return "cl100k_base"
}

// Encode implements Adapter.
func (t *TiktokenAdapter) Encode(text string) (Result, error) {
	ids := t.enc.Encode(text, nil, nil)
	tokens := make([]string, len(ids))
	for i, id := range ids {
		tokens[i] = t.enc.Decode([]int{id})
	}
	return Result{Count: len(ids), Tokens: tokens}, nil
}

// Name implements Adapter.
func (t *TiktokenAdapter) Name() string {
	return t.name
}

// Encoding 返回实际使用的编码名.
func (t *TiktokenAdapter) Encoding() string {
	return t.encoding
}
