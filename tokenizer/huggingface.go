package tokenizer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	hf "github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/pretrained"
)

const tokenizerFile = "tokenizer.json"

// HuggingFaceAdapter 加载 HuggingFace tokenizer.json.
// model_id 可以是本地 tokenizer.json、包含它的目录，或 Hub 仓库名（下载后缓存）。
type HuggingFaceAdapter struct {
	name string
	mu   sync.Mutex
	tk   *hf.Tokenizer
}

// NewHuggingFace 立即解析并加载 tokenizer.json.
func NewHuggingFace(name, modelID string) (*HuggingFaceAdapter, error) {
	path, err := resolveTokenizerFile(modelID)
	if err != nil {
		return nil, err
	}
	tk, err := pretrained.FromFile(path)
	if err != nil {
		return nil, fmt.Errorf("load tokenizer %s: %w", path, err)
	}
	return &HuggingFaceAdapter{name: name, tk: tk}, nil
}

func resolveTokenizerFile(modelID string) (string, error) {
	id := strings.TrimSpace(modelID)
	if id == "" {
		return "", fmt.Errorf("empty model id")
	}
	if info, err := os.Stat(id); err == nil {
		if info.IsDir() {
			return filepath.Join(id, tokenizerFile), nil
		}
		return id, nil
	}
	path, err := hf.CachedPath(id, tokenizerFile)
	if err != nil {
		return "", fmt.Errorf("resolve %s/%s: %w", id, tokenizerFile, err)
	}
	return path, nil
}

// Encode implements Adapter. 不添加特殊 token（BOS/EOS）。
func (h *HuggingFaceAdapter) Encode(text string) (Result, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	en, err := h.tk.EncodeSingle(text, false)
	if err != nil {
		return Result{}, err
	}
	tokens := append([]string(nil), en.Tokens...)
	return Result{Count: len(tokens), Tokens: tokens}, nil
}

// Name implements Adapter.
func (h *HuggingFaceAdapter) Name() string {
	return h.name
}
