package tokenizer

import (
	"fmt"

	bpe "github.com/tiktoken-go/tokenizer"
)

// CodecAdapter 基于 tiktoken-go/tokenizer 的离线 BPE 编码（词表内嵌于库中）.
type CodecAdapter struct {
	name  string
	codec bpe.Codec
}

// NewCodec 按编码名（cl100k_base、o200k_base ...）或模型名加载编码.
func NewCodec(name, modelID string) (*CodecAdapter, error) {
	codec, err := bpe.Get(bpe.Encoding(modelID))
	if err != nil {
		byModel, modelErr := bpe.ForModel(bpe.Model(modelID))
		if modelErr != nil {
			return nil, fmt.Errorf("init tiktoken-go codec %s: %w", modelID, err)
		}
		codec = byModel
	}
	return &CodecAdapter{name: name, codec: codec}, nil
}

// Encode implements Adapter.
func (c *CodecAdapter) Encode(text string) (Result, error) {
	ids, tokens, err := c.codec.Encode(text)
	if err != nil {
		return Result{}, err
	}
	return Result{Count: len(ids), Tokens: tokens}, nil
}

// Name implements Adapter.
func (c *CodecAdapter) Name() string {
	return c.name
}
