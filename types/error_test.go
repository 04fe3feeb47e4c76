package types

import (
	"errors"
	"fmt"
	"testing"
)

func TestError_ChainingAndHelpers(t *testing.T) {
	t.Parallel()

	root := errors.New("root")
	err := NewError(ErrTokenizerInit, "load failed").
		WithCause(root).
		WithRetryable(true).
		WithTokenizer("tiktoken (GPT-4)")

	if GetErrorCode(err) != ErrTokenizerInit {
		t.Fatalf("expected code %s, got %s", ErrTokenizerInit, GetErrorCode(err))
	}
	if !IsRetryable(err) {
		t.Fatalf("expected retryable")
	}
	if !errors.Is(err, root) {
		t.Fatalf("expected errors.Is unwrap to root")
	}
	if got := err.Error(); got != "[TOKENIZER_INIT] load failed: root" {
		t.Fatalf("unexpected error string %q", got)
	}
}

func TestGetErrorCode_Wrapped(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("run: %w", NewError(ErrNoTokenizers, "no tokenizers available"))

	if !IsErrorCode(err, ErrNoTokenizers) {
		t.Fatalf("expected wrapped code to be found")
	}
	if IsErrorCode(nil, ErrNoTokenizers) {
		t.Fatalf("nil error must not match")
	}
	if GetErrorCode(errors.New("plain")) != "" {
		t.Fatalf("plain errors carry no code")
	}
}
