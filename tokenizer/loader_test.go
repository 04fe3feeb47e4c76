package tokenizer

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/BaSui01/tokenbench/config"
	"github.com/BaSui01/tokenbench/types"
)

func fakeFactory(cfg config.TokenizerConfig) (Adapter, error) {
	return &fakeAdapter{name: cfg.Name}, nil
}

func TestLoad_KeepsConfigOrderAndSkipsFailures(t *testing.T) {
	cfgs := []config.TokenizerConfig{
		{Name: "B", Library: "tiktoken", ModelID: "cl100k_base"},
		{Name: "broken", Library: "huggingface", ModelID: "org/missing"},
		{Name: "A", Library: "estimator"},
		{Name: "unknown", Library: "sentencepiece"},
	}

	var observed []string
	set, failures := Load(cfgs, zaptest.NewLogger(t),
		WithFactory(LibraryTiktoken, fakeFactory),
		WithFactory(LibraryHuggingFace, func(cfg config.TokenizerConfig) (Adapter, error) {
			return nil, errors.New("download refused")
		}),
		WithLoadObserver(func(name string, ok bool) {
			if ok {
				observed = append(observed, name+":ok")
			} else {
				observed = append(observed, name+":fail")
			}
		}),
	)

	assert.Equal(t, []string{"B", "A"}, set.Names())
	assert.Equal(t, 2, set.Len())
	require.Len(t, failures, 2)
	assert.Equal(t, "broken", failures[0].Name)
	assert.Equal(t, "unknown", failures[1].Name)
	for _, f := range failures {
		assert.True(t, types.IsErrorCode(f.Err, types.ErrTokenizerInit))
	}
	assert.Equal(t, []string{"B:ok", "broken:fail", "A:ok", "unknown:fail"}, observed)

	a, ok := set.Get("A")
	require.True(t, ok)
	_, isEstimator := a.(*EstimatorAdapter)
	assert.True(t, isEstimator)

	_, ok = set.Get("broken")
	assert.False(t, ok)
}

func TestLoad_RecoversFactoryPanic(t *testing.T) {
	set, failures := Load([]config.TokenizerConfig{
		{Name: "panicky", Library: "tiktoken"},
		{Name: "ok", Library: "estimator"},
	}, nil, WithFactory(LibraryTiktoken, func(config.TokenizerConfig) (Adapter, error) {
		panic("corrupt vocabulary")
	}))

	assert.Equal(t, []string{"ok"}, set.Names())
	require.Len(t, failures, 1)
	assert.Contains(t, failures[0].Err.Error(), "corrupt vocabulary")
}

func TestLoad_DuplicateNames(t *testing.T) {
	set, failures := Load([]config.TokenizerConfig{
		{Name: "same", Library: "estimator"},
		{Name: "same", Library: "estimator"},
	}, nil)

	assert.Equal(t, 1, set.Len())
	require.Len(t, failures, 1)
	assert.Contains(t, failures[0].Err.Error(), "duplicate")
}

func TestLoad_InvalidHuggingFaceFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokenizer.json")
	require.NoError(t, os.WriteFile(path, []byte("not a tokenizer"), 0o644))

	set, failures := Load([]config.TokenizerConfig{
		{Name: "hf", Library: "transformers", ModelID: path},
	}, nil)

	assert.Zero(t, set.Len())
	require.Len(t, failures, 1)
	assert.Equal(t, "hf", failures[0].Name)
	assert.True(t, types.IsErrorCode(failures[0].Err, types.ErrTokenizerInit))
}

func TestLoad_AllFailYieldsEmptySet(t *testing.T) {
	set, failures := Load([]config.TokenizerConfig{
		{Name: "x", Library: "nope"},
	}, nil)
	assert.Zero(t, set.Len())
	assert.Empty(t, set.Names())
	assert.Len(t, failures, 1)
}

func TestSet_Wrap(t *testing.T) {
	a := &fakeAdapter{name: "a"}
	b := &fakeAdapter{name: "b"}
	set := NewSet(a, b, &fakeAdapter{name: "a"})
	assert.Equal(t, []string{"a", "b"}, set.Names())

	wrapped := set.Wrap(func(inner Adapter) Adapter {
		return &renamedAdapter{Adapter: inner}
	})
	assert.Equal(t, set.Names(), wrapped.Names())

	got, ok := wrapped.Get("b")
	require.True(t, ok)
	_, isWrapped := got.(*renamedAdapter)
	assert.True(t, isWrapped)

	// 原集合不受影响
	orig, _ := set.Get("b")
	assert.Same(t, b, orig)
}

type renamedAdapter struct {
	Adapter
}
