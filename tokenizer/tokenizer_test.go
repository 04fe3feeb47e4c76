package tokenizer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// --- hand-written fake for Adapter ---

type fakeAdapter struct {
	name  string
	calls int
	err   error
}

func (f *fakeAdapter) Encode(text string) (Result, error) {
	f.calls++
	if f.err != nil {
		return Result{}, f.err
	}
	tokens := strings.Fields(text)
	return Result{Count: len(tokens), Tokens: tokens}, nil
}

func (f *fakeAdapter) Name() string { return f.name }

// --- Tests ---

func TestParseLibrary(t *testing.T) {
	tests := []struct {
		in      string
		want    Library
		wantErr bool
	}{
		{in: "tiktoken", want: LibraryTiktoken},
		{in: "TIKTOKEN-GO", want: LibraryTiktokenGo},
		{in: "huggingface", want: LibraryHuggingFace},
		{in: " transformers ", want: LibraryHuggingFace},
		{in: "estimator", want: LibraryEstimator},
		{in: "sentencepiece", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLibrary(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLibraries_DefaultsRegistered(t *testing.T) {
	assert.Equal(t, []Library{LibraryEstimator, LibraryHuggingFace, LibraryTiktoken, LibraryTiktokenGo}, Libraries())
	_, err := GetFactory(Library("nope"))
	assert.Error(t, err)
}

func TestResolveEncoding(t *testing.T) {
	assert.Equal(t, "cl100k_base", resolveEncoding("cl100k_base"))
	assert.Equal(t, "o200k_base", resolveEncoding("o200k_base"))
	assert.Equal(t, "p50k_edit", resolveEncoding("p50k_edit"))
	assert.Equal(t, "o200k_base", resolveEncoding("gpt-4o"))
	assert.Equal(t, "o200k_base", resolveEncoding("gpt-4o-2024-08-06"))
	assert.Equal(t, "cl100k_base", resolveEncoding("gpt-4-0613"))
	assert.Equal(t, "cl100k_base", resolveEncoding("unknown-model"))
}

func TestCodecAdapter(t *testing.T) {
	c, err := NewCodec("tiktoken (GPT-4)", "cl100k_base")
	require.NoError(t, err)
	assert.Equal(t, "tiktoken (GPT-4)", c.Name())

	res, err := c.Encode("hello world")
	require.NoError(t, err)
	assert.Equal(t, 2, res.Count)
	assert.Equal(t, []string{"hello", " world"}, res.Tokens)

	_, err = NewCodec("bad", "no-such-encoding")
	assert.Error(t, err)
}

func TestCodecAdapter_TokensRebuildText(t *testing.T) {
	c, err := NewCodec("o200k", "o200k_base")
	require.NoError(t, err)

	rapid.Check(t, func(t *rapid.T) {
		text := rapid.StringMatching(`[a-zA-Z ,.]{0,40}`).Draw(t, "text")
		res, err := c.Encode(text)
		if err != nil {
			t.Fatalf("encode: %v", err)
		}
		if res.Count != len(res.Tokens) {
			t.Fatalf("count %d != tokens %d", res.Count, len(res.Tokens))
		}
		if strings.Join(res.Tokens, "") != text {
			t.Fatalf("tokens %q do not rebuild %q", res.Tokens, text)
		}
	})
}

func TestEstimatorAdapter(t *testing.T) {
	e := NewEstimator("Estimator")
	assert.Equal(t, "Estimator", e.Name())

	tests := []struct {
		name string
		text string
		want int
	}{
		{name: "empty", text: "", want: 0},
		{name: "short latin", text: "ab", want: 1},
		{name: "latin", text: "abcdefghijklmnop", want: 4},
		{name: "cjk", text: "光合作用是植物", want: 4},
		{name: "kana", text: "ひらがな", want: 2},
		{name: "mixed", text: "光合作用 test", want: 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := e.Encode(tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Count)
			assert.Nil(t, res.Tokens)
		})
	}

	custom := NewEstimator("x").WithRatios(1, 1)
	res, err := custom.Encode("abc")
	require.NoError(t, err)
	assert.Equal(t, 3, res.Count)
}

func TestResolveTokenizerFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, tokenizerFile)
	require.NoError(t, os.WriteFile(file, []byte("{}"), 0o644))

	got, err := resolveTokenizerFile(dir)
	require.NoError(t, err)
	assert.Equal(t, file, got)

	got, err = resolveTokenizerFile(file)
	require.NoError(t, err)
	assert.Equal(t, file, got)

	_, err = resolveTokenizerFile("  ")
	assert.Error(t, err)
}
