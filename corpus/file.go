package corpus

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/BaSui01/tokenbench/types"
)

// Reserved keys of a sentence entry; every other key is a language code.
const (
	keyID     = "id"
	keySource = "source"
)

// SourceInfo describes one article the corpus was sampled from.
type SourceInfo struct {
	Title                   string `json:"title"`
	URL                     string `json:"url"`
	Domain                  string `json:"domain"`
	TotalSentencesExtracted int    `json:"total_sentences_extracted"`
	SentencesSelected       int    `json:"sentences_selected"`
}

// Metadata describes how a corpus file was produced.
type Metadata struct {
	Sources           []SourceInfo `json:"sources"`
	TotalSentences    int          `json:"total_sentences"`
	Languages         []string     `json:"languages"`
	GeneratedAt       string       `json:"generated_at"`
	TranslationMethod string       `json:"translation_method"`
	Seed              uint64       `json:"seed"`
}

// Entry is one sentence of the corpus file: {"id", "source", "<LANG>": text...}.
type Entry map[string]string

// File is the on-disk corpus document.
type File struct {
	Metadata  *Metadata `json:"metadata,omitempty"`
	Sentences []Entry   `json:"sentences"`
}

// Rows converts file entries into store rows.
func (f *File) Rows() []Row {
	rows := make([]Row, 0, len(f.Sentences))
	for _, e := range f.Sentences {
		texts := make(map[string]string, len(e))
		for k, v := range e {
			if k == keyID || k == keySource {
				continue
			}
			texts[k] = v
		}
		rows = append(rows, Row{ID: e[keyID], Source: e[keySource], Texts: texts})
	}
	return rows
}

// Decode parses a corpus document.
func Decode(data []byte) (*File, error) {
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, types.NewError(types.ErrCorpusInvalid, "failed to parse corpus").WithCause(err)
	}
	return &f, nil
}

// ReadFile reads a corpus document from disk.
// A missing file yields an error with code CORPUS_NOT_FOUND.
func ReadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, types.NewError(types.ErrCorpusNotFound, fmt.Sprintf("corpus file %s not found", path)).WithCause(err)
		}
		return nil, fmt.Errorf("read corpus %s: %w", path, err)
	}
	return Decode(data)
}

// Load reads the corpus at path and keeps only sentences complete in every language.
func Load(path string, languages []string) (*Store, *Metadata, error) {
	f, err := ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	return NewStore(languages, f.Rows()), f.Metadata, nil
}

// WriteFile writes the corpus as indented UTF-8 JSON (no HTML escaping).
func WriteFile(path string, f *File) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(f); err != nil {
		return fmt.Errorf("encode corpus: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write corpus %s: %w", path, err)
	}
	return nil
}
