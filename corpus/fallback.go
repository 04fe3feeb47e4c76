package corpus

import (
	_ "embed"
	"fmt"
)

//go:embed fallback_sentences.json
var fallbackJSON []byte

// Fallback returns the built-in test sentences restricted to the given
// languages. Sentences lacking any of the languages are dropped, so a
// language outside PL/EN/DE/AR/HY/JA/ZH yields an empty store.
func Fallback(languages []string) (*Store, error) {
	f, err := Decode(fallbackJSON)
	if err != nil {
		return nil, fmt.Errorf("decode built-in sentences: %w", err)
	}
	return NewStore(languages, f.Rows()), nil
}
