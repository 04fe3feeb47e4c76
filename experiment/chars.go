package experiment

import (
	"unicode/utf8"

	"github.com/BaSui01/tokenbench/corpus"
)

// CharLength is the average sentence length of one language and its mean
// char overhead against the baseline.
type CharLength struct {
	Language string
	AvgChars float64
	// Overhead 基准语言行为 NotApplicable
	Overhead Percent
}

// CharLengths computes the character-length analysis over the store.
// Sentences whose baseline text is empty are skipped for the overhead mean.
func CharLengths(store *corpus.Store, settings Settings) []CharLength {
	if store == nil || store.Len() == 0 {
		return nil
	}

	out := make([]CharLength, 0, len(settings.Languages))
	for _, lang := range settings.Languages {
		var (
			lengths  []float64
			overhead []float64
		)
		for _, id := range store.IDs() {
			text, ok := store.Text(id, lang)
			if !ok {
				continue
			}
			chars := float64(utf8.RuneCountInString(text))
			lengths = append(lengths, chars)

			if lang == settings.Baseline {
				continue
			}
			base, ok := store.Text(id, settings.Baseline)
			if !ok {
				continue
			}
			if b := float64(utf8.RuneCountInString(base)); b > 0 {
				overhead = append(overhead, relDiff(chars, b))
			}
		}

		avg, ok := mean(lengths)
		if !ok {
			continue
		}
		row := CharLength{Language: lang, AvgChars: avg}
		if lang != settings.Baseline {
			if m, ok := mean(overhead); ok {
				row.Overhead = Computed(m)
			}
		}
		out = append(out, row)
	}
	return out
}
