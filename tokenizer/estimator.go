package tokenizer

import (
	"unicode/utf8"
)

// EstimatorAdapter is a character-count-based token estimator.
// It distinguishes CJK and other characters, needs no vocabulary
// and never fails. It does not produce token strings.
type EstimatorAdapter struct {
	name string

	cjkCharsPerToken   float64
	otherCharsPerToken float64
}

// NewEstimator creates an estimator with the default ratios.
func NewEstimator(name string) *EstimatorAdapter {
	return &EstimatorAdapter{
		name:               name,
		cjkCharsPerToken:   1.5,
		otherCharsPerToken: 4.0,
	}
}

// WithRatios overrides the chars-per-token ratios.
func (e *EstimatorAdapter) WithRatios(cjk, other float64) *EstimatorAdapter {
	e.cjkCharsPerToken = cjk
	e.otherCharsPerToken = other
	return e
}

// Encode implements Adapter.
func (e *EstimatorAdapter) Encode(text string) (Result, error) {
	if text == "" {
		return Result{}, nil
	}

	totalChars := utf8.RuneCountInString(text)
	cjkCount := 0
	for _, r := range text {
		if isCJK(r) {
			cjkCount++
		}
	}

	estimated := int(float64(cjkCount)/e.cjkCharsPerToken + float64(totalChars-cjkCount)/e.otherCharsPerToken)
	if estimated == 0 {
		estimated = 1
	}
	return Result{Count: estimated}, nil
}

// Name implements Adapter.
func (e *EstimatorAdapter) Name() string {
	return e.name
}

// isCJK returns true if the rune is a CJK character.
func isCJK(r rune) bool {
	return (r >= 0x4E00 && r <= 0x9FFF) || // CJK Unified Ideographs
		(r >= 0x3400 && r <= 0x4DBF) || // CJK Extension A
		(r >= 0x20000 && r <= 0x2A6DF) || // CJK Extension B
		(r >= 0xF900 && r <= 0xFAFF) || // CJK Compatibility Ideographs
		(r >= 0x3000 && r <= 0x303F) || // CJK Symbols and Punctuation
		(r >= 0x3040 && r <= 0x30FF) || // Hiragana and Katakana
		(r >= 0xFF00 && r <= 0xFFEF) // Halfwidth and Fullwidth Forms
}
