package experiment

import (
	"fmt"
	"strconv"
)

// Percent is a derived overhead percentage. A Percent that could not be
// computed (missing baseline or zero divisor) has Value 0 and Computed false.
type Percent struct {
	Value    float64 `json:"value"`
	Computed bool    `json:"computed"`
}

// NotApplicable is the Percent of a comparison that was not possible.
var NotApplicable = Percent{}

// Computed returns a computed Percent.
func Computed(v float64) Percent {
	return Percent{Value: v, Computed: true}
}

// Ptr returns the value as a pointer, nil when not computed.
func (p Percent) Ptr() *float64 {
	if !p.Computed {
		return nil
	}
	v := p.Value
	return &v
}

// PercentFromPtr is the inverse of Ptr.
func PercentFromPtr(v *float64) Percent {
	if v == nil {
		return NotApplicable
	}
	return Computed(*v)
}

// String renders "-" for NotApplicable.
func (p Percent) String() string {
	if !p.Computed {
		return "-"
	}
	return strconv.FormatFloat(p.Value, 'f', 2, 64)
}

// Measurement is one (sentence, language, tokenizer) observation.
type Measurement struct {
	SentenceID    string   `json:"sentence"`
	Language      string   `json:"lang"`
	Tokenizer     string   `json:"tokenizer"`
	TokenCount    int      `json:"count"`
	CharCount     int      `json:"char_count"`
	TokensPerChar float64  `json:"tokens_per_char"`
	Tokens        []string `json:"tokens,omitempty"`

	// 由 Engine 计算
	Overhead           Percent `json:"overhead_pct"`
	CharOverhead       Percent `json:"char_overhead_pct"`
	NormalizedOverhead Percent `json:"normalized_overhead_pct"`
}

// NewMeasurement builds a raw measurement; derived fields are NotApplicable
// until the Engine runs.
func NewMeasurement(sentenceID, language, tokenizerName string, tokenCount, charCount int) Measurement {
	m := Measurement{
		SentenceID: sentenceID,
		Language:   language,
		Tokenizer:  tokenizerName,
		TokenCount: tokenCount,
		CharCount:  charCount,
	}
	if charCount > 0 {
		m.TokensPerChar = float64(tokenCount) / float64(charCount)
	}
	return m
}

// Field selects one of the derived percentages.
type Field int

const (
	FieldOverhead Field = iota
	FieldCharOverhead
	FieldNormalizedOverhead
)

// Fields lists all derived fields.
var Fields = []Field{FieldOverhead, FieldCharOverhead, FieldNormalizedOverhead}

// Of returns the field of m.
func (f Field) Of(m Measurement) Percent {
	switch f {
	case FieldCharOverhead:
		return m.CharOverhead
	case FieldNormalizedOverhead:
		return m.NormalizedOverhead
	default:
		return m.Overhead
	}
}

// String returns the column name of the field.
func (f Field) String() string {
	switch f {
	case FieldOverhead:
		return "overhead_pct"
	case FieldCharOverhead:
		return "char_overhead_pct"
	case FieldNormalizedOverhead:
		return "normalized_overhead_pct"
	}
	return fmt.Sprintf("Field(%d)", int(f))
}
