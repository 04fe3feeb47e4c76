package experiment

import (
	"math"
	"sort"
)

// Summary is the mean and sample standard deviation of one group.
// Computed counts the records whose field was actually computed; the others
// enter Mean and StdDev as 0.
type Summary struct {
	Mean     float64
	StdDev   float64
	N        int
	Computed int
}

// NotComputed reports whether no record of the group had a baseline.
func (s Summary) NotComputed() bool { return s.Computed == 0 }

// Partial reports whether some, but not all, records were computed.
func (s Summary) Partial() bool { return s.Computed > 0 && s.Computed < s.N }

// RankEntry is one language in a tokenizer ranking.
type RankEntry struct {
	Rank     int
	Language string
	Mean     float64
	N        int
	Computed int
}

// DecompositionRow relates mean raw overhead to its two mean components.
type DecompositionRow struct {
	Tokenizer          string
	Language           string
	Overhead           float64
	CharOverhead       float64
	NormalizedOverhead float64
	// Implied = ((1+c/100)(1+n/100) - 1) * 100, computed from the two means.
	Implied float64
	// Computed is the number of records with a computed raw overhead.
	Computed int
}

// Specialist names a tokenizer built for one language.
type Specialist struct {
	Tokenizer string
	Language  string
	Label     string
}

// SpecialistRow compares a specialist with the other tokenizers on its language.
type SpecialistRow struct {
	Specialist
	Mean       float64
	OthersMean float64
	// Computed is the number of the specialist's records with a baseline.
	Computed int
	// Others is the number of other tokenizers behind OthersMean; 0 means
	// none of them had a computed overhead and OthersMean is 0.
	Others int
}

type aggKey struct {
	language  string
	tokenizer string
}

// Aggregator reduces an enriched measurement set into summary statistics.
// It is read-only and safe for concurrent use.
type Aggregator struct {
	settings   Settings
	groups     map[aggKey][]int
	ms         []Measurement
	tokenizers []string
}

// NewAggregator indexes ms by (language, tokenizer). ms must not be modified
// afterwards.
func NewAggregator(settings Settings, ms []Measurement) *Aggregator {
	a := &Aggregator{
		settings: settings,
		groups:   make(map[aggKey][]int),
		ms:       ms,
	}
	seen := make(map[string]bool)
	for i, m := range ms {
		key := aggKey{m.Language, m.Tokenizer}
		a.groups[key] = append(a.groups[key], i)
		if !seen[m.Tokenizer] {
			seen[m.Tokenizer] = true
			a.tokenizers = append(a.tokenizers, m.Tokenizer)
		}
	}
	return a
}

// Tokenizers returns tokenizer names in first-seen order.
func (a *Aggregator) Tokenizers() []string {
	return append([]string(nil), a.tokenizers...)
}

// Values returns the field values of a group. Records whose field was not
// computed contribute 0.
func (a *Aggregator) Values(lang, tok string, f Field) []float64 {
	idx := a.groups[aggKey{lang, tok}]
	out := make([]float64, len(idx))
	for i, j := range idx {
		out[i] = f.Of(a.ms[j]).Value
	}
	return out
}

// ComputedCount returns how many records of the group have f computed.
func (a *Aggregator) ComputedCount(lang, tok string, f Field) int {
	n := 0
	for _, j := range a.groups[aggKey{lang, tok}] {
		if f.Of(a.ms[j]).Computed {
			n++
		}
	}
	return n
}

// Mean returns the arithmetic mean of f over the group; false means no data.
func (a *Aggregator) Mean(lang, tok string, f Field) (float64, bool) {
	return mean(a.Values(lang, tok, f))
}

// StdDev returns the sample standard deviation of f over the group, 0 when
// the group has fewer than two records.
func (a *Aggregator) StdDev(lang, tok string, f Field) float64 {
	return SampleStdDev(a.Values(lang, tok, f))
}

// Summary returns mean, standard deviation and size; false means no data.
func (a *Aggregator) Summary(lang, tok string, f Field) (Summary, bool) {
	vals := a.Values(lang, tok, f)
	m, ok := mean(vals)
	if !ok {
		return Summary{}, false
	}
	return Summary{
		Mean:     m,
		StdDev:   SampleStdDev(vals),
		N:        len(vals),
		Computed: a.ComputedCount(lang, tok, f),
	}, true
}

// Ranking orders the non-baseline languages with data for tok by ascending
// mean Overhead. Ties are broken by language code.
func (a *Aggregator) Ranking(tok string) []RankEntry {
	var out []RankEntry
	for _, lang := range a.settings.NonBaseline() {
		if s, ok := a.Summary(lang, tok, FieldOverhead); ok {
			out = append(out, RankEntry{Language: lang, Mean: s.Mean, N: s.N, Computed: s.Computed})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Mean != out[j].Mean {
			return out[i].Mean < out[j].Mean
		}
		return out[i].Language < out[j].Language
	})
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}

// Decomposition reports, per tokenizer with data for the primary language,
// the mean raw overhead and its two mean components.
func (a *Aggregator) Decomposition() []DecompositionRow {
	lang := a.settings.Primary
	var out []DecompositionRow
	for _, tok := range a.tokenizers {
		raw, ok := a.Mean(lang, tok, FieldOverhead)
		if !ok {
			continue
		}
		c, _ := a.Mean(lang, tok, FieldCharOverhead)
		n, _ := a.Mean(lang, tok, FieldNormalizedOverhead)
		out = append(out, DecompositionRow{
			Tokenizer:          tok,
			Language:           lang,
			Overhead:           raw,
			CharOverhead:       c,
			NormalizedOverhead: n,
			Implied:            ((1+c/100)*(1+n/100) - 1) * 100,
			Computed:           a.ComputedCount(lang, tok, FieldOverhead),
		})
	}
	return out
}

// Specialists compares each specialist's mean Overhead on its language with
// the mean of the other tokenizers' means. Other tokenizers without a single
// computed record are left out of that mean. Specialists without data, or with
// no other tokenizer to compare to, are omitted.
func (a *Aggregator) Specialists(specs []Specialist) []SpecialistRow {
	var out []SpecialistRow
	for _, s := range specs {
		own, ok := a.Mean(s.Language, s.Tokenizer, FieldOverhead)
		if !ok {
			continue
		}
		var others []float64
		compared := false
		for _, tok := range a.tokenizers {
			if tok == s.Tokenizer {
				continue
			}
			m, ok := a.Mean(s.Language, tok, FieldOverhead)
			if !ok {
				continue
			}
			compared = true
			if a.ComputedCount(s.Language, tok, FieldOverhead) > 0 {
				others = append(others, m)
			}
		}
		if !compared {
			continue
		}
		om, _ := mean(others)
		out = append(out, SpecialistRow{
			Specialist: s,
			Mean:       own,
			OthersMean: om,
			Computed:   a.ComputedCount(s.Language, s.Tokenizer, FieldOverhead),
			Others:     len(others),
		})
	}
	return out
}

// mean sums in ascending order so the result does not depend on record order.
func mean(vals []float64) (float64, bool) {
	if len(vals) == 0 {
		return 0, false
	}
	sum := 0.0
	for _, v := range sorted(vals) {
		sum += v
	}
	return sum / float64(len(vals)), true
}

// SampleStdDev is the unbiased (n-1) standard deviation; 0 for n < 2.
func SampleStdDev(vals []float64) float64 {
	if len(vals) < 2 {
		return 0
	}
	m, _ := mean(vals)
	ss := 0.0
	for _, v := range sorted(vals) {
		d := v - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(vals)-1))
}

func sorted(vals []float64) []float64 {
	out := append([]float64(nil), vals...)
	sort.Float64s(out)
	return out
}
