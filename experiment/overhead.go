package experiment

// groupKey identifies a measurement group.
type groupKey struct {
	sentence  string
	tokenizer string
}

// Engine derives overhead percentages relative to the baseline language.
type Engine struct {
	baseline string
}

// NewEngine creates an engine for the given baseline language.
func NewEngine(baseline string) *Engine {
	return &Engine{baseline: baseline}
}

// Baseline returns the baseline language code.
func (e *Engine) Baseline() string {
	return e.baseline
}

// Apply derives Overhead, CharOverhead and NormalizedOverhead in place.
// Derived fields are always recomputed from the raw counts, so Apply is
// idempotent. A group without a baseline record, or whose baseline has a
// zero divisor, gets NotApplicable for the affected fields.
func (e *Engine) Apply(ms []Measurement) {
	baselines := make(map[groupKey]int, len(ms)/4+1)
	for i := range ms {
		if ms[i].Language != e.baseline {
			continue
		}
		key := groupKey{ms[i].SentenceID, ms[i].Tokenizer}
		if _, ok := baselines[key]; !ok {
			baselines[key] = i
		}
	}

	for i := range ms {
		m := &ms[i]
		if m.Language == e.baseline {
			m.Overhead = Computed(0)
			m.CharOverhead = Computed(0)
			m.NormalizedOverhead = Computed(0)
			continue
		}

		bi, ok := baselines[groupKey{m.SentenceID, m.Tokenizer}]
		if !ok {
			m.Overhead = NotApplicable
			m.CharOverhead = NotApplicable
			m.NormalizedOverhead = NotApplicable
			continue
		}
		derive(m, ms[bi])
	}
}

func derive(m *Measurement, b Measurement) {
	m.Overhead = NotApplicable
	if b.TokenCount > 0 {
		m.Overhead = Computed(relDiff(float64(m.TokenCount), float64(b.TokenCount)))
	}

	// 字符与归一化开销只在基准 tokens/char > 0 时计算（隐含 count > 0 且 chars > 0）
	m.CharOverhead = NotApplicable
	m.NormalizedOverhead = NotApplicable
	if b.TokensPerChar > 0 && b.CharCount > 0 {
		m.CharOverhead = Computed(relDiff(float64(m.CharCount), float64(b.CharCount)))
		m.NormalizedOverhead = Computed(relDiff(m.TokensPerChar, b.TokensPerChar))
	}
}

// relDiff 先乘 100 再除，整数计数时结果精确（(13-10)*100/10 == 30）
func relDiff(v, base float64) float64 {
	return (v - base) * 100 / base
}
