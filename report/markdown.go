package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/BaSui01/tokenbench/config"
	"github.com/BaSui01/tokenbench/corpus"
	"github.com/BaSui01/tokenbench/experiment"
	"github.com/BaSui01/tokenbench/internal/pool"
)

const (
	// 可视化展示的句子数与每条记录的 token 数
	visualizeSentences = 3
	visualizeTokens    = 40

	noData      = "-"
	notComputed = "not computed (no baseline data)"
	partialMark = "*"
)

// computedNote 表格中出现 - 或 * 时追加的说明
const computedNote = "`-`: not computed (no baseline data). `*`: some records had no baseline data and count as 0 in the mean."

// Input is everything a report is rendered from. Store and Metadata are
// optional: without a store the char analysis is empty, without metadata the
// data is described as built-in.
type Input struct {
	Measurements []experiment.Measurement
	Store        *corpus.Store
	Metadata     *corpus.Metadata
}

// Builder renders Markdown reports for one experiment configuration.
type Builder struct {
	exp         config.ExperimentConfig
	settings    experiment.Settings
	specialists []experiment.Specialist
}

// NewBuilder creates a report builder.
func NewBuilder(exp config.ExperimentConfig) *Builder {
	specs := make([]experiment.Specialist, 0, len(exp.Specialists))
	for _, s := range exp.Specialists {
		specs = append(specs, experiment.Specialist{Tokenizer: s.Tokenizer, Language: s.Language, Label: s.Label})
	}
	return &Builder{
		exp:         exp,
		settings:    experiment.SettingsFromConfig(exp),
		specialists: specs,
	}
}

// Render writes the full report.
func (b *Builder) Render(w io.Writer, in Input) error {
	buf := pool.ByteBufferPool.Get()
	defer pool.ByteBufferPool.Put(buf)

	agg := experiment.NewAggregator(b.settings, in.Measurements)
	sections := []string{
		"# Tokenization experiment results\n",
		b.header(agg, in) + "\n",
		b.DataSources(in.Metadata, sentenceCount(in)), "",
		b.SummaryTable(agg), "",
		b.CharAnalysis(in.Store), "",
		b.NormalizedTable(agg), "",
		b.Ranking(agg), "",
		b.TokenVisualization(in.Measurements), "",
		b.Conclusions(agg),
	}
	buf.WriteString(strings.Join(sections, "\n"))
	buf.WriteString("\n")

	_, err := w.Write(buf.Bytes())
	return err
}

func (b *Builder) header(agg *experiment.Aggregator, in Input) string {
	n := sentenceCount(in)
	desc := fmt.Sprintf("%d test sentences", n)
	if in.Metadata != nil {
		desc = fmt.Sprintf("%d sentences from Wikipedia articles", n)
	}
	return fmt.Sprintf("%d tokenizers x %d languages x %s",
		len(agg.Tokenizers()), len(b.settings.Languages), desc)
}

func sentenceCount(in Input) int {
	if in.Store != nil {
		return in.Store.Len()
	}
	seen := make(map[string]bool)
	for _, m := range in.Measurements {
		seen[m.SentenceID] = true
	}
	return len(seen)
}

// =============================================================================
// 📊 汇总表
// =============================================================================

// SummaryTable renders the mean raw overhead per language and tokenizer.
func (b *Builder) SummaryTable(agg *experiment.Aggregator) string {
	return b.overheadTable(agg,
		fmt.Sprintf("Mean tokenization overhead vs %s (%%)", b.exp.LanguageName(b.settings.Baseline)),
		experiment.FieldOverhead)
}

// NormalizedTable renders the mean tokens-per-char overhead.
func (b *Builder) NormalizedTable(agg *experiment.Aggregator) string {
	return b.overheadTable(agg,
		fmt.Sprintf("Normalized tokenization overhead vs %s (%%), tokens/char", b.exp.LanguageName(b.settings.Baseline)),
		experiment.FieldNormalizedOverhead)
}

func (b *Builder) overheadTable(agg *experiment.Aggregator, title string, field experiment.Field) string {
	toks := agg.Tokenizers()
	lines := []string{
		"## " + title + "\n",
		"| Language | " + strings.Join(toks, " | ") + " |",
		"|-------|" + strings.Repeat("--------|", len(toks)),
	}
	flagged := false
	for _, lang := range b.settings.NonBaseline() {
		var row strings.Builder
		row.WriteString(b.langLabel(lang) + " ")
		for _, tok := range toks {
			s, ok := agg.Summary(lang, tok, field)
			switch {
			case !ok:
				row.WriteString("| " + noData + " ")
			case s.NotComputed():
				flagged = true
				row.WriteString("| " + noData + " ")
			default:
				flagged = flagged || s.Partial()
				fmt.Fprintf(&row, "| %s%s (%.0f) ", signed(s.Mean), mark(s.Computed, s.N), s.StdDev)
			}
		}
		lines = append(lines, row.String()+"|")
	}
	if flagged {
		lines = append(lines, "", computedNote)
	}
	return strings.Join(lines, "\n")
}

// CharAnalysis renders average sentence length and char overhead.
func (b *Builder) CharAnalysis(store *corpus.Store) string {
	base := b.exp.LanguageName(b.settings.Baseline)
	lines := []string{
		"## Character length analysis\n",
		fmt.Sprintf("| Language | Avg length (chars) | Mean char overhead vs %s |", base),
		"|-------|---------------------|----------------------------|",
	}
	for _, cl := range experiment.CharLengths(store, b.settings) {
		oh := noData
		if cl.Overhead.Computed {
			oh = signed(cl.Overhead.Value)
		}
		lines = append(lines, fmt.Sprintf("%s | %.0f | %s |", b.langLabel(cl.Language), cl.AvgChars, oh))
	}
	return strings.Join(lines, "\n")
}

// Ranking lists languages from cheapest to most expensive per tokenizer.
func (b *Builder) Ranking(agg *experiment.Aggregator) string {
	lines := []string{"## Language ranking (cheapest to most expensive)\n"}
	for _, tok := range agg.Tokenizers() {
		lines = append(lines, "### "+tok+"\n")
		// 未计算的语言不参与名次，列在最后
		var skipped []string
		rank := 0
		for _, e := range agg.Ranking(tok) {
			if e.Computed == 0 {
				skipped = append(skipped, fmt.Sprintf("- **%s** (%s): %s",
					e.Language, b.exp.LanguageName(e.Language), notComputed))
				continue
			}
			rank++
			lines = append(lines, fmt.Sprintf("%d. **%s** (%s): %s%s",
				rank, e.Language, b.exp.LanguageName(e.Language), signed(e.Mean), mark(e.Computed, e.N)))
		}
		lines = append(lines, skipped...)
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

// TokenVisualization shows the tokens of the first sentences for the
// baseline and primary language.
func (b *Builder) TokenVisualization(ms []experiment.Measurement) string {
	tok := b.exp.VisualizeTokenizer
	lines := []string{fmt.Sprintf("## Token visualization (%s, sample sentences)\n", tok)}

	var ids []string
	seen := make(map[string]bool)
	for _, m := range ms {
		if !seen[m.SentenceID] && len(ids) < visualizeSentences {
			seen[m.SentenceID] = true
			ids = append(ids, m.SentenceID)
		}
	}

	langs := []string{b.settings.Baseline}
	if b.settings.Primary != "" && b.settings.Primary != b.settings.Baseline {
		langs = append(langs, b.settings.Primary)
	}

	for _, id := range ids {
		lines = append(lines, fmt.Sprintf("### Sentence: %s\n", id))
		for _, lang := range langs {
			m, ok := find(ms, id, lang, tok)
			if !ok || len(m.Tokens) == 0 {
				continue
			}
			lines = append(lines,
				fmt.Sprintf("**%s** (%d tokens):", m.Language, m.TokenCount),
				"> "+formatTokens(m.Tokens),
				"")
		}
	}
	return strings.Join(lines, "\n")
}

func find(ms []experiment.Measurement, id, lang, tok string) (experiment.Measurement, bool) {
	for _, m := range ms {
		if m.SentenceID == id && m.Language == lang && m.Tokenizer == tok {
			return m, true
		}
	}
	return experiment.Measurement{}, false
}

func formatTokens(tokens []string) string {
	n := min(len(tokens), visualizeTokens)
	quoted := make([]string, n)
	for i, t := range tokens[:n] {
		quoted[i] = codeSpan(t)
	}
	out := strings.Join(quoted, " | ")
	if len(tokens) > visualizeTokens {
		out += " | ..."
	}
	return out
}

// =============================================================================
// 📝 结论
// =============================================================================

// Conclusions summarizes the primary language, specialists and the
// overhead decomposition.
func (b *Builder) Conclusions(agg *experiment.Aggregator) string {
	primary := b.settings.Primary
	base := b.settings.Baseline
	lines := []string{"## Key findings\n"}

	for _, tok := range agg.Tokenizers() {
		s, ok := agg.Summary(primary, tok, experiment.FieldOverhead)
		if !ok {
			continue
		}
		if s.NotComputed() {
			lines = append(lines, fmt.Sprintf("- **%s**: %s overhead vs %s %s",
				tok, b.exp.LanguageName(primary), b.exp.LanguageName(base), notComputed))
			continue
		}
		lines = append(lines, fmt.Sprintf(
			"- **%s**: %s text needs on average **%s** (std=%.0f) more tokens than %s%s",
			tok, b.exp.LanguageName(primary), signed(s.Mean), s.StdDev, b.exp.LanguageName(base),
			coverage(s.Computed, s.N)))
	}
	lines = append(lines, "")

	for _, r := range agg.Specialists(b.specialists) {
		if r.Computed == 0 {
			lines = append(lines, fmt.Sprintf("- %s (%s specialist): %s overhead %s",
				r.Tokenizer, r.Label, r.Language, notComputed))
			continue
		}
		others := notComputed
		if r.Others > 0 {
			others = signed(r.OthersMean)
		}
		lines = append(lines, fmt.Sprintf(
			"- %s (%s specialist): %s overhead = %s vs mean of the others = %s",
			r.Tokenizer, r.Label, r.Language, signed(r.Mean), others))
	}
	lines = append(lines, "",
		fmt.Sprintf("### Overhead decomposition (%s vs %s)\n", primary, base),
		"Multiplicative relation: (1 + raw overhead) = (1 + char overhead) x (1 + normalized overhead)\n")

	for _, r := range agg.Decomposition() {
		if r.Computed == 0 {
			lines = append(lines, fmt.Sprintf("- **%s**: %s", r.Tokenizer, notComputed))
			continue
		}
		lines = append(lines, fmt.Sprintf(
			"- **%s**: raw %s, of which char overhead %s, normalized (tokenizer) %s, implied %s",
			r.Tokenizer, signed(r.Overhead), signed(r.CharOverhead), signed(r.NormalizedOverhead), signed(r.Implied)))
	}
	return strings.Join(lines, "\n")
}

// DataSources describes where the corpus came from.
func (b *Builder) DataSources(md *corpus.Metadata, sentences int) string {
	lines := []string{"## Data sources\n"}
	if md == nil {
		lines = append(lines, fmt.Sprintf("Built-in data (%d test sentences).\n", sentences))
		return strings.Join(lines, "\n")
	}

	lines = append(lines,
		fmt.Sprintf("**Corpus**: %d sentences from Wikipedia articles\n", md.TotalSentences),
		fmt.Sprintf("**Translation**: %s\n", orUnknown(md.TranslationMethod)),
		fmt.Sprintf("**Generated at**: %s\n", orUnknown(md.GeneratedAt)),
		"**Source articles:**\n",
	)
	for _, src := range md.Sources {
		lines = append(lines, fmt.Sprintf("- [%s](%s) (%s), %d sentences",
			src.Title, src.URL, src.Domain, src.SentencesSelected))
	}
	lines = append(lines, "")
	return strings.Join(lines, "\n")
}

func (b *Builder) langLabel(lang string) string {
	return fmt.Sprintf("| **%s** (%s)", lang, b.exp.LanguageName(lang))
}

// tokenEscaper 控制字符写成转义序列，| 转义以免破坏表格
var tokenEscaper = strings.NewReplacer("\r", `\r`, "\n", `\n`, "\t", `\t`, "|", `\|`)

// codeSpan 把 token 包成行内代码。token 含反引号时，定界符比其中最长的
// 反引号串多一个，并在两侧补空格。
func codeSpan(token string) string {
	t := tokenEscaper.Replace(token)
	longest, run := 0, 0
	for _, r := range t {
		if r == '`' {
			run++
			longest = max(longest, run)
		} else {
			run = 0
		}
	}
	if longest == 0 {
		return "`" + t + "`"
	}
	fence := strings.Repeat("`", longest+1)
	return fence + " " + t + " " + fence
}

// mark 部分记录缺基线时返回 partialMark
func mark(computed, n int) string {
	if computed > 0 && computed < n {
		return partialMark
	}
	return ""
}

// coverage 部分记录缺基线时说明有效记录数
func coverage(computed, n int) string {
	if computed > 0 && computed < n {
		return fmt.Sprintf(" (%d of %d sentences with baseline data)", computed, n)
	}
	return ""
}

func signed(v float64) string {
	if v >= 0 {
		return fmt.Sprintf("+%.1f%%", v)
	}
	return fmt.Sprintf("%.1f%%", v)
}

func orUnknown(s string) string {
	if s == "" {
		return "?"
	}
	return s
}
