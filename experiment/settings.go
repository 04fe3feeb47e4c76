package experiment

import (
	"fmt"
	"strings"

	"github.com/BaSui01/tokenbench/config"
	"github.com/BaSui01/tokenbench/types"
)

// Settings are the resolved inputs of one experiment run. They are passed
// explicitly to the Collector, Engine and Aggregator.
type Settings struct {
	// Languages 语言代码（有序）
	Languages []string
	// Baseline 作为除数的基准语言
	Baseline string
	// Primary 重点研究的语言（分解视图）
	Primary string
	// Tokenizers 分词器名称（有序），为空时使用已加载集合的顺序
	Tokenizers []string
}

// SettingsFromConfig builds Settings from the experiment section.
func SettingsFromConfig(exp config.ExperimentConfig) Settings {
	names := make([]string, 0, len(exp.Tokenizers))
	for _, t := range exp.Tokenizers {
		names = append(names, t.Name)
	}
	return Settings{
		Languages:  append([]string(nil), exp.Languages...),
		Baseline:   exp.Baseline,
		Primary:    exp.Primary,
		Tokenizers: names,
	}
}

// Validate checks the settings and reports every problem at once.
func (s Settings) Validate() error {
	var problems []string

	if len(s.Languages) == 0 {
		problems = append(problems, "no languages configured")
	}
	seen := make(map[string]bool, len(s.Languages))
	for _, lang := range s.Languages {
		if lang == "" {
			problems = append(problems, "empty language code")
			continue
		}
		if seen[lang] {
			problems = append(problems, fmt.Sprintf("duplicate language %q", lang))
		}
		seen[lang] = true
	}
	if !seen[s.Baseline] {
		problems = append(problems, fmt.Sprintf("baseline %q is not a configured language", s.Baseline))
	}
	if s.Primary != "" && !seen[s.Primary] {
		problems = append(problems, fmt.Sprintf("primary %q is not a configured language", s.Primary))
	}

	if len(problems) > 0 {
		return types.NewError(types.ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

// NonBaseline returns the configured languages except the baseline, in order.
func (s Settings) NonBaseline() []string {
	out := make([]string, 0, len(s.Languages))
	for _, lang := range s.Languages {
		if lang != s.Baseline {
			out = append(out, lang)
		}
	}
	return out
}
