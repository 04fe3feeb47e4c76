package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// =============================================================================
// 🧪 默认配置测试
// =============================================================================

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	// 验证实验默认值
	assert.Equal(t, []string{"PL", "EN", "DE", "AR", "HY", "JA", "ZH"}, cfg.Experiment.Languages)
	assert.Equal(t, "EN", cfg.Experiment.Baseline)
	assert.Equal(t, "PL", cfg.Experiment.Primary)
	assert.Len(t, cfg.Experiment.Tokenizers, 5)
	for _, lang := range cfg.Experiment.Languages {
		assert.NotEmpty(t, cfg.Experiment.LanguageNames[lang], "language %s needs a name", lang)
	}

	// 验证抓取默认值
	assert.Equal(t, uint64(42), cfg.Fetch.Seed)
	assert.Len(t, cfg.Fetch.SentencesPerArticle, len(cfg.Fetch.Articles))
	assert.Equal(t, 500*time.Millisecond, cfg.Fetch.RequestInterval)
	assert.Equal(t, 3, cfg.Fetch.MaxRetries)

	// 验证输出默认值
	assert.Equal(t, "results.md", cfg.Output.MarkdownFile)
	assert.Equal(t, "results_detailed.csv", cfg.Output.CSVFile)

	// 验证可选组件默认关闭
	assert.False(t, cfg.Database.Enabled)
	assert.False(t, cfg.Cache.Enabled)
	assert.False(t, cfg.Metrics.Enabled)
	assert.False(t, cfg.Telemetry.Enabled)

	assert.Equal(t, "info", cfg.Log.Level)
}

func TestDefaultConfig_IndependentCopies(t *testing.T) {
	a := DefaultConfig()
	b := DefaultConfig()

	a.Experiment.Languages[0] = "XX"
	a.Experiment.LanguageNames["EN"] = "changed"

	assert.Equal(t, "PL", b.Experiment.Languages[0])
	assert.Equal(t, "English", b.Experiment.LanguageNames["EN"])
}

func TestExperimentConfig_LanguageName(t *testing.T) {
	exp := DefaultExperimentConfig()
	assert.Equal(t, "Armenian", exp.LanguageName("HY"))
	assert.Equal(t, "XX", exp.LanguageName("XX"))
}
