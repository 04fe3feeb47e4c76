package experiment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BaSui01/tokenbench/config"
	"github.com/BaSui01/tokenbench/types"
)

func TestSettingsFromConfig(t *testing.T) {
	exp := config.ExperimentConfig{
		Languages: []string{"PL", "EN", "DE"},
		Baseline:  "EN",
		Primary:   "PL",
		Tokenizers: []config.TokenizerConfig{
			{Name: "tiktoken (GPT-4)", Library: "tiktoken", ModelID: "cl100k_base"},
			{Name: "estimate", Library: "estimator"},
		},
	}
	s := SettingsFromConfig(exp)
	assert.Equal(t, []string{"PL", "EN", "DE"}, s.Languages)
	assert.Equal(t, []string{"tiktoken (GPT-4)", "estimate"}, s.Tokenizers)
	assert.NoError(t, s.Validate())
	assert.Equal(t, []string{"PL", "DE"}, s.NonBaseline())

	// 修改配置不影响已构造的设置
	exp.Languages[0] = "XX"
	assert.Equal(t, "PL", s.Languages[0])
}

func TestSettings_Validate(t *testing.T) {
	s := Settings{Languages: []string{"EN", "PL", "PL", ""}, Baseline: "FI", Primary: "JA"}
	err := s.Validate()
	require.Error(t, err)
	assert.Equal(t, types.ErrInvalidConfig, types.GetErrorCode(err))
	for _, want := range []string{`duplicate language "PL"`, "empty language code", `baseline "FI"`, `primary "JA"`} {
		assert.Contains(t, err.Error(), want)
	}

	err = Settings{Baseline: "EN"}.Validate()
	assert.Contains(t, err.Error(), "no languages configured")

	assert.NoError(t, Settings{Languages: []string{"EN"}, Baseline: "EN"}.Validate())
}
