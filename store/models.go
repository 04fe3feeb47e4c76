package store

import (
	"time"

	"github.com/BaSui01/tokenbench/experiment"
)

// RunRecord is one persisted experiment run.
type RunRecord struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	Baseline     string    `gorm:"size:16;not null" json:"baseline"`
	Primary      string    `gorm:"size:16" json:"primary"`
	Languages    []string  `gorm:"serializer:json" json:"languages"`
	Tokenizers   []string  `gorm:"serializer:json" json:"tokenizers"`
	Sentences    int       `json:"sentences"`
	Measurements int       `json:"measurements"`
	StartedAt    time.Time `gorm:"index" json:"started_at"`
	FinishedAt   time.Time `json:"finished_at"`
	CreatedAt    time.Time `json:"created_at"`
}

// TableName 表名
func (RunRecord) TableName() string { return "runs" }

// MeasurementRecord is one persisted measurement. Percent columns are NULL
// when the value was not computed.
type MeasurementRecord struct {
	ID                 uint     `gorm:"primaryKey;autoIncrement" json:"id"`
	RunID              string   `gorm:"size:36;not null;index:idx_run_seq,priority:1" json:"run_id"`
	Seq                int      `gorm:"not null;index:idx_run_seq,priority:2" json:"seq"`
	SentenceID         string   `gorm:"size:64;not null" json:"sentence"`
	Language           string   `gorm:"size:16;not null" json:"lang"`
	Tokenizer          string   `gorm:"size:128;not null" json:"tokenizer"`
	TokenCount         int      `json:"count"`
	CharCount          int      `json:"char_count"`
	TokensPerChar      float64  `json:"tokens_per_char"`
	Overhead           *float64 `json:"overhead_pct"`
	CharOverhead       *float64 `json:"char_overhead_pct"`
	NormalizedOverhead *float64 `json:"normalized_overhead_pct"`
}

// TableName 表名
func (MeasurementRecord) TableName() string { return "measurements" }

func newRunRecord(run *experiment.Run) RunRecord {
	return RunRecord{
		ID:           run.ID,
		Baseline:     run.Settings.Baseline,
		Primary:      run.Settings.Primary,
		Languages:    append([]string(nil), run.Settings.Languages...),
		Tokenizers:   append([]string(nil), run.Tokenizers...),
		Sentences:    run.Sentences,
		Measurements: len(run.Measurements),
		StartedAt:    run.StartedAt,
		FinishedAt:   run.FinishedAt,
	}
}

func newMeasurementRecord(runID string, seq int, m experiment.Measurement) MeasurementRecord {
	return MeasurementRecord{
		RunID:              runID,
		Seq:                seq,
		SentenceID:         m.SentenceID,
		Language:           m.Language,
		Tokenizer:          m.Tokenizer,
		TokenCount:         m.TokenCount,
		CharCount:          m.CharCount,
		TokensPerChar:      m.TokensPerChar,
		Overhead:           m.Overhead.Ptr(),
		CharOverhead:       m.CharOverhead.Ptr(),
		NormalizedOverhead: m.NormalizedOverhead.Ptr(),
	}
}

// Measurement converts the record back; tokens are not persisted.
func (r MeasurementRecord) Measurement() experiment.Measurement {
	m := experiment.NewMeasurement(r.SentenceID, r.Language, r.Tokenizer, r.TokenCount, r.CharCount)
	m.TokensPerChar = r.TokensPerChar
	m.Overhead = experiment.PercentFromPtr(r.Overhead)
	m.CharOverhead = experiment.PercentFromPtr(r.CharOverhead)
	m.NormalizedOverhead = experiment.PercentFromPtr(r.NormalizedOverhead)
	return m
}
