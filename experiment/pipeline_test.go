package experiment_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap/zaptest"

	"github.com/BaSui01/tokenbench/experiment"
	"github.com/BaSui01/tokenbench/testutil/fixtures"
	"github.com/BaSui01/tokenbench/testutil/mocks"
	"github.com/BaSui01/tokenbench/types"
)

type stageEvent struct {
	stage string
	err   error
}

type recordingStages struct{ events []stageEvent }

func (r *recordingStages) ObserveStage(stage string, _ time.Duration, err error) {
	r.events = append(r.events, stageEvent{stage, err})
}

// fakeClock 每次调用前进一秒
func fakeClock() func() time.Time {
	t := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func installRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	orig := otel.GetTracerProvider()
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		otel.SetTracerProvider(orig)
	})
	return rec
}

func TestPipeline_Run(t *testing.T) {
	rec := installRecorder(t)
	stages := &recordingStages{}
	settings := fixtures.Settings()
	collector := experiment.NewCollector(settings, mocks.NewSet(mocks.NewMockAdapter("a")))

	p := experiment.NewPipeline(collector, experiment.NewEngine(settings.Baseline),
		experiment.WithPipelineLogger(zaptest.NewLogger(t)),
		experiment.WithClock(fakeClock()),
		experiment.WithIDGenerator(func() string { return "run-1" }),
		experiment.WithStageObserver(stages),
	)

	run, err := p.Run(context.Background(), fixtures.ParallelStore())
	require.NoError(t, err)

	assert.Equal(t, "run-1", run.ID)
	assert.Equal(t, 3, run.Sentences)
	assert.Equal(t, []string{"a"}, run.Tokenizers)
	assert.Equal(t, settings, run.Settings)
	assert.True(t, run.FinishedAt.After(run.StartedAt))
	assert.Positive(t, run.Duration())

	require.Len(t, run.Measurements, 9)
	for _, m := range run.Measurements {
		assert.True(t, m.Overhead.Computed, "derived after run")
		if m.Language == "EN" {
			assert.Equal(t, experiment.Computed(0), m.Overhead)
		}
	}

	assert.Equal(t, []stageEvent{
		{stage: experiment.StageCollect},
		{stage: experiment.StageDerive},
	}, stages.events)

	var names []string
	for _, s := range rec.Ended() {
		names = append(names, s.Name())
	}
	assert.ElementsMatch(t, []string{"collect", "derive", "experiment.run"}, names)
}

func TestPipeline_CollectFailure(t *testing.T) {
	rec := installRecorder(t)
	stages := &recordingStages{}
	settings := fixtures.Settings()
	collector := experiment.NewCollector(settings, mocks.NewSet(mocks.NewMockAdapter("a").WithError(assert.AnError)))

	run, err := experiment.NewPipeline(collector, experiment.NewEngine(settings.Baseline),
		experiment.WithStageObserver(stages),
	).Run(context.Background(), fixtures.ParallelStore())

	assert.Nil(t, run)
	assert.True(t, types.IsErrorCode(err, types.ErrTokenizerEncode))
	require.Len(t, stages.events, 1)
	assert.Equal(t, experiment.StageCollect, stages.events[0].stage)
	assert.Error(t, stages.events[0].err)

	for _, s := range rec.Ended() {
		assert.Equal(t, "Error", s.Status().Code.String(), s.Name())
	}
}

func TestPipeline_DefaultRunIDIsUUID(t *testing.T) {
	settings := fixtures.Settings()
	collector := experiment.NewCollector(settings, mocks.NewSet(mocks.NewMockAdapter("a")))
	run, err := experiment.NewPipeline(collector, experiment.NewEngine(settings.Baseline)).
		Run(context.Background(), fixtures.ParallelStore())
	require.NoError(t, err)
	assert.Len(t, run.ID, 36)
}
