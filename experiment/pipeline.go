package experiment

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/BaSui01/tokenbench/corpus"
	"github.com/BaSui01/tokenbench/internal/telemetry"
)

// Stage names reported to StageObserver and used as span names.
const (
	StageCollect = "collect"
	StageDerive  = "derive"
)

// Run is the result of one experiment run.
type Run struct {
	ID           string
	StartedAt    time.Time
	FinishedAt   time.Time
	Settings     Settings
	Tokenizers   []string
	Sentences    int
	Measurements []Measurement
}

// Duration 运行耗时
func (r *Run) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// StageObserver receives the duration of each pipeline stage.
type StageObserver interface {
	ObserveStage(stage string, elapsed time.Duration, err error)
}

// Pipeline wires Collector and Engine into one run: Collect, then Apply.
type Pipeline struct {
	collector *Collector
	engine    *Engine
	logger    *zap.Logger
	now       func() time.Time
	newID     func() string
	observer  StageObserver
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithPipelineLogger sets the logger.
func WithPipelineLogger(logger *zap.Logger) PipelineOption {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithClock overrides time.Now (tests).
func WithClock(now func() time.Time) PipelineOption {
	return func(p *Pipeline) {
		if now != nil {
			p.now = now
		}
	}
}

// WithIDGenerator overrides the run id generator.
func WithIDGenerator(fn func() string) PipelineOption {
	return func(p *Pipeline) {
		if fn != nil {
			p.newID = fn
		}
	}
}

// WithStageObserver registers a stage observer (e.g. metrics).
func WithStageObserver(o StageObserver) PipelineOption {
	return func(p *Pipeline) { p.observer = o }
}

// NewPipeline creates a pipeline.
func NewPipeline(collector *Collector, engine *Engine, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		collector: collector,
		engine:    engine,
		logger:    zap.NewNop(),
		now:       time.Now,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With(zap.String("component", "pipeline"))
	return p
}

// Run measures the store and derives overheads.
func (p *Pipeline) Run(ctx context.Context, store *corpus.Store) (*Run, error) {
	run := &Run{
		ID:         p.newID(),
		StartedAt:  p.now(),
		Settings:   p.collector.settings,
		Tokenizers: p.collector.Tokenizers(),
		Sentences:  store.Len(),
	}

	ctx, span := telemetry.StartSpan(ctx, "experiment.run",
		attribute.String("run.id", run.ID),
		attribute.Int("run.sentences", run.Sentences),
		attribute.StringSlice("run.tokenizers", run.Tokenizers),
	)

	p.logger.Info("run started",
		zap.String("run_id", run.ID),
		zap.Int("sentences", run.Sentences),
		zap.Strings("tokenizers", run.Tokenizers),
	)

	ms, err := p.stage(ctx, StageCollect, func(ctx context.Context) ([]Measurement, error) {
		return p.collector.Collect(ctx, store)
	})
	if err != nil {
		telemetry.EndSpan(span, err)
		return nil, err
	}

	ms, _ = p.stage(ctx, StageDerive, func(context.Context) ([]Measurement, error) {
		p.engine.Apply(ms)
		return ms, nil
	})

	run.Measurements = ms
	run.FinishedAt = p.now()
	span.SetAttributes(attribute.Int("run.measurements", len(ms)))
	telemetry.EndSpan(span, nil)

	p.logger.Info("run finished",
		zap.String("run_id", run.ID),
		zap.Int("measurements", len(ms)),
		zap.Duration("duration", run.Duration()),
	)
	return run, nil
}

func (p *Pipeline) stage(
	ctx context.Context,
	name string,
	fn func(context.Context) ([]Measurement, error),
) ([]Measurement, error) {
	ctx, span := telemetry.StartSpan(ctx, name)
	start := p.now()
	ms, err := fn(ctx)
	elapsed := p.now().Sub(start)
	if p.observer != nil {
		p.observer.ObserveStage(name, elapsed, err)
	}
	telemetry.EndSpan(span, err)
	if err != nil {
		p.logger.Error("stage failed", zap.String("stage", name), zap.Error(err))
		return nil, err
	}
	p.logger.Debug("stage finished", zap.String("stage", name), zap.Duration("elapsed", elapsed))
	return ms, nil
}
