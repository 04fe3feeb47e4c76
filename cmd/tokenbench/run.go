package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/BaSui01/tokenbench/config"
	"github.com/BaSui01/tokenbench/corpus"
	"github.com/BaSui01/tokenbench/experiment"
	"github.com/BaSui01/tokenbench/internal/cache"
	"github.com/BaSui01/tokenbench/internal/database"
	"github.com/BaSui01/tokenbench/internal/metrics"
	"github.com/BaSui01/tokenbench/internal/telemetry"
	"github.com/BaSui01/tokenbench/report"
	"github.com/BaSui01/tokenbench/store"
	"github.com/BaSui01/tokenbench/tokenizer"
	"github.com/BaSui01/tokenbench/types"
)

// =============================================================================
// 🚀 run 命令
// =============================================================================

func runCommand(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	var common commonFlags
	common.register(fs)
	corpusPath := fs.String("corpus", "", "Corpus file (overrides corpus.path)")
	outDir := fs.String("out", "", "Output directory (overrides output.dir)")
	workers := fs.Int("workers", 0, "Concurrent sentence workers (overrides collector.workers)")
	save := fs.Bool("save", false, "Save the run to the results database")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, logger, err := loadConfig(common.configPath)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if *corpusPath != "" {
		cfg.Corpus.Path = *corpusPath
	}
	if *outDir != "" {
		cfg.Output.Dir = *outDir
	}
	if *workers > 0 {
		cfg.Collector.Workers = *workers
	}
	if *save {
		cfg.Database.Enabled = true
	}

	providers, err := telemetry.Init(cfg.Telemetry, logger)
	if err != nil {
		logger.Warn("telemetry init failed, continuing without it", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			logger.Warn("telemetry shutdown failed", zap.Error(err))
		}
	}()

	_, err = runExperiment(ctx, cfg, logger, os.Stdout)
	return err
}

// runExperiment 执行完整实验：加载分词器与语料、采集、派生、写报告、可选入库。
func runExperiment(ctx context.Context, cfg *config.Config, logger *zap.Logger, stdout io.Writer) (*experiment.Run, error) {
	settings := experiment.SettingsFromConfig(cfg.Experiment)
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	var mc *metrics.Collector
	if cfg.Metrics.Enabled {
		mc = metrics.NewCollector(cfg.Metrics.Namespace, logger)
	}

	// 1. 分词器
	set, cm, err := loadTokenizers(cfg, logger, mc)
	if err != nil {
		return nil, err
	}
	if cm != nil {
		defer func() {
			if err := cm.Close(); err != nil {
				logger.Warn("failed to close token cache", zap.Error(err))
			}
		}()
	}

	// 2. 语料
	corpusStore, md, err := loadCorpus(cfg.Corpus, settings.Languages, logger)
	if err != nil {
		return nil, err
	}

	// 3. 采集 + 派生
	collectorOpts := []experiment.CollectorOption{
		experiment.WithWorkers(cfg.Collector.Workers),
		experiment.WithProgressEvery(cfg.Collector.ProgressEvery),
		experiment.WithLogger(logger),
	}
	pipelineOpts := []experiment.PipelineOption{experiment.WithPipelineLogger(logger)}
	if mc != nil {
		collectorOpts = append(collectorOpts, experiment.WithObserver(mc))
		pipelineOpts = append(pipelineOpts, experiment.WithStageObserver(mc))
	}

	pipeline := experiment.NewPipeline(
		experiment.NewCollector(settings, set, collectorOpts...),
		experiment.NewEngine(settings.Baseline),
		pipelineOpts...,
	)
	run, err := pipeline.Run(ctx, corpusStore)
	if err != nil {
		return nil, err
	}

	// 4. 报告
	if err := writeOutputs(cfg, run, corpusStore, md, stdout, logger); err != nil {
		return run, err
	}

	// 5. 入库
	if cfg.Database.Enabled {
		if err := saveRun(ctx, cfg.Database, run, mc, logger); err != nil {
			return run, err
		}
	}

	if mc != nil {
		mc.RecordMeasurements(len(run.Measurements))
		if cfg.Metrics.TextfilePath != "" {
			if err := mc.WriteTextfile(cfg.Metrics.TextfilePath); err != nil {
				logger.Warn("failed to write metrics textfile", zap.Error(err))
			}
		}
	}

	return run, nil
}

// loadTokenizers 加载分词器集合；启用缓存时返回的 Manager 由调用方关闭
func loadTokenizers(cfg *config.Config, logger *zap.Logger, mc *metrics.Collector) (*tokenizer.Set, *cache.Manager, error) {
	var opts []tokenizer.LoadOption
	if mc != nil {
		opts = append(opts, tokenizer.WithLoadObserver(mc.RecordTokenizerLoad))
	}

	set, failures := tokenizer.Load(cfg.Experiment.Tokenizers, logger, opts...)
	logger.Info(fmt.Sprintf("loaded %d/%d tokenizers", set.Len(), len(cfg.Experiment.Tokenizers)),
		zap.Int("failed", len(failures)),
	)
	if set.Len() == 0 {
		return nil, nil, types.NewError(types.ErrNoTokenizers, "no tokenizer could be initialized")
	}

	if !cfg.Cache.Enabled {
		return set, nil, nil
	}

	cm, err := cache.NewManager(cfg.Cache, logger)
	if err != nil {
		logger.Warn("token cache unavailable, encoding without it", zap.Error(err))
		return set, nil, nil
	}

	identities := make(map[string]string, len(cfg.Experiment.Tokenizers))
	for _, tc := range cfg.Experiment.Tokenizers {
		identities[tc.Name] = tokenizer.Identity(tc)
	}

	cacheOpts := []tokenizer.CacheOption{tokenizer.WithCacheLogger(logger)}
	if mc != nil {
		cacheOpts = append(cacheOpts, tokenizer.WithCacheObserver(mc.ObserveCache))
	}
	return set.Wrap(func(a tokenizer.Adapter) tokenizer.Adapter {
		return tokenizer.NewCached(a, identities[a.Name()], cm, cfg.Cache.TTL, cacheOpts...)
	}), cm, nil
}

func loadCorpus(cfg config.CorpusConfig, languages []string, logger *zap.Logger) (*corpus.Store, *corpus.Metadata, error) {
	s, md, err := corpus.Load(cfg.Path, languages)
	if err != nil {
		if !cfg.Fallback || !types.IsErrorCode(err, types.ErrCorpusNotFound) {
			return nil, nil, err
		}
		logger.Warn("corpus not found, using built-in sentences", zap.String("path", cfg.Path))
		if s, err = corpus.Fallback(languages); err != nil {
			return nil, nil, err
		}
		md = nil
	}

	if s.Dropped() > 0 {
		logger.Warn("dropped incomplete sentences", zap.Int("dropped", s.Dropped()))
	}
	if s.Len() == 0 {
		return nil, nil, types.NewError(types.ErrCorpusInvalid, "no sentence has text for every language")
	}
	logger.Info("corpus loaded",
		zap.Int("sentences", s.Len()),
		zap.Int("languages", len(languages)),
	)
	return s, md, nil
}

func writeOutputs(
	cfg *config.Config,
	run *experiment.Run,
	s *corpus.Store,
	md *corpus.Metadata,
	stdout io.Writer,
	logger *zap.Logger,
) error {
	if err := os.MkdirAll(cfg.Output.Dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	csvPath := filepath.Join(cfg.Output.Dir, cfg.Output.CSVFile)
	if err := writeFile(csvPath, func(w io.Writer) error {
		return report.WriteCSV(w, run.Measurements)
	}); err != nil {
		return err
	}

	builder := report.NewBuilder(cfg.Experiment)
	mdPath := filepath.Join(cfg.Output.Dir, cfg.Output.MarkdownFile)
	if err := writeFile(mdPath, func(w io.Writer) error {
		return builder.Render(w, report.Input{Measurements: run.Measurements, Store: s, Metadata: md})
	}); err != nil {
		return err
	}

	logger.Info("report written",
		zap.String("csv", csvPath),
		zap.String("markdown", mdPath),
		zap.Int("measurements", len(run.Measurements)),
	)

	if cfg.Output.PrintTables && stdout != nil {
		agg := experiment.NewAggregator(experiment.SettingsFromConfig(cfg.Experiment), run.Measurements)
		if _, err := fmt.Fprintln(stdout, builder.SummaryTable(agg)); err != nil {
			return err
		}
	}
	return nil
}

func writeFile(path string, fn func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()
	if err := fn(f); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func saveRun(ctx context.Context, cfg config.DatabaseConfig, run *experiment.Run, mc *metrics.Collector, logger *zap.Logger) error {
	pm, err := database.Open(cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = pm.Close() }()

	st := store.New(pm, store.WithBatchSize(cfg.BatchSize), store.WithLogger(logger))
	if err := st.AutoMigrate(ctx); err != nil {
		return err
	}
	if err := st.SaveRun(ctx, run); err != nil {
		return err
	}

	if mc != nil {
		open, idle := pm.Connections()
		mc.RecordDBConnections(cfg.Driver, open, idle)
	}
	logger.Info("run saved", zap.String("run_id", run.ID), zap.String("driver", cfg.Driver))
	return nil
}
