package main

import (
	"context"
	"flag"
	"fmt"

	"go.uber.org/zap"

	"github.com/BaSui01/tokenbench/config"
	"github.com/BaSui01/tokenbench/corpus"
	"github.com/BaSui01/tokenbench/corpus/fetch"
)

// =============================================================================
// 🌐 fetch 命令
// =============================================================================

func fetchCommand(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("fetch", flag.ExitOnError)
	var common commonFlags
	common.register(fs)
	out := fs.String("out", "", "Corpus output path (overrides fetch.output_path)")
	seed := fs.Uint64("seed", 0, "Sampling seed (overrides fetch.seed)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, logger, err := loadConfig(common.configPath)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if *out != "" {
		cfg.Fetch.OutputPath = *out
	}
	if *seed != 0 {
		cfg.Fetch.Seed = *seed
	}

	return fetchCorpus(ctx, cfg.Fetch, logger, fetch.WithLogger(logger))
}

// fetchCorpus 抓取文章、抽样句子、机器翻译并写出 corpus.json。
func fetchCorpus(ctx context.Context, cfg config.FetchConfig, logger *zap.Logger, opts ...fetch.Option) error {
	f, err := fetch.NewFetcher(cfg, opts...).Fetch(ctx)
	if err != nil {
		return err
	}
	if err := corpus.WriteFile(cfg.OutputPath, f); err != nil {
		return err
	}

	logger.Info("corpus written",
		zap.String("path", cfg.OutputPath),
		zap.Int("sentences", len(f.Sentences)),
	)
	fmt.Printf("Wrote %d sentences to %s\n", len(f.Sentences), cfg.OutputPath)
	return nil
}
