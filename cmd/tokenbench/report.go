package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/BaSui01/tokenbench/config"
	"github.com/BaSui01/tokenbench/corpus"
	"github.com/BaSui01/tokenbench/experiment"
	"github.com/BaSui01/tokenbench/report"
)

// =============================================================================
// 📝 report 命令
// =============================================================================

func reportCommand(_ context.Context, args []string) error {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	var common commonFlags
	common.register(fs)
	csvPath := fs.String("csv", "", "Detailed CSV written by 'run' (required)")
	corpusPath := fs.String("corpus", "", "Corpus file for the char analysis (optional)")
	out := fs.String("out", "", "Markdown output path (default: stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *csvPath == "" {
		return errors.New("--csv is required")
	}

	cfg, logger, err := loadConfig(common.configPath)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if *out == "" {
		return renderReport(cfg, *csvPath, *corpusPath, os.Stdout, logger)
	}
	return writeFile(*out, func(w io.Writer) error {
		return renderReport(cfg, *csvPath, *corpusPath, w, logger)
	})
}

// renderReport 读取明细 CSV，重新派生开销字段后渲染 Markdown。
func renderReport(cfg *config.Config, csvPath, corpusPath string, w io.Writer, logger *zap.Logger) error {
	f, err := os.Open(csvPath)
	if err != nil {
		return fmt.Errorf("open %s: %w", csvPath, err)
	}
	defer f.Close()

	ms, err := report.ReadCSV(f)
	if err != nil {
		return err
	}
	experiment.NewEngine(cfg.Experiment.Baseline).Apply(ms)

	in := report.Input{Measurements: ms}
	if corpusPath != "" {
		s, md, err := corpus.Load(corpusPath, cfg.Experiment.Languages)
		if err != nil {
			return err
		}
		in.Store, in.Metadata = s, md
	}

	logger.Debug("rendering report",
		zap.String("csv", csvPath),
		zap.Int("measurements", len(ms)),
	)
	return report.NewBuilder(cfg.Experiment).Render(w, in)
}
