// =============================================================================
// tokenbench 主入口
// =============================================================================
// 多语言分词开销实验的命令行入口
//
// 使用方法:
//
//	tokenbench run                          # 运行实验（默认配置）
//	tokenbench run --config config.yaml     # 指定配置文件
//	tokenbench fetch --out corpus.json      # 从维基百科抓取并翻译语料
//	tokenbench report --csv results.csv     # 从明细 CSV 重新生成报告
//	tokenbench version                      # 显示版本信息
// =============================================================================

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/BaSui01/tokenbench/config"
)

// =============================================================================
// 📦 版本信息（构建时注入）
// =============================================================================

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// =============================================================================
// 🎯 主函数
// =============================================================================

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch os.Args[1] {
	case "run":
		err = runCommand(ctx, os.Args[2:])
	case "fetch":
		err = fetchCommand(ctx, os.Args[2:])
	case "report":
		err = reportCommand(ctx, os.Args[2:])
	case "version":
		printVersion()
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// =============================================================================
// ⚙️ 配置加载
// =============================================================================

// commonFlags 各子命令共享的参数
type commonFlags struct {
	configPath string
}

func (c *commonFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&c.configPath, "config", "", "Path to config file (YAML)")
}

// loadConfig 加载并校验配置，返回配置与 logger
func loadConfig(path string) (*config.Config, *zap.Logger, error) {
	loader := config.NewLoader()
	if path != "" {
		loader = loader.WithConfigPath(path)
	}

	cfg, err := loader.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, initLogger(cfg.Log), nil
}

// =============================================================================
// 📋 版本和帮助
// =============================================================================

func printVersion() {
	fmt.Printf("tokenbench %s\n", Version)
	fmt.Printf("  Build Time: %s\n", BuildTime)
	fmt.Printf("  Git Commit: %s\n", GitCommit)
}

func printUsage() {
	fmt.Println(`tokenbench - multilingual tokenization overhead experiment

Usage:
  tokenbench <command> [options]

Commands:
  run       Measure token counts and write the report
  fetch     Build corpus.json from Wikipedia articles and machine translation
  report    Re-render the report from a detailed CSV
  version   Show version information
  help      Show this help message

Options for 'run':
  --config <path>    Path to configuration file (YAML)
  --corpus <path>    Corpus file (overrides corpus.path)
  --out <dir>        Output directory (overrides output.dir)
  --workers <n>      Concurrent sentence workers (overrides collector.workers)
  --save             Save the run to the results database

Options for 'fetch':
  --config <path>    Path to configuration file (YAML)
  --out <path>       Corpus output path (overrides fetch.output_path)
  --seed <n>         Sampling seed (overrides fetch.seed)

Options for 'report':
  --config <path>    Path to configuration file (YAML)
  --csv <path>       Detailed CSV written by 'run' (required)
  --corpus <path>    Corpus file for the char analysis (optional)
  --out <path>       Markdown output path (default: stdout)

Examples:
  tokenbench run
  tokenbench run --config tokenbench.yaml --workers 4
  tokenbench fetch --out corpus.json
  tokenbench report --csv results_detailed.csv --out results.md`)
}

// =============================================================================
// 🔧 日志初始化
// =============================================================================

func initLogger(cfg config.LogConfig) *zap.Logger {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	// 配置编码器
	var encoderConfig zapcore.EncoderConfig
	encoding := "json"
	if cfg.Format == "console" {
		encoding = "console"
		encoderConfig = zap.NewDevelopmentEncoderConfig()
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		encoderConfig = zap.NewProductionEncoderConfig()
		encoderConfig.TimeKey = "timestamp"
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	outputs := cfg.OutputPaths
	if len(outputs) == 0 {
		outputs = []string{"stderr"}
	}

	zapConfig := zap.Config{
		Level:             zap.NewAtomicLevelAt(level),
		Development:       cfg.Format == "console",
		Encoding:          encoding,
		EncoderConfig:     encoderConfig,
		OutputPaths:       outputs,
		ErrorOutputPaths:  []string{"stderr"},
		DisableCaller:     !cfg.EnableCaller,
		DisableStacktrace: !cfg.EnableStacktrace,
	}

	logger, err := zapConfig.Build()
	if err != nil {
		// 回退到基本 logger
		logger, _ = zap.NewProduction()
	}

	return logger
}
