// =============================================================================
// 📦 tokenbench 配置加载器
// =============================================================================
// 统一配置加载，支持 YAML 文件 + 环境变量覆盖
//
// 使用方法:
//
//	cfg, err := config.NewLoader().
//	    WithConfigPath("config.yaml").
//	    WithEnvPrefix("TOKENBENCH").
//	    Load()
//
// 配置优先级: 默认值 → YAML 文件 → 环境变量
// =============================================================================
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"reflect"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// =============================================================================
// 🎯 核心配置结构
// =============================================================================

// Config 是 tokenbench 的完整配置结构
type Config struct {
	// Experiment 实验配置（语言、基线、分词器）
	Experiment ExperimentConfig `yaml:"experiment" env:"EXPERIMENT"`

	// Corpus 语料文件配置
	Corpus CorpusConfig `yaml:"corpus" env:"CORPUS"`

	// Fetch 语料抓取配置
	Fetch FetchConfig `yaml:"fetch" env:"FETCH"`

	// Collector 采集并发配置
	Collector CollectorConfig `yaml:"collector" env:"COLLECTOR"`

	// Output 报告输出配置
	Output OutputConfig `yaml:"output" env:"OUTPUT"`

	// Log 日志配置
	Log LogConfig `yaml:"log" env:"LOG"`

	// Database 结果数据库配置
	Database DatabaseConfig `yaml:"database" env:"DATABASE"`

	// Cache 分词结果缓存配置
	Cache CacheConfig `yaml:"cache" env:"CACHE"`

	// Metrics 指标配置
	Metrics MetricsConfig `yaml:"metrics" env:"METRICS"`

	// Telemetry 遥测配置
	Telemetry TelemetryConfig `yaml:"telemetry" env:"TELEMETRY"`
}

// ExperimentConfig 实验配置
type ExperimentConfig struct {
	// 语言代码（有序）
	Languages []string `yaml:"languages" env:"LANGUAGES"`
	// 语言显示名称
	LanguageNames map[string]string `yaml:"language_names" env:"-"`
	// 基线语言（所有开销的分母）
	Baseline string `yaml:"baseline" env:"BASELINE"`
	// 主要研究语言（分解摘要与结论使用）
	Primary string `yaml:"primary" env:"PRIMARY"`
	// 分词器列表（有序）
	Tokenizers []TokenizerConfig `yaml:"tokenizers" env:"-"`
	// 专用分词器（结论中与其他分词器对比）
	Specialists []SpecialistConfig `yaml:"specialists" env:"-"`
	// Token 可视化使用的分词器
	VisualizeTokenizer string `yaml:"visualize_tokenizer" env:"VISUALIZE_TOKENIZER"`
}

// TokenizerConfig 单个分词器配置
type TokenizerConfig struct {
	// 显示名称，同时是结果中的分组键
	Name string `yaml:"name"`
	// 后端库: tiktoken, tiktoken-go, huggingface, estimator
	Library string `yaml:"library"`
	// 编码名、模型名或 tokenizer.json 路径
	ModelID string `yaml:"model_id"`
}

// SpecialistConfig 专用分词器配置
type SpecialistConfig struct {
	Tokenizer string `yaml:"tokenizer"`
	Language  string `yaml:"language"`
	Label     string `yaml:"label"`
}

// CorpusConfig 语料配置
type CorpusConfig struct {
	// corpus.json 路径
	Path string `yaml:"path" env:"PATH"`
	// 语料缺失时是否使用内置句子
	Fallback bool `yaml:"fallback" env:"FALLBACK"`
}

// ArticleConfig 源文章
type ArticleConfig struct {
	Title  string `yaml:"title"`
	URL    string `yaml:"url"`
	Domain string `yaml:"domain"`
}

// FetchConfig 语料抓取配置
type FetchConfig struct {
	// 随机种子
	Seed uint64 `yaml:"seed" env:"SEED"`
	// 源语言（维基百科语言与翻译源语言）
	SourceLanguage string `yaml:"source_language" env:"SOURCE_LANGUAGE"`
	// 源语言在语料中的键
	SourceKey string `yaml:"source_key" env:"SOURCE_KEY"`
	// 源文章
	Articles []ArticleConfig `yaml:"articles" env:"-"`
	// 每篇文章选取的句子数
	SentencesPerArticle []int `yaml:"sentences_per_article" env:"-"`
	// 目标语言: 翻译代码 → 语料键
	TargetLanguages map[string]string `yaml:"target_languages" env:"-"`
	// 句子长度范围（字符）
	MinSentenceLength int `yaml:"min_sentence_length" env:"MIN_SENTENCE_LENGTH"`
	MaxSentenceLength int `yaml:"max_sentence_length" env:"MAX_SENTENCE_LENGTH"`
	// 翻译请求间隔
	RequestInterval time.Duration `yaml:"request_interval" env:"REQUEST_INTERVAL"`
	// 最大重试次数
	MaxRetries int `yaml:"max_retries" env:"MAX_RETRIES"`
	// 请求超时
	Timeout time.Duration `yaml:"timeout" env:"TIMEOUT"`
	// 维基百科基础 URL
	WikiBaseURL string `yaml:"wiki_base_url" env:"WIKI_BASE_URL"`
	// 翻译接口 URL
	TranslateURL string `yaml:"translate_url" env:"TRANSLATE_URL"`
	// User-Agent
	UserAgent string `yaml:"user_agent" env:"USER_AGENT"`
	// 输出路径
	OutputPath string `yaml:"output_path" env:"OUTPUT_PATH"`
}

// CollectorConfig 采集配置
type CollectorConfig struct {
	// 并发 worker 数
	Workers int `yaml:"workers" env:"WORKERS"`
	// 进度日志间隔（句子数）
	ProgressEvery int `yaml:"progress_every" env:"PROGRESS_EVERY"`
}

// OutputConfig 输出配置
type OutputConfig struct {
	// 输出目录
	Dir string `yaml:"dir" env:"DIR"`
	// Markdown 报告文件名
	MarkdownFile string `yaml:"markdown_file" env:"MARKDOWN_FILE"`
	// 明细 CSV 文件名
	CSVFile string `yaml:"csv_file" env:"CSV_FILE"`
	// 是否在标准输出打印汇总表
	PrintTables bool `yaml:"print_tables" env:"PRINT_TABLES"`
}

// LogConfig 日志配置
type LogConfig struct {
	// 日志级别: debug, info, warn, error
	Level string `yaml:"level" env:"LEVEL"`
	// 输出格式: json, console
	Format string `yaml:"format" env:"FORMAT"`
	// 输出路径
	OutputPaths []string `yaml:"output_paths" env:"OUTPUT_PATHS"`
	// 是否启用调用者信息
	EnableCaller bool `yaml:"enable_caller" env:"ENABLE_CALLER"`
	// 是否启用堆栈跟踪
	EnableStacktrace bool `yaml:"enable_stacktrace" env:"ENABLE_STACKTRACE"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	// 是否保存运行结果
	Enabled bool `yaml:"enabled" env:"ENABLED"`
	// 驱动类型: sqlite, postgres, mysql
	Driver string `yaml:"driver" env:"DRIVER"`
	// 主机
	Host string `yaml:"host" env:"HOST"`
	// 端口
	Port int `yaml:"port" env:"PORT"`
	// 用户名
	User string `yaml:"user" env:"USER"`
	// 密码
	Password string `yaml:"password" env:"PASSWORD"`
	// 数据库名（sqlite 为文件路径）
	Name string `yaml:"name" env:"NAME"`
	// SSL 模式
	SSLMode string `yaml:"ssl_mode" env:"SSL_MODE"`
	// 最大连接数
	MaxOpenConns int `yaml:"max_open_conns" env:"MAX_OPEN_CONNS"`
	// 最大空闲连接
	MaxIdleConns int `yaml:"max_idle_conns" env:"MAX_IDLE_CONNS"`
	// 连接最大生命周期
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" env:"CONN_MAX_LIFETIME"`
	// 批量写入大小
	BatchSize int `yaml:"batch_size" env:"BATCH_SIZE"`
}

// CacheConfig Redis 分词缓存配置
type CacheConfig struct {
	// 是否启用
	Enabled bool `yaml:"enabled" env:"ENABLED"`
	// 地址
	Addr string `yaml:"addr" env:"ADDR"`
	// 密码
	Password string `yaml:"password" env:"PASSWORD"`
	// 数据库编号
	DB int `yaml:"db" env:"DB"`
	// 过期时间
	TTL time.Duration `yaml:"ttl" env:"TTL"`
	// 键前缀
	KeyPrefix string `yaml:"key_prefix" env:"KEY_PREFIX"`
}

// MetricsConfig 指标配置
type MetricsConfig struct {
	// 是否启用
	Enabled bool `yaml:"enabled" env:"ENABLED"`
	// 指标命名空间
	Namespace string `yaml:"namespace" env:"NAMESPACE"`
	// node_exporter textfile 输出路径（为空则不写）
	TextfilePath string `yaml:"textfile_path" env:"TEXTFILE_PATH"`
}

// TelemetryConfig 遥测配置
type TelemetryConfig struct {
	// 是否启用
	Enabled bool `yaml:"enabled" env:"ENABLED"`
	// OTLP 端点
	OTLPEndpoint string `yaml:"otlp_endpoint" env:"OTLP_ENDPOINT"`
	// 服务名称
	ServiceName string `yaml:"service_name" env:"SERVICE_NAME"`
	// 采样率
	SampleRate float64 `yaml:"sample_rate" env:"SAMPLE_RATE"`
}

// =============================================================================
// 🔧 配置加载器
// =============================================================================

// Loader 配置加载器（Builder 模式）
type Loader struct {
	path       string
	envPrefix  string
	lookupEnv  func(string) (string, bool)
	validators []func(*Config) error
}

// NewLoader 创建加载器，默认前缀 TOKENBENCH，读取进程环境变量
func NewLoader() *Loader {
	return &Loader{
		envPrefix: "TOKENBENCH",
		lookupEnv: os.LookupEnv,
	}
}

// WithConfigPath 设置 YAML 文件路径；文件不存在时只用默认值与环境变量
func (l *Loader) WithConfigPath(path string) *Loader {
	l.path = path
	return l
}

// WithEnvPrefix 设置环境变量前缀
func (l *Loader) WithEnvPrefix(prefix string) *Loader {
	l.envPrefix = prefix
	return l
}

// WithEnvLookup 替换环境变量来源
func (l *Loader) WithEnvLookup(fn func(string) (string, bool)) *Loader {
	l.lookupEnv = fn
	return l
}

// WithValidator 追加校验函数，按添加顺序执行
func (l *Loader) WithValidator(v func(*Config) error) *Loader {
	l.validators = append(l.validators, v)
	return l
}

// Load 依次叠加默认值、YAML 文件、环境变量，然后执行校验函数
func (l *Loader) Load() (*Config, error) {
	cfg := DefaultConfig()

	if err := l.applyFile(cfg); err != nil {
		return nil, err
	}
	if err := l.applyEnv(cfg); err != nil {
		return nil, err
	}
	for _, validate := range l.validators {
		if err := validate(cfg); err != nil {
			return nil, fmt.Errorf("invalid config: %w", err)
		}
	}
	return cfg, nil
}

func (l *Loader) applyFile(cfg *Config) error {
	if l.path == "" {
		return nil
	}
	data, err := os.ReadFile(l.path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil
	case err != nil:
		return fmt.Errorf("read config %s: %w", l.path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", l.path, err)
	}
	return nil
}

// envBinding 一个环境变量名与它覆盖的字段
type envBinding struct {
	key   string
	field reflect.Value
}

// envBindings 按 env 标签展开嵌套结构体，键为 PREFIX_SECTION_FIELD
func envBindings(v reflect.Value, prefix string, out []envBinding) []envBinding {
	t := v.Type()
	for i := range t.NumField() {
		tag := t.Field(i).Tag.Get("env")
		if tag == "" || tag == "-" {
			continue
		}
		key := prefix + "_" + tag
		if f := v.Field(i); f.Kind() == reflect.Struct {
			out = envBindings(f, key, out)
		} else {
			out = append(out, envBinding{key: key, field: f})
		}
	}
	return out
}

func (l *Loader) applyEnv(cfg *Config) error {
	for _, b := range envBindings(reflect.ValueOf(cfg).Elem(), l.envPrefix, nil) {
		raw, ok := l.lookupEnv(b.key)
		if !ok || raw == "" {
			continue
		}
		if err := decodeEnv(b.field, raw); err != nil {
			return fmt.Errorf("env %s=%q: %w", b.key, raw, err)
		}
	}
	return nil
}

// decodeEnv 字符串原样赋值，字符串切片按逗号拆分，
// 其余标量（整数、浮点、布尔、time.Duration）交给 yaml 解码。
func decodeEnv(field reflect.Value, raw string) error {
	switch {
	case field.Kind() == reflect.String:
		field.SetString(raw)
		return nil
	case field.Kind() == reflect.Slice && field.Type().Elem().Kind() == reflect.String:
		parts := strings.Split(raw, ",")
		for i, p := range parts {
			parts[i] = strings.TrimSpace(p)
		}
		field.Set(reflect.ValueOf(parts))
		return nil
	}

	ptr := reflect.New(field.Type())
	if err := yaml.Unmarshal([]byte(raw), ptr.Interface()); err != nil {
		return err
	}
	field.Set(ptr.Elem())
	return nil
}

// =============================================================================
// 🔍 校验
// =============================================================================

// 已知分词器后端
var knownLibraries = map[string]bool{
	"tiktoken":     true,
	"tiktoken-go":  true,
	"huggingface":  true,
	"transformers": true,
	"estimator":    true,
}

// Validate 验证配置
func (c *Config) Validate() error {
	var errs []string

	exp := c.Experiment
	if len(exp.Languages) == 0 {
		errs = append(errs, "experiment.languages must not be empty")
	}

	seenLang := make(map[string]bool, len(exp.Languages))
	for _, lang := range exp.Languages {
		if lang == "" {
			errs = append(errs, "experiment.languages contains an empty code")
			continue
		}
		if seenLang[lang] {
			errs = append(errs, fmt.Sprintf("duplicate language %q", lang))
		}
		seenLang[lang] = true
		if exp.LanguageNames[lang] == "" {
			errs = append(errs, fmt.Sprintf("missing display name for language %q", lang))
		}
	}

	if !seenLang[exp.Baseline] {
		errs = append(errs, fmt.Sprintf("baseline %q is not a configured language", exp.Baseline))
	}
	if exp.Primary != "" && !seenLang[exp.Primary] {
		errs = append(errs, fmt.Sprintf("primary %q is not a configured language", exp.Primary))
	}
	if exp.Primary != "" && exp.Primary == exp.Baseline {
		errs = append(errs, "primary language must differ from baseline")
	}

	seenTok := make(map[string]bool, len(exp.Tokenizers))
	for i, tok := range exp.Tokenizers {
		if tok.Name == "" {
			errs = append(errs, fmt.Sprintf("tokenizers[%d].name is empty", i))
			continue
		}
		if seenTok[tok.Name] {
			errs = append(errs, fmt.Sprintf("duplicate tokenizer name %q", tok.Name))
		}
		seenTok[tok.Name] = true
		if !knownLibraries[tok.Library] {
			errs = append(errs, fmt.Sprintf("tokenizer %q: unknown library %q", tok.Name, tok.Library))
		}
	}

	for _, sp := range exp.Specialists {
		if !seenTok[sp.Tokenizer] {
			errs = append(errs, fmt.Sprintf("specialist tokenizer %q is not configured", sp.Tokenizer))
		}
		if !seenLang[sp.Language] {
			errs = append(errs, fmt.Sprintf("specialist language %q is not configured", sp.Language))
		}
	}

	if c.Collector.Workers < 1 {
		errs = append(errs, "collector.workers must be at least 1")
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Sprintf("unknown log level %q", c.Log.Level))
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		errs = append(errs, fmt.Sprintf("unknown log format %q", c.Log.Format))
	}

	if c.Database.Enabled {
		switch c.Database.Driver {
		case "sqlite", "postgres", "mysql":
		default:
			errs = append(errs, fmt.Sprintf("unsupported database driver %q", c.Database.Driver))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// DSN 返回数据库连接字符串
func (d *DatabaseConfig) DSN() string {
	switch d.Driver {
	case "postgres":
		return fmt.Sprintf(
			"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
		)
	case "mysql":
		return fmt.Sprintf(
			"%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4",
			d.User, d.Password, d.Host, d.Port, d.Name,
		)
	case "sqlite":
		return d.Name
	default:
		return ""
	}
}

// LanguageName 返回语言显示名称，未配置时回退到代码本身
func (e *ExperimentConfig) LanguageName(code string) string {
	if name, ok := e.LanguageNames[code]; ok && name != "" {
		return name
	}
	return code
}
