// =============================================================================
// 📦 tokenbench 默认配置
// =============================================================================
// 提供所有配置项的合理默认值
// =============================================================================
package config

import "time"

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		Experiment: DefaultExperimentConfig(),
		Corpus:     DefaultCorpusConfig(),
		Fetch:      DefaultFetchConfig(),
		Collector:  DefaultCollectorConfig(),
		Output:     DefaultOutputConfig(),
		Log:        DefaultLogConfig(),
		Database:   DefaultDatabaseConfig(),
		Cache:      DefaultCacheConfig(),
		Metrics:    DefaultMetricsConfig(),
		Telemetry:  DefaultTelemetryConfig(),
	}
}

// DefaultExperimentConfig 返回默认实验配置：7 种语言、英语基线、波兰语为主要研究语言
func DefaultExperimentConfig() ExperimentConfig {
	return ExperimentConfig{
		Languages: []string{"PL", "EN", "DE", "AR", "HY", "JA", "ZH"},
		LanguageNames: map[string]string{
			"PL": "Polish",
			"EN": "English",
			"DE": "German",
			"AR": "Arabic",
			"HY": "Armenian",
			"JA": "Japanese",
			"ZH": "Chinese",
		},
		Baseline: "EN",
		Primary:  "PL",
		Tokenizers: []TokenizerConfig{
			{Name: "tiktoken (GPT-4)", Library: "tiktoken", ModelID: "cl100k_base"},
			{Name: "tiktoken (GPT-4o)", Library: "tiktoken-go", ModelID: "o200k_base"},
			{Name: "Bielik v3", Library: "huggingface", ModelID: "speakleash/Bielik-11B-v2.3-Instruct"},
			{Name: "Qwen 2.5", Library: "huggingface", ModelID: "Qwen/Qwen2.5-7B-Instruct"},
			{Name: "Estimator", Library: "estimator", ModelID: "cjk-aware"},
		},
		Specialists: []SpecialistConfig{
			{Tokenizer: "Bielik v3", Language: "PL", Label: "Polish"},
			{Tokenizer: "Qwen 2.5", Language: "ZH", Label: "Chinese"},
		},
		VisualizeTokenizer: "tiktoken (GPT-4)",
	}
}

// DefaultCorpusConfig 返回默认语料配置
func DefaultCorpusConfig() CorpusConfig {
	return CorpusConfig{
		Path:     "corpus.json",
		Fallback: true,
	}
}

// DefaultFetchConfig 返回默认抓取配置
func DefaultFetchConfig() FetchConfig {
	return FetchConfig{
		Seed:           42,
		SourceLanguage: "pl",
		SourceKey:      "PL",
		Articles: []ArticleConfig{
			{Title: "Fotosynteza", URL: "https://pl.wikipedia.org/wiki/Fotosynteza", Domain: "biology"},
			{Title: "Konstytucja 3 maja", URL: "https://pl.wikipedia.org/wiki/Konstytucja_3_maja", Domain: "history"},
			{Title: "Sztuczna inteligencja", URL: "https://pl.wikipedia.org/wiki/Sztuczna_inteligencja", Domain: "technology"},
			{Title: "Pierogi", URL: "https://pl.wikipedia.org/wiki/Pierogi", Domain: "culture"},
		},
		SentencesPerArticle: []int{25, 25, 25, 25},
		TargetLanguages: map[string]string{
			"en":    "EN",
			"de":    "DE",
			"ar":    "AR",
			"hy":    "HY",
			"ja":    "JA",
			"zh-CN": "ZH",
		},
		MinSentenceLength: 40,
		MaxSentenceLength: 300,
		RequestInterval:   500 * time.Millisecond,
		MaxRetries:        3,
		Timeout:           30 * time.Second,
		WikiBaseURL:       "https://pl.wikipedia.org",
		TranslateURL:      "https://translate.googleapis.com/translate_a/single",
		UserAgent:         "tokenbench/1.0 (tokenization experiment)",
		OutputPath:        "corpus.json",
	}
}

// DefaultCollectorConfig 返回默认采集配置
func DefaultCollectorConfig() CollectorConfig {
	return CollectorConfig{
		Workers:       1,
		ProgressEvery: 10,
	}
}

// DefaultOutputConfig 返回默认输出配置
func DefaultOutputConfig() OutputConfig {
	return OutputConfig{
		Dir:          ".",
		MarkdownFile: "results.md",
		CSVFile:      "results_detailed.csv",
		PrintTables:  true,
	}
}

// DefaultLogConfig 返回默认日志配置
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:            "info",
		Format:           "console",
		OutputPaths:      []string{"stderr"},
		EnableCaller:     false,
		EnableStacktrace: false,
	}
}

// DefaultDatabaseConfig 返回默认数据库配置
func DefaultDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		Enabled:         false,
		Driver:          "sqlite",
		Host:            "localhost",
		Port:            5432,
		User:            "tokenbench",
		Password:        "",
		Name:            "tokenbench.db",
		SSLMode:         "disable",
		MaxOpenConns:    4,
		MaxIdleConns:    2,
		ConnMaxLifetime: 5 * time.Minute,
		BatchSize:       500,
	}
}

// DefaultCacheConfig 返回默认缓存配置
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		Enabled:   false,
		Addr:      "localhost:6379",
		Password:  "",
		DB:        0,
		TTL:       7 * 24 * time.Hour,
		KeyPrefix: "tokenbench:tok:",
	}
}

// DefaultMetricsConfig 返回默认指标配置
func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Enabled:      false,
		Namespace:    "tokenbench",
		TextfilePath: "",
	}
}

// DefaultTelemetryConfig 返回默认遥测配置
func DefaultTelemetryConfig() TelemetryConfig {
	return TelemetryConfig{
		Enabled:      false,
		OTLPEndpoint: "localhost:4317",
		ServiceName:  "tokenbench",
		SampleRate:   1.0,
	}
}
