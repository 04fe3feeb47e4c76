// Package metrics provides internal metrics collection.
// This package is internal and should not be imported by external projects.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// =============================================================================
// 📊 指标收集器
// =============================================================================

// Collector 指标收集器。每个 Collector 持有独立的 Registry。
type Collector struct {
	registry *prometheus.Registry

	// 分词指标
	encodeTotal    *prometheus.CounterVec
	encodeDuration *prometheus.HistogramVec
	tokensTotal    *prometheus.CounterVec

	// 分词器加载
	tokenizerLoads *prometheus.CounterVec

	// 缓存指标
	cacheHits   *prometheus.CounterVec
	cacheMisses *prometheus.CounterVec

	// 流水线指标
	measurementsTotal prometheus.Counter
	stageDuration     *prometheus.HistogramVec

	// 数据库指标
	dbConnectionsOpen *prometheus.GaugeVec
	dbConnectionsIdle *prometheus.GaugeVec

	logger *zap.Logger
}

// NewCollector 创建指标收集器
func NewCollector(namespace string, logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	factory := promauto.With(reg)

	c := &Collector{
		registry: reg,
		logger:   logger.With(zap.String("component", "metrics")),
	}

	c.encodeTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "encode_total",
			Help:      "Total number of tokenizer Encode calls",
		},
		[]string{"tokenizer", "language", "status"},
	)

	c.encodeDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "encode_duration_seconds",
			Help:      "Tokenizer Encode latency in seconds",
			Buckets:   []float64{.00001, .00005, .0001, .0005, .001, .005, .01, .05, .1, .5},
		},
		[]string{"tokenizer"},
	)

	c.tokensTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tokens_total",
			Help:      "Total number of tokens produced",
		},
		[]string{"tokenizer", "language"},
	)

	c.tokenizerLoads = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tokenizer_loads_total",
			Help:      "Tokenizer initialization attempts",
		},
		[]string{"tokenizer", "status"},
	)

	c.cacheHits = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_hits_total",
			Help:      "Total number of encode cache hits",
		},
		[]string{"tokenizer"},
	)

	c.cacheMisses = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_misses_total",
			Help:      "Total number of encode cache misses",
		},
		[]string{"tokenizer"},
	)

	c.measurementsTotal = factory.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "measurements_total",
			Help:      "Total number of measurements produced",
		},
	)

	c.stageDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Pipeline stage duration in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		},
		[]string{"stage", "status"},
	)

	c.dbConnectionsOpen = factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "db_connections_open",
			Help:      "Number of open database connections",
		},
		[]string{"database"},
	)

	c.dbConnectionsIdle = factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "db_connections_idle",
			Help:      "Number of idle database connections",
		},
		[]string{"database"},
	)

	c.logger.Debug("metrics collector initialized", zap.String("namespace", namespace))

	return c
}

// Registry 返回底层 Registry
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// =============================================================================
// 🔤 分词指标记录
// =============================================================================

// ObserveEncode 记录一次 Encode 调用（实现 experiment.Observer）
func (c *Collector) ObserveEncode(tokenizer, language string, tokens int, elapsed time.Duration, err error) {
	c.encodeTotal.WithLabelValues(tokenizer, language, status(err)).Inc()
	c.encodeDuration.WithLabelValues(tokenizer).Observe(elapsed.Seconds())
	if err == nil {
		c.tokensTotal.WithLabelValues(tokenizer, language).Add(float64(tokens))
	}
}

// RecordTokenizerLoad 记录分词器加载结果
func (c *Collector) RecordTokenizerLoad(tokenizer string, ok bool) {
	s := "ok"
	if !ok {
		s = "error"
	}
	c.tokenizerLoads.WithLabelValues(tokenizer, s).Inc()
}

// =============================================================================
// 💾 缓存指标记录
// =============================================================================

// ObserveCache 记录缓存命中或未命中
func (c *Collector) ObserveCache(tokenizer string, hit bool) {
	if hit {
		c.cacheHits.WithLabelValues(tokenizer).Inc()
		return
	}
	c.cacheMisses.WithLabelValues(tokenizer).Inc()
}

// =============================================================================
// 🔄 流水线指标记录
// =============================================================================

// ObserveStage 记录流水线阶段耗时（实现 experiment.StageObserver）
func (c *Collector) ObserveStage(stage string, elapsed time.Duration, err error) {
	c.stageDuration.WithLabelValues(stage, status(err)).Observe(elapsed.Seconds())
}

// RecordMeasurements 累加测量条数
func (c *Collector) RecordMeasurements(n int) {
	c.measurementsTotal.Add(float64(n))
}

// =============================================================================
// 🗄️ 数据库指标记录
// =============================================================================

// RecordDBConnections 记录数据库连接数
func (c *Collector) RecordDBConnections(database string, open, idle int) {
	c.dbConnectionsOpen.WithLabelValues(database).Set(float64(open))
	c.dbConnectionsIdle.WithLabelValues(database).Set(float64(idle))
}

// =============================================================================
// 📤 导出
// =============================================================================

// WriteTextfile 以 Prometheus 文本格式写入文件（供 node_exporter textfile collector 读取）
func (c *Collector) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return fmt.Errorf("write metrics textfile %s: %w", path, err)
	}
	c.logger.Info("metrics written", zap.String("path", path))
	return nil
}

// =============================================================================
// 🔧 辅助函数
// =============================================================================

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
