package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BaSui01/tokenbench/experiment"
)

var collectorNamespaceSeq uint64

func nextTestNamespace() string {
	seq := atomic.AddUint64(&collectorNamespaceSeq, 1)
	return fmt.Sprintf("test_%d", seq)
}

// 编译期检查接口实现
var (
	_ experiment.Observer      = (*Collector)(nil)
	_ experiment.StageObserver = (*Collector)(nil)
)

// =============================================================================
// 🧪 Collector 测试
// =============================================================================

func TestNewCollector(t *testing.T) {
	collector := NewCollector(nextTestNamespace(), zap.NewNop())

	assert.NotNil(t, collector)
	assert.NotNil(t, collector.Registry())
	assert.NotNil(t, collector.encodeTotal)
	assert.NotNil(t, collector.encodeDuration)
	assert.NotNil(t, collector.stageDuration)
}

func TestNewCollector_SameNamespaceTwice(t *testing.T) {
	// 独立 Registry，不会重复注册 panic
	assert.NotPanics(t, func() {
		NewCollector("tokenbench", nil)
		NewCollector("tokenbench", nil)
	})
}

func TestCollector_ObserveEncode(t *testing.T) {
	collector := NewCollector(nextTestNamespace(), zap.NewNop())

	collector.ObserveEncode("tiktoken", "PL", 13, time.Millisecond, nil)
	collector.ObserveEncode("tiktoken", "PL", 7, time.Millisecond, nil)
	collector.ObserveEncode("tiktoken", "PL", 0, time.Millisecond, assert.AnError)

	assert.Equal(t, 2.0, testutil.ToFloat64(collector.encodeTotal.WithLabelValues("tiktoken", "PL", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.encodeTotal.WithLabelValues("tiktoken", "PL", "error")))
	assert.Equal(t, 20.0, testutil.ToFloat64(collector.tokensTotal.WithLabelValues("tiktoken", "PL")))
	assert.Equal(t, 1, testutil.CollectAndCount(collector.encodeDuration))
}

func TestCollector_RecordTokenizerLoad(t *testing.T) {
	collector := NewCollector(nextTestNamespace(), zap.NewNop())

	collector.RecordTokenizerLoad("Bielik v3", false)
	collector.RecordTokenizerLoad("tiktoken", true)

	assert.Equal(t, 1.0, testutil.ToFloat64(collector.tokenizerLoads.WithLabelValues("Bielik v3", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.tokenizerLoads.WithLabelValues("tiktoken", "ok")))
}

func TestCollector_ObserveCache(t *testing.T) {
	collector := NewCollector(nextTestNamespace(), zap.NewNop())

	collector.ObserveCache("tiktoken", true)
	collector.ObserveCache("tiktoken", true)
	collector.ObserveCache("tiktoken", false)

	assert.Equal(t, 2.0, testutil.ToFloat64(collector.cacheHits.WithLabelValues("tiktoken")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.cacheMisses.WithLabelValues("tiktoken")))
}

func TestCollector_Pipeline(t *testing.T) {
	collector := NewCollector(nextTestNamespace(), zap.NewNop())

	collector.ObserveStage(experiment.StageCollect, 2*time.Second, nil)
	collector.ObserveStage(experiment.StageDerive, time.Millisecond, nil)
	collector.RecordMeasurements(9)

	assert.Equal(t, 2, testutil.CollectAndCount(collector.stageDuration))
	assert.Equal(t, 9.0, testutil.ToFloat64(collector.measurementsTotal))
}

func TestCollector_RecordDBConnections(t *testing.T) {
	collector := NewCollector(nextTestNamespace(), zap.NewNop())

	collector.RecordDBConnections("sqlite", 1, 1)
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.dbConnectionsOpen.WithLabelValues("sqlite")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.dbConnectionsIdle.WithLabelValues("sqlite")))
}

func TestCollector_WriteTextfile(t *testing.T) {
	ns := nextTestNamespace()
	collector := NewCollector(ns, zap.NewNop())
	collector.ObserveEncode("tiktoken", "EN", 10, time.Millisecond, nil)

	path := filepath.Join(t.TempDir(), "tokenbench.prom")
	require.NoError(t, collector.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), ns+`_encode_total{language="EN",status="ok",tokenizer="tiktoken"} 1`)
	assert.Contains(t, string(data), ns+"_tokens_total")

	err = collector.WriteTextfile(filepath.Join(t.TempDir(), "missing", "x.prom"))
	assert.Error(t, err)
}

func TestCollector_ConcurrentAccess(t *testing.T) {
	collector := NewCollector(nextTestNamespace(), zap.NewNop())

	done := make(chan struct{})
	for i := 0; i < 10; i++ {
		go func(id int) {
			defer func() { done <- struct{}{} }()
			for j := 0; j < 100; j++ {
				collector.ObserveEncode(fmt.Sprintf("tok-%d", id%3), "PL", j, time.Microsecond, nil)
				collector.ObserveCache("tok", j%2 == 0)
			}
		}(i)
	}
	for i := 0; i < 10; i++ {
		<-done
	}

	assert.Equal(t, 500.0, testutil.ToFloat64(collector.cacheHits.WithLabelValues("tok")))
}
