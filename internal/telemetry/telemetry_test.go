package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap/zaptest"

	"github.com/BaSui01/tokenbench/config"
)

// restoreGlobals 测试结束后恢复全局 provider
func restoreGlobals(t *testing.T) {
	t.Helper()
	tp, mp := otel.GetTracerProvider(), otel.GetMeterProvider()
	t.Cleanup(func() {
		otel.SetTracerProvider(tp)
		otel.SetMeterProvider(mp)
	})
}

func enabledConfig(service string) config.TelemetryConfig {
	return config.TelemetryConfig{
		Enabled:      true,
		OTLPEndpoint: "localhost:4317",
		ServiceName:  service,
		SampleRate:   1.0,
	}
}

func TestInit_Disabled(t *testing.T) {
	restoreGlobals(t)
	before := otel.GetTracerProvider()

	p, err := Init(config.TelemetryConfig{}, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.False(t, p.Enabled())
	assert.Same(t, before, otel.GetTracerProvider(), "disabled init must not touch globals")
	assert.NoError(t, p.Shutdown(context.Background()))
}

// nopMetricExporter 丢弃所有指标
type nopMetricExporter struct{}

func (nopMetricExporter) Temporality(k sdkmetric.InstrumentKind) metricdata.Temporality {
	return sdkmetric.DefaultTemporalitySelector(k)
}

func (nopMetricExporter) Aggregation(k sdkmetric.InstrumentKind) sdkmetric.Aggregation {
	return sdkmetric.DefaultAggregationSelector(k)
}

func (nopMetricExporter) Export(context.Context, *metricdata.ResourceMetrics) error { return nil }
func (nopMetricExporter) ForceFlush(context.Context) error { return nil }
func (nopMetricExporter) Shutdown(context.Context) error { return nil }

func TestInit_InMemoryExporter(t *testing.T) {
	restoreGlobals(t)
	spans := tracetest.NewInMemoryExporter()

	p, err := Init(enabledConfig("tokenbench-test"), zaptest.NewLogger(t),
		WithSpanExporter(spans),
		WithMetricExporter(nopMetricExporter{}),
	)
	require.NoError(t, err)
	require.True(t, p.Enabled())

	_, isSDK := otel.GetTracerProvider().(*sdktrace.TracerProvider)
	assert.True(t, isSDK)

	_, span := StartSpan(context.Background(), "collect", attribute.Int("run.sentences", 3))
	EndSpan(span, nil)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	// 内存导出器在 Shutdown 时清空，先 flush 再断言
	require.NoError(t, p.tp.ForceFlush(ctx))

	got := spans.GetSpans()
	require.Len(t, got, 1)
	assert.Equal(t, "collect", got[0].Name)
	assert.Equal(t, "tokenbench-test", serviceName(got[0]))

	assert.NoError(t, p.Shutdown(ctx))
}

func serviceName(s tracetest.SpanStub) string {
	for _, kv := range s.Resource.Attributes() {
		if kv.Key == "service.name" {
			return kv.Value.AsString()
		}
	}
	return ""
}

func TestProviders_ShutdownNil(t *testing.T) {
	var p *Providers
	assert.NoError(t, p.Shutdown(context.Background()))
	assert.False(t, p.Enabled())
}

func TestEndSpan_RecordsError(t *testing.T) {
	restoreGlobals(t)
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	_, ok := StartSpan(context.Background(), "derive")
	EndSpan(ok, nil)
	_, failed := StartSpan(context.Background(), "collect")
	EndSpan(failed, assert.AnError)

	ended := rec.Ended()
	require.Len(t, ended, 2)
	assert.Equal(t, codes.Unset, ended[0].Status().Code)
	assert.Equal(t, codes.Error, ended[1].Status().Code)
	assert.Equal(t, assert.AnError.Error(), ended[1].Status().Description)
	require.Len(t, ended[1].Events(), 1, "error recorded as span event")
}

func TestMeter_NoopCounter(t *testing.T) {
	c, err := Meter().Int64Counter("tokenbench_test_total")
	require.NoError(t, err)
	c.Add(context.Background(), 1)
}

func TestServiceVersion(t *testing.T) {
	// 测试二进制没有模块版本与 VCS 信息
	assert.Equal(t, "dev", serviceVersion())
}
