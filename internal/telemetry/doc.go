// Package telemetry 封装 OpenTelemetry SDK 初始化逻辑，
// 为 tokenbench 提供集中式的 TracerProvider 和 MeterProvider 配置，
// 以及 Tracer/Meter/StartSpan 等小工具。
// WithSpanExporter/WithMetricExporter 可替换默认的 OTLP gRPC 导出器。
// 当遥测功能禁用时，使用 noop 实现，不连接任何外部服务。
package telemetry
