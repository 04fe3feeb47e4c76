// 版权所有 2024 AgentFlow Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 metrics 提供基于 Prometheus 的批处理指标采集能力，覆盖
分词、分词器加载、缓存、流水线阶段与数据库五个维度。

# 概述

Collector 持有独立的 prometheus.Registry（通过 promauto.With 注册），
因此同一进程内可创建多个互不冲突的实例。运行结束后通过
WriteTextfile 以文本格式落盘，由 node_exporter 的 textfile
collector 采集。

# 主要能力

  - 分词指标：Encode 次数（按 tokenizer/language/status）、
    Encode 耗时、产生的 token 数。实现 experiment.Observer。
  - 分词器加载：按 tokenizer/status 计数，配合 tokenizer.WithLoadObserver。
  - 缓存指标：命中与未命中计数，配合 tokenizer.WithCacheObserver。
  - 流水线指标：阶段耗时（collect/derive），测量条数。
    实现 experiment.StageObserver。
  - 数据库指标：打开/空闲连接数 Gauge。
*/
package metrics
