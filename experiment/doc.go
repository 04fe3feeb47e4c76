// Copyright (c) AgentFlow Authors.
// Licensed under the MIT License.

/*
Package experiment 实现分词开销实验的核心流程。

# 流程

	Collector -> Engine -> Aggregator

  - Collector 对每个 (句子, 语言, 分词器) 调用 Encode，产出 []Measurement，
    输出顺序固定为 句子 → 语言 → 分词器，与 worker 数无关。
  - Engine 以同一 (句子, 分词器) 的基准语言记录为分母，原地计算
    Overhead、CharOverhead、NormalizedOverhead。缺少基准或分母为 0 时
    对应字段为 NotApplicable。
  - Aggregator 计算均值、样本标准差、排名、分解与专用分词器对比。

Pipeline 将 Collect 与 Apply 串起来，生成带 uuid 的 Run，并为每个阶段
创建 OpenTelemetry span。

# 分解恒等式

三个字段都已计算时：

	(1 + o/100) ≈ (1 + c/100) × (1 + n/100)
*/
package experiment
