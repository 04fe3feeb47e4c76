// Copyright (c) AgentFlow Authors.
// Licensed under the MIT License.

/*
Package main 提供 tokenbench 命令行入口。

# 概述

cmd/tokenbench 运行多语言分词开销实验：加载配置中的分词器与平行语料，
统计每个 (句子, 语言, 分词器) 的 token 数，以基线语言为分母计算开销，
并输出明细 CSV 与 Markdown 报告。

# 子命令

  - run：完整实验，依次为分词器加载 → 语料加载（可回退到内置句子）→ 采集 → 派生 → 报告，可选写入结果数据库
  - fetch：从维基百科抓取文章、抽样句子、机器翻译，生成 corpus.json
  - report：从明细 CSV 重新派生并渲染 Markdown 报告
  - version：显示构建信息

# 可选组件

  - Redis 分词缓存（cache.enabled）
  - GORM 结果库：sqlite / postgres / mysql（database.enabled 或 --save）
  - Prometheus textfile 指标（metrics.textfile_path）
  - OpenTelemetry 追踪（telemetry.enabled）

构建注入：Version、BuildTime、GitCommit 通过 ldflags 设置。
*/
package main
