// Copyright (c) AgentFlow Authors.
// Licensed under the MIT License.

/*
Package types 提供 tokenbench 的全局共享类型定义。

# 概述

types 是最底层的公共包，不依赖任何内部包，为 corpus、tokenizer、
experiment、report、store 等模块提供统一的错误契约。

# 核心类型

  - Error / ErrorCode：结构化错误体系，含 Retryable 与 Tokenizer 标记

# 主要能力

  - 错误工具链：GetErrorCode / IsErrorCode / IsRetryable
  - 错误分类：NO_TOKENIZERS（致命）、TOKENIZER_INIT（可恢复）、
    CORPUS_NOT_FOUND（回退到内置句子）等
*/
package types
