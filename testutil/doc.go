// Copyright 2026 AgentFlow Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license.

/*
Package testutil 提供 tokenbench 测试的共享工具和辅助函数。

# 核心能力

  - 上下文辅助: TestContext / CancelledContext，
    TestContext 通过 t.Cleanup 释放
  - 文件辅助: WriteTempFile

# 子包

  - testutil/mocks: MockAdapter（分词器适配器），支持 Builder 模式、
    固定计数与错误注入
  - testutil/fixtures: 测试数据工厂，提供小型平行语料、
    原始测量构造器与经典的 EN/PL 场景

注意：testutil/fixtures 依赖 experiment 包，experiment 自身的测试需使用
experiment_test 外部测试包引用它。
*/
package testutil
