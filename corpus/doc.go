// Copyright (c) AgentFlow Authors.
// Licensed under the MIT License.

/*
Package corpus 提供平行翻译语料的加载与校验（Sentence Store）。

# 概述

corpus 将 corpus.json（或内置的 4 句测试语料）转换为 Store：
sentence-id → language-code → text。任何缺少某个配置语言的句子在
加载时即被丢弃，因此进入实验核心的每个句子都在所有语言中有文本。

# 核心类型

  - Store：校验后的不可变句子映射，保持语料原始顺序
  - File：磁盘上的语料文档（metadata + sentences）
  - Metadata：语料来源、翻译方式、随机种子等信息

抓取维基百科文章并机器翻译生成 corpus.json 的逻辑位于子包 corpus/fetch。
*/
package corpus
