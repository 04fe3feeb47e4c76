// Package tokenizer 提供统一的分词接口（Adapter），
// 支持 tiktoken、tiktoken-go、HuggingFace tokenizer.json 与 CJK 估算器，
// 以及按配置立即加载分词器集合和基于 Redis 的分词结果缓存。
package tokenizer
