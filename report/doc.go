// Copyright (c) AgentFlow Authors.
// Licensed under the MIT License.

/*
Package report 将实验结果渲染为 Markdown 报告与明细 CSV。

# CSV

WriteCSV 使用固定列：

	sentence, lang, tokenizer, count, char_count, overhead_pct,
	char_overhead_pct, normalized_overhead_pct, tokens_per_char

未计算的百分比写为 0。ReadCSV 只读取原始列，派生字段需重新经过
experiment.Engine 计算。

# Markdown

Builder 依次渲染：数据来源、原始开销汇总表、字符长度分析、
归一化开销汇总表、各分词器语言排名、token 可视化、关键结论
（主要语言、专用分词器对比、开销分解）。无数据的单元格显示 "-"。
*/
package report
