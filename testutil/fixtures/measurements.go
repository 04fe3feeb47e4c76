package fixtures

import (
	"github.com/BaSui01/tokenbench/experiment"
)

// Raw 构造一条原始测量（派生字段未计算）
func Raw(sentence, lang, tok string, count, chars int) experiment.Measurement {
	return experiment.NewMeasurement(sentence, lang, tok, count, chars)
}

// Scenario 经典 EN/PL 场景：EN 10 tokens / 40 chars，PL 13 tokens / 46 chars。
// 派生后 PL 为 Overhead 30、CharOverhead 15、NormalizedOverhead ≈ 13.043478。
func Scenario(tok string) []experiment.Measurement {
	return []experiment.Measurement{
		Raw("s1", "EN", tok, 10, 40),
		Raw("s1", "PL", tok, 13, 46),
	}
}

// Grid 为 sentences × languages × tokenizers 生成原始测量，
// count(i, lang, tok) 决定 token 数，字符数固定为 10 × (语言序号 + 1) + i。
func Grid(
	sentences []string,
	languages []string,
	tokenizers []string,
	count func(sentence int, lang, tok string) int,
) []experiment.Measurement {
	out := make([]experiment.Measurement, 0, len(sentences)*len(languages)*len(tokenizers))
	for i, s := range sentences {
		for li, lang := range languages {
			for _, tok := range tokenizers {
				out = append(out, Raw(s, lang, tok, count(i, lang, tok), 10*(li+1)+i))
			}
		}
	}
	return out
}

// Derived 对 ms 的副本运行 Engine 并返回
func Derived(baseline string, ms []experiment.Measurement) []experiment.Measurement {
	out := append([]experiment.Measurement(nil), ms...)
	experiment.NewEngine(baseline).Apply(out)
	return out
}
