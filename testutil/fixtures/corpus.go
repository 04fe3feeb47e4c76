// Package fixtures 提供 tokenbench 测试数据工厂。
package fixtures

import (
	"github.com/BaSui01/tokenbench/corpus"
	"github.com/BaSui01/tokenbench/experiment"
)

// Languages 小型语料使用的语言顺序
var Languages = []string{"EN", "PL", "DE"}

// Settings 返回与 ParallelStore 匹配的实验设置
func Settings(tokenizers ...string) experiment.Settings {
	return experiment.Settings{
		Languages:  append([]string(nil), Languages...),
		Baseline:   "EN",
		Primary:    "PL",
		Tokenizers: tokenizers,
	}
}

// ParallelRows 三条完整的平行句子
func ParallelRows() []corpus.Row {
	return []corpus.Row{
		{ID: "s001", Source: "Warsaw", Texts: map[string]string{
			"EN": "Warsaw is the capital of Poland.",
			"PL": "Warszawa jest stolicą Polski.",
			"DE": "Warschau ist die Hauptstadt Polens.",
		}},
		{ID: "s002", Source: "Warsaw", Texts: map[string]string{
			"EN": "The city lies on the Vistula river.",
			"PL": "Miasto leży nad Wisłą.",
			"DE": "Die Stadt liegt an der Weichsel.",
		}},
		{ID: "s003", Source: "Copernicus", Texts: map[string]string{
			"EN": "Copernicus was born in Toruń in 1473.",
			"PL": "Kopernik urodził się w Toruniu w 1473 roku.",
			"DE": "Kopernikus wurde 1473 in Thorn geboren.",
		}},
	}
}

// ParallelStore 返回 ParallelRows 构成的 Store
func ParallelStore() *corpus.Store {
	return corpus.NewStore(Languages, ParallelRows())
}
