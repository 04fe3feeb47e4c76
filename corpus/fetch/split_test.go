package fetch

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "simple",
			text: "Ala ma kota. Kot ma Alę! Czy to prawda?",
			want: []string{"Ala ma kota.", "Kot ma Alę!", "Czy to prawda?"},
		},
		{
			name: "abbreviations",
			text: "Rośliny, np. paprocie, rosną w cieniu. Występują m.in. w Polsce.",
			want: []string{"Rośliny, np. paprocie, rosną w cieniu.", "Występują m.in. w Polsce."},
		},
		{
			name: "year abbreviation",
			text: "W 1990 r. Polska zmieniła ustrój. Nastąpiły reformy.",
			want: []string{"W 1990 r. Polska zmieniła ustrój.", "Nastąpiły reformy."},
		},
		{
			name: "initials",
			text: "Teorię opisał J. Kowalski w pracy. Była przełomowa.",
			want: []string{"Teorię opisał J. Kowalski w pracy.", "Była przełomowa."},
		},
		{
			name: "lowercase continuation",
			text: "Wartość wynosi 3.14 i rośnie. itd. dalej",
			want: []string{"Wartość wynosi 3.14 i rośnie. itd. dalej"},
		},
		{
			name: "newline is a boundary",
			text: "Pierwszy akapit bez kropki\nDrugi akapit.",
			want: []string{"Pierwszy akapit bez kropki", "Drugi akapit."},
		},
		{
			name: "closing quote",
			text: "Powiedział „dość.” Potem wyszedł.",
			want: []string{"Powiedział „dość.”", "Potem wyszedł."},
		},
		{
			name: "empty",
			text: "  \n ",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitSentences(tt.text))
		})
	}
}

func TestFilterSentences(t *testing.T) {
	in := []string{
		"Krótkie.",
		"To zdanie ma odpowiednią długość.",
		"1990 - 2000, 15/20",
		"== Historia ==",
		"[1] przypis źródłowy w tekście",
		"| komórka tabeli z wartością",
		"{{szablon wikipedii z parametrami}}",
		"  Zażółć gęślą jaźń, to zdanie testowe.  ",
	}

	got := FilterSentences(in, 20, 60)
	assert.Equal(t, []string{
		"To zdanie ma odpowiednią długość.",
		"Zażółć gęślą jaźń, to zdanie testowe.",
	}, got)

	// 长度按字符计算而非字节
	assert.Len(t, FilterSentences([]string{"ąęśćżźółń"}, 9, 9), 1)
	assert.Empty(t, FilterSentences([]string{"ąęśćżźółńą"}, 0, 9))
}

func TestSample(t *testing.T) {
	sentences := []string{"a", "b", "c", "d", "e", "f"}

	t.Run("fewer than requested returns all", func(t *testing.T) {
		rng := rand.New(rand.NewPCG(1, 1))
		assert.Equal(t, []string{"a", "b"}, Sample(rng, sentences[:2], 5))
	})

	t.Run("deterministic for a seed", func(t *testing.T) {
		a := Sample(rand.New(rand.NewPCG(42, 42)), sentences, 3)
		b := Sample(rand.New(rand.NewPCG(42, 42)), sentences, 3)
		assert.Equal(t, a, b)
		assert.Len(t, a, 3)

		seen := map[string]bool{}
		for _, s := range a {
			assert.False(t, seen[s], "duplicate %s", s)
			seen[s] = true
		}
	})
}
