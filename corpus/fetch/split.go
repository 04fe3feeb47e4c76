package fetch

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// 常见波兰语缩写，后接句点时不视为句子结束
var abbreviations = map[string]struct{}{
	"np": {}, "tzw": {}, "m.in": {}, "ok": {}, "r": {}, "w": {}, "wg": {},
	"tj": {}, "itp": {}, "itd": {}, "ur": {}, "zm": {}, "św": {}, "dr": {},
	"prof": {}, "ang": {}, "łac": {}, "gr": {}, "tys": {}, "mln": {}, "mld": {},
	"godz": {}, "cm": {}, "km": {}, "mgr": {}, "inż": {}, "ul": {}, "wyd": {},
	"e.g": {}, "i.e": {}, "etc": {}, "vs": {}, "st": {}, "ps": {}, "pt": {},
}

var numericOnly = regexp.MustCompile(`^[\d\s.,\-/]+$`)

// SplitSentences splits plain text into sentences. Line breaks always end a
// sentence; inside a line a terminator ends one when it is followed by
// whitespace and an upper-case letter, digit or opening quote, and the word
// before it is not a known abbreviation or an initial.
func SplitSentences(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		out = append(out, splitLine(line)...)
	}
	return out
}

func splitLine(line string) []string {
	runes := []rune(line)
	var out []string
	start := 0

	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if !isTerminator(r) {
			continue
		}

		// 吸收连续的终止符和右引号/右括号
		j := i + 1
		for j < len(runes) && (isTerminator(runes[j]) || isCloser(runes[j])) {
			j++
		}
		if j < len(runes) && !unicode.IsSpace(runes[j]) {
			i = j - 1
			continue
		}

		k := j
		for k < len(runes) && unicode.IsSpace(runes[k]) {
			k++
		}
		if k < len(runes) && !opensSentence(runes[k]) {
			i = j - 1
			continue
		}
		if r == '.' && endsWithAbbreviation(runes[start:i]) {
			i = j - 1
			continue
		}

		if s := strings.TrimSpace(string(runes[start:j])); s != "" {
			out = append(out, s)
		}
		start = k
		i = k - 1
	}

	if tail := strings.TrimSpace(string(runes[start:])); tail != "" {
		out = append(out, tail)
	}
	return out
}

func isTerminator(r rune) bool {
	switch r {
	case '.', '!', '?', '…':
		return true
	}
	return false
}

func isCloser(r rune) bool {
	switch r {
	case '"', '\'', ')', ']', '”', '’', '»':
		return true
	}
	return false
}

func opensSentence(r rune) bool {
	if unicode.IsUpper(r) || unicode.IsDigit(r) {
		return true
	}
	switch r {
	case '"', '„', '«', '(', '“', '\'':
		return true
	}
	return false
}

func endsWithAbbreviation(prefix []rune) bool {
	word := string(prefix)
	if idx := strings.LastIndexFunc(word, unicode.IsSpace); idx >= 0 {
		word = word[idx+1:]
	}
	word = strings.TrimLeft(word, "(\"„«")
	if word == "" {
		return false
	}
	// 单个大写字母视为姓名首字母
	if utf8.RuneCountInString(word) == 1 {
		r, _ := utf8.DecodeRuneInString(word)
		if unicode.IsUpper(r) {
			return true
		}
	}
	_, ok := abbreviations[strings.ToLower(word)]
	return ok
}

// FilterSentences drops sentences outside [minLen, maxLen] characters,
// numeric-only lines and wiki markup remnants (lines starting with "==",
// "[", "|" or "{"). Bounds <= 0 are not applied.
func FilterSentences(sentences []string, minLen, maxLen int) []string {
	out := make([]string, 0, len(sentences))
	for _, s := range sentences {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		n := utf8.RuneCountInString(s)
		if (minLen > 0 && n < minLen) || (maxLen > 0 && n > maxLen) {
			continue
		}
		if numericOnly.MatchString(s) || strings.HasPrefix(s, "==") || strings.ContainsAny(s[:1], "[|{") {
			continue
		}
		out = append(out, s)
	}
	return out
}
