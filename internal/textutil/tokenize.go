package textutil

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Tokenize splits text into case-folded letter/digit runs, dropping tokens
// shorter than two runes.
func Tokenize(text string) []string {
	raw := strings.FieldsFunc(Fold(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	terms := make([]string, 0, len(raw))
	for _, token := range raw {
		if utf8.RuneCountInString(token) < 2 {
			continue
		}
		terms = append(terms, token)
	}
	return terms
}

// Trigrams returns the overlapping three-rune windows of token padded with
// spaces, so "abc" yields " ab", "abc", "bc ".
func Trigrams(token string) []string {
	runes := []rune(" " + token + " ")
	if len(runes) < 3 {
		return nil
	}
	out := make([]string, 0, len(runes)-2)
	for i := 0; i+3 <= len(runes); i++ {
		out = append(out, string(runes[i:i+3]))
	}
	return out
}
