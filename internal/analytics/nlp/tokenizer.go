package nlp

import (
	"strings"
	"unicode"
)

// MinTermLength is the shortest term kept by Tokenize; shorter ones are noise.
const MinTermLength = 3

// Tokenize lower-cases text, splits on anything that is not a letter, digit or
// intra-word apostrophe/hyphen, and drops stopwords and terms of two characters or less.
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\'' && r != '-'
	})

	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, "'-")
		f = strings.TrimSuffix(f, "'s")
		if len([]rune(f)) < MinTermLength {
			continue
		}
		if isNumeric(f) {
			continue
		}
		if _, stop := stopwords[f]; stop {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}

// TermFrequencies counts each token of text.
func TermFrequencies(text string) map[string]int {
	tf := make(map[string]int)
	for _, tok := range Tokenize(text) {
		tf[tok]++
	}
	return tf
}

func isNumeric(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) && r != '-' {
			return false
		}
	}
	return true
}
