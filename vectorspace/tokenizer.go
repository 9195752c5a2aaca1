package vectorspace

import (
	"strings"
	"unicode"
)

// Tokenize lowercases text, drops quote characters, treats every other
// non-alphanumeric rune as a separator and splits on whitespace.
// If dropStopWords is set, English stop words are removed.
func Tokenize(text string, dropStopWords bool) []string {
	text = strings.ToLower(text)

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		switch {
		case isQuote(r):
			// "it's" tokenizes as "its"
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		default:
			b.WriteByte(' ')
		}
	}

	words := strings.Fields(b.String())
	if !dropStopWords {
		return words
	}

	filtered := words[:0]
	for _, word := range words {
		if !stopWords[word] {
			filtered = append(filtered, word)
		}
	}
	return filtered
}

// NGrams returns all n-grams of tokens for n in [minN, maxN], shortest first,
// each in document order. Words of an n-gram are joined by a single space.
func NGrams(tokens []string, minN, maxN int) []string {
	if minN < 1 {
		minN = 1
	}
	var grams []string
	for n := minN; n <= maxN; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			if n == 1 {
				grams = append(grams, tokens[i])
				continue
			}
			grams = append(grams, strings.Join(tokens[i:i+n], " "))
		}
	}
	return grams
}

func isQuote(r rune) bool {
	switch r {
	case '\'', '"', '‘', '’', '“', '”', '`':
		return true
	}
	return false
}

// IsStopWord reports whether word is on the English stop-word list.
func IsStopWord(word string) bool {
	return stopWords[word]
}
