package domain

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// sentencePunctuation is stripped only when whole sentences are compared.
const sentencePunctuation = ".,!?;:\"«»¿¡()"

// Tokenize splits a sentence on whitespace runs. Punctuation attached to a
// word stays part of that token.
func Tokenize(sentence string) []string {
	return strings.Fields(sentence)
}

// NormalizeToken returns the comparison key of a token: lowercased, with
// diacritical marks removed. Two tokens are the same word iff their keys are
// equal.
func NormalizeToken(token string) string {
	return stripDiacritics(strings.ToLower(strings.TrimSpace(token)))
}

// NormalizeSentence returns the comparison key of a whole sentence. On top of
// NormalizeToken it drops the sentence punctuation set and collapses
// whitespace, so "Ik ga, morgen!" and "ik ga morgen" compare equal.
func NormalizeSentence(sentence string) string {
	cleaned := strings.Map(func(r rune) rune {
		if strings.ContainsRune(sentencePunctuation, r) {
			return -1
		}
		return r
	}, sentence)

	words := strings.Fields(cleaned)
	for i, w := range words {
		words[i] = NormalizeToken(w)
	}
	return strings.Join(words, " ")
}

// stripDiacritics decomposes s and drops the combining marks (category Mn),
// so "één" becomes "een" and "café" becomes "cafe".
func stripDiacritics(s string) string {
	// The transformer chain keeps internal state, build one per call.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
