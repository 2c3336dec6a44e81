package summarize

import (
	"regexp"
	"strings"
	"unicode"
)

// sentenceEnd matches terminal punctuation followed by whitespace.
var sentenceEnd = regexp.MustCompile(`[.!?]\s+`)

// SplitSentences cuts text after every '.', '!' or '?' that is followed by
// whitespace. The punctuation stays with its sentence; empty fragments are
// dropped.
func SplitSentences(text string) []string {
	var out []string
	start := 0
	for _, loc := range sentenceEnd.FindAllStringIndex(text, -1) {
		if s := strings.TrimSpace(text[start : loc[0]+1]); s != "" {
			out = append(out, s)
		}
		start = loc[1]
	}
	if s := strings.TrimSpace(text[start:]); s != "" {
		out = append(out, s)
	}
	return out
}

// words lower-cases sentence and returns its letter/digit tokens that are
// not stop words.
func words(sentence string, stop map[string]struct{}) []string {
	tokens := strings.FieldsFunc(strings.ToLower(sentence), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	out := tokens[:0]
	for _, t := range tokens {
		if _, skip := stop[t]; skip {
			continue
		}
		out = append(out, t)
	}
	return out
}

// Naive returns the first n sentences of text joined by spaces. It is the
// last-resort tier and cannot fail.
func Naive(text string, n int) string {
	if n <= 0 {
		n = DefaultSentences
	}
	s := SplitSentences(text)
	if len(s) > n {
		s = s[:n]
	}
	return strings.Join(s, " ")
}
