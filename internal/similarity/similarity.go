// Package similarity scores how alike two headlines are.
package similarity

import (
	"regexp"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

var nonAlnumRe = regexp.MustCompile(`[^a-z0-9]+`)

// Normalize lower-cases s, turns every run of characters outside [a-z0-9]
// into a single space and trims the result.
func Normalize(s string) string {
	return strings.TrimSpace(nonAlnumRe.ReplaceAllString(strings.ToLower(s), " "))
}

// Ratio returns the Ratcliff/Obershelp similarity of the normalized forms of
// a and b: 2*M/T where M is the number of characters in matching blocks and
// T the combined length. Two empty strings are identical (1.0).
//
// The matcher's block search is order sensitive, so the normalized pair is
// put in lexical order first; Ratio(a, b) == Ratio(b, a) always holds.
func Ratio(a, b string) float64 {
	na, nb := Normalize(a), Normalize(b)
	if nb < na {
		na, nb = nb, na
	}
	m := difflib.NewMatcher(chars(na), chars(nb))
	return m.Ratio()
}

func chars(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, "")
}
