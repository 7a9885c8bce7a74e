// Package fold reduces text to a 7-bit ASCII form for pattern matching.
package fold

import (
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var nonASCII = runes.Predicate(func(r rune) bool {
	return r > unicode.MaxASCII
})

// String decomposes s with NFKD and drops every rune that is not ASCII, so
// "café" becomes "cafe" and "ﬁ" becomes "fi". Characters with no ASCII
// decomposition (CJK, emoji, ...) disappear entirely.
func String(s string) string {
	if isASCII(s) {
		return s
	}
	t := transform.Chain(norm.NFKD, runes.Remove(nonASCII))
	out, _, err := transform.String(t, s)
	if err != nil {
		// Only reachable on malformed input; fall back to a rune filter.
		return dropNonASCII(s)
	}
	return out
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] > unicode.MaxASCII {
			return false
		}
	}
	return true
}

func dropNonASCII(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] <= unicode.MaxASCII {
			out = append(out, s[i])
		}
	}
	return string(out)
}
