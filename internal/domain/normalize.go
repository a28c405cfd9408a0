package domain

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// NormalizeLatin computes the comparison key for a Latin surface form:
//   - NFD-decomposes and drops combining marks (macrons, breves)
//   - lower-cases
//   - folds the interchangeable orthographic pairs v/u and j/i
//
// The result is used for equality only, never for display. Idempotent and
// total: NormalizeLatin("") == "".
func NormalizeLatin(surface string) string {
	if surface == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(surface))
	for _, r := range norm.NFD.String(surface) {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		r = unicode.ToLower(r)
		switch r {
		case 'v':
			r = 'u'
		case 'j':
			r = 'i'
		}
		b.WriteRune(r)
	}
	return b.String()
}

// IsPunctuationToken reports whether a surface form consists entirely of
// non-letter runes. Such tokens get a null entry reference in their link.
func IsPunctuationToken(surface string) bool {
	if surface == "" {
		return true
	}
	for _, r := range surface {
		if unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
