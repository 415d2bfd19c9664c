// Package normalize canonicalizes free text for matching. Every description
// and category-name comparison in the engine routes through this package so
// that all components agree on what "equal" means.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// deriveNameMaxLen caps the length of a derived category name.
const deriveNameMaxLen = 28

var diacritics = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize lower-cases, strips diacritics, collapses whitespace runs to a
// single space, and trims the result.
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	stripped, _, err := transform.String(diacritics, s)
	if err != nil {
		// Fall back to the raw input; matching degrades but never fails.
		stripped = s
	}
	return collapseSpace(strings.ToLower(stripped))
}

// Key is the strict variant of Normalize used for identity comparisons:
// it additionally removes every character outside [a-z0-9 ].
func Key(s string) string {
	n := Normalize(s)
	if n == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(n))
	for _, r := range n {
		if r == ' ' || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return collapseSpace(b.String())
}

// DeriveName extracts a category-name guess from a free-text description:
// digits are stripped, whitespace collapsed, the text is cut before the
// first '-', ',' or '|', and the result is truncated to 28 characters.
// An empty description derives an empty name.
func DeriveName(description string) string {
	if description == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(description))
	for _, r := range description {
		if !unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	name := collapseSpace(b.String())
	if idx := strings.IndexAny(name, "-,|"); idx >= 0 {
		name = name[:idx]
	}
	if runes := []rune(name); len(runes) > deriveNameMaxLen {
		name = string(runes[:deriveNameMaxLen])
	}
	return strings.TrimSpace(name)
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
