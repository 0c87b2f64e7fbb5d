// Package strings provides string normalization helpers shared by input
// validation and configuration.
package strings

import (
	"strings"
	"unicode"
)

// CollapseSpace trims s and replaces every internal run of whitespace with a
// single space.
//
// Example:
//
//	CollapseSpace("  João   Silva  ")
//	// Returns: "João Silva"
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// DigitsOnly drops every rune of s that is not an ASCII digit.
func DigitsOnly(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// LowerSet builds a lookup set from values, trimming and lowercasing each
// element. Empty elements are skipped.
func LowerSet(values ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" {
			continue
		}
		set[v] = struct{}{}
	}
	return set
}

// HasLetter reports whether s contains at least one Unicode letter.
func HasLetter(s string) bool {
	return strings.IndexFunc(s, unicode.IsLetter) >= 0
}
