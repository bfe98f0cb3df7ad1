// Package tokenize is the single tokenization routine used by dataset
// loading, offline counting and query-time input splitting.
//
// Keeping one implementation is what lets cache keys, counted n-grams and
// loaded n-gram keys agree on what a token is.
package tokenize

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Tokenize lower-cases text and splits it on runs of whitespace.
// Empty fragments are never returned; empty input yields an empty slice.
func Tokenize(text string) []string {
	if text == "" {
		return []string{}
	}
	// NFC first so "e" + combining accent and the precomposed rune collapse
	// to the same token.
	return strings.Fields(strings.ToLower(norm.NFC.String(text)))
}

// Join builds an n-gram key from ordered tokens.
func Join(tokens ...string) string {
	return strings.Join(tokens, " ")
}
