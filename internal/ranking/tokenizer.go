// Package ranking provides query tokenization and relevance scoring
// for salon search.
package ranking

import (
	"strings"
	"unicode/utf8"
)

// minTokenRunes is the exclusive lower bound on token length: tokens
// must exceed 2 characters to count.
const minTokenRunes = 2

// Tokenize splits a query on whitespace, lowercases the tokens, and
// discards tokens of 2 characters or fewer. An empty or all-short
// query yields an empty token set, which matches everything.
func Tokenize(query string) []string {
	fields := strings.Fields(strings.ToLower(query))
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if utf8.RuneCountInString(f) > minTokenRunes {
			tokens = append(tokens, f)
		}
	}
	return tokens
}
