package store

import (
	"regexp"
	"strings"
)

// tokenRegex matches alphanumeric sequences.
var tokenRegex = regexp.MustCompile(`[a-zA-Z0-9]+`)

// TokenizeQuery splits free text into lowercase search tokens.
// Punctuation is dropped, matching the unicode61 tokenizer used by the
// FTS index, so "O'Brien & Sons" queries the same terms it was indexed
// under.
func TokenizeQuery(text string) []string {
	words := tokenRegex.FindAllString(text, -1)

	tokens := make([]string, 0, len(words))
	for _, word := range words {
		tokens = append(tokens, strings.ToLower(word))
	}
	return tokens
}

// buildMatchExpr renders tokens as an FTS5 MATCH expression.
// Each token is quoted so caller input can never inject FTS5 query
// syntax; adjacent quoted terms combine with implicit AND.
func buildMatchExpr(tokens []string) string {
	quoted := make([]string, len(tokens))
	for i, t := range tokens {
		quoted[i] = `"` + t + `"`
	}
	return strings.Join(quoted, " ")
}
