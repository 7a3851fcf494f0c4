package prompt

import "regexp"

// TokenCounter estimates the token count of a text. The assembler takes
// the counter by injection so callers can substitute a real tokenizer for
// their target model.
type TokenCounter func(text string) int

// DefaultBudget is the token ceiling used when an assembly does not set
// one.
const DefaultBudget = 8192

var tokenPattern = regexp.MustCompile(`\w+|[^\w\s]`)

// CountTokens is the default heuristic counter: one token per word or
// punctuation mark. Coarse, but monotone in text length, which is all the
// trimming loop needs.
func CountTokens(text string) int {
	return len(tokenPattern.FindAllStringIndex(text, -1))
}
