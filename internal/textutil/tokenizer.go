package textutil

import (
	"regexp"
	"strings"
)

var wordPattern = regexp.MustCompile(`[a-zA-Z']+`)

var stopwords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "is": {}, "am": {}, "are": {}, "was": {},
	"were": {}, "and": {}, "or": {}, "of": {}, "to": {}, "in": {}, "it": {},
	"this": {}, "that": {}, "for": {}, "on": {}, "with": {}, "as": {},
	"at": {}, "by": {}, "from": {}, "very": {}, "i": {}, "we": {}, "you": {},
	"he": {}, "she": {}, "they": {}, "my": {}, "our": {}, "your": {},
	"their": {}, "but": {}, "so": {}, "just": {}, "too": {}, "also": {},
	"if": {}, "be": {}, "have": {}, "has": {}, "had": {}, "its": {},
}

// Tokenize lowercases text and extracts content words: maximal runs of
// ASCII letters and apostrophes, minus stopwords and tokens of length <= 2.
// Order is preserved and duplicates are kept.
func Tokenize(text string) []string {
	raw := wordPattern.FindAllString(strings.ToLower(text), -1)

	tokens := make([]string, 0, len(raw))
	for _, t := range raw {
		if len(t) <= 2 {
			continue
		}
		if _, stop := stopwords[t]; stop {
			continue
		}
		tokens = append(tokens, t)
	}
	return tokens
}

// IsStopword reports whether the (already lowercased) token is in the
// fixed stopword set.
func IsStopword(token string) bool {
	_, ok := stopwords[token]
	return ok
}
