// Package analyzer turns raw document or query text into a sequence of index
// terms. The pipeline strips digit runs and ASCII punctuation, lower-cases,
// tokenizes on whitespace, removes English stop-words, and applies the
// Snowball English stemmer. The same pipeline is used for documents and
// queries so that index terms and query terms are comparable.
package analyzer

import (
	"strings"

	"github.com/kljensen/snowball/english"
)

// stopWords is the fixed English stop-word set, initialized once at process
// startup and shared read-only across all Analyze calls.
var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {},
	"be": {}, "been": {}, "being": {}, "but": {}, "by": {},
	"can": {}, "could": {}, "did": {}, "do": {}, "does": {}, "doing": {},
	"down": {}, "each": {}, "else": {}, "for": {}, "from": {},
	"had": {}, "has": {}, "have": {}, "having": {}, "he": {}, "her": {},
	"here": {}, "hers": {}, "him": {}, "his": {}, "i": {}, "if": {},
	"in": {}, "into": {}, "is": {}, "it": {}, "its": {}, "itself": {},
	"may": {}, "me": {}, "might": {}, "must": {}, "my": {},
	"no": {}, "nor": {}, "not": {}, "of": {}, "on": {}, "once": {},
	"only": {}, "or": {}, "our": {}, "ours": {}, "out": {}, "over": {},
	"she": {}, "should": {}, "so": {}, "than": {}, "that": {}, "the": {},
	"their": {}, "theirs": {}, "them": {}, "then": {}, "there": {},
	"these": {}, "they": {}, "this": {}, "those": {}, "to": {}, "too": {},
	"under": {}, "up": {}, "very": {}, "was": {}, "we": {}, "were": {},
	"what": {}, "when": {}, "where": {}, "which": {}, "while": {},
	"who": {}, "will": {}, "with": {}, "would": {}, "you": {}, "your": {},
	"yours": {},
}

// Analyze normalizes text into an ordered sequence of index terms. It is pure
// and deterministic, and never fails: empty or pure-punctuation input yields
// an empty term sequence.
func Analyze(text string) []string {
	cleaned := strings.Map(dropDigitsAndPunct, text)
	cleaned = strings.ToLower(cleaned)
	words := strings.Fields(cleaned)

	terms := make([]string, 0, len(words))
	for _, word := range words {
		if _, isStop := stopWords[word]; isStop {
			continue
		}
		stemmed := english.Stem(word, true)
		if stemmed == "" {
			continue
		}
		terms = append(terms, stemmed)
	}
	return terms
}

// IsStopWord reports whether the lower-cased word is in the stop-word set.
func IsStopWord(word string) bool {
	_, ok := stopWords[strings.ToLower(word)]
	return ok
}

// dropDigitsAndPunct deletes decimal digits and ASCII punctuation. Characters
// are removed entirely, not replaced with spaces, so removal never introduces
// new token boundaries.
func dropDigitsAndPunct(r rune) rune {
	if r >= '0' && r <= '9' {
		return -1
	}
	if strings.ContainsRune(asciiPunct, r) {
		return -1
	}
	return r
}

const asciiPunct = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"
