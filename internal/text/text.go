// Package text holds the tokenization and sentence-splitting rules shared
// by the chunker, the TF-IDF embedder, and the frequency summarizer. The
// embedder and the summarizer must see the same token stream, otherwise
// summary embeddings drift from the vocabulary they are scored against.
package text

import (
	"regexp"
	"strings"
)

var (
	wordPattern     = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`)
	sentencePattern = regexp.MustCompile(`(?m)(?U)([^.!?]+[.!?])`)
)

// Sentences splits text into sentences ending in terminal punctuation.
// Text without any terminator yields no sentences; callers decide whether
// to treat the whole text as one.
func Sentences(text string) []string {
	return sentencePattern.FindAllString(text, -1)
}

// Tokens lowercases the text and extracts unicode word tokens, keeping
// internal apostrophes.
func Tokens(text string) []string {
	return wordPattern.FindAllString(strings.ToLower(text), -1)
}

// ContentTokens is Tokens with stopwords removed.
func ContentTokens(text string) []string {
	tokens := Tokens(text)
	out := tokens[:0]
	for _, t := range tokens {
		if IsStopword(t) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// IsStopword reports whether the token is in the built-in English stopword
// list.
func IsStopword(token string) bool {
	_, ok := stopwords[token]
	return ok
}

var stopwords = func() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for", "to", "of", "in", "on", "at", "by", "with", "as", "is", "are", "was", "were", "be", "been", "being", "it", "this", "that", "these", "those", "from", "up", "down", "over", "under", "again", "further", "than", "so", "such", "into", "about", "between", "through", "during", "before", "after", "above", "below", "out", "off", "own", "same", "too", "very", "can", "will", "just", "don", "should", "now",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}()
