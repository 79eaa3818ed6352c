// Package tfidf provides the offline embedder: a TF-IDF vectorizer prepared
// over the ingested chunk texts. The tree builder embeds synthesized
// summaries through the same vocabulary, which keeps summary vectors
// comparable to chunk vectors as long as the summaries reuse corpus terms.
package tfidf

import (
	"errors"
	"math"
	"sort"

	"raptor/internal/text"
)

// Embedder vectorizes text against a corpus-derived vocabulary using
// smoothed IDF weights and L2-normalized output.
type Embedder struct {
	index    map[string]int
	idf      []float64
	prepared bool
}

// NewEmbedder creates an unprepared TF-IDF embedder.
func NewEmbedder() *Embedder {
	return &Embedder{index: make(map[string]int)}
}

// Name returns the identifier of this embedder implementation.
func (e *Embedder) Name() string { return "tfidf" }

// Prepare builds the vocabulary and IDF weights from the corpus. It must run
// before any Embed call, including the builder's summary embeddings.
func (e *Embedder) Prepare(corpus []string) error {
	if len(corpus) == 0 {
		return errors.New("empty corpus for TF-IDF prepare")
	}
	df := make(map[string]int)
	for _, doc := range corpus {
		seen := make(map[string]struct{})
		for _, tok := range text.ContentTokens(doc) {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}
	if len(df) == 0 {
		return errors.New("no tokens found in corpus; ensure tokenizer supports your language")
	}

	// Stable term ordering so vector positions are reproducible.
	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	e.index = make(map[string]int, len(terms))
	e.idf = make([]float64, len(terms))
	n := float64(len(corpus))
	for i, term := range terms {
		e.index[term] = i
		e.idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1
	}
	e.prepared = true
	return nil
}

// Dimension is the vocabulary size fixed by Prepare.
func (e *Embedder) Dimension() int { return len(e.idf) }

// Embed computes the L2-normalized TF-IDF vector for the input. Tokens
// outside the vocabulary contribute nothing; an input with no known tokens
// embeds to the zero vector, which comparison sites treat as incomparable.
func (e *Embedder) Embed(input string) ([]float64, error) {
	if !e.prepared {
		return nil, errors.New("tfidf embedder not prepared")
	}
	vec := make([]float64, len(e.idf))
	counts := make(map[int]int)
	total := 0
	for _, tok := range text.ContentTokens(input) {
		if idx, ok := e.index[tok]; ok {
			counts[idx]++
			total++
		}
	}
	if total == 0 {
		return vec, nil
	}
	for idx, count := range counts {
		vec[idx] = float64(count) / float64(total) * e.idf[idx]
	}
	var norm float64
	for _, v := range vec {
		norm += v * v
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for i := range vec {
			vec[i] /= norm
		}
	}
	return vec, nil
}
