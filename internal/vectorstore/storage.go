// Package vectorstore defines candidate persistence and similarity search.
package vectorstore

import "raptor/internal/domain"

// Storage persists embedded candidates and supports similarity search.
// Search results carry their embeddings so the tree builder can cluster
// them without re-embedding.
type Storage interface {
	Init(dimension int) error
	Upsert(candidates []domain.Candidate) error
	Search(vector []float64, topK int) ([]domain.Candidate, error)
	Clear() error
}

// Source adapts a Storage to the domain.CandidateSource boundary with a
// fixed fetch size.
type Source struct {
	store  Storage
	fetchK int
}

// NewSource wraps a storage as a candidate source. fetchK <= 0 defaults
// to 20.
func NewSource(store Storage, fetchK int) *Source {
	if fetchK <= 0 {
		fetchK = 20
	}
	return &Source{store: store, fetchK: fetchK}
}

// SimilaritySearch returns up to fetchK pre-ranked candidates.
func (s *Source) SimilaritySearch(queryEmbedding []float64) ([]domain.Candidate, error) {
	return s.store.Search(queryEmbedding, s.fetchK)
}
