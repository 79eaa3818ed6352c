package memory

import (
	"errors"
	"sort"
	"sync"

	"raptor/internal/domain"
	"raptor/internal/vecmath"
)

// Storage is a simple in-memory candidate store using brute-force cosine
// similarity. Candidates are keyed by id; re-upserting an id replaces the
// stored candidate in place.
type Storage struct {
	mu         sync.RWMutex
	dimension  int
	candidates []domain.Candidate
	index      map[string]int
}

func NewStorage() *Storage { return &Storage{index: make(map[string]int)} }

func (s *Storage) Init(dimension int) error {
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dimension = dimension
	s.candidates = nil
	s.index = make(map[string]int)
	return nil
}

func (s *Storage) Upsert(candidates []domain.Candidate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range candidates {
		if len(c.Embedding) != s.dimension {
			return errors.New("candidate embedding dimension mismatch")
		}
	}
	for _, c := range candidates {
		if i, ok := s.index[c.ID]; ok {
			s.candidates[i] = c
			continue
		}
		s.index[c.ID] = len(s.candidates)
		s.candidates = append(s.candidates, c)
	}
	return nil
}

func (s *Storage) Search(vector []float64, topK int) ([]domain.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if topK <= 0 {
		topK = 5
	}
	type scored struct {
		idx   int
		score float64
	}
	hits := make([]scored, 0, len(s.candidates))
	for i := range s.candidates {
		score, err := vecmath.Cosine(s.candidates[i].Embedding, vector)
		if err != nil {
			continue
		}
		hits = append(hits, scored{idx: i, score: score})
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].score > hits[j].score })
	if topK > len(hits) {
		topK = len(hits)
	}
	results := make([]domain.Candidate, 0, topK)
	for i := 0; i < topK; i++ {
		results = append(results, s.candidates[hits[i].idx])
	}
	return results, nil
}

func (s *Storage) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.candidates = nil
	s.index = make(map[string]int)
	return nil
}
