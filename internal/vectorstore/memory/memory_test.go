package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"raptor/internal/domain"
)

func seedCandidates() []domain.Candidate {
	return []domain.Candidate{
		{ID: "a", Content: "alpha", Embedding: []float64{1, 0, 0}},
		{ID: "b", Content: "beta", Embedding: []float64{0.9, 0.1, 0}},
		{ID: "c", Content: "gamma", Embedding: []float64{0, 0, 1}},
	}
}

func TestSearchOrdersBySimilarity(t *testing.T) {
	s := NewStorage()
	require.NoError(t, s.Init(3))
	require.NoError(t, s.Upsert(seedCandidates()))

	hits, err := s.Search([]float64{1, 0, 0}, 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "a", hits[0].ID)
	assert.Equal(t, "b", hits[1].ID)
}

func TestSearchDefaultTopK(t *testing.T) {
	s := NewStorage()
	require.NoError(t, s.Init(3))
	require.NoError(t, s.Upsert(seedCandidates()))

	hits, err := s.Search([]float64{1, 0, 0}, 0)
	require.NoError(t, err)
	assert.Len(t, hits, 3)
}

func TestUpsertReplacesExisting(t *testing.T) {
	s := NewStorage()
	require.NoError(t, s.Init(3))
	require.NoError(t, s.Upsert(seedCandidates()))
	require.NoError(t, s.Upsert([]domain.Candidate{
		{ID: "a", Content: "alpha v2", Embedding: []float64{1, 0, 0}},
	}))

	hits, err := s.Search([]float64{1, 0, 0}, 10)
	require.NoError(t, err)
	require.Len(t, hits, 3, "re-upserting an id must not grow the store")
	assert.Equal(t, "a", hits[0].ID)
	assert.Equal(t, "alpha v2", hits[0].Content)
}

func TestUpsertDimensionMismatch(t *testing.T) {
	s := NewStorage()
	require.NoError(t, s.Init(3))
	err := s.Upsert([]domain.Candidate{{ID: "x", Embedding: []float64{1, 0}}})
	require.Error(t, err)
}

func TestInitResetsContents(t *testing.T) {
	s := NewStorage()
	require.NoError(t, s.Init(3))
	require.NoError(t, s.Upsert(seedCandidates()))
	require.NoError(t, s.Init(3))

	hits, err := s.Search([]float64{1, 0, 0}, 10)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestClear(t *testing.T) {
	s := NewStorage()
	require.NoError(t, s.Init(3))
	require.NoError(t, s.Upsert(seedCandidates()))
	require.NoError(t, s.Clear())

	hits, err := s.Search([]float64{1, 0, 0}, 10)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestInitRejectsInvalidDimension(t *testing.T) {
	s := NewStorage()
	require.Error(t, s.Init(0))
	require.Error(t, s.Init(-1))
}
