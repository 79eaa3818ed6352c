package cluster

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"raptor/internal/tree"
	"raptor/internal/vecmath"
)

func cosOf(a, b []float64) (float64, error) { return vecmath.Cosine(a, b) }

func nodesFrom(embeddings ...[]float64) []*tree.Node {
	nodes := make([]*tree.Node, len(embeddings))
	for i, e := range embeddings {
		nodes[i] = &tree.Node{ID: fmt.Sprintf("n%d", i), Embedding: e}
	}
	return nodes
}

func TestSimilarityMergesAboveThreshold(t *testing.T) {
	s := NewSimilarity(0.7, 5)
	groups, err := s.Cluster(nodesFrom(
		[]float64{1, 0, 0},
		[]float64{0.9, 0.1, 0}, // cos to seed ≈ 0.994
	))
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Len(t, groups[0], 2)
}

func TestSimilarityThresholdIsStrict(t *testing.T) {
	// cos([1,0], [1,1]) = 1/sqrt(2); similarity exactly equal to the
	// threshold must not merge.
	threshold, err := cosOf([]float64{1, 0}, []float64{1, 1})
	require.NoError(t, err)

	s := NewSimilarity(threshold, 5)
	groups, err := s.Cluster(nodesFrom(
		[]float64{1, 0},
		[]float64{1, 1},
	))
	require.NoError(t, err)
	assert.Len(t, groups, 2)
}

func TestSimilarityMaxClusterSize(t *testing.T) {
	s := NewSimilarity(0.7, 2)
	near := [][]float64{
		{1, 0, 0},
		{0.99, 0.01, 0},
		{0.98, 0.02, 0},
		{0.97, 0.03, 0},
		{0.96, 0.04, 0},
	}
	groups, err := s.Cluster(nodesFrom(near...))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(groups), 3)
	total := 0
	for _, g := range groups {
		assert.LessOrEqual(t, len(g), 2)
		total += len(g)
	}
	assert.Equal(t, 5, total)
}

func TestSimilarityIsPartition(t *testing.T) {
	s := NewSimilarity(0.5, 3)
	nodes := nodesFrom(
		[]float64{1, 0},
		[]float64{0, 1},
		[]float64{0.9, 0.1},
		[]float64{0.1, 0.9},
		[]float64{0.5, 0.5},
	)
	groups, err := s.Cluster(nodes)
	require.NoError(t, err)

	seen := map[string]int{}
	for _, g := range groups {
		require.NotEmpty(t, g)
		for _, n := range g {
			seen[n.ID]++
		}
	}
	require.Len(t, seen, len(nodes))
	for id, count := range seen {
		assert.Equal(t, 1, count, "node %s appears %d times", id, count)
	}
}

func TestSimilarityDimensionMismatchNotMerged(t *testing.T) {
	s := NewSimilarity(0.1, 5)
	groups, err := s.Cluster(nodesFrom(
		[]float64{1, 0, 0},
		[]float64{1, 0}, // incomparable with the seed
		[]float64{0.9, 0.1, 0},
	))
	require.NoError(t, err)
	// Mismatched node ends up alone; the comparable pair still merges.
	require.Len(t, groups, 2)
	assert.Len(t, groups[0], 2)
	assert.Len(t, groups[1], 1)
	assert.Equal(t, "n1", groups[1][0].ID)
}

func TestSimilarityEmptyInput(t *testing.T) {
	s := NewSimilarity(0.5, 5)
	groups, err := s.Cluster(nil)
	require.NoError(t, err)
	assert.Empty(t, groups)
}
