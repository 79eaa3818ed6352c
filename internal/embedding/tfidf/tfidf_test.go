package tfidf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func preparedEmbedder(t *testing.T, corpus []string) *Embedder {
	t.Helper()
	e := NewEmbedder()
	require.NoError(t, e.Prepare(corpus))
	return e
}

func TestEmbedRequiresPrepare(t *testing.T) {
	e := NewEmbedder()
	_, err := e.Embed("hello world")
	require.Error(t, err)
}

func TestPrepareEmptyCorpus(t *testing.T) {
	e := NewEmbedder()
	require.Error(t, e.Prepare(nil))
}

func TestEmbedDimensionAndNorm(t *testing.T) {
	e := preparedEmbedder(t, []string{
		"dogs chase cats",
		"cats chase mice",
		"mice eat cheese",
	})
	assert.Positive(t, e.Dimension())

	vec, err := e.Embed("dogs chase cats")
	require.NoError(t, err)
	require.Len(t, vec, e.Dimension())

	// Vectors are L2 normalized.
	norm := 0.0
	for _, v := range vec {
		norm += v * v
	}
	assert.InDelta(t, 1.0, norm, 1e-9)
}

func TestEmbedSimilarTextsScoreCloser(t *testing.T) {
	e := preparedEmbedder(t, []string{
		"dogs chase cats around yard",
		"cats sleep quietly indoors",
		"stock markets fell sharply today",
	})

	query, err := e.Embed("dogs chase cats")
	require.NoError(t, err)
	near, err := e.Embed("dogs chase cats around yard")
	require.NoError(t, err)
	far, err := e.Embed("stock markets fell sharply")
	require.NoError(t, err)

	assert.Greater(t, dot(query, near), dot(query, far))
}

func TestEmbedUnknownTokensYieldZeroVector(t *testing.T) {
	e := preparedEmbedder(t, []string{"dogs chase cats"})
	vec, err := e.Embed("quantum entanglement")
	require.NoError(t, err)
	for _, v := range vec {
		assert.Zero(t, v)
	}
}

func dot(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
