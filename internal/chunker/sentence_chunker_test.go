package chunker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"raptor/internal/domain"
)

func TestChunkSplitsWithOverlap(t *testing.T) {
	c := NewSentenceChunker(2, 1)
	doc := domain.Document{ID: "doc", Content: "One. Two. Three. Four."}
	chunks, err := c.Chunk(doc)
	require.NoError(t, err)
	require.Len(t, chunks, 3)

	assert.Equal(t, "One. Two.", chunks[0].Text)
	assert.Equal(t, "Two. Three.", chunks[1].Text)
	assert.Equal(t, "Three. Four.", chunks[2].Text)

	for i, ch := range chunks {
		assert.Equal(t, "doc", ch.DocumentID)
		assert.Equal(t, i, ch.Index)
		assert.NotEmpty(t, ch.ChunkID)
	}
}

func TestChunkNoOverlap(t *testing.T) {
	c := NewSentenceChunker(2, 0)
	doc := domain.Document{ID: "doc", Content: "One. Two. Three."}
	chunks, err := c.Chunk(doc)
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Equal(t, "One. Two.", chunks[0].Text)
	assert.Equal(t, "Three.", chunks[1].Text)
}

func TestChunkNoSentenceBoundary(t *testing.T) {
	c := NewSentenceChunker(3, 0)
	doc := domain.Document{ID: "doc", Content: "no terminal punctuation here"}
	chunks, err := c.Chunk(doc)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "no terminal punctuation here", chunks[0].Text)
}

func TestChunkEmptyDocument(t *testing.T) {
	c := NewSentenceChunker(3, 0)
	chunks, err := c.Chunk(domain.Document{ID: "doc", Content: "   "})
	require.NoError(t, err)
	assert.Empty(t, chunks)
}
