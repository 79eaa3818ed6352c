// Package chunker splits ingested documents into overlapping sentence
// windows. Chunk ids embed the document id and window index, so repeated
// ingests of the same document produce the same candidate ids.
package chunker

import (
	"strconv"
	"strings"

	"raptor/internal/domain"
	"raptor/internal/text"
)

// SentenceChunker produces fixed-size sentence windows with a configurable
// overlap between consecutive windows.
type SentenceChunker struct {
	windowSize int
	overlap    int
}

func NewSentenceChunker(sentencesPerChunk, overlapSentences int) *SentenceChunker {
	if sentencesPerChunk <= 0 {
		sentencesPerChunk = 5
	}
	if overlapSentences < 0 {
		overlapSentences = 0
	}
	return &SentenceChunker{windowSize: sentencesPerChunk, overlap: overlapSentences}
}

// Chunk splits the document into sentence windows. A document without any
// sentence terminator becomes a single chunk; a blank document yields none.
func (c *SentenceChunker) Chunk(document domain.Document) ([]domain.Chunk, error) {
	sentences := text.Sentences(document.Content)
	if len(sentences) == 0 {
		trimmed := strings.TrimSpace(document.Content)
		if trimmed == "" {
			return nil, nil
		}
		sentences = []string{trimmed}
	}
	for i := range sentences {
		sentences[i] = strings.TrimSpace(sentences[i])
	}

	var chunks []domain.Chunk
	for start, idx := 0, 0; start < len(sentences); idx++ {
		end := start + c.windowSize
		if end > len(sentences) {
			end = len(sentences)
		}
		chunks = append(chunks, domain.Chunk{
			DocumentID: document.ID,
			ChunkID:    document.ID + ":" + strconv.Itoa(idx),
			Text:       strings.Join(sentences[start:end], " "),
			Index:      idx,
		})
		if end == len(sentences) {
			break
		}
		start = end - c.overlap
		if start < 0 {
			start = 0
		}
	}
	return chunks, nil
}
