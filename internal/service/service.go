// Package service wires the retrieval pipeline: ingest documents into the
// candidate store, then answer queries with collapsed-tree retrieval.
package service

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"raptor/internal/domain"
	"raptor/internal/retriever"
	"raptor/internal/tree"
	"raptor/internal/vectorstore"
)

// Service implements domain.RetrievalService. Each Retrieve call builds its
// own tree from scratch; no tree state survives between calls.
type Service struct {
	chunker             domain.Chunker
	embedder            domain.Embedder
	store               vectorstore.Storage
	source              domain.CandidateSource
	summarizer          domain.Summarizer
	builder             *tree.Builder
	topK                int
	summaryMaxSentences int
}

// Config collects the service collaborators and limits.
type Config struct {
	Chunker             domain.Chunker
	Embedder            domain.Embedder
	Store               vectorstore.Storage
	Source              domain.CandidateSource
	Summarizer          domain.Summarizer
	Builder             *tree.Builder
	TopK                int // results returned per query (0 = unlimited)
	SummaryMaxSentences int
}

// New assembles a retrieval service.
func New(cfg Config) *Service {
	return &Service{
		chunker:             cfg.Chunker,
		embedder:            cfg.Embedder,
		store:               cfg.Store,
		source:              cfg.Source,
		summarizer:          cfg.Summarizer,
		builder:             cfg.Builder,
		topK:                cfg.TopK,
		summaryMaxSentences: cfg.SummaryMaxSentences,
	}
}

// IngestDocuments chunks the given .txt files, embeds each chunk, and
// upserts the chunks into the candidate store. Returns a short corpus
// summary for display.
func (s *Service) IngestDocuments(paths []string) (string, error) {
	var documents []domain.Document
	for _, p := range paths {
		matches, err := filepath.Glob(p)
		if err != nil {
			return "", fmt.Errorf("glob %q: %w", p, err)
		}
		if matches == nil {
			matches = []string{p}
		}
		for _, m := range matches {
			if !strings.HasSuffix(strings.ToLower(m), ".txt") {
				continue
			}
			data, err := os.ReadFile(m)
			if err != nil {
				return "", err
			}
			documents = append(documents, domain.Document{ID: hashString(m), Path: m, Content: string(data)})
		}
	}
	if len(documents) == 0 {
		return "", fmt.Errorf("no .txt documents found")
	}

	var allChunks []domain.Chunk
	var allTexts []string
	var corpus strings.Builder
	for _, d := range documents {
		chunks, err := s.chunker.Chunk(d)
		if err != nil {
			return "", err
		}
		for _, ch := range chunks {
			allChunks = append(allChunks, ch)
			allTexts = append(allTexts, ch.Text)
		}
		corpus.WriteString("\n")
		corpus.WriteString(d.Content)
	}

	if err := s.embedder.Prepare(allTexts); err != nil {
		return "", err
	}
	// Clear before Init: some stores drop the whole collection on Clear, so
	// the schema has to be (re)created afterwards.
	if err := s.store.Clear(); err != nil {
		return "", err
	}
	if err := s.store.Init(s.embedder.Dimension()); err != nil {
		return "", err
	}

	candidates := make([]domain.Candidate, len(allChunks))
	for i, ch := range allChunks {
		vec, err := s.embedder.Embed(ch.Text)
		if err != nil {
			return "", err
		}
		candidates[i] = domain.Candidate{
			ID:        ch.ChunkID,
			Content:   ch.Text,
			Embedding: vec,
			Metadata: map[string]string{
				"document_id": ch.DocumentID,
			},
		}
	}
	if err := s.store.Upsert(candidates); err != nil {
		return "", err
	}
	slog.Info("ingest: documents indexed", "documents", len(documents), "chunks", len(allChunks))

	return s.summarizer.Summarize(corpus.String(), s.summaryMaxSentences)
}

// Retrieve answers a query: embed it, fetch candidates, build the
// abstraction tree, and rank every tree node against the query. An empty
// candidate set short-circuits to an empty result with no clustering or
// summarization work.
func (s *Service) Retrieve(query string) ([]domain.ResultRecord, error) {
	queryVec, err := s.embedder.Embed(query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	candidates, err := s.source.SimilaritySearch(queryVec)
	if err != nil {
		return nil, fmt.Errorf("fetch candidates: %w", err)
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	forest, err := s.builder.Build(candidates)
	if err != nil {
		return nil, fmt.Errorf("build tree: %w", err)
	}
	slog.Debug("retrieve: tree built", "candidates", len(candidates), "nodes", forest.Len())

	results := retriever.Rank(forest, queryVec)
	if s.topK > 0 && len(results) > s.topK {
		results = results[:s.topK]
	}
	return results, nil
}

func hashString(s string) string {
	h := sha1.Sum([]byte(s))
	return hex.EncodeToString(h[:8])
}
