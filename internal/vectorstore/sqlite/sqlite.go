// Package sqlite provides a persistent candidate store backed by SQLite,
// so a corpus can be ingested once and queried across runs. Search is a
// brute-force cosine scan over the stored embeddings.
package sqlite

import (
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"

	_ "modernc.org/sqlite"

	"raptor/internal/domain"
	"raptor/internal/vecmath"
)

const schema = `
CREATE TABLE IF NOT EXISTS meta (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS candidates (
	id TEXT PRIMARY KEY,
	content TEXT NOT NULL,
	embedding BLOB NOT NULL,
	metadata TEXT NOT NULL DEFAULT '{}'
);`

// Storage persists candidates in a SQLite file.
type Storage struct {
	db        *sql.DB
	dimension int
}

// Open opens (or creates) the store at the given path.
func Open(path string) (*Storage, error) {
	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	s := &Storage{db: db}
	// Pick up the dimension from a previous run, if any.
	var stored string
	err = db.QueryRow(`SELECT value FROM meta WHERE key = 'dimension'`).Scan(&stored)
	if err == nil {
		fmt.Sscanf(stored, "%d", &s.dimension)
	} else if err != sql.ErrNoRows {
		db.Close()
		return nil, fmt.Errorf("read dimension: %w", err)
	}
	return s, nil
}

// Close closes the underlying database.
func (s *Storage) Close() error { return s.db.Close() }

func (s *Storage) Init(dimension int) error {
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}
	s.dimension = dimension
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO meta (key, value) VALUES ('dimension', ?)`,
		fmt.Sprintf("%d", dimension),
	)
	return err
}

func (s *Storage) Upsert(candidates []domain.Candidate) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()
	for _, c := range candidates {
		if len(c.Embedding) != s.dimension {
			return errors.New("candidate embedding dimension mismatch")
		}
		meta, err := json.Marshal(c.Metadata)
		if err != nil {
			return fmt.Errorf("marshal metadata: %w", err)
		}
		_, err = tx.Exec(
			`INSERT OR REPLACE INTO candidates (id, content, embedding, metadata) VALUES (?, ?, ?, ?)`,
			c.ID, c.Content, embeddingToBlob(c.Embedding), string(meta),
		)
		if err != nil {
			return fmt.Errorf("upsert candidate %s: %w", c.ID, err)
		}
	}
	return tx.Commit()
}

func (s *Storage) Search(vector []float64, topK int) ([]domain.Candidate, error) {
	if topK <= 0 {
		topK = 5
	}
	rows, err := s.db.Query(`SELECT id, content, embedding, metadata FROM candidates`)
	if err != nil {
		return nil, fmt.Errorf("scan candidates: %w", err)
	}
	defer rows.Close()

	type scored struct {
		candidate domain.Candidate
		score     float64
	}
	var hits []scored
	for rows.Next() {
		var c domain.Candidate
		var blob []byte
		var meta string
		if err := rows.Scan(&c.ID, &c.Content, &blob, &meta); err != nil {
			return nil, err
		}
		c.Embedding = blobToEmbedding(blob)
		if meta != "" && meta != "{}" {
			if err := json.Unmarshal([]byte(meta), &c.Metadata); err != nil {
				return nil, fmt.Errorf("unmarshal metadata for %s: %w", c.ID, err)
			}
		}
		score, err := vecmath.Cosine(c.Embedding, vector)
		if err != nil {
			continue
		}
		hits = append(hits, scored{candidate: c, score: score})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].score > hits[j].score })
	if topK > len(hits) {
		topK = len(hits)
	}
	results := make([]domain.Candidate, 0, topK)
	for i := 0; i < topK; i++ {
		results = append(results, hits[i].candidate)
	}
	return results, nil
}

func (s *Storage) Clear() error {
	_, err := s.db.Exec(`DELETE FROM candidates`)
	return err
}

// embeddingToBlob serializes a float64 slice into a binary blob (little-endian).
func embeddingToBlob(emb []float64) []byte {
	buf := make([]byte, len(emb)*8)
	for i, v := range emb {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(v))
	}
	return buf
}

// blobToEmbedding deserializes a binary blob back to a float64 slice.
func blobToEmbedding(blob []byte) []float64 {
	n := len(blob) / 8
	emb := make([]float64, n)
	for i := 0; i < n; i++ {
		emb[i] = math.Float64frombits(binary.LittleEndian.Uint64(blob[i*8:]))
	}
	return emb
}
