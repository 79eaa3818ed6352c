// Package retriever implements collapsed-tree ranking: every node of the
// forest, leaves and summaries alike, is scored against the query embedding
// and returned in relevance order.
package retriever

import (
	"sort"
	"strconv"

	"raptor/internal/domain"
	"raptor/internal/tree"
	"raptor/internal/vecmath"
)

// Rank flattens the forest in pre-order, scores each node against the query
// embedding, and returns result records sorted by score descending. Nodes
// whose embedding cannot be compared to the query are excluded. Equal scores
// keep flatten order; this is a guaranteed property, not an accident of the
// sort.
func Rank(forest *tree.Forest, queryEmbedding []float64) []domain.ResultRecord {
	type scored struct {
		node  *tree.Node
		score float64
	}
	flat := forest.Flatten()
	candidates := make([]scored, 0, len(flat))
	for _, n := range flat {
		score, err := vecmath.Cosine(queryEmbedding, n.Embedding)
		if err != nil {
			continue
		}
		candidates = append(candidates, scored{node: n, score: score})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	results := make([]domain.ResultRecord, 0, len(candidates))
	for _, c := range candidates {
		results = append(results, materialize(c.node, c.score))
	}
	return results
}

// materialize maps a node back to a result record: a leaf carries its
// original candidate unchanged, a summary node becomes a fresh record tagged
// with its tree level and a synthesized-summary marker.
func materialize(n *tree.Node, score float64) domain.ResultRecord {
	if n.IsLeaf() {
		c := n.Candidate
		return domain.ResultRecord{
			ID:        c.ID,
			Content:   c.Content,
			Embedding: c.Embedding,
			Score:     score,
			Metadata:  c.Metadata,
		}
	}
	return domain.ResultRecord{
		ID:          n.ID,
		Content:     n.Content,
		Embedding:   n.Embedding,
		Score:       score,
		Level:       n.Level,
		Synthesized: true,
		Metadata: map[string]string{
			"tree_level": strconv.Itoa(n.Level),
			"source":     "synthesized-summary",
		},
	}
}
