// Package cluster provides the clustering strategies used by the tree
// builder: greedy threshold clustering and centroid clustering with
// automatic cluster-count selection.
package cluster

import (
	"raptor/internal/tree"
	"raptor/internal/vecmath"
)

// Similarity is a greedy, seed-anchored clustering strategy. Nodes are
// walked in input order; each unassigned node seeds a new cluster, and every
// later unassigned node joins it when its cosine similarity to the seed
// exceeds the threshold and the cluster has room. Membership is seed-
// relative: two non-seed members of a cluster need not be similar to each
// other.
type Similarity struct {
	Threshold      float64
	MaxClusterSize int
}

// NewSimilarity returns a greedy similarity strategy with the given strict
// threshold and cluster-size cap.
func NewSimilarity(threshold float64, maxClusterSize int) *Similarity {
	return &Similarity{Threshold: threshold, MaxClusterSize: maxClusterSize}
}

// Cluster partitions nodes in a single O(n²·d) pass. An incomparable pair
// (dimension mismatch) is simply not merged.
func (s *Similarity) Cluster(nodes []*tree.Node) ([][]*tree.Node, error) {
	if len(nodes) == 0 {
		return nil, nil
	}
	used := make([]bool, len(nodes))
	var groups [][]*tree.Node
	for i, seed := range nodes {
		if used[i] {
			continue
		}
		used[i] = true
		group := []*tree.Node{seed}
		for j := i + 1; j < len(nodes); j++ {
			if used[j] || (s.MaxClusterSize > 0 && len(group) >= s.MaxClusterSize) {
				continue
			}
			sim, err := vecmath.Cosine(seed.Embedding, nodes[j].Embedding)
			if err != nil {
				continue
			}
			if sim > s.Threshold {
				group = append(group, nodes[j])
				used[j] = true
			}
		}
		groups = append(groups, group)
	}
	return groups, nil
}
