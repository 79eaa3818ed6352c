package cluster

import (
	"errors"
	"math"
	"math/rand"
	"time"

	"raptor/internal/tree"
	"raptor/internal/vecmath"
)

// CentroidConfig holds the knobs for centroid clustering.
type CentroidConfig struct {
	MaxClusters           int
	MaxIterations         int
	MinClusterSize        int
	MaxClusterSize        int
	UseDimensionReduction bool
	// Seed fixes centroid initialization for reproducible builds; zero
	// means time-seeded.
	Seed int64
}

// Centroid approximates Gaussian-mixture clustering with bounded k-means
// plus a BIC-style model-selection score over candidate cluster counts.
type Centroid struct {
	cfg CentroidConfig
	rng *rand.Rand
}

// NewCentroid returns a centroid strategy with the given configuration.
func NewCentroid(cfg CentroidConfig) *Centroid {
	if cfg.MaxClusters <= 0 {
		cfg.MaxClusters = 10
	}
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = 20
	}
	if cfg.MaxClusterSize <= 0 {
		cfg.MaxClusterSize = 10
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Centroid{cfg: cfg, rng: rand.New(rand.NewSource(seed))}
}

// Cluster partitions nodes by scanning cluster counts k from 1 to
// min(MaxClusters, n), scoring each k-means partition with a BIC-style
// criterion, and keeping the lowest-scoring k (ties keep the smallest k).
// Groups larger than MaxClusterSize are sliced into contiguous chunks.
func (c *Centroid) Cluster(nodes []*tree.Node) ([][]*tree.Node, error) {
	if len(nodes) == 0 {
		return nil, nil
	}
	points := make([][]float64, len(nodes))
	dim := len(nodes[0].Embedding)
	if dim == 0 {
		return nil, errors.New("centroid clustering: empty embeddings")
	}
	for i, n := range nodes {
		if len(n.Embedding) != dim {
			return nil, errors.New("centroid clustering: embedding dimension mismatch")
		}
		points[i] = n.Embedding
	}
	points = c.reduceDimensions(points)

	maxK := c.cfg.MaxClusters
	if maxK > len(points) {
		maxK = len(points)
	}

	bestScore := math.Inf(1)
	var bestAssign []int
	bestK := 1
	for k := 1; k <= maxK; k++ {
		assign, centroids := c.kmeans(points, k)
		logLikelihood := 0.0
		for i, p := range points {
			logLikelihood -= vecmath.SquaredDistance(p, centroids[assign[i]])
		}
		params := float64(2*k*dim + (k - 1))
		score := -2*logLikelihood + params*math.Log(float64(len(points)))
		if score < bestScore {
			bestScore = score
			bestAssign = assign
			bestK = k
		}
	}

	groups := make([][]*tree.Node, bestK)
	for i, n := range nodes {
		groups[bestAssign[i]] = append(groups[bestAssign[i]], n)
	}

	var out [][]*tree.Node
	for _, g := range groups {
		if len(g) == 0 {
			continue
		}
		// Singletons are unique content and always kept; oversize groups
		// are sliced positionally rather than re-clustered, so the final
		// slice may fall below MinClusterSize.
		for len(g) > c.cfg.MaxClusterSize {
			out = append(out, g[:c.cfg.MaxClusterSize])
			g = g[c.cfg.MaxClusterSize:]
		}
		if len(g) > 0 {
			out = append(out, g)
		}
	}
	return out, nil
}

// reduceDimensions is a documented no-op hook. A real implementation would
// project the embeddings before distance computation; clustering currently
// operates on the raw vectors.
func (c *Centroid) reduceDimensions(points [][]float64) [][]float64 {
	if !c.cfg.UseDimensionReduction {
		return points
	}
	return points
}

// kmeans runs a bounded k-means over points: random initial centroids drawn
// from the input, up to MaxIterations assignment/update passes, early exit
// once assignments stabilize.
func (c *Centroid) kmeans(points [][]float64, k int) ([]int, [][]float64) {
	centroids := make([][]float64, k)
	for i, idx := range c.rng.Perm(len(points))[:k] {
		centroids[i] = append([]float64(nil), points[idx]...)
	}

	assign := make([]int, len(points))
	for iter := 0; iter < c.cfg.MaxIterations; iter++ {
		changed := false
		for i, p := range points {
			best := 0
			bestDist := math.Inf(1)
			for j, centroid := range centroids {
				if d := vecmath.SquaredDistance(p, centroid); d < bestDist {
					bestDist = d
					best = j
				}
			}
			if assign[i] != best {
				assign[i] = best
				changed = true
			}
		}
		if iter > 0 && !changed {
			break
		}
		for j := range centroids {
			var members [][]float64
			for i, p := range points {
				if assign[i] == j {
					members = append(members, p)
				}
			}
			// An emptied cluster keeps its previous centroid.
			if mean := vecmath.Centroid(members); mean != nil {
				centroids[j] = mean
			}
		}
	}
	return assign, centroids
}
