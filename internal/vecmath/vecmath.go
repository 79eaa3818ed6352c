// Package vecmath provides the small set of vector operations the clustering
// and ranking code relies on. Vectors are plain []float64 as produced by the
// embedders.
package vecmath

import (
	"errors"
	"math"
)

// ErrIncomparable marks a pair of vectors that cannot be compared: length
// mismatch, empty, or zero magnitude. Callers treat the pair as "not
// similar" rather than propagating a fault.
var ErrIncomparable = errors.New("vectors are not comparable")

// Cosine computes the cosine similarity between two vectors.
func Cosine(a, b []float64) (float64, error) {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0, ErrIncomparable
	}
	var dot, magA, magB float64
	for i := range a {
		dot += a[i] * b[i]
		magA += a[i] * a[i]
		magB += b[i] * b[i]
	}
	if magA == 0 || magB == 0 {
		return 0, ErrIncomparable
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB)), nil
}

// SquaredDistance returns the squared Euclidean distance between two vectors
// of equal length. Callers guarantee the lengths match.
func SquaredDistance(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

// Centroid computes the component-wise mean of the given vectors. Vectors
// whose length differs from the first are skipped. Returns nil for empty
// input.
func Centroid(vectors [][]float64) []float64 {
	if len(vectors) == 0 || len(vectors[0]) == 0 {
		return nil
	}
	dim := len(vectors[0])
	centroid := make([]float64, dim)
	count := 0
	for _, v := range vectors {
		if len(v) != dim {
			continue
		}
		for i, x := range v {
			centroid[i] += x
		}
		count++
	}
	if count == 0 {
		return nil
	}
	for i := range centroid {
		centroid[i] /= float64(count)
	}
	return centroid
}
