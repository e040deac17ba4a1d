// Package ranking scores vectors by cosine similarity and orders scored items.
package ranking

import (
	"fmt"
	"math"
	"sort"

	"github.com/kailas-cloud/lifeos/internal/domain"
)

// Cosine returns dot(a, b) / (|a| |b|). A zero-magnitude operand yields 0.
// Lengths must match; callers go through Scores, which checks them.
func Cosine(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	// Rounding can push |sim| just past 1.
	return math.Max(-1, math.Min(1, sim))
}

// Scores computes the cosine similarity of query against every candidate.
// The result has exactly len(candidates) elements, in candidate order.
func Scores(query []float32, candidates [][]float32) ([]float64, error) {
	if len(candidates) == 0 {
		return nil, fmt.Errorf("no candidates to score: %w", domain.ErrInvalidInput)
	}
	out := make([]float64, len(candidates))
	for i, c := range candidates {
		if len(c) != len(query) {
			return nil, fmt.Errorf("candidate %d has %d dims, query has %d: %w",
				i, len(c), len(query), domain.ErrVectorDimMismatch)
		}
		out[i] = Cosine(query, c)
	}
	return out, nil
}

// Scored pairs an item with its similarity score.
type Scored[T any] struct {
	Item  T
	Score float64
}

// Zip pairs items with scores positionally. Both slices must have equal length.
func Zip[T any](items []T, scores []float64) []Scored[T] {
	out := make([]Scored[T], len(items))
	for i := range items {
		out[i] = Scored[T]{Item: items[i], Score: scores[i]}
	}
	return out
}

// SortDesc orders by score descending. Equal scores keep their input order.
func SortDesc[T any](items []Scored[T]) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Score > items[j].Score
	})
}

// Above keeps items whose score is strictly greater than threshold.
func Above[T any](items []Scored[T], threshold float64) []Scored[T] {
	out := make([]Scored[T], 0, len(items))
	for _, it := range items {
		if it.Score > threshold {
			out = append(out, it)
		}
	}
	return out
}

// TopK returns at most k leading items.
func TopK[T any](items []Scored[T], k int) []Scored[T] {
	if k < 0 {
		k = 0
	}
	if len(items) > k {
		return items[:k]
	}
	return items
}
