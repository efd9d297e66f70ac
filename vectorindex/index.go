// Package vectorindex stores embedded market documents and answers nearest-neighbour
// queries. Every backend reports distances as squared Euclidean distance.
package vectorindex

import (
	"context"
	"errors"
	"fmt"

	"finwise-backend/models"
)

var (
	ErrEmptyIndex        = errors.New("vector index is empty")
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
	ErrInvalidK          = errors.New("k must be positive")
)

// Index is a similarity index over market documents
type Index interface {
	Name() string
	Build(ctx context.Context, docs []models.MarketDocument, vectors [][]float64) error
	Search(ctx context.Context, vector []float64, k int) ([]models.Candidate, error)
	// Documents returns the stored documents in build order, or ErrEmptyIndex
	Documents(ctx context.Context) ([]models.MarketDocument, error)
}

// validateBuild checks docs and vectors line up and share one dimension, which it returns
func validateBuild(docs []models.MarketDocument, vectors [][]float64) (int, error) {
	if len(docs) == 0 {
		return 0, ErrEmptyIndex
	}
	if len(docs) != len(vectors) {
		return 0, fmt.Errorf("documents and vectors length mismatch: %d != %d", len(docs), len(vectors))
	}
	dim := len(vectors[0])
	if dim == 0 {
		return 0, fmt.Errorf("%w: zero-length vector", ErrDimensionMismatch)
	}
	for i, v := range vectors {
		if len(v) != dim {
			return 0, fmt.Errorf("%w: vector %d has %d dimensions, want %d", ErrDimensionMismatch, i, len(v), dim)
		}
	}
	return dim, nil
}

// SquaredL2 returns the squared Euclidean distance between a and b
func SquaredL2(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
