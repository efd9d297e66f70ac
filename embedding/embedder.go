// Package embedding turns text into vectors through interchangeable providers.
package embedding

import (
	"context"
	"errors"
)

var ErrEmbeddingFailed = errors.New("failed to generate embedding")

// Embedder converts free text into a numeric vector representation
type Embedder interface {
	Name() string
	EmbedOne(ctx context.Context, text string) ([]float64, error)
	EmbedMany(ctx context.Context, texts []string) ([][]float64, error)
}

// Preparer is implemented by embedders that must see the corpus before embedding
type Preparer interface {
	Prepare(corpus []string) error
}

// Prepare runs the preparation phase when e needs one
func Prepare(e Embedder, corpus []string) error {
	if p, ok := e.(Preparer); ok {
		return p.Prepare(corpus)
	}
	return nil
}
