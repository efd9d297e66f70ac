package vectorindex

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"finwise-backend/models"
)

// MemoryIndex is a brute-force in-memory index, exact for the small market corpus
type MemoryIndex struct {
	mu        sync.RWMutex
	dimension int
	docs      []models.MarketDocument
	vectors   [][]float64
}

func NewMemoryIndex() *MemoryIndex { return &MemoryIndex{} }

func (m *MemoryIndex) Name() string { return "memory" }

// Build replaces the index contents
func (m *MemoryIndex) Build(_ context.Context, docs []models.MarketDocument, vectors [][]float64) error {
	dim, err := validateBuild(docs, vectors)
	if err != nil {
		return err
	}

	docsCopy := make([]models.MarketDocument, len(docs))
	copy(docsCopy, docs)
	vecCopy := make([][]float64, len(vectors))
	for i, v := range vectors {
		vecCopy[i] = append([]float64(nil), v...)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.dimension = dim
	m.docs = docsCopy
	m.vectors = vecCopy
	return nil
}

func (m *MemoryIndex) Documents(_ context.Context) ([]models.MarketDocument, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(m.docs) == 0 {
		return nil, ErrEmptyIndex
	}
	docs := make([]models.MarketDocument, len(m.docs))
	copy(docs, m.docs)
	return docs, nil
}

// Search returns the min(k, size) nearest documents, closest first; ties keep build order
func (m *MemoryIndex) Search(_ context.Context, vector []float64, k int) ([]models.Candidate, error) {
	if k <= 0 {
		return nil, ErrInvalidK
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(m.docs) == 0 {
		return nil, ErrEmptyIndex
	}
	if len(vector) != m.dimension {
		return nil, fmt.Errorf("%w: query has %d dimensions, index has %d", ErrDimensionMismatch, len(vector), m.dimension)
	}

	candidates := make([]models.Candidate, len(m.docs))
	for i := range m.docs {
		candidates[i] = models.Candidate{
			Document: m.docs[i],
			Distance: SquaredL2(m.vectors[i], vector),
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Distance < candidates[j].Distance
	})

	if k > len(candidates) {
		k = len(candidates)
	}
	return candidates[:k], nil
}
