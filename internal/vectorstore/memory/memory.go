package memory

import (
	"context"
	"errors"
	"sync"

	"manhwarec/internal/domain"
	"manhwarec/internal/rank"
)

// Storage is an in-memory tag vector store using brute-force cosine similarity.
type Storage struct {
	mu        sync.RWMutex
	dimension int
	ids       []int
	vectors   [][]float64
}

// NewStorage returns an empty store.
func NewStorage() *Storage { return &Storage{} }

// Init resets the store for vectors of the given dimension.
func (s *Storage) Init(_ context.Context, dimension int) error {
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dimension = dimension
	s.ids = nil
	s.vectors = nil
	return nil
}

// Upsert appends vectors under the given catalog ids.
func (s *Storage) Upsert(_ context.Context, ids []int, vectors [][]float64) error {
	if len(ids) != len(vectors) {
		return errors.New("ids and vectors length mismatch")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range vectors {
		if len(v) != s.dimension {
			return errors.New("vector dimension mismatch")
		}
	}
	s.ids = append(s.ids, ids...)
	s.vectors = append(s.vectors, vectors...)
	return nil
}

// Search returns the topK stored vectors by descending cosine similarity.
// Ties keep insertion order.
func (s *Storage) Search(_ context.Context, vector []float64, topK int) ([]domain.SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if topK <= 0 {
		topK = 5
	}
	scores := make([]float64, len(s.vectors))
	for i := range s.vectors {
		scores[i] = rank.Cosine(s.vectors[i], vector)
	}
	idxs := rank.TopK(scores, topK, nil)
	results := make([]domain.SearchResult, 0, len(idxs))
	for _, j := range idxs {
		results = append(results, domain.SearchResult{Index: s.ids[j], Score: scores[j]})
	}
	return results, nil
}

// Clear drops every stored vector.
func (s *Storage) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids = nil
	s.vectors = nil
	return nil
}
