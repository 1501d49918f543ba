package vectorstore

import (
	"context"

	"manhwarec/internal/domain"
)

// Storage holds the per-title tag vectors and ranks them against a query.
// Vectors are keyed by catalog index.
type Storage interface {
	Init(ctx context.Context, dimension int) error
	Upsert(ctx context.Context, ids []int, vectors [][]float64) error
	Search(ctx context.Context, vector []float64, topK int) ([]domain.SearchResult, error)
	Clear(ctx context.Context) error
}
