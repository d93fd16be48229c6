package vectorstore

import (
	"context"

	"prepsearch/internal/domain"
)

// QueryOptions shape a similarity query. Filter predicates are conjunctive
// exact matches on metadata; the score threshold is applied after ranking.
type QueryOptions struct {
	TopK           int
	Filter         domain.Filter
	ScoreThreshold float32
}

// Storage persists entries and answers filtered similarity queries against
// one named index. Init is idempotent: it creates the index with the given
// dimensionality when missing and leaves an existing one untouched.
type Storage interface {
	Init(ctx context.Context, dimension int) error
	Upsert(ctx context.Context, entries []domain.Entry) (int, error)
	Query(ctx context.Context, vector []float32, opts QueryOptions) ([]domain.Match, error)
}
