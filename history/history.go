// Package history persists past conversation turns and retrieves the ones
// nearest to a query embedding. Rows are append-only: a turn is written once
// after it completes and is never updated or deleted.
package history

import (
	"context"
	"errors"
)

// ErrDimensionMismatch is returned by Append when the exchange embedding does
// not match the store's configured dimensionality. The row is never written.
var ErrDimensionMismatch = errors.New("embedding dimension mismatch")

type Store interface {
	// Migrate prepares the backing schema idempotently. Callers treat a
	// returned error as fatal at startup.
	Migrate(ctx context.Context) error
	Append(ctx context.Context, exchange Exchange) error
	// QueryNearest returns at most limit exchanges belonging to userId,
	// ordered by ascending L2 distance to vector. Ties break by insertion
	// order.
	QueryNearest(ctx context.Context, userId string, vector []float32, limit int) ([]Exchange, error)
}
