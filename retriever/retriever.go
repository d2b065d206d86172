package retriever

import (
	"context"
	"fmt"

	"github.com/m-g-r/relay/embedder"
	"github.com/m-g-r/relay/history"
)

// Retriever embeds an inbound message and looks up the top-K most similar
// past exchanges for that sender only. Errors propagate to the caller; a
// failed lookup is not the same thing as an empty one.
type Retriever struct {
	options  Options
	embedder embedder.Embedder
	store    history.Store
}

func (r *Retriever) RetrieveContext(ctx context.Context, userId string, message string) ([]history.Exchange, error) {
	vector, err := r.embedder.Embed(ctx, message)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	exchanges, err := r.store.QueryNearest(ctx, userId, vector, r.options.TopK)
	if err != nil {
		return nil, fmt.Errorf("query nearest: %w", err)
	}

	return exchanges, nil
}

func New(embedder embedder.Embedder, store history.Store, opts ...Option) *Retriever {
	if embedder == nil {
		panic("embedder is required")
	}

	if store == nil {
		panic("store is required")
	}

	options := NewOptions(opts...)

	return &Retriever{
		options:  options,
		embedder: embedder,
		store:    store,
	}
}
