package store

import "context"

// Result is one scored document returned by a vector backend.
type Result struct {
	ID       string
	Content  string
	Metadata map[string]any
	Score    float32
}

// Provider is the vector backend seam. Implementations store pre-computed
// embeddings in named collections and search them by cosine similarity with
// optional exact-match metadata filtering.
type Provider interface {
	// Upsert adds or replaces a document.
	Upsert(ctx context.Context, collection, id string, vector []float32, metadata map[string]any) error

	// SearchWithFilter returns up to topK most similar documents matching
	// the filter. A nil filter matches everything.
	SearchWithFilter(ctx context.Context, collection string, vector []float32, topK int, filter map[string]any) ([]Result, error)

	// Count returns the number of documents in a collection. A collection
	// that does not exist counts as zero.
	Count(ctx context.Context, collection string) (int, error)

	// DeleteCollection drops a collection and all its documents. Dropping a
	// collection that does not exist is not an error.
	DeleteCollection(ctx context.Context, collection string) error

	// Name identifies the backend.
	Name() string

	Close() error
}
