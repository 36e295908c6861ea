// Package lexical provides the sparse (term-based) index adapter. The engine
// treats it as optional: when the backend cannot be opened the engine runs
// dense-only for its lifetime.
package lexical

import (
	"context"

	"github.com/Gauravmangate27/novasearch/internal/models"
)

// Result is a single lexical search hit. Doc carries the stored fields so
// callers do not need a separate lookup by ID.
type Result struct {
	Doc   *models.Document
	Score float64
}

// Index defines sparse index operations. Indexing the same document ID twice
// replaces the stored fields (idempotent upsert).
type Index interface {
	Index(ctx context.Context, doc *models.Document) error
	Search(ctx context.Context, query string, k int) ([]*Result, error)
	DocCount() (uint64, error)
	Close() error
}
