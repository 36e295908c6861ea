// Package embedding provides the embedding-provider boundary: an Embedder
// interface, an OpenAI-compatible remote client, a deterministic mock for
// tests, and an LRU cache.
package embedding

import (
	"context"
	"fmt"
)

// Embedder produces fixed-dimension vector embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	// EmbedImage embeds an image document from its textual payload
	// reference or caption.
	EmbedImage(ctx context.Context, content string) ([]float32, error)
	Dimensions() int
	Close() error
}

// ProviderError wraps a failure from the embedding provider (auth, network,
// rate limit). The engine treats it as a per-document failure: log, skip,
// continue the batch.
type ProviderError struct {
	Op  string
	Err error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("embedding provider %s: %v", e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}
