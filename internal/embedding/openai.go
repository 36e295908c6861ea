package embedding

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/tmc/langchaingo/llms/openai"
)

// Config holds remote embedding provider settings. BaseURL accepts any
// OpenAI-compatible endpoint (OpenAI, TEI, local inference servers).
type Config struct {
	BaseURL    string
	Model      string
	APIKey     string
	Dimensions int
	CacheSize  int
}

// withEnvKey fills the API key from OPENAI_API_KEY when unset.
func (c Config) withEnvKey() Config {
	if c.APIKey == "" {
		c.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	return c
}

// OpenAIEmbedder generates embeddings through an OpenAI-compatible API.
// Results are cached by input text.
type OpenAIEmbedder struct {
	client     *openai.LLM
	dimensions int
	cache      *Cache
}

// NewOpenAIEmbedder creates a remote embedder from cfg.
func NewOpenAIEmbedder(cfg Config) (*OpenAIEmbedder, error) {
	cfg = cfg.withEnvKey()
	if cfg.Model == "" {
		return nil, fmt.Errorf("embedding model is required")
	}
	if cfg.Dimensions <= 0 {
		return nil, fmt.Errorf("embedding dimensions must be positive, got %d", cfg.Dimensions)
	}
	opts := []openai.Option{
		openai.WithToken(cfg.APIKey),
		openai.WithEmbeddingModel(cfg.Model),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}
	client, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding client: %w", err)
	}
	return &OpenAIEmbedder{
		client:     client,
		dimensions: cfg.Dimensions,
		cache:      NewCache(cfg.CacheSize),
	}, nil
}

// Embed returns the embedding for text, using the cache when available.
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if cached, ok := e.cache.Get(text); ok {
		return cached, nil
	}
	vecs, err := e.client.CreateEmbedding(ctx, []string{text})
	if err != nil {
		return nil, &ProviderError{Op: "embed", Err: err}
	}
	if len(vecs) != 1 {
		return nil, &ProviderError{Op: "embed", Err: fmt.Errorf("expected 1 embedding, got %d", len(vecs))}
	}
	e.cache.Set(text, vecs[0])
	return vecs[0], nil
}

// EmbedBatch embeds texts in one provider call, preserving input order.
// Cached texts are not re-requested.
func (e *OpenAIEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	var missing []string
	var missingIdx []int
	for i, text := range texts {
		if cached, ok := e.cache.Get(text); ok {
			out[i] = cached
			continue
		}
		missing = append(missing, text)
		missingIdx = append(missingIdx, i)
	}
	if len(missing) == 0 {
		return out, nil
	}
	vecs, err := e.client.CreateEmbedding(ctx, missing)
	if err != nil {
		return nil, &ProviderError{Op: "embed_batch", Err: err}
	}
	if len(vecs) != len(missing) {
		return nil, &ProviderError{Op: "embed_batch", Err: fmt.Errorf("expected %d embeddings, got %d", len(missing), len(vecs))}
	}
	for j, vec := range vecs {
		e.cache.Set(missing[j], vec)
		out[missingIdx[j]] = vec
	}
	return out, nil
}

// EmbedImage embeds the image's textual payload reference or caption. A
// vision-capable describe step can be layered in front by the caller; the
// provider boundary only sees text.
func (e *OpenAIEmbedder) EmbedImage(ctx context.Context, content string) ([]float32, error) {
	vec, err := e.Embed(ctx, content)
	if err != nil {
		var perr *ProviderError
		if errors.As(err, &perr) {
			return nil, &ProviderError{Op: "embed_image", Err: perr.Err}
		}
		return nil, err
	}
	return vec, nil
}

// Dimensions returns the configured embedding dimension.
func (e *OpenAIEmbedder) Dimensions() int {
	return e.dimensions
}

// Close is a no-op; the underlying HTTP client has no resources to release.
func (e *OpenAIEmbedder) Close() error {
	return nil
}
