package embedding

import (
	"context"
	"hash/fnv"
	"math"

	"github.com/Gauravmangate27/novasearch/internal/vector"
)

// MockEmbedder is a deterministic embedder for tests: the same input always
// maps to the same unit-length vector, and inputs sharing words produce
// nearby vectors.
type MockEmbedder struct {
	dimensions int
}

// NewMockEmbedder returns a deterministic embedder of the given dimension.
func NewMockEmbedder(dimensions int) *MockEmbedder {
	if dimensions <= 0 {
		dimensions = 64
	}
	return &MockEmbedder{dimensions: dimensions}
}

// Embed returns a deterministic embedding derived from the text hash.
func (e *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	h := hashString(text)
	emb := make([]float32, e.dimensions)
	for i := 0; i < e.dimensions; i++ {
		emb[i] = float32(math.Sin(float64(h)*float64(i+1))*0.1 + 0.01)
	}
	// Blend in per-word components so texts sharing words land closer
	// together than unrelated texts.
	start := 0
	for pos := 0; pos <= len(text); pos++ {
		if pos == len(text) || text[pos] == ' ' {
			if pos > start {
				wh := hashString(text[start:pos])
				for i := 0; i < e.dimensions; i++ {
					emb[i] += float32(math.Cos(float64(wh)*float64(i+1))) * 0.5
				}
			}
			start = pos + 1
		}
	}
	normalize(emb)
	return emb, nil
}

// EmbedBatch calls Embed for each text.
func (e *MockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		emb, err := e.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		embeddings[i] = emb
	}
	return embeddings, nil
}

// EmbedImage embeds the image payload reference like text.
func (e *MockEmbedder) EmbedImage(ctx context.Context, content string) ([]float32, error) {
	return e.Embed(ctx, content)
}

// Dimensions returns the embedding dimension.
func (e *MockEmbedder) Dimensions() int {
	return e.dimensions
}

// Close is a no-op for MockEmbedder.
func (e *MockEmbedder) Close() error {
	return nil
}

func hashString(s string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	return h.Sum32()
}

func normalize(x []float32) {
	norm := vector.L2Norm(x)
	if norm == 0 {
		return
	}
	inv := float32(1 / norm)
	for i := range x {
		x[i] *= inv
	}
}
