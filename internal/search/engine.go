package search

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Gauravmangate27/novasearch/internal/config"
	"github.com/Gauravmangate27/novasearch/internal/embedding"
	"github.com/Gauravmangate27/novasearch/internal/lexical"
	"github.com/Gauravmangate27/novasearch/internal/metadata"
	"github.com/Gauravmangate27/novasearch/internal/models"
	"github.com/Gauravmangate27/novasearch/internal/persist"
	"github.com/Gauravmangate27/novasearch/internal/vector"
)

// Engine is the hybrid retrieval engine. It keeps the vector index and the
// metadata store positionally aligned: the document appended at position i
// always describes the vector at index position i.
//
// Duplicate ID policy: re-adding a document with an existing ID appends a new
// vector and metadata row (no dedup), while the lexical index replaces its
// entry for that ID.
type Engine struct {
	embedder embedding.Embedder
	index    *vector.FlatIndex
	store    metadata.Store
	lexical  lexical.Index
	cfg      *config.SearchConfig
	logger   *zap.Logger
	// writeMu serializes all mutating calls so position assignment stays in
	// lockstep between the vector index and the metadata store.
	writeMu sync.Mutex
}

// NewEngine creates a retrieval engine. lex may be nil, in which case the
// engine runs dense-only (degraded mode) for its whole lifetime.
func NewEngine(
	embedder embedding.Embedder,
	index *vector.FlatIndex,
	store metadata.Store,
	lex lexical.Index,
	cfg *config.SearchConfig,
	logger *zap.Logger,
) *Engine {
	return &Engine{
		embedder: embedder,
		index:    index,
		store:    store,
		lexical:  lex,
		cfg:      cfg,
		logger:   logger,
	}
}

// SparseEnabled reports whether the lexical backend is available.
func (e *Engine) SparseEnabled() bool {
	return e.lexical != nil
}

// Count returns the number of indexed documents.
func (e *Engine) Count() int {
	return e.index.Size()
}

// AddDocuments indexes documents sequentially and returns the number added.
// Per-document failures (invalid kind, provider error, dimension mismatch)
// are logged and skipped; the batch continues. Documents without an ID get
// a generated UUID.
func (e *Engine) AddDocuments(ctx context.Context, docs []*models.Document) (int, error) {
	added := 0
	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return added, err
		}
		if doc.ID == "" {
			doc.ID = uuid.NewString()
		}
		if err := e.addDocument(ctx, doc); err != nil {
			e.logger.Error("failed to index document",
				zap.String("id", doc.ID), zap.Error(err))
			continue
		}
		added++
		e.logger.Info("indexed document",
			zap.String("id", doc.ID), zap.String("kind", string(doc.Kind)))
	}
	return added, nil
}

func (e *Engine) addDocument(ctx context.Context, doc *models.Document) error {
	if err := doc.Validate(); err != nil {
		return err
	}
	vec, err := e.embedDocument(ctx, doc)
	if err != nil {
		return err
	}

	e.writeMu.Lock()
	count, err := e.store.Count(ctx)
	if err != nil {
		e.writeMu.Unlock()
		return fmt.Errorf("metadata count failed: %w", err)
	}
	if count != e.index.Size() {
		e.writeMu.Unlock()
		return fmt.Errorf("index misaligned: %d vectors but %d metadata records", e.index.Size(), count)
	}
	pos, err := e.index.Add(vec)
	if err != nil {
		e.writeMu.Unlock()
		return err
	}
	metaPos, err := e.store.Append(ctx, doc)
	if err != nil {
		// Roll the orphan vector back so positions stay aligned.
		e.index.Truncate(pos)
		e.writeMu.Unlock()
		return fmt.Errorf("metadata append failed: %w", err)
	}
	if metaPos != pos {
		e.index.Truncate(pos)
		e.writeMu.Unlock()
		return fmt.Errorf("position mismatch: vector at %d, metadata at %d", pos, metaPos)
	}
	e.writeMu.Unlock()

	if e.lexical != nil {
		if err := e.lexical.Index(ctx, doc); err != nil {
			// The document remains reachable via dense search.
			e.logger.Warn("lexical index upsert failed",
				zap.String("id", doc.ID), zap.Error(err))
		}
	}
	return nil
}

func (e *Engine) embedDocument(ctx context.Context, doc *models.Document) ([]float32, error) {
	switch doc.Kind {
	case models.KindImage:
		return e.embedder.EmbedImage(ctx, doc.Content)
	default:
		return e.embedder.Embed(ctx, doc.Text)
	}
}

// Search runs retrieval for query and returns up to k ranked results.
// With hybrid true and the lexical backend available, dense and sparse
// sub-searches run concurrently and their rankings are fused; a failed
// sub-search is replaced with an empty list so the other can still serve.
// Otherwise results come from dense search alone.
func (e *Engine) Search(ctx context.Context, query string, k int, hybrid bool) ([]*models.SearchResult, error) {
	if k <= 0 {
		return nil, nil
	}
	if !hybrid || e.lexical == nil {
		dense, err := e.denseSearch(ctx, query, k)
		if err != nil {
			return nil, err
		}
		results := make([]*models.SearchResult, len(dense))
		for i, r := range dense {
			results[i] = &models.SearchResult{
				Document:      r.Doc,
				Score:         r.Score,
				RetrievalType: models.RetrievalDense,
			}
		}
		return results, nil
	}

	var (
		dense  []ScoredDocument
		sparse []ScoredDocument
		wg     sync.WaitGroup
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		results, err := e.denseSearch(ctx, query, k)
		if err != nil {
			e.logger.Error("dense search failed", zap.Error(err))
			return
		}
		dense = results
	}()
	go func() {
		defer wg.Done()
		results, err := e.sparseSearch(ctx, query, k)
		if err != nil {
			e.logger.Error("sparse search failed", zap.Error(err))
			return
		}
		sparse = results
	}()
	wg.Wait()

	fused := Fuse(dense, sparse, e.cfg.DenseWeight, e.cfg.SparseWeight, k)
	results := make([]*models.SearchResult, len(fused))
	for i, r := range fused {
		results[i] = &models.SearchResult{
			Document:      r.Doc,
			Score:         r.Score,
			RetrievalType: models.RetrievalHybrid,
		}
	}
	return results, nil
}

// denseSearch embeds the query and returns the nearest documents with
// similarity scores in (0,1].
func (e *Engine) denseSearch(ctx context.Context, query string, k int) ([]ScoredDocument, error) {
	if e.index.Size() == 0 {
		return nil, nil
	}
	queryVec, err := e.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query embedding failed: %w", err)
	}
	neighbors, err := e.index.Search(queryVec, k)
	if err != nil {
		return nil, err
	}
	results := make([]ScoredDocument, 0, len(neighbors))
	for _, n := range neighbors {
		doc, err := e.store.Get(ctx, n.Position)
		if err != nil {
			e.logger.Error("metadata missing for vector position",
				zap.Int("position", n.Position), zap.Error(err))
			continue
		}
		results = append(results, ScoredDocument{Doc: doc, Score: vector.Similarity(n.Distance)})
	}
	return results, nil
}

// sparseSearch queries the lexical backend.
func (e *Engine) sparseSearch(ctx context.Context, query string, k int) ([]ScoredDocument, error) {
	hits, err := e.lexical.Search(ctx, query, k)
	if err != nil {
		return nil, err
	}
	results := make([]ScoredDocument, len(hits))
	for i, hit := range hits {
		results[i] = ScoredDocument{Doc: hit.Doc, Score: hit.Score}
	}
	return results, nil
}

// SaveIndex writes a snapshot of the vector index and metadata to path,
// creating parent directories as needed.
func (e *Engine) SaveIndex(ctx context.Context, path string) error {
	docs, err := e.store.All(ctx)
	if err != nil {
		return fmt.Errorf("failed to read metadata: %w", err)
	}
	if err := persist.Save(path, e.index, docs); err != nil {
		return err
	}
	e.logger.Info("saved index snapshot",
		zap.String("path", path), zap.Int("documents", len(docs)))
	return nil
}

// LoadIndex replaces the vector index and metadata store contents from a
// snapshot at path. The snapshot is decoded into a scratch index first so a
// failed restore leaves the engine's index and store untouched.
func (e *Engine) LoadIndex(ctx context.Context, path string) error {
	e.writeMu.Lock()
	defer e.writeMu.Unlock()
	scratch := vector.NewFlatIndex()
	docs, err := persist.Load(path, scratch)
	if err != nil {
		return err
	}
	if err := e.store.Restore(ctx, docs); err != nil {
		return fmt.Errorf("failed to restore metadata: %w", err)
	}
	e.index.Replace(scratch)
	e.logger.Info("loaded index snapshot",
		zap.String("path", path), zap.Int("documents", len(docs)))
	return nil
}
