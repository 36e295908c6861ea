// Package metadata provides the append-only, positionally addressed document
// store that mirrors the vector index: the document at position i describes
// the vector at index position i.
package metadata

import (
	"context"
	"fmt"
	"sync"

	"github.com/Gauravmangate27/novasearch/internal/models"
)

// Store is an append-only ordered collection of documents. Positions are
// zero-based and monotonically increasing; there is no update or delete.
// Restore exists only for the snapshot load path.
type Store interface {
	Append(ctx context.Context, doc *models.Document) (int, error)
	Get(ctx context.Context, position int) (*models.Document, error)
	All(ctx context.Context) ([]*models.Document, error)
	Count(ctx context.Context) (int, error)
	Restore(ctx context.Context, docs []*models.Document) error
	Close() error
}

// MemoryStore is the in-memory Store implementation.
type MemoryStore struct {
	docs []*models.Document
	mu   sync.RWMutex
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Append adds doc at the next position and returns that position.
func (s *MemoryStore) Append(ctx context.Context, doc *models.Document) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs = append(s.docs, doc)
	return len(s.docs) - 1, nil
}

// Get returns the document at position.
func (s *MemoryStore) Get(ctx context.Context, position int) (*models.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if position < 0 || position >= len(s.docs) {
		return nil, fmt.Errorf("position %d out of range [0, %d)", position, len(s.docs))
	}
	return s.docs[position], nil
}

// All returns every document in position order.
func (s *MemoryStore) All(ctx context.Context) ([]*models.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Document, len(s.docs))
	copy(out, s.docs)
	return out, nil
}

// Count returns the number of stored documents.
func (s *MemoryStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs), nil
}

// Restore replaces the store contents with docs, in slice order.
func (s *MemoryStore) Restore(ctx context.Context, docs []*models.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs = make([]*models.Document, len(docs))
	copy(s.docs, docs)
	return nil
}

// Close is a no-op for MemoryStore.
func (s *MemoryStore) Close() error {
	return nil
}
