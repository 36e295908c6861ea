// Package vector provides an exact nearest-neighbor index over fixed-dimension
// float vectors, with binary persistence.
package vector

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// ErrDimensionMismatch is returned when a vector's length does not match the
// index dimension.
var ErrDimensionMismatch = errors.New("vector dimension mismatch")

// Neighbor is a single nearest-neighbor hit: the vector's ordinal position
// and its squared Euclidean distance from the query.
type Neighbor struct {
	Position int
	Distance float64
}

// FlatIndex is a brute-force exact-search index over float32 vectors.
// Positions are ordinal: the i-th added vector has position i, forever.
// The dimension is bound by the first Add (or an explicit Initialize) and is
// immutable while the index holds vectors.
type FlatIndex struct {
	dim     int
	vectors [][]float32
	mu      sync.RWMutex
}

// NewFlatIndex creates an empty, uninitialized index. The dimension is fixed
// by the first vector added.
func NewFlatIndex() *FlatIndex {
	return &FlatIndex{}
}

// Initialize binds the index dimension. Calling it again with a different
// dimension fails once the index holds vectors.
func (f *FlatIndex) Initialize(dim int) error {
	if dim <= 0 {
		return fmt.Errorf("dimension must be positive, got %d", dim)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.dim != 0 && f.dim != dim && len(f.vectors) > 0 {
		return fmt.Errorf("%w: index has dimension %d with %d vectors, cannot reinitialize to %d",
			ErrDimensionMismatch, f.dim, len(f.vectors), dim)
	}
	f.dim = dim
	return nil
}

// Add appends a vector and returns its ordinal position.
// The first Add on an uninitialized index binds the dimension.
func (f *FlatIndex) Add(vec []float32) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.dim == 0 {
		if len(vec) == 0 {
			return 0, fmt.Errorf("%w: empty vector", ErrDimensionMismatch)
		}
		f.dim = len(vec)
	}
	if len(vec) != f.dim {
		return 0, fmt.Errorf("%w: got %d, expected %d", ErrDimensionMismatch, len(vec), f.dim)
	}
	cp := make([]float32, f.dim)
	copy(cp, vec)
	f.vectors = append(f.vectors, cp)
	return len(f.vectors) - 1, nil
}

// Search returns the min(k, count) nearest neighbors of query by squared
// Euclidean distance, ascending. An empty index or k <= 0 yields an empty
// result, not an error.
func (f *FlatIndex) Search(query []float32, k int) ([]Neighbor, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if k <= 0 || len(f.vectors) == 0 {
		return nil, nil
	}
	if len(query) != f.dim {
		return nil, fmt.Errorf("%w: query has %d, index expects %d", ErrDimensionMismatch, len(query), f.dim)
	}
	neighbors := make([]Neighbor, len(f.vectors))
	for i, vec := range f.vectors {
		neighbors[i] = Neighbor{Position: i, Distance: SquaredL2(query, vec)}
	}
	sort.SliceStable(neighbors, func(i, j int) bool { return neighbors[i].Distance < neighbors[j].Distance })
	if k < len(neighbors) {
		neighbors = neighbors[:k]
	}
	return neighbors, nil
}

// Truncate discards vectors at positions >= n. Used to roll back an orphan
// append and to reset before a restore.
func (f *FlatIndex) Truncate(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if n < 0 {
		n = 0
	}
	if n < len(f.vectors) {
		f.vectors = f.vectors[:n]
	}
}

// Size returns the number of vectors in the index.
func (f *FlatIndex) Size() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.vectors)
}

// Dimensions returns the bound dimension, or 0 when uninitialized.
func (f *FlatIndex) Dimensions() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.dim
}

// EncodeTo writes the index state to w. Format, little-endian:
// dimension (uint32), count (uint32), then count*dimension float32 values.
// Positions are implicit in write order.
func (f *FlatIndex) EncodeTo(w io.Writer) error {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if err := binary.Write(w, binary.LittleEndian, uint32(f.dim)); err != nil {
		return fmt.Errorf("write dimension: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(f.vectors))); err != nil {
		return fmt.Errorf("write count: %w", err)
	}
	for _, vec := range f.vectors {
		if err := binary.Write(w, binary.LittleEndian, vec); err != nil {
			return fmt.Errorf("write vector: %w", err)
		}
	}
	return nil
}

// DecodeFrom replaces the index contents with state read from r.
func (f *FlatIndex) DecodeFrom(r io.Reader) error {
	var dim, n uint32
	if err := binary.Read(r, binary.LittleEndian, &dim); err != nil {
		return fmt.Errorf("read dimension: %w", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return fmt.Errorf("read count: %w", err)
	}
	vectors := make([][]float32, 0, n)
	for i := uint32(0); i < n; i++ {
		vec := make([]float32, dim)
		if err := binary.Read(r, binary.LittleEndian, vec); err != nil {
			return fmt.Errorf("read vector %d: %w", i, err)
		}
		vectors = append(vectors, vec)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dim = int(dim)
	f.vectors = vectors
	return nil
}

// Replace takes over the contents of other. other must not be used again;
// the backing storage is shared, not copied.
func (f *FlatIndex) Replace(other *FlatIndex) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dim = other.dim
	f.vectors = other.vectors
}

// Save writes the index to path, creating parent directories as needed.
func (f *FlatIndex) Save(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create index dir: %w", err)
		}
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create index file: %w", err)
	}
	defer file.Close()
	return f.EncodeTo(file)
}

// Load replaces the index contents with state read from path.
func (f *FlatIndex) Load(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open index file: %w", err)
	}
	defer file.Close()
	return f.DecodeFrom(file)
}
