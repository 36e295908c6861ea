package vector

import (
	"errors"
	"math"
	"path/filepath"
	"testing"
)

func TestFlatIndex_AddSearch(t *testing.T) {
	idx := NewFlatIndex()
	vecs := [][]float32{
		{1, 0, 0},
		{0.9, 0.1, 0},
		{0, 1, 0},
	}
	for i, v := range vecs {
		pos, err := idx.Add(v)
		if err != nil {
			t.Fatal(err)
		}
		if pos != i {
			t.Errorf("expected position %d, got %d", i, pos)
		}
	}
	if idx.Size() != 3 {
		t.Errorf("Size=%d", idx.Size())
	}
	if idx.Dimensions() != 3 {
		t.Errorf("Dimensions=%d", idx.Dimensions())
	}

	neighbors, err := idx.Search([]float32{1, 0, 0}, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(neighbors) != 2 {
		t.Fatalf("expected 2 neighbors, got %d", len(neighbors))
	}
	if neighbors[0].Position != 0 {
		t.Errorf("nearest should be position 0, got %d", neighbors[0].Position)
	}
	if neighbors[1].Position != 1 {
		t.Errorf("second should be position 1, got %d", neighbors[1].Position)
	}
	if neighbors[0].Distance > neighbors[1].Distance {
		t.Error("distances should be ascending")
	}
}

func TestFlatIndex_SearchCardinality(t *testing.T) {
	idx := NewFlatIndex()
	total := 7
	for i := 0; i < total; i++ {
		if _, err := idx.Add([]float32{float32(i), 1}); err != nil {
			t.Fatal(err)
		}
	}
	for k := 0; k <= total+3; k++ {
		neighbors, err := idx.Search([]float32{0, 1}, k)
		if err != nil {
			t.Fatal(err)
		}
		want := k
		if want > total {
			want = total
		}
		if want < 0 {
			want = 0
		}
		if len(neighbors) != want {
			t.Errorf("k=%d: expected %d neighbors, got %d", k, want, len(neighbors))
		}
		for _, n := range neighbors {
			sim := Similarity(n.Distance)
			if sim <= 0 || sim > 1 {
				t.Errorf("similarity %f out of (0,1]", sim)
			}
		}
	}
}

func TestFlatIndex_EmptySearch(t *testing.T) {
	idx := NewFlatIndex()
	neighbors, err := idx.Search([]float32{1, 2}, 5)
	if err != nil {
		t.Fatalf("empty index search should not error: %v", err)
	}
	if len(neighbors) != 0 {
		t.Errorf("expected empty result, got %d", len(neighbors))
	}
}

func TestFlatIndex_DimensionMismatch(t *testing.T) {
	idx := NewFlatIndex()
	if _, err := idx.Add([]float32{1, 2, 3}); err != nil {
		t.Fatal(err)
	}
	_, err := idx.Add([]float32{1, 2})
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
	if idx.Size() != 1 {
		t.Errorf("failed add must not grow the index, size=%d", idx.Size())
	}
	if _, err := idx.Search([]float32{1}, 1); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch on query, got %v", err)
	}
}

func TestFlatIndex_Initialize(t *testing.T) {
	idx := NewFlatIndex()
	if err := idx.Initialize(4); err != nil {
		t.Fatal(err)
	}
	// Re-binding an empty index is allowed.
	if err := idx.Initialize(8); err != nil {
		t.Fatal(err)
	}
	if _, err := idx.Add(make([]float32, 8)); err != nil {
		t.Fatal(err)
	}
	if err := idx.Initialize(8); err != nil {
		t.Fatalf("same-dimension reinitialize should succeed: %v", err)
	}
	if err := idx.Initialize(16); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestFlatIndex_Truncate(t *testing.T) {
	idx := NewFlatIndex()
	for i := 0; i < 3; i++ {
		if _, err := idx.Add([]float32{float32(i)}); err != nil {
			t.Fatal(err)
		}
	}
	idx.Truncate(2)
	if idx.Size() != 2 {
		t.Errorf("expected size 2 after truncate, got %d", idx.Size())
	}
	pos, err := idx.Add([]float32{9})
	if err != nil {
		t.Fatal(err)
	}
	if pos != 2 {
		t.Errorf("next position after truncate should be 2, got %d", pos)
	}
}

func TestFlatIndex_Replace(t *testing.T) {
	idx := NewFlatIndex()
	if _, err := idx.Add([]float32{1, 2}); err != nil {
		t.Fatal(err)
	}

	other := NewFlatIndex()
	vecs := [][]float32{{0, 0, 1}, {0, 1, 0}, {1, 0, 0}}
	for _, v := range vecs {
		if _, err := other.Add(v); err != nil {
			t.Fatal(err)
		}
	}

	idx.Replace(other)
	if idx.Size() != 3 || idx.Dimensions() != 3 {
		t.Fatalf("expected size 3 dim 3 after replace, got size=%d dim=%d", idx.Size(), idx.Dimensions())
	}
	neighbors, err := idx.Search([]float32{0, 1, 0}, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(neighbors) != 1 || neighbors[0].Position != 1 {
		t.Errorf("expected nearest position 1, got %+v", neighbors)
	}
}

func TestFlatIndex_SaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "dir", "index.bin")

	idx := NewFlatIndex()
	vecs := [][]float32{{0.1, 0.2}, {0.3, 0.4}, {0.5, 0.6}}
	for _, v := range vecs {
		if _, err := idx.Add(v); err != nil {
			t.Fatal(err)
		}
	}
	query := []float32{0.15, 0.25}
	before, err := idx.Search(query, 3)
	if err != nil {
		t.Fatal(err)
	}

	if err := idx.Save(path); err != nil {
		t.Fatal(err)
	}
	loaded := NewFlatIndex()
	if err := loaded.Load(path); err != nil {
		t.Fatal(err)
	}
	if loaded.Size() != idx.Size() || loaded.Dimensions() != idx.Dimensions() {
		t.Fatalf("loaded index shape mismatch: size=%d dim=%d", loaded.Size(), loaded.Dimensions())
	}
	after, err := loaded.Search(query, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(before) != len(after) {
		t.Fatalf("result count changed across reload: %d vs %d", len(before), len(after))
	}
	for i := range before {
		if before[i].Position != after[i].Position {
			t.Errorf("position %d changed: %d vs %d", i, before[i].Position, after[i].Position)
		}
		if math.Abs(before[i].Distance-after[i].Distance) > 1e-6 {
			t.Errorf("distance %d changed: %f vs %f", i, before[i].Distance, after[i].Distance)
		}
	}
}

func TestFlatIndex_SaveLoadEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.bin")
	idx := NewFlatIndex()
	if err := idx.Save(path); err != nil {
		t.Fatal(err)
	}
	loaded := NewFlatIndex()
	if err := loaded.Load(path); err != nil {
		t.Fatal(err)
	}
	if loaded.Size() != 0 {
		t.Errorf("expected empty index, got %d vectors", loaded.Size())
	}
	neighbors, err := loaded.Search([]float32{}, 5)
	if err != nil {
		t.Fatalf("search on reloaded empty index: %v", err)
	}
	if len(neighbors) != 0 {
		t.Errorf("expected empty result, got %d", len(neighbors))
	}
}

func TestSimilarityRange(t *testing.T) {
	if s := Similarity(0); s != 1 {
		t.Errorf("Similarity(0)=%f, want 1", s)
	}
	prev := 2.0
	for _, d := range []float64{0, 0.5, 1, 10, 1e6} {
		s := Similarity(d)
		if s <= 0 || s > 1 {
			t.Errorf("Similarity(%f)=%f out of (0,1]", d, s)
		}
		if s >= prev {
			t.Errorf("similarity should strictly decrease, got %f after %f", s, prev)
		}
		prev = s
	}
}

func TestSquaredL2(t *testing.T) {
	d := SquaredL2([]float32{1, 2}, []float32{4, 6})
	if math.Abs(d-25) > 1e-9 {
		t.Errorf("SquaredL2=%f, want 25", d)
	}
	if !math.IsInf(SquaredL2([]float32{1}, []float32{1, 2}), 1) {
		t.Error("mismatched lengths should yield +Inf")
	}
}

func TestL2Norm(t *testing.T) {
	if n := L2Norm([]float32{3, 4}); math.Abs(n-5) > 1e-9 {
		t.Errorf("L2Norm=%f, want 5", n)
	}
	if n := L2Norm(nil); n != 0 {
		t.Errorf("L2Norm(nil)=%f, want 0", n)
	}
}
