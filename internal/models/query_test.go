package models

import "testing"

func TestSearchQueryValidate(t *testing.T) {
	q := &SearchQuery{Query: "hello"}
	if err := q.Validate(); err != nil {
		t.Fatal(err)
	}
	if q.K != DefaultK {
		t.Errorf("expected default k=%d, got %d", DefaultK, q.K)
	}
	if !q.HybridEnabled() {
		t.Error("hybrid should default to true")
	}
}

func TestSearchQueryValidate_Empty(t *testing.T) {
	q := &SearchQuery{}
	if err := q.Validate(); err == nil {
		t.Error("empty query should fail validation")
	}
}

func TestSearchQueryValidate_ClampsK(t *testing.T) {
	q := &SearchQuery{Query: "x", K: 10000}
	if err := q.Validate(); err != nil {
		t.Fatal(err)
	}
	if q.K != MaxK {
		t.Errorf("expected k clamped to %d, got %d", MaxK, q.K)
	}
}

func TestSearchQueryHybridDisabled(t *testing.T) {
	hybrid := false
	q := &SearchQuery{Query: "x", Hybrid: &hybrid}
	if q.HybridEnabled() {
		t.Error("hybrid should be disabled when explicitly false")
	}
}
