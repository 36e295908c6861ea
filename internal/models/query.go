package models

import "fmt"

// SearchQuery represents a search request.
type SearchQuery struct {
	Query string `json:"query"`
	K     int    `json:"k,omitempty"`
	// Hybrid selects hybrid (dense + sparse) retrieval. Nil means true.
	Hybrid *bool `json:"hybrid,omitempty"`
}

// DefaultK is the number of results returned when the request does not set k.
const DefaultK = 5

// MaxK caps the number of results a single request may ask for.
const MaxK = 100

// Validate ensures the query has valid fields and sets defaults.
// Returns an error if the query text is empty; otherwise clamps k.
func (q *SearchQuery) Validate() error {
	if q.Query == "" {
		return fmt.Errorf("query cannot be empty")
	}
	if q.K <= 0 {
		q.K = DefaultK
	}
	if q.K > MaxK {
		q.K = MaxK
	}
	return nil
}

// HybridEnabled reports whether the request asked for hybrid retrieval.
// Defaults to true when unset.
func (q *SearchQuery) HybridEnabled() bool {
	if q.Hybrid != nil {
		return *q.Hybrid
	}
	return true
}
