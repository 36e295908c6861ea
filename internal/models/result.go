package models

// RetrievalType identifies which retrieval path produced a search result.
type RetrievalType string

const (
	// RetrievalDense means the result came from vector search only.
	RetrievalDense RetrievalType = "dense"
	// RetrievalSparse means the result came from lexical search only.
	RetrievalSparse RetrievalType = "sparse"
	// RetrievalHybrid means the result came from fused dense + sparse search.
	RetrievalHybrid RetrievalType = "hybrid"
)

// SearchResult is a single search hit: the document plus its score and
// the retrieval path that produced it.
type SearchResult struct {
	Document      *Document     `json:"document"`
	Score         float64       `json:"score"`
	RetrievalType RetrievalType `json:"retrieval_type"`
}

// SearchResponse is the response for a search request.
type SearchResponse struct {
	Query        string          `json:"query"`
	Results      []*SearchResult `json:"results"`
	TotalResults int             `json:"total_results"`
	QueryTime    int64           `json:"execution_time_ms"`
}
