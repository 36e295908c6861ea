// Package search provides the hybrid retrieval engine: dense + sparse
// sub-searches and score fusion.
package search

import (
	"sort"

	"github.com/Gauravmangate27/novasearch/internal/models"
)

// ScoredDocument pairs a document with a raw sub-search score: a dense
// similarity in (0,1] or a sparse lexical relevance in [0,inf).
type ScoredDocument struct {
	Doc   *models.Document
	Score float64
}

// FusedResult holds a document and its combined score after fusion.
type FusedResult struct {
	Doc         *models.Document
	Score       float64
	DenseScore  float64
	SparseScore float64
}

// NormalizeSparseScores min-max normalizes lexical relevance scores to [0,1]
// for one query. Sparse relevance is unbounded and corpus-dependent, so it
// must be brought onto the dense similarity scale before the fixed fusion
// weights apply. When all scores are equal, nonzero scores map to 1.
func NormalizeSparseScores(results []ScoredDocument) []ScoredDocument {
	if len(results) == 0 {
		return nil
	}
	min, max := results[0].Score, results[0].Score
	for _, r := range results {
		if r.Score < min {
			min = r.Score
		}
		if r.Score > max {
			max = r.Score
		}
	}
	out := make([]ScoredDocument, len(results))
	for i, r := range results {
		score := 0.0
		switch {
		case max > min:
			score = (r.Score - min) / (max - min)
		case max > 0:
			score = 1.0
		}
		out[i] = ScoredDocument{Doc: r.Doc, Score: score}
	}
	return out
}

// Fuse merges dense and sparse result lists into one ranking. Per document
// ID, combined = denseWeight*similarity + sparseWeight*normalizedRelevance;
// contributions are additive when an ID appears in both lists. Sparse scores
// are normalized per query before weighting. Output is sorted descending by
// combined score with a stable sort, so ties keep first-seen order (dense
// list order first, then sparse), and truncated to k.
func Fuse(dense, sparse []ScoredDocument, denseWeight, sparseWeight float64, k int) []*FusedResult {
	sparse = NormalizeSparseScores(sparse)

	byID := make(map[string]*FusedResult)
	var order []*FusedResult
	for _, r := range dense {
		if existing, ok := byID[r.Doc.ID]; ok {
			existing.DenseScore += r.Score
			continue
		}
		fr := &FusedResult{Doc: r.Doc, DenseScore: r.Score}
		byID[r.Doc.ID] = fr
		order = append(order, fr)
	}
	for _, r := range sparse {
		if existing, ok := byID[r.Doc.ID]; ok {
			existing.SparseScore += r.Score
			continue
		}
		fr := &FusedResult{Doc: r.Doc, SparseScore: r.Score}
		byID[r.Doc.ID] = fr
		order = append(order, fr)
	}
	for _, fr := range order {
		fr.Score = denseWeight*fr.DenseScore + sparseWeight*fr.SparseScore
	}
	sort.SliceStable(order, func(i, j int) bool { return order[i].Score > order[j].Score })
	if k >= 0 && k < len(order) {
		order = order[:k]
	}
	return order
}
