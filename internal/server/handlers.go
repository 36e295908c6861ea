package server

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/Gauravmangate27/novasearch/internal/models"
)

// IndexRequest is the request body for batch document indexing.
type IndexRequest struct {
	Documents []*models.Document `json:"documents"`
}

// IndexResponse reports the outcome of a batch indexing request.
type IndexResponse struct {
	Indexed int `json:"indexed"`
	Total   int `json:"total"`
}

// SnapshotRequest names the snapshot file for save/load.
type SnapshotRequest struct {
	Path string `json:"path"`
}

// HealthResponse is the health check response.
type HealthResponse struct {
	Status           string `json:"status"`
	IndexedDocuments int    `json:"indexed_documents"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var query models.SearchQuery
	if err := json.NewDecoder(r.Body).Decode(&query); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := query.Validate(); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.logger.Debug("search request",
		zap.String("query", query.Query), zap.Int("k", query.K), zap.Bool("hybrid", query.HybridEnabled()))

	start := time.Now()
	results, err := s.engine.Search(r.Context(), query.Query, query.K, query.HybridEnabled())
	if err != nil {
		s.logger.Error("search failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if results == nil {
		results = []*models.SearchResult{}
	}
	s.respondJSON(w, http.StatusOK, &models.SearchResponse{
		Query:        query.Query,
		Results:      results,
		TotalResults: len(results),
		QueryTime:    time.Since(start).Milliseconds(),
	})
}

func (s *Server) handleIndexDocuments(w http.ResponseWriter, r *http.Request) {
	var req IndexRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Documents) == 0 {
		s.respondError(w, http.StatusBadRequest, "no documents provided")
		return
	}
	added, err := s.engine.AddDocuments(r.Context(), req.Documents)
	if err != nil {
		s.logger.Error("indexing failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusCreated, &IndexResponse{Indexed: added, Total: len(req.Documents)})
}

func (s *Server) handleSaveIndex(w http.ResponseWriter, r *http.Request) {
	var req SnapshotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Path == "" {
		s.respondError(w, http.StatusBadRequest, "path is required")
		return
	}
	if err := s.engine.SaveIndex(r.Context(), req.Path); err != nil {
		s.logger.Error("snapshot save failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "saved", "path": req.Path})
}

func (s *Server) handleLoadIndex(w http.ResponseWriter, r *http.Request) {
	var req SnapshotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Path == "" {
		s.respondError(w, http.StatusBadRequest, "path is required")
		return
	}
	if err := s.engine.LoadIndex(r.Context(), req.Path); err != nil {
		s.logger.Error("snapshot load failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "loaded", "path": req.Path})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, &HealthResponse{
		Status:           "ok",
		IndexedDocuments: s.engine.Count(),
	})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", zap.Error(err))
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
