package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/Gauravmangate27/novasearch/internal/config"
	"github.com/Gauravmangate27/novasearch/internal/embedding"
	"github.com/Gauravmangate27/novasearch/internal/metadata"
	"github.com/Gauravmangate27/novasearch/internal/models"
	"github.com/Gauravmangate27/novasearch/internal/search"
	"github.com/Gauravmangate27/novasearch/internal/vector"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	engine := search.NewEngine(
		embedding.NewMockEmbedder(32),
		vector.NewFlatIndex(),
		metadata.NewMemoryStore(),
		nil,
		&config.SearchConfig{DefaultK: 5, DenseWeight: 0.6, SparseWeight: 0.4},
		zap.NewNop(),
	)
	return NewServer(engine, &config.ServerConfig{Host: "127.0.0.1", Port: 0}, zap.NewNop())
}

func postJSON(t *testing.T, handler http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHandleIndexAndSearch(t *testing.T) {
	srv := newTestServer(t)
	router := srv.Router()

	rec := postJSON(t, router, "/api/v1/documents", IndexRequest{Documents: []*models.Document{
		models.NewTextDocument("A", "python programming language"),
		models.NewTextDocument("B", "java programming language"),
	}})
	if rec.Code != http.StatusCreated {
		t.Fatalf("index status=%d body=%s", rec.Code, rec.Body.String())
	}
	var indexResp IndexResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &indexResp); err != nil {
		t.Fatal(err)
	}
	if indexResp.Indexed != 2 || indexResp.Total != 2 {
		t.Errorf("unexpected index response: %+v", indexResp)
	}

	rec = postJSON(t, router, "/api/v1/search", models.SearchQuery{Query: "python", K: 2})
	if rec.Code != http.StatusOK {
		t.Fatalf("search status=%d body=%s", rec.Code, rec.Body.String())
	}
	var searchResp models.SearchResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &searchResp); err != nil {
		t.Fatal(err)
	}
	if searchResp.TotalResults != 2 {
		t.Fatalf("expected 2 results, got %d", searchResp.TotalResults)
	}
	if searchResp.Results[0].Document.ID != "A" {
		t.Errorf("expected A first, got %q", searchResp.Results[0].Document.ID)
	}
}

func TestHandleSearch_Validation(t *testing.T) {
	srv := newTestServer(t)
	router := srv.Router()

	rec := postJSON(t, router, "/api/v1/search", models.SearchQuery{Query: ""})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty query should be rejected, status=%d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/search", bytes.NewReader([]byte("{not json")))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("malformed body should be rejected, status=%d", rec.Code)
	}
}

func TestHandleIndex_EmptyBatch(t *testing.T) {
	srv := newTestServer(t)
	rec := postJSON(t, srv.Router(), "/api/v1/documents", IndexRequest{})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty batch should be rejected, status=%d", rec.Code)
	}
}

func TestHandleHealth(t *testing.T) {
	srv := newTestServer(t)
	router := srv.Router()

	postJSON(t, router, "/api/v1/documents", IndexRequest{Documents: []*models.Document{
		models.NewTextDocument("A", "some text"),
	}})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("health status=%d", rec.Code)
	}
	var health HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &health); err != nil {
		t.Fatal(err)
	}
	if health.Status != "ok" || health.IndexedDocuments != 1 {
		t.Errorf("unexpected health response: %+v", health)
	}
}

func TestHandleSnapshotSaveLoad(t *testing.T) {
	srv := newTestServer(t)
	router := srv.Router()
	path := filepath.Join(t.TempDir(), "snap.nova")

	postJSON(t, router, "/api/v1/documents", IndexRequest{Documents: []*models.Document{
		models.NewTextDocument("A", "persistent document"),
	}})

	rec := postJSON(t, router, "/api/v1/index/save", SnapshotRequest{Path: path})
	if rec.Code != http.StatusOK {
		t.Fatalf("save status=%d body=%s", rec.Code, rec.Body.String())
	}

	other := newTestServer(t)
	otherRouter := other.Router()
	rec = postJSON(t, otherRouter, "/api/v1/index/load", SnapshotRequest{Path: path})
	if rec.Code != http.StatusOK {
		t.Fatalf("load status=%d body=%s", rec.Code, rec.Body.String())
	}

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	healthRec := httptest.NewRecorder()
	otherRouter.ServeHTTP(healthRec, req)
	var health HealthResponse
	if err := json.Unmarshal(healthRec.Body.Bytes(), &health); err != nil {
		t.Fatal(err)
	}
	if health.IndexedDocuments != 1 {
		t.Errorf("loaded instance should report 1 document, got %d", health.IndexedDocuments)
	}
}

func TestHandleSnapshot_PathRequired(t *testing.T) {
	srv := newTestServer(t)
	router := srv.Router()
	for _, path := range []string{"/api/v1/index/save", "/api/v1/index/load"} {
		rec := postJSON(t, router, path, SnapshotRequest{})
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s without path should be rejected, status=%d", path, rec.Code)
		}
	}
}
