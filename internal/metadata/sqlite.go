package metadata

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"github.com/Gauravmangate27/novasearch/internal/models"
)

// SQLiteStore is a durable Store backed by an append-only SQLite table keyed
// by ordinal position. It keeps metadata in step with the vector index across
// restarts without waiting for a snapshot.
type SQLiteStore struct {
	db   *sql.DB
	next int
	mu   sync.Mutex
}

// NewSQLiteStore opens or creates the database at dbPath and initializes the
// schema. Parent directories are created if they do not exist.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}
	schema := `
	CREATE TABLE IF NOT EXISTS document_records (
		position INTEGER PRIMARY KEY,
		id TEXT NOT NULL,
		kind TEXT NOT NULL,
		text TEXT NOT NULL DEFAULT '',
		source TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		content TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_document_records_id ON document_records(id);
	`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	var next int
	if err := db.QueryRow(`SELECT COALESCE(MAX(position) + 1, 0) FROM document_records`).Scan(&next); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to read record count: %w", err)
	}
	return &SQLiteStore{db: db, next: next}, nil
}

// Append inserts doc at the next position and returns that position.
func (s *SQLiteStore) Append(ctx context.Context, doc *models.Document) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pos := s.next
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO document_records (position, id, kind, text, source, description, content)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		pos, doc.ID, string(doc.Kind), doc.Text, doc.Source, doc.Description, doc.Content,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to append document %q: %w", doc.ID, err)
	}
	s.next++
	return pos, nil
}

// Get returns the document at position.
func (s *SQLiteStore) Get(ctx context.Context, position int) (*models.Document, error) {
	var doc models.Document
	var kind string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, kind, text, source, description, content
		 FROM document_records WHERE position = ?`, position,
	).Scan(&doc.ID, &kind, &doc.Text, &doc.Source, &doc.Description, &doc.Content)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("no document at position %d", position)
	}
	if err != nil {
		return nil, err
	}
	doc.Kind = models.Kind(kind)
	return &doc, nil
}

// All returns every document in position order.
func (s *SQLiteStore) All(ctx context.Context) ([]*models.Document, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, kind, text, source, description, content
		 FROM document_records ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []*models.Document
	for rows.Next() {
		var doc models.Document
		var kind string
		if err := rows.Scan(&doc.ID, &kind, &doc.Text, &doc.Source, &doc.Description, &doc.Content); err != nil {
			return nil, err
		}
		doc.Kind = models.Kind(kind)
		docs = append(docs, &doc)
	}
	return docs, rows.Err()
}

// Count returns the number of stored documents.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM document_records`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// Restore replaces the table contents with docs, assigning positions in
// slice order, inside a single transaction.
func (s *SQLiteStore) Restore(ctx context.Context, docs []*models.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM document_records`); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to clear records: %w", err)
	}
	for i, doc := range docs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO document_records (position, id, kind, text, source, description, content)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			i, doc.ID, string(doc.Kind), doc.Text, doc.Source, doc.Description, doc.Content,
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to restore document %q at position %d: %w", doc.ID, i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	s.next = len(docs)
	return nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
