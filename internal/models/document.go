// Package models defines core data structures for documents, queries, and search results.
package models

import (
	"errors"
	"fmt"
)

// Kind is the document content kind.
type Kind string

const (
	// KindText is a plain text document.
	KindText Kind = "text"
	// KindImage is an image document; Content holds the payload reference
	// and Description the indexable caption.
	KindImage Kind = "image"
)

// ErrUnsupportedKind is returned when a document carries a kind other than
// text or image.
var ErrUnsupportedKind = errors.New("unsupported document kind")

// Document represents a document indexed by the retrieval engine.
// Text may be empty for image documents.
type Document struct {
	ID          string `json:"id"`
	Text        string `json:"text"`
	Kind        Kind   `json:"kind"`
	Source      string `json:"source,omitempty"`
	Description string `json:"description,omitempty"`
	Content     string `json:"content,omitempty"`
}

// NewTextDocument creates a text document.
func NewTextDocument(id, text string) *Document {
	return &Document{ID: id, Text: text, Kind: KindText}
}

// NewImageDocument creates an image document. Content is the payload
// reference (path or URL); description is the indexable caption.
func NewImageDocument(id, content, description string) *Document {
	return &Document{ID: id, Kind: KindImage, Content: content, Description: description}
}

// Validate checks the document's tagged-variant rules. It must pass before
// the document enters any index.
func (d *Document) Validate() error {
	switch d.Kind {
	case KindText:
		return nil
	case KindImage:
		if d.Content == "" {
			return fmt.Errorf("image document %q has no content reference", d.ID)
		}
		return nil
	default:
		return fmt.Errorf("%w: %q (document %q)", ErrUnsupportedKind, d.Kind, d.ID)
	}
}
