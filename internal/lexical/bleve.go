package lexical

import (
	"context"
	"fmt"
	"os"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"

	"github.com/Gauravmangate27/novasearch/internal/models"
)

// BleveIndex implements Index using Bleve.
type BleveIndex struct {
	index bleve.Index
}

// NewBleveIndex creates or opens a Bleve index at path. Opening is attempted
// once; callers that get an error should run without sparse retrieval rather
// than retry. If the index mapping changes in code, remove the index
// directory to force a rebuild.
func NewBleveIndex(path string) (*BleveIndex, error) {
	im := bleve.NewIndexMapping()

	docMapping := bleve.NewDocumentMapping()
	textFieldMapping := bleve.NewTextFieldMapping()
	// Standard analyzer (lowercase + tokenize, no stemming) so exact terms
	// match without stem surprises.
	textFieldMapping.Analyzer = standard.Name
	docMapping.AddFieldMappingsAt("text", textFieldMapping)
	docMapping.AddFieldMappingsAt("description", textFieldMapping)
	keywordFieldMapping := bleve.NewKeywordFieldMapping()
	docMapping.AddFieldMappingsAt("id", keywordFieldMapping)
	docMapping.AddFieldMappingsAt("kind", keywordFieldMapping)
	docMapping.AddFieldMappingsAt("source", keywordFieldMapping)
	docMapping.AddFieldMappingsAt("content", keywordFieldMapping)
	im.AddDocumentMapping("document", docMapping)
	im.DefaultType = "document"
	im.DefaultMapping = docMapping

	if _, err := os.Stat(path); err == nil {
		index, openErr := bleve.Open(path)
		if openErr != nil {
			return nil, fmt.Errorf("failed to open Bleve index: %w", openErr)
		}
		return &BleveIndex{index: index}, nil
	}

	index, err := bleve.New(path, im)
	if err != nil {
		return nil, fmt.Errorf("failed to create Bleve index: %w", err)
	}
	return &BleveIndex{index: index}, nil
}

// Index upserts doc by its ID. Re-indexing an existing ID replaces the stored
// fields; the index never holds two entries for one ID.
func (b *BleveIndex) Index(ctx context.Context, doc *models.Document) error {
	return b.index.Index(doc.ID, doc)
}

// Search runs a match query over the text and description fields and returns
// up to k hits, descending by relevance, with stored fields materialized
// back into Documents.
func (b *BleveIndex) Search(ctx context.Context, query string, k int) ([]*Result, error) {
	if k <= 0 {
		return nil, nil
	}
	textQuery := bleve.NewMatchQuery(query)
	textQuery.SetField("text")
	descQuery := bleve.NewMatchQuery(query)
	descQuery.SetField("description")
	req := bleve.NewSearchRequest(bleve.NewDisjunctionQuery(textQuery, descQuery))
	req.Size = k
	req.Fields = []string{"*"}

	results, err := b.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("Bleve search failed: %w", err)
	}
	out := make([]*Result, 0, len(results.Hits))
	for _, hit := range results.Hits {
		out = append(out, &Result{Doc: documentFromFields(hit.ID, hit.Fields), Score: hit.Score})
	}
	return out, nil
}

// documentFromFields rebuilds a Document from stored Bleve fields.
func documentFromFields(id string, fields map[string]interface{}) *models.Document {
	doc := &models.Document{ID: id}
	if v, ok := fields["text"].(string); ok {
		doc.Text = v
	}
	if v, ok := fields["kind"].(string); ok {
		doc.Kind = models.Kind(v)
	}
	if v, ok := fields["source"].(string); ok {
		doc.Source = v
	}
	if v, ok := fields["description"].(string); ok {
		doc.Description = v
	}
	if v, ok := fields["content"].(string); ok {
		doc.Content = v
	}
	return doc
}

// DocCount returns the number of indexed documents.
func (b *BleveIndex) DocCount() (uint64, error) {
	return b.index.DocCount()
}

// Close closes the underlying index.
func (b *BleveIndex) Close() error {
	return b.index.Close()
}
