// Package cli provides output formatting for the NovaSearch command line.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/Gauravmangate27/novasearch/internal/models"
)

// OutputFormat is the format for search result output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// WriteSearchResults writes search results to w in the given format.
func WriteSearchResults(w io.Writer, response *models.SearchResponse, format OutputFormat) error {
	switch format {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(response)
	default:
		writeSearchResultsText(w, response)
		return nil
	}
}

func writeSearchResultsText(w io.Writer, response *models.SearchResponse) {
	fmt.Fprintf(w, "\nFound %d results in %dms\n\n", response.TotalResults, response.QueryTime)
	for i, result := range response.Results {
		doc := result.Document
		fmt.Fprintf(w, "%2d. [%s] %s (score %.4f, %s)\n", i+1, doc.Kind, doc.ID, result.Score, result.RetrievalType)
		if snippet := Snippet(doc.Text, 120); snippet != "" {
			fmt.Fprintf(w, "    %s\n", snippet)
		} else if doc.Description != "" {
			fmt.Fprintf(w, "    %s\n", Snippet(doc.Description, 120))
		}
		if doc.Source != "" {
			fmt.Fprintf(w, "    source: %s\n", doc.Source)
		}
	}
}

// Snippet collapses whitespace and truncates s to max runes with an ellipsis.
func Snippet(s string, max int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
