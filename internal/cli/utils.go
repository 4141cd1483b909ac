// Package cli formats query and chat results for the command line.
package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/hyperjump/fintax/internal/models"
	"github.com/hyperjump/fintax/pkg/utils"
)

// OutputFormat is the format for result output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is the same JSON the HTTP API returns.
	OutputJSON OutputFormat = "json"
)

// previewLen bounds how much chunk text the text format prints.
const previewLen = 200

// WriteQueryResults writes the top chunks to w in the given format.
func WriteQueryResults(w io.Writer, response *models.QueryResponse, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, response)
	}
	fmt.Fprintf(w, "\nFound %d chunks for %q\n\n", len(response.TopChunks), response.Question)
	for i, result := range response.TopChunks {
		writeOneResult(w, i+1, result)
	}
	return nil
}

// WriteChatResponse writes the reply and its sources to w in the given format.
func WriteChatResponse(w io.Writer, response *models.ChatResponse, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, response)
	}
	fmt.Fprintf(w, "\n%s\n\n", response.Reply)
	if len(response.Sources) > 0 {
		fmt.Fprintln(w, "Sources:")
		for _, src := range response.Sources {
			fmt.Fprintf(w, "  - %s | %s | chunk %d\n", src.Source, src.Section, src.ChunkIndex)
		}
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeOneResult(w io.Writer, rank int, result *models.QueryResult) {
	fmt.Fprintf(w, "─────────────────────────────────────────────────────────\n")
	if result.Score != nil {
		fmt.Fprintf(w, "Rank: %d | Score: %.4f\n", rank, *result.Score)
	} else {
		fmt.Fprintf(w, "Rank: %d\n", rank)
	}
	fmt.Fprintf(w, "Section: %s (chunk %d) | Source: %s\n", result.Section, result.ChunkIndex, result.Source)
	fmt.Fprintf(w, "\n%s\n", utils.Truncate(result.Content, previewLen))
	fmt.Fprintln(w)
}
