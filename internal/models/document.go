// Package models defines core data structures for the source document, its chunks, and query results.
package models

import "time"

// Document is the single source document the index is built from.
type Document struct {
	ID        string    `json:"id" db:"id"`
	Source    string    `json:"source" db:"source"`
	Path      string    `json:"path" db:"path"`
	Content   string    `json:"content" db:"content"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Section is a labelled span of the document delimited by a "Section N." marker.
// Text is the unit that gets chunked: the trimmed label followed by the body.
type Section struct {
	Label string
	Text  string
}

// DocumentChunk is a fixed-size piece of one section, the unit of retrieval.
type DocumentChunk struct {
	ID         string    `json:"id" db:"id"`
	DocumentID string    `json:"document_id" db:"document_id"`
	Source     string    `json:"source" db:"source"`
	Section    string    `json:"section" db:"section"`
	ChunkIndex int       `json:"chunk_index" db:"chunk_index"`
	Content    string    `json:"content" db:"content"`
	Embedding  []float32 `json:"-" db:"-"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// Metadata returns the metadata attached to the chunk in the index.
func (c *DocumentChunk) Metadata() ChunkMetadata {
	return ChunkMetadata{
		Source:     c.Source,
		Section:    c.Section,
		ChunkIndex: c.ChunkIndex,
	}
}

// ChunkMetadata is the per-chunk metadata stored alongside each embedding.
type ChunkMetadata struct {
	Source     string `json:"source"`
	Section    string `json:"section"`
	ChunkIndex int    `json:"chunk_index"`
}

// Capabilities describes what a retrieval store reports alongside its hits.
type Capabilities struct {
	// Scores is true when the store yields a distance for every hit.
	Scores bool
}
