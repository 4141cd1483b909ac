// Package keyword provides a keyword search index over document chunks.
package keyword

import (
	"context"

	"github.com/hyperjump/fintax/internal/models"
)

// KeywordIndex defines keyword search operations over chunks.
type KeywordIndex interface {
	IndexChunks(ctx context.Context, chunks []*models.DocumentChunk) error
	Search(ctx context.Context, query string, limit int) ([]*KeywordResult, error)
	DocCount() (uint64, error)
	// Capabilities reports no scores: relevance is not a distance and is not exposed.
	Capabilities() models.Capabilities
	Close() error
}

// KeywordResult is a single keyword search hit, ranked by relevance; ID is the chunk ID.
type KeywordResult struct {
	ID string
}
