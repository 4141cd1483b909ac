// Package storage defines the persistence interface for the source document and its chunks.
package storage

import (
	"context"

	"github.com/hyperjump/fintax/internal/models"
)

// Storage defines document and chunk persistence operations.
type Storage interface {
	// Document operations
	CreateDocument(ctx context.Context, doc *models.Document) error
	GetDocument(ctx context.Context, id string) (*models.Document, error)

	// Chunk operations
	GetChunk(ctx context.Context, id string) (*models.DocumentChunk, error)
	GetChunksByDocumentID(ctx context.Context, docID string) ([]*models.DocumentChunk, error)
	BatchCreateChunks(ctx context.Context, chunks []*models.DocumentChunk) error

	// Stats
	CountDocuments(ctx context.Context) (int64, error)
	CountChunks(ctx context.Context) (int64, error)

	Close() error
}
