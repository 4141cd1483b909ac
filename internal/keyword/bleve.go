package keyword

import (
	"context"
	"fmt"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/hyperjump/fintax/internal/models"
)

// BleveIndex implements KeywordIndex using Bleve.
type BleveIndex struct {
	index bleve.Index
}

// chunkDoc is the shape stored per chunk.
type chunkDoc struct {
	Content string `json:"content"`
	Section string `json:"section"`
	Source  string `json:"source"`
}

// NewBleveIndex creates a fresh Bleve index at path. The path must not exist.
func NewBleveIndex(path string) (*BleveIndex, error) {
	im := bleve.NewIndexMapping()

	docMapping := bleve.NewDocumentMapping()
	textFieldMapping := bleve.NewTextFieldMapping()
	// Standard analyzer: lowercase and tokenize, no stemming, so "GSTR-1" style terms survive.
	textFieldMapping.Analyzer = standard.Name
	docMapping.AddFieldMappingsAt("content", textFieldMapping)
	docMapping.AddFieldMappingsAt("section", textFieldMapping)
	keywordFieldMapping := bleve.NewKeywordFieldMapping()
	docMapping.AddFieldMappingsAt("source", keywordFieldMapping)
	im.AddDocumentMapping("chunk", docMapping)
	im.DefaultType = "chunk"
	im.DefaultMapping = docMapping

	index, err := bleve.New(path, im)
	if err != nil {
		return nil, fmt.Errorf("failed to create Bleve index: %w", err)
	}
	return &BleveIndex{index: index}, nil
}

// Capabilities reports that hits carry no distance.
func (b *BleveIndex) Capabilities() models.Capabilities {
	return models.Capabilities{Scores: false}
}

// IndexChunks indexes all chunks in one batch, keyed by chunk ID.
func (b *BleveIndex) IndexChunks(ctx context.Context, chunks []*models.DocumentChunk) error {
	batch := b.index.NewBatch()
	for _, ch := range chunks {
		if err := batch.Index(ch.ID, chunkDoc{Content: ch.Content, Section: ch.Section, Source: ch.Source}); err != nil {
			return fmt.Errorf("failed to batch chunk %s: %w", ch.ID, err)
		}
	}
	if err := b.index.Batch(batch); err != nil {
		return fmt.Errorf("failed to index chunks: %w", err)
	}
	return nil
}

// Search runs a match query over content and section and returns up to limit chunk IDs.
func (b *BleveIndex) Search(ctx context.Context, query string, limit int) ([]*KeywordResult, error) {
	if limit <= 0 {
		return nil, nil
	}
	req := bleve.NewSearchRequest(bleve.NewMatchQuery(query))
	req.Size = limit
	results, err := b.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("Bleve search failed: %w", err)
	}
	out := make([]*KeywordResult, len(results.Hits))
	for i, hit := range results.Hits {
		out[i] = &KeywordResult{ID: hit.ID}
	}
	return out, nil
}

// DocCount returns the number of indexed chunks.
func (b *BleveIndex) DocCount() (uint64, error) {
	return b.index.DocCount()
}

// Close closes the index.
func (b *BleveIndex) Close() error {
	return b.index.Close()
}
