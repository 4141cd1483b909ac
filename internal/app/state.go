// Package app owns the service state: the built index, the retriever, and the
// completion client. The state is built once before the listener opens and is
// read-only afterwards; rebuilding while queries are in flight is unsupported.
package app

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/hyperjump/fintax/internal/config"
	"github.com/hyperjump/fintax/internal/embedding"
	"github.com/hyperjump/fintax/internal/indexer"
	"github.com/hyperjump/fintax/internal/llm"
	"github.com/hyperjump/fintax/internal/models"
	"github.com/hyperjump/fintax/internal/search"
	"github.com/hyperjump/fintax/internal/storage"
)

// State is the initialized service.
type State struct {
	cfg       *config.Config
	logger    *zap.Logger
	embedder  embedding.Embedder
	index     *indexer.Index
	retriever *search.Retriever
	completer llm.Completer
}

// Option configures Open.
type Option func(*State)

// WithEmbedder replaces the configured embedder.
func WithEmbedder(e embedding.Embedder) Option {
	return func(s *State) { s.embedder = e }
}

// WithCompleter replaces the OpenRouter client.
func WithCompleter(c llm.Completer) Option {
	return func(s *State) { s.completer = c }
}

// Open builds the index from the configured source and wires the retriever and
// completion client. An empty source document is not fatal: the state is
// returned uninitialized and queries fail with models.ErrNotInitialized.
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger, opts ...Option) (*State, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &State{cfg: cfg, logger: logger}
	for _, opt := range opts {
		opt(s)
	}

	if s.embedder == nil {
		e, err := embedding.New(cfg.Embedding, logger)
		if err != nil {
			return nil, err
		}
		s.embedder = e
	}
	if s.completer == nil {
		s.completer = llm.NewClient(cfg.LLM)
	}

	builderOpts := []indexer.BuilderOption{indexer.WithLogger(logger)}
	if cfg.Retrieval.Mode == config.ModeKeyword {
		builderOpts = append(builderOpts, indexer.WithoutVectors())
	}
	builder := indexer.NewBuilder(s.embedder, cfg.Index.ChunkSize, builderOpts...)

	idx, err := builder.BuildWithFallback(ctx, cfg.Source.File, cfg.Index.Dirs())
	switch {
	case errors.Is(err, models.ErrNoContent):
		logger.Error("service started without an index", zap.String("source", cfg.Source.File))
		return s, nil
	case err != nil:
		_ = s.embedder.Close()
		return nil, fmt.Errorf("build index: %w", err)
	}
	s.index = idx

	var store search.Store
	if cfg.Retrieval.Mode == config.ModeKeyword {
		store = search.NewKeywordStore(idx.Keywords)
	} else {
		store = search.NewSemanticStore(s.embedder, idx.Vectors)
	}
	s.retriever = search.NewRetriever(store, idx.Storage, cfg.Retrieval.TopK)

	logger.Info("retriever ready",
		zap.String("mode", cfg.Retrieval.Mode),
		zap.String("results", s.retriever.Kind().String()),
		zap.Int("top_k", s.retriever.TopK()),
		zap.String("index_path", idx.Dir),
	)
	return s, nil
}

// Ready reports whether an index was built.
func (s *State) Ready() bool {
	return s != nil && s.retriever != nil
}

// Close destroys the index directory and releases the embedder.
func (s *State) Close() error {
	var errs []error
	if s.index != nil {
		if err := s.index.Destroy(); err != nil {
			errs = append(errs, err)
		} else {
			s.logger.Info("removed index directory", zap.String("dir", s.index.Dir))
		}
		s.index = nil
		s.retriever = nil
	}
	if s.embedder != nil {
		errs = append(errs, s.embedder.Close())
		s.embedder = nil
	}
	return errors.Join(errs...)
}

// Query returns the deduplicated top chunks for question.
func (s *State) Query(ctx context.Context, question string) (*models.QueryResponse, error) {
	req := models.QuestionRequest{Question: question}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	results, err := s.retriever.Query(ctx, req.Question)
	if err != nil {
		return nil, err
	}
	return &models.QueryResponse{Question: req.Question, TopChunks: results}, nil
}

// Chat answers question from the retrieved context. Sources list the metadata of
// every retrieved chunk, duplicates included.
func (s *State) Chat(ctx context.Context, question string) (*models.ChatResponse, error) {
	req := models.QuestionRequest{Question: question}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	results, err := s.retriever.Retrieve(ctx, req.Question)
	if err != nil {
		return nil, err
	}

	prompt, err := llm.BuildPrompt(llm.ComposeContext(results), req.Question)
	if err != nil {
		return nil, fmt.Errorf("build prompt: %w", err)
	}
	reply, err := s.completer.Complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	sources := make([]models.ChunkMetadata, len(results))
	for i, r := range results {
		sources[i] = r.Metadata()
	}
	return &models.ChatResponse{Question: req.Question, Reply: reply, Sources: sources}, nil
}

// Health reports index statistics, or an error status when no index was built.
func (s *State) Health(ctx context.Context) *models.HealthReport {
	if !s.Ready() {
		return &models.HealthReport{Status: models.StatusError, Message: "index not initialized"}
	}
	report := &models.HealthReport{
		Status:        models.StatusHealthy,
		Message:       "Service is running",
		RetrievalMode: s.cfg.Retrieval.Mode,
		IndexPath:     s.index.Dir,
	}
	store := s.index.Storage
	if doc, err := store.GetDocument(ctx, s.index.Document.ID); err == nil {
		report.Source = doc.Source
	} else {
		s.logger.Warn("failed to read indexed document", zap.Error(err))
	}
	if n, err := store.CountDocuments(ctx); err == nil {
		report.Documents = n
	} else {
		s.logger.Warn("failed to count documents", zap.Error(err))
	}
	if n, err := store.CountChunks(ctx); err == nil {
		report.Chunks = n
	} else {
		s.logger.Warn("failed to count chunks", zap.Error(err))
	}
	if chunks, err := store.GetChunksByDocumentID(ctx, s.index.Document.ID); err == nil {
		report.Sections = countSections(chunks)
	} else {
		s.logger.Warn("failed to list chunks", zap.Error(err))
	}
	if s.index.Vectors != nil {
		report.VectorIndexSize = s.index.Vectors.Size()
	}
	if n, err := s.index.Keywords.DocCount(); err == nil {
		report.KeywordDocs = n
	} else {
		s.logger.Warn("failed to count keyword entries", zap.Error(err))
	}
	if usage, err := storage.DiskUsageBytes(s.index.Dir); err == nil {
		report.DiskUsageBytes = &usage
	}
	return report
}

// countSections returns the number of distinct section labels among chunks.
func countSections(chunks []*models.DocumentChunk) int {
	seen := make(map[string]struct{}, len(chunks))
	for _, ch := range chunks {
		seen[ch.Section] = struct{}{}
	}
	return len(seen)
}
