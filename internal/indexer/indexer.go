package indexer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/avast/retry-go/v4"
	"go.uber.org/zap"

	"github.com/hyperjump/fintax/internal/embedding"
	"github.com/hyperjump/fintax/internal/keyword"
	"github.com/hyperjump/fintax/internal/models"
	"github.com/hyperjump/fintax/internal/storage"
	"github.com/hyperjump/fintax/internal/vector"
)

// Files created inside an index directory.
const (
	ChunksDBFile   = "chunks.db"
	VectorsFile    = "vectors.bin"
	KeywordDirName = "keyword.bleve"
)

// Index is a built, queryable index living in Dir. Vectors is nil when the
// builder was configured for keyword-only retrieval.
type Index struct {
	Dir      string
	Document *models.Document
	Storage  storage.Storage
	Vectors  vector.VectorIndex
	Keywords keyword.KeywordIndex
	Chunks   int
}

// Close releases every store handle.
func (idx *Index) Close() error {
	var errs []error
	if idx.Vectors != nil {
		errs = append(errs, idx.Vectors.Close())
	}
	if idx.Keywords != nil {
		errs = append(errs, idx.Keywords.Close())
	}
	if idx.Storage != nil {
		errs = append(errs, idx.Storage.Close())
	}
	return errors.Join(errs...)
}

// Destroy closes the index and removes its directory.
func (idx *Index) Destroy() error {
	closeErr := idx.Close()
	if err := os.RemoveAll(idx.Dir); err != nil {
		return errors.Join(closeErr, fmt.Errorf("remove index dir: %w", err))
	}
	return closeErr
}

// Builder builds an index from the source document.
type Builder struct {
	embedder embedding.Embedder
	chunker  *Chunker
	vectors  bool
	logger   *zap.Logger
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithLogger sets the logger for build progress.
func WithLogger(l *zap.Logger) BuilderOption {
	return func(b *Builder) { b.logger = l }
}

// WithoutVectors skips embedding and the vector index; only the keyword index is built.
func WithoutVectors() BuilderOption {
	return func(b *Builder) { b.vectors = false }
}

// NewBuilder creates a builder embedding chunks of chunkSize characters with embedder.
func NewBuilder(embedder embedding.Embedder, chunkSize int, opts ...BuilderOption) *Builder {
	b := &Builder{
		embedder: embedder,
		chunker:  NewChunker(chunkSize),
		vectors:  true,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build wipes indexDir, then reads, splits, embeds, and stores the source
// document in it. A missing source file is treated as empty. On any failure the
// directory is removed and no index is returned; an empty document fails with
// models.ErrNoContent and one that is not valid UTF-8 with models.ErrInvalidEncoding.
func (b *Builder) Build(ctx context.Context, sourcePath, indexDir string) (*Index, error) {
	if err := os.RemoveAll(indexDir); err != nil {
		return nil, fmt.Errorf("remove previous index: %w", err)
	}
	b.logger.Debug("removed previous index directory", zap.String("dir", indexDir))

	doc, err := b.readSource(sourcePath)
	if err != nil {
		return nil, err
	}
	chunks, err := b.chunker.Chunk(doc)
	if err != nil {
		b.logger.Error("no content found in source document", zap.String("source", sourcePath))
		return nil, err
	}

	if err := os.MkdirAll(indexDir, 0755); err != nil {
		return nil, fmt.Errorf("create index dir: %w", err)
	}
	idx := &Index{Dir: indexDir, Document: doc}
	if err := b.populate(ctx, idx, chunks); err != nil {
		if destroyErr := idx.Destroy(); destroyErr != nil {
			b.logger.Warn("failed to remove partial index", zap.String("dir", indexDir), zap.Error(destroyErr))
		}
		return nil, err
	}

	b.logger.Info("indexed chunks with section metadata",
		zap.Int("chunks", idx.Chunks),
		zap.String("source", doc.Source),
		zap.String("dir", indexDir),
	)
	return idx, nil
}

// BuildWithFallback builds into dirs[0], and on failure retries exactly once per
// remaining directory. Empty content is not retried.
func (b *Builder) BuildWithFallback(ctx context.Context, sourcePath string, dirs []string) (*Index, error) {
	if len(dirs) == 0 {
		return nil, errors.New("no index directory configured")
	}
	var (
		idx     *Index
		attempt int
	)
	err := retry.Do(
		func() error {
			dir := dirs[attempt]
			attempt++
			built, err := b.Build(ctx, sourcePath, dir)
			if err != nil {
				return err
			}
			idx = built
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(uint(len(dirs))),
		retry.Delay(0),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return !errors.Is(err, models.ErrNoContent) && !errors.Is(err, models.ErrInvalidEncoding)
		}),
		retry.OnRetry(func(n uint, err error) {
			if int(n)+1 >= len(dirs) {
				return
			}
			b.logger.Warn("index build failed, retrying with fallback directory",
				zap.String("fallback_dir", dirs[n+1]), zap.Error(err))
		}),
	)
	if err != nil {
		return nil, err
	}
	return idx, nil
}

// reloadVectors reads the persisted vectors back so the served index is the one
// on disk. A short or unreadable file fails the build.
func (b *Builder) reloadVectors(path string, want int) (vector.VectorIndex, error) {
	loaded, err := vector.NewMemoryIndex(b.embedder.Dimensions())
	if err != nil {
		return nil, fmt.Errorf("create vector index: %w", err)
	}
	if err := loaded.Load(path); err != nil {
		return nil, fmt.Errorf("reload vectors: %w", err)
	}
	if loaded.Size() != want {
		_ = loaded.Close()
		return nil, fmt.Errorf("reload vectors: got %d, want %d", loaded.Size(), want)
	}
	b.logger.Debug("vectors persisted and reloaded", zap.String("path", path), zap.Int("vectors", want))
	return loaded, nil
}

func (b *Builder) readSource(sourcePath string) (*models.Document, error) {
	absPath, err := filepath.Abs(sourcePath)
	if err != nil {
		return nil, fmt.Errorf("absolute path: %w", err)
	}
	content, err := os.ReadFile(absPath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		b.logger.Warn("source document not found, index will be empty", zap.String("source", absPath))
		content = nil
	case err != nil:
		return nil, fmt.Errorf("read source: %w", err)
	}
	if !utf8.Valid(content) {
		return nil, fmt.Errorf("%s: %w", absPath, models.ErrInvalidEncoding)
	}
	text := Preprocess(string(content))
	return &models.Document{
		ID:      DocumentID(absPath, text),
		Source:  filepath.Base(absPath),
		Path:    absPath,
		Content: text,
	}, nil
}

func (b *Builder) populate(ctx context.Context, idx *Index, chunks []*models.DocumentChunk) error {
	store, err := storage.NewSQLiteStorage(filepath.Join(idx.Dir, ChunksDBFile))
	if err != nil {
		return fmt.Errorf("open chunk storage: %w", err)
	}
	idx.Storage = store

	kw, err := keyword.NewBleveIndex(filepath.Join(idx.Dir, KeywordDirName))
	if err != nil {
		return fmt.Errorf("open keyword index: %w", err)
	}
	idx.Keywords = kw

	if b.vectors {
		texts := make([]string, len(chunks))
		for i, ch := range chunks {
			texts[i] = ch.Content
		}
		embeddings, err := b.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return fmt.Errorf("failed to generate embeddings: %w", err)
		}
		if len(embeddings) != len(chunks) {
			return fmt.Errorf("embedder returned %d embeddings for %d chunks", len(embeddings), len(chunks))
		}
		for i := range chunks {
			chunks[i].Embedding = embeddings[i]
		}
	}

	if err := store.CreateDocument(ctx, idx.Document); err != nil {
		return fmt.Errorf("failed to store document: %w", err)
	}
	if err := store.BatchCreateChunks(ctx, chunks); err != nil {
		return fmt.Errorf("failed to store chunks: %w", err)
	}
	if err := kw.IndexChunks(ctx, chunks); err != nil {
		return fmt.Errorf("failed to index keywords: %w", err)
	}

	if b.vectors {
		vecs, err := vector.NewMemoryIndex(b.embedder.Dimensions())
		if err != nil {
			return fmt.Errorf("create vector index: %w", err)
		}
		idx.Vectors = vecs
		ids := make([]string, len(chunks))
		embeddings := make([][]float32, len(chunks))
		for i, ch := range chunks {
			ids[i] = ch.ID
			embeddings[i] = ch.Embedding
		}
		if err := vecs.Add(ctx, ids, embeddings); err != nil {
			return fmt.Errorf("failed to index vectors: %w", err)
		}
		vectorsPath := filepath.Join(idx.Dir, VectorsFile)
		if err := vecs.Save(vectorsPath); err != nil {
			return fmt.Errorf("failed to persist vectors: %w", err)
		}
		loaded, err := b.reloadVectors(vectorsPath, len(chunks))
		if err != nil {
			return err
		}
		_ = vecs.Close()
		idx.Vectors = loaded
	}

	idx.Chunks = len(chunks)
	return nil
}
