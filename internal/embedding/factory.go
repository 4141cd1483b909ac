package embedding

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/hyperjump/fintax/internal/config"
)

// New creates the embedder selected by cfg.Provider. When the ONNX model cannot
// be loaded the hash embedder is used instead and a warning is logged.
func New(cfg config.EmbeddingConfig, logger *zap.Logger) (Embedder, error) {
	switch cfg.Provider {
	case config.ProviderHash:
		return NewHashEmbedder(cfg.Dimensions), nil
	case config.ProviderOpenAI:
		e, err := NewOpenAIEmbedder(cfg.APIKey, cfg.BaseURL, cfg.Model, cfg.Dimensions, cfg.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("failed to create OpenAI embedder: %w", err)
		}
		return e, nil
	case config.ProviderONNX, "":
		e, err := NewONNXEmbedder(ONNXOptions{
			ModelPath:   cfg.ModelPath,
			VocabPath:   vocabPath(cfg),
			LibraryPath: cfg.LibraryPath,
			Dimensions:  cfg.Dimensions,
			MaxTokens:   cfg.MaxTokens,
			CacheSize:   cfg.CacheSize,
		})
		if err != nil {
			logger.Warn("ONNX embedder unavailable, using hash embedder",
				zap.String("model_path", cfg.ModelPath), zap.Error(err))
			return NewHashEmbedder(cfg.Dimensions), nil
		}
		return e, nil
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s", cfg.Provider)
	}
}

// vocabPath returns the configured vocabulary, or vocab.txt next to the model when present.
func vocabPath(cfg config.EmbeddingConfig) string {
	if cfg.VocabPath != "" {
		return cfg.VocabPath
	}
	candidate := filepath.Join(filepath.Dir(cfg.ModelPath), "vocab.txt")
	if _, err := os.Stat(candidate); err == nil {
		return candidate
	}
	return ""
}
