// Package config provides configuration loading and structs for the fintax server.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Retrieval modes.
const (
	ModeSemantic = "semantic"
	ModeKeyword  = "keyword"
)

// Embedding providers.
const (
	ProviderONNX   = "onnx"
	ProviderOpenAI = "openai"
	ProviderHash   = "hash"
)

// Config holds all configuration for the application.
type Config struct {
	Debug     bool            `yaml:"debug" env:"DEBUG"`
	Server    ServerConfig    `yaml:"server"`
	Source    SourceConfig    `yaml:"source"`
	Index     IndexConfig     `yaml:"index"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	LLM       LLMConfig       `yaml:"llm"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host               string   `yaml:"host" env:"HOST"`
	Port               int      `yaml:"port" env:"PORT"`
	CORSAllowedOrigins []string `yaml:"cors_allowed_origins" env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
	// LandingTemplate overrides the embedded landing page.
	LandingTemplate string `yaml:"landing_template" env:"LANDING_TEMPLATE"`
}

// SourceConfig points at the document the index is built from.
type SourceConfig struct {
	File string `yaml:"file" env:"SAMPLE_FILE"`
}

// IndexConfig holds the persisted index locations and chunking settings.
type IndexConfig struct {
	Path         string `yaml:"path" env:"INDEX_PATH"`
	FallbackPath string `yaml:"fallback_path" env:"INDEX_FALLBACK_PATH"`
	ChunkSize    int    `yaml:"chunk_size" env:"CHUNK_SIZE"`
}

// Dirs returns the primary index directory followed by the fallback.
func (c *IndexConfig) Dirs() []string {
	return []string{c.Path, c.FallbackPath}
}

// RetrievalConfig holds retrieval settings.
type RetrievalConfig struct {
	TopK int    `yaml:"top_k" env:"TOP_K"`
	Mode string `yaml:"mode" env:"RETRIEVAL_MODE"`
}

// EmbeddingConfig holds embedder settings for every provider.
type EmbeddingConfig struct {
	Provider  string `yaml:"provider" env:"EMBEDDING_PROVIDER"`
	ModelPath string `yaml:"model_path" env:"EMBEDDING_MODEL_PATH"`
	VocabPath string `yaml:"vocab_path" env:"EMBEDDING_VOCAB_PATH"`
	// LibraryPath overrides the onnxruntime shared library location.
	LibraryPath string `yaml:"library_path" env:"ONNXRUNTIME_LIB"`
	Model       string `yaml:"model" env:"EMBEDDING_MODEL"`
	BaseURL     string `yaml:"base_url" env:"EMBEDDING_BASE_URL"`
	APIKey      string `yaml:"-" env:"EMBEDDING_API_KEY"`
	Dimensions  int    `yaml:"dimensions" env:"EMBEDDING_DIMENSIONS"`
	MaxTokens   int    `yaml:"max_tokens" env:"EMBEDDING_MAX_TOKENS"`
	CacheSize   int    `yaml:"cache_size" env:"EMBEDDING_CACHE_SIZE"`
}

// LLMConfig holds the chat-completion endpoint settings.
type LLMConfig struct {
	APIKey         string `yaml:"-" env:"OPENROUTER_API_KEY"`
	Model          string `yaml:"model" env:"OPENROUTER_MODEL"`
	Provider       string `yaml:"provider" env:"OPENROUTER_PROVIDER"`
	BaseURL        string `yaml:"base_url" env:"OPENROUTER_BASE_URL"`
	RequestTimeout int    `yaml:"request_timeout" env:"REQUEST_TIMEOUT"` // seconds
}

// Timeout returns the outbound request timeout.
func (c *LLMConfig) Timeout() time.Duration {
	return time.Duration(c.RequestTimeout) * time.Second
}

// LoadDotEnv loads variables from a .env file without overriding the ones
// already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// Load builds the configuration. When path is non-empty the YAML file is read
// first and its "./" paths are resolved relative to the file. Environment
// variables override file values, then defaults fill whatever is still unset.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}

		configDir := filepath.Dir(path)
		cfg.Source.File = expandPath(cfg.Source.File, configDir)
		cfg.Index.Path = expandPath(cfg.Index.Path, configDir)
		cfg.Index.FallbackPath = expandPath(cfg.Index.FallbackPath, configDir)
		cfg.Embedding.ModelPath = expandPath(cfg.Embedding.ModelPath, configDir)
		cfg.Embedding.VocabPath = expandPath(cfg.Embedding.VocabPath, configDir)
		cfg.Server.LandingTemplate = expandPath(cfg.Server.LandingTemplate, configDir)
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects values ApplyDefaults cannot repair.
func (c *Config) Validate() error {
	switch c.Retrieval.Mode {
	case ModeSemantic, ModeKeyword:
	default:
		return fmt.Errorf("invalid retrieval mode %q", c.Retrieval.Mode)
	}
	switch c.Embedding.Provider {
	case ProviderONNX, ProviderOpenAI, ProviderHash:
	default:
		return fmt.Errorf("invalid embedding provider %q", c.Embedding.Provider)
	}
	if c.Index.ChunkSize < 0 {
		return fmt.Errorf("chunk size must be positive, got %d", c.Index.ChunkSize)
	}
	if c.Retrieval.TopK < 0 {
		return fmt.Errorf("top_k must be positive, got %d", c.Retrieval.TopK)
	}
	if c.Index.Path == c.Index.FallbackPath {
		return errors.New("index path and fallback path must differ")
	}
	return nil
}

// expandPath resolves "./" paths relative to configDir. Other paths are returned unchanged.
func expandPath(path string, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	return path
}
