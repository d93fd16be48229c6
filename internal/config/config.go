package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"prepsearch/internal/chunker"
	"prepsearch/internal/embedding"
	"prepsearch/internal/retrieval"
	"prepsearch/internal/validate"
)

// OpenAIEmbedderConfig holds configuration for the OpenAI-compatible embedder.
type OpenAIEmbedderConfig struct {
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Model       string `yaml:"model"`
	Dimension   int    `yaml:"dimension"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// EmbedderConfig selects and configures the text embedder implementation.
type EmbedderConfig struct {
	Type   string                `yaml:"type"`
	OpenAI *OpenAIEmbedderConfig `yaml:"openai,omitempty"`
}

// ChunkerConfig configures the cluster-based chunker.
type ChunkerConfig struct {
	MaxChunkSize        int     `yaml:"max_chunk_size"`
	SimilarityThreshold float64 `yaml:"similarity_threshold"`
}

// IndexConfig names the vector index and fixes its geometry.
type IndexConfig struct {
	Name      string `yaml:"name"`
	Dimension int    `yaml:"dimension"`
	Metric    string `yaml:"metric"`
}

// QdrantConfig contains connection details for a Qdrant vector store.
type QdrantConfig struct {
	URL         string `yaml:"url"`
	APIKey      string `yaml:"api_key"`
	Collection  string `yaml:"collection"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// PostgresConfig contains connection details for a pgvector store.
type PostgresConfig struct {
	DSN   string `yaml:"dsn"`
	Table string `yaml:"table"`
}

// VectorStoreConfig selects and configures the vector store implementation.
type VectorStoreConfig struct {
	Type     string          `yaml:"type"`
	Qdrant   *QdrantConfig   `yaml:"qdrant,omitempty"`
	Postgres *PostgresConfig `yaml:"postgres,omitempty"`
}

// ValidationConfig configures the record validation filter.
type ValidationConfig struct {
	MinTextLength int `yaml:"min_text_length"`
}

// QueryConfig sets the retrieval defaults.
type QueryConfig struct {
	TopK           int     `yaml:"top_k"`
	ScoreThreshold float64 `yaml:"score_threshold"`
}

// SummarizerConfig configures the post-ingest summary.
type SummarizerConfig struct {
	MaxSentences int `yaml:"max_sentences"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Embedder    EmbedderConfig    `yaml:"embedder"`
	Chunker     ChunkerConfig     `yaml:"chunker"`
	Index       IndexConfig       `yaml:"index"`
	VectorStore VectorStoreConfig `yaml:"vector_store"`
	Validation  ValidationConfig  `yaml:"validation"`
	Query       QueryConfig       `yaml:"query"`
	Summarizer  SummarizerConfig  `yaml:"summarizer"`
}

// Load reads a config from a specified path. If the file does not exist,
// returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaultConfig(), nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyConfigDefaults(&cfg)
	return &cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/prepsearch/config.yaml.
// If neither exists, it writes defaults to the user path and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "prepsearch", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	return &AppConfig{
		Embedder: EmbedderConfig{Type: "hashing"},
		Chunker: ChunkerConfig{
			MaxChunkSize:        chunker.DefaultMaxChunkSize,
			SimilarityThreshold: chunker.DefaultSimilarityThreshold,
		},
		Index:       IndexConfig{Name: "interview_tips", Dimension: embedding.Dimension, Metric: "Cosine"},
		VectorStore: VectorStoreConfig{Type: "memory"},
		Validation:  ValidationConfig{MinTextLength: validate.DefaultMinTextLength},
		Query:       QueryConfig{TopK: retrieval.DefaultTopK, ScoreThreshold: retrieval.DefaultScoreThreshold},
		Summarizer:  SummarizerConfig{MaxSentences: 5},
	}
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.Chunker.MaxChunkSize == 0 {
		cfg.Chunker.MaxChunkSize = chunker.DefaultMaxChunkSize
	}
	if cfg.Chunker.SimilarityThreshold == 0 {
		cfg.Chunker.SimilarityThreshold = chunker.DefaultSimilarityThreshold
	}
	if cfg.Index.Name == "" {
		cfg.Index.Name = "interview_tips"
	}
	if cfg.Index.Dimension == 0 {
		cfg.Index.Dimension = embedding.Dimension
	}
	if cfg.Index.Metric == "" {
		cfg.Index.Metric = "Cosine"
	}
	if cfg.Validation.MinTextLength == 0 {
		cfg.Validation.MinTextLength = validate.DefaultMinTextLength
	}
	if cfg.Query.TopK == 0 {
		cfg.Query.TopK = retrieval.DefaultTopK
	}
	if cfg.Query.ScoreThreshold == 0 {
		cfg.Query.ScoreThreshold = retrieval.DefaultScoreThreshold
	}
	if cfg.Summarizer.MaxSentences == 0 {
		cfg.Summarizer.MaxSentences = 5
	}
	if cfg.Embedder.Type == "openai" && cfg.Embedder.OpenAI != nil {
		if cfg.Embedder.OpenAI.APIKeyEnv == "" {
			cfg.Embedder.OpenAI.APIKeyEnv = "OPENAI_API_KEY"
		}
		if cfg.Embedder.OpenAI.Dimension == 0 {
			cfg.Embedder.OpenAI.Dimension = cfg.Index.Dimension
		}
		if cfg.Embedder.OpenAI.TimeoutSecs == 0 {
			cfg.Embedder.OpenAI.TimeoutSecs = 30
		}
	}
	if cfg.VectorStore.Type == "qdrant" && cfg.VectorStore.Qdrant != nil {
		if cfg.VectorStore.Qdrant.Collection == "" {
			cfg.VectorStore.Qdrant.Collection = cfg.Index.Name
		}
	}
	if cfg.VectorStore.Type == "postgres" && cfg.VectorStore.Postgres != nil {
		if cfg.VectorStore.Postgres.Table == "" {
			cfg.VectorStore.Postgres.Table = cfg.Index.Name
		}
	}
}
