package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "hashing", cfg.Embedder.Type)
	assert.Equal(t, "memory", cfg.VectorStore.Type)
	assert.Equal(t, 500, cfg.Chunker.MaxChunkSize)
	assert.InDelta(t, 0.75, cfg.Chunker.SimilarityThreshold, 1e-9)
	assert.Equal(t, 384, cfg.Index.Dimension)
	assert.Equal(t, "interview_tips", cfg.Index.Name)
	assert.Equal(t, 50, cfg.Validation.MinTextLength)
	assert.Equal(t, 5, cfg.Query.TopK)
	assert.InDelta(t, 0.5, cfg.Query.ScoreThreshold, 1e-9)
}

func TestLoadAppliesDefaultsToPartialConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
embedder:
  type: openai
  openai:
    model: text-embedding-3-small
index:
  name: tips
vector_store:
  type: qdrant
  qdrant:
    url: http://localhost:6333
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "OPENAI_API_KEY", cfg.Embedder.OpenAI.APIKeyEnv)
	assert.Equal(t, 384, cfg.Embedder.OpenAI.Dimension)
	assert.Equal(t, 30, cfg.Embedder.OpenAI.TimeoutSecs)
	// Qdrant collection falls back to the index name.
	assert.Equal(t, "tips", cfg.VectorStore.Qdrant.Collection)
	assert.Equal(t, "Cosine", cfg.Index.Metric)
	assert.Equal(t, 500, cfg.Chunker.MaxChunkSize)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")
	cfg := defaultConfig()
	cfg.Index.Name = "custom"
	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "custom", loaded.Index.Name)
	assert.Equal(t, cfg.Chunker, loaded.Chunker)
}
