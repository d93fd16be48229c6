package chunker

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prepsearch/internal/domain"
	"prepsearch/internal/segment"
)

// stubEmbedder returns a fixed vector per text, so chunk boundaries are
// fully determined by the test.
type stubEmbedder struct {
	vectors map[string][]float32
}

func (s *stubEmbedder) Name() string   { return "stub" }
func (s *stubEmbedder) Dimension() int { return 3 }

func (s *stubEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		if v, ok := s.vectors[t]; ok {
			out[i] = v
		} else {
			out[i] = []float32{1, 0, 0}
		}
	}
	return out, nil
}

func record(text string) domain.Record {
	return domain.Record{ID: "rec1", Title: "t", Text: text, Origin: "o"}
}

func TestChunkEmptyDocument(t *testing.T) {
	c := NewClusterChunker(&stubEmbedder{}, 500, 0.75)
	chunks, err := c.Chunk(context.Background(), record(""))
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestChunkMergesSimilarSentences(t *testing.T) {
	// All sentences embed identically, similarity 1 > 0.75.
	c := NewClusterChunker(&stubEmbedder{}, 500, 0.75)
	chunks, err := c.Chunk(context.Background(), record("One. Two. Three."))
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "One. Two. Three.", chunks[0].Text)
	assert.Equal(t, 0, chunks[0].Index)
	assert.Equal(t, len(chunks[0].Text), chunks[0].Size)
}

func TestChunkThresholdOneSplitsEverySentence(t *testing.T) {
	// Cosine similarity never exceeds 1.0, so every sentence becomes its
	// own chunk.
	c := NewClusterChunker(&stubEmbedder{}, 500, 1.0)
	chunks, err := c.Chunk(context.Background(), record("One. Two. Three."))
	require.NoError(t, err)
	require.Len(t, chunks, 3)
	assert.Equal(t, "One.", chunks[0].Text)
	assert.Equal(t, "Two.", chunks[1].Text)
	assert.Equal(t, "Three.", chunks[2].Text)
	for i, ch := range chunks {
		assert.Equal(t, i, ch.Index)
		assert.Equal(t, "rec1", ch.RecordID)
	}
}

func TestChunkThresholdAlwaysSatisfiedMergesUntilCap(t *testing.T) {
	emb := &stubEmbedder{vectors: map[string][]float32{
		"aaaa.": {1, 0, 0},
		"bbbb.": {0, 1, 0},
		"cccc.": {0, 0, 1},
	}}
	// Orthogonal vectors, similarity 0 > -1, so only the size cap splits.
	// First two sentences fill the cap exactly (5 + 5 <= 10); the third
	// starts a new chunk.
	c := NewClusterChunker(emb, 10, -1.0)
	chunks, err := c.Chunk(context.Background(), record("aaaa. bbbb. cccc."))
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Equal(t, "aaaa. bbbb.", chunks[0].Text)
	assert.Equal(t, "cccc.", chunks[1].Text)
}

func TestChunkOversizedSentenceIsNeverSplit(t *testing.T) {
	long := strings.Repeat("word ", 30) + "end."
	c := NewClusterChunker(&stubEmbedder{}, 20, -1.0)
	chunks, err := c.Chunk(context.Background(), record(long+" Short."))
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Equal(t, long, chunks[0].Text)
	assert.Greater(t, chunks[0].Size, 20)
	assert.Equal(t, "Short.", chunks[1].Text)
}

func TestChunkCoversEverySentenceExactlyOnce(t *testing.T) {
	text := "Alpha one. Beta two! Gamma three? Delta four. Epsilon five."
	emb := &stubEmbedder{vectors: map[string][]float32{
		"Alpha one.":   {1, 0, 0},
		"Beta two!":    {1, 0.1, 0},
		"Gamma three?": {0, 1, 0},
		"Delta four.":  {0, 1, 0.1},
		"Epsilon five.": {0, 0, 1},
	}}
	c := NewClusterChunker(emb, 60, 0.75)
	chunks, err := c.Chunk(context.Background(), record(text))
	require.NoError(t, err)
	require.NotEmpty(t, chunks)

	var parts []string
	for _, ch := range chunks {
		parts = append(parts, ch.Text)
	}
	// Joining all chunks with single spaces reproduces the sentence
	// sequence: nothing dropped, nothing duplicated.
	assert.Equal(t, strings.Join(segment.Split(text), " "), strings.Join(parts, " "))
}

func TestChunkDeterministic(t *testing.T) {
	c := NewClusterChunker(&stubEmbedder{}, 500, 0.75)
	first, err := c.Chunk(context.Background(), record("Sentence one. Sentence two. Sentence three."))
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := c.Chunk(context.Background(), record("Sentence one. Sentence two. Sentence three."))
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}
