package chunker

import (
	"context"
	"fmt"
	"math"
	"strings"

	"prepsearch/internal/domain"
	"prepsearch/internal/embedding"
	"prepsearch/internal/segment"
)

const (
	// DefaultMaxChunkSize is a soft cap on chunk character length. It is
	// only enforced at sentence-append boundaries; a single sentence longer
	// than the cap forms its own oversized chunk and is never truncated.
	DefaultMaxChunkSize = 500

	// DefaultSimilarityThreshold is the cosine similarity a sentence must
	// exceed against its predecessor to stay in the open chunk.
	DefaultSimilarityThreshold = 0.75
)

// ClusterChunker groups adjacent sentences into topically coherent chunks.
// Each sentence is compared to the immediately preceding sentence, not to a
// chunk centroid. The pairwise comparison is cheaper and reacts immediately
// to topic shifts, at the cost of smoothing nothing out within long chunks.
type ClusterChunker struct {
	embedder            embedding.Embedder
	maxChunkSize        int
	similarityThreshold float64
}

// NewClusterChunker creates a chunker over the given embedder. Non-positive
// maxChunkSize falls back to the default; the threshold is used as given so
// callers can force degenerate clustering (1.0 splits every sentence, -1.0
// merges until the size cap).
func NewClusterChunker(embedder embedding.Embedder, maxChunkSize int, similarityThreshold float64) *ClusterChunker {
	if maxChunkSize <= 0 {
		maxChunkSize = DefaultMaxChunkSize
	}
	return &ClusterChunker{
		embedder:            embedder,
		maxChunkSize:        maxChunkSize,
		similarityThreshold: similarityThreshold,
	}
}

// Chunk segments the record body into sentences, embeds them in one batch,
// and greedily clusters adjacent sentences. A record with no sentences
// yields no chunks. The returned chunks cover every sentence exactly once,
// in order.
func (c *ClusterChunker) Chunk(ctx context.Context, record domain.Record) ([]domain.Chunk, error) {
	sentences := segment.Split(record.Text)
	if len(sentences) == 0 {
		return nil, nil
	}
	vectors, err := c.embedder.Embed(ctx, sentences)
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(sentences) {
		return nil, fmt.Errorf("%w: got %d vectors for %d sentences", domain.ErrEmbedding, len(vectors), len(sentences))
	}

	var texts []string
	current := []string{sentences[0]}
	currentSize := len(sentences[0])
	for i := 1; i < len(sentences); i++ {
		sim := cosine(vectors[i], vectors[i-1])
		size := len(sentences[i])
		if sim > c.similarityThreshold && currentSize+size <= c.maxChunkSize {
			current = append(current, sentences[i])
			currentSize += size
			continue
		}
		texts = append(texts, strings.Join(current, " "))
		current = []string{sentences[i]}
		currentSize = size
	}
	if len(current) > 0 {
		texts = append(texts, strings.Join(current, " "))
	}

	chunks := make([]domain.Chunk, len(texts))
	for i, text := range texts {
		chunks[i] = domain.Chunk{
			RecordID: record.ID,
			Index:    i,
			Text:     text,
			Size:     len(text),
		}
	}
	return chunks, nil
}

// cosine returns the cosine similarity of a and b, or 0 when either vector
// has zero magnitude.
func cosine(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
