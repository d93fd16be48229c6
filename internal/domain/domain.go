package domain

import (
	"context"
	"errors"
)

// Record is a raw unit of scraped discussion content. It is immutable once
// it passes validation; records that fail validation are dropped.
type Record struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Text      string `json:"text"`
	Origin    string `json:"origin"`
	Permalink string `json:"permalink,omitempty"`
	Role      string `json:"role,omitempty"`
	Company   string `json:"company,omitempty"`
}

// Chunk is a contiguous group of sentences from one record, treated as a
// single retrievable unit. Chunks are derived and never mutated.
type Chunk struct {
	RecordID string
	Index    int
	Text     string
	Size     int
}

// Entry is the persisted unit in the vector index.
type Entry struct {
	ID       string
	Vector   []float32
	Metadata map[string]any
}

// Match is a single ranked result from a similarity query.
type Match struct {
	ID       string
	Score    float32
	Metadata map[string]any
}

// Filter is a conjunction of exact-match metadata predicates applied at the
// index level before similarity ranking.
type Filter map[string]string

// Chunker splits a record body into retrievable chunks. Implementations may
// call out to an embedding provider, hence the context.
type Chunker interface {
	Chunk(ctx context.Context, record Record) ([]Chunk, error)
}

// Summarizer produces a brief summary of the provided text.
type Summarizer interface {
	Summarize(text string, maxSentences int) (string, error)
}

var (
	// ErrEmbedding indicates the embedding provider failed or returned a
	// malformed batch. The whole batch fails; there are no partial results.
	ErrEmbedding = errors.New("embedding failed")

	// ErrIndexUnavailable indicates the vector index is unreachable or
	// misconfigured. Retry policy belongs to the caller.
	ErrIndexUnavailable = errors.New("vector index unavailable")
)
