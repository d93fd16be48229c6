package retrieval

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"prepsearch/internal/domain"
	"prepsearch/internal/embedding"
	"prepsearch/internal/vectorstore"
)

const (
	DefaultTopK           = 5
	DefaultScoreThreshold = 0.5

	StatusSuccess = "success"
	StatusError   = "error"

	noMatchesMessage = "No relevant chunks found. Please ask an interview-related question."
)

// Request is a natural-language query with optional exact-match filters.
type Request struct {
	Query          string
	Role           string
	Company        string
	TopK           int
	ScoreThreshold float32
}

// Match is one ranked result shaped for display.
type Match struct {
	Title     string  `json:"title"`
	Origin    string  `json:"origin"`
	Text      string  `json:"text"`
	Permalink string  `json:"permalink,omitempty"`
	Score     float32 `json:"score"`
}

// Result distinguishes "success with matches" from "nothing relevant after
// filtering". Transport and index failures are returned as errors instead.
type Result struct {
	Status  string  `json:"status"`
	Message string  `json:"message,omitempty"`
	Matches []Match `json:"matches"`
}

// Service is the public read path over the vector index.
type Service struct {
	embedder embedding.Embedder
	store    vectorstore.Storage
	logger   *slog.Logger
}

// NewService wires the read path together.
func NewService(embedder embedding.Embedder, store vectorstore.Storage, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{embedder: embedder, store: store, logger: logger}
}

// Answer embeds the query, applies the role/company filter, and returns the
// thresholded top matches. An empty result set is a successful call with
// Status set to StatusError so callers can short-circuit a user-facing
// answer; it is never confused with an index failure.
func (s *Service) Answer(ctx context.Context, req Request) (*Result, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, fmt.Errorf("empty query")
	}
	topK := req.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}
	threshold := req.ScoreThreshold
	if threshold == 0 {
		threshold = DefaultScoreThreshold
	}

	vectors, err := s.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, err
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("%w: got %d vectors for query", domain.ErrEmbedding, len(vectors))
	}

	filter := domain.Filter{}
	if req.Role != "" {
		filter["role"] = req.Role
	}
	if req.Company != "" {
		filter["company"] = req.Company
	}

	matches, err := s.store.Query(ctx, vectors[0], vectorstore.QueryOptions{
		TopK:           topK,
		Filter:         filter,
		ScoreThreshold: threshold,
	})
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		s.logger.Info("no relevant chunks", "query", query, "role", req.Role, "company", req.Company)
		return &Result{Status: StatusError, Message: noMatchesMessage, Matches: []Match{}}, nil
	}

	out := make([]Match, 0, len(matches))
	for _, m := range matches {
		out = append(out, Match{
			Title:     metaString(m.Metadata, "title"),
			Origin:    metaString(m.Metadata, "origin"),
			Text:      metaString(m.Metadata, "text"),
			Permalink: metaString(m.Metadata, "permalink"),
			Score:     m.Score,
		})
	}
	return &Result{Status: StatusSuccess, Matches: out}, nil
}

func metaString(metadata map[string]any, key string) string {
	v, _ := metadata[key].(string)
	return v
}
