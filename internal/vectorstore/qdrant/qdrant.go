package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"prepsearch/internal/domain"
	"prepsearch/internal/vectorstore"
)

// Storage is a REST client to a Qdrant collection.
type Storage struct {
	url        string
	apiKey     string
	collection string
	metric     string
	logger     *slog.Logger
	client     *http.Client
}

// Config contains connection details for a Qdrant collection.
type Config struct {
	URL        string
	APIKey     string
	Collection string
	Metric     string
	Timeout    time.Duration
	Logger     *slog.Logger
}

// NewStorage creates a Qdrant-backed storage. It does not touch the network;
// the collection is created or checked on Init.
func NewStorage(cfg Config) *Storage {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	metric := cfg.Metric
	if metric == "" {
		metric = "Cosine"
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Storage{
		url:        strings.TrimRight(cfg.URL, "/"),
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
		metric:     metric,
		logger:     logger,
		client:     &http.Client{Timeout: timeout},
	}
}

// Init ensures the collection exists with the given dimensionality. An
// existing collection is left untouched; creation is last-writer-wins, which
// is acceptable since it is driven by deployment, not request traffic.
func (s *Storage) Init(ctx context.Context, dimension int) error {
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}
	exists, err := s.collectionExists(ctx)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	body := map[string]any{
		"vectors": map[string]any{
			"size":     dimension,
			"distance": s.metric,
		},
	}
	var rsp envelope[json.RawMessage]
	if err := s.do(ctx, http.MethodPut, s.collectionPath(), body, &rsp); err != nil {
		return err
	}
	if !strings.EqualFold(rsp.Status.State, "ok") {
		return fmt.Errorf("%w: create collection: %s", domain.ErrIndexUnavailable, rsp.Status.Error)
	}
	return nil
}

// Upsert writes entries as points. Qdrant point ids must be UUIDs or
// integers, so a UUID is derived stably from each entry id; the entry id
// itself is kept in the payload.
func (s *Storage) Upsert(ctx context.Context, entries []domain.Entry) (int, error) {
	if len(entries) == 0 {
		s.logger.Info("no entries to upsert", "collection", s.collection)
		return 0, nil
	}
	points := make([]map[string]any, len(entries))
	for i, e := range entries {
		payload := map[string]any{"entry_id": e.ID}
		for k, v := range e.Metadata {
			payload[k] = v
		}
		points[i] = map[string]any{
			"id":      uuid.NewSHA1(uuid.NameSpaceURL, []byte(e.ID)).String(),
			"vector":  e.Vector,
			"payload": payload,
		}
	}
	body := map[string]any{"points": points}
	var rsp envelope[json.RawMessage]
	if err := s.do(ctx, http.MethodPut, s.collectionPath()+"/points?wait=true", body, &rsp); err != nil {
		return 0, err
	}
	if !strings.EqualFold(rsp.Status.State, "ok") && rsp.Status.Error != "" {
		return 0, fmt.Errorf("%w: upsert: %s", domain.ErrIndexUnavailable, rsp.Status.Error)
	}
	return len(entries), nil
}

// Query runs a filtered similarity search. The score threshold is passed to
// Qdrant, which applies it after ranking.
func (s *Storage) Query(ctx context.Context, vector []float32, opts vectorstore.QueryOptions) ([]domain.Match, error) {
	topK := opts.TopK
	if topK <= 0 {
		topK = 5
	}
	body := map[string]any{
		"vector":       vector,
		"limit":        topK,
		"with_payload": true,
	}
	if opts.ScoreThreshold > 0 {
		body["score_threshold"] = opts.ScoreThreshold
	}
	if len(opts.Filter) > 0 {
		must := make([]map[string]any, 0, len(opts.Filter))
		for k, v := range opts.Filter {
			must = append(must, map[string]any{
				"key":   k,
				"match": map[string]any{"value": v},
			})
		}
		body["filter"] = map[string]any{"must": must}
	}
	var rsp envelope[[]pointResult]
	if err := s.do(ctx, http.MethodPost, s.collectionPath()+"/points/search", body, &rsp); err != nil {
		return nil, err
	}
	matches := make([]domain.Match, 0, len(rsp.Result))
	for _, p := range rsp.Result {
		id := p.ID
		if v, ok := p.Payload["entry_id"].(string); ok {
			id = v
		}
		matches = append(matches, domain.Match{
			ID:       id,
			Score:    float32(p.Score),
			Metadata: p.Payload,
		})
	}
	return matches, nil
}

func (s *Storage) collectionExists(ctx context.Context) (bool, error) {
	var rsp envelope[json.RawMessage]
	err := s.do(ctx, http.MethodGet, s.collectionPath(), nil, &rsp)
	if err != nil {
		if errors.Is(err, errNotFound) {
			return false, nil
		}
		return false, err
	}
	return strings.EqualFold(rsp.Status.State, "ok"), nil
}

func (s *Storage) collectionPath() string {
	return "/collections/" + url.PathEscape(s.collection)
}

var errNotFound = errors.New("not found")

func (s *Storage) do(ctx context.Context, method, path string, body any, out any) error {
	var buf io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		buf = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, s.url+path, buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}
	rsp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrIndexUnavailable, err)
	}
	defer rsp.Body.Close()
	payload, err := io.ReadAll(rsp.Body)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrIndexUnavailable, err)
	}
	if rsp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: qdrant %s %s", errNotFound, method, path)
	}
	if rsp.StatusCode >= 300 {
		return fmt.Errorf("%w: qdrant %s %s: http %d: %s", domain.ErrIndexUnavailable, method, path, rsp.StatusCode, string(payload))
	}
	if out != nil && len(payload) > 0 {
		if err := json.Unmarshal(payload, out); err != nil {
			return fmt.Errorf("%w: decode response: %v", domain.ErrIndexUnavailable, err)
		}
	}
	return nil
}
