package memory

import (
	"context"
	"errors"
	"math"
	"sort"
	"sync"

	"prepsearch/internal/domain"
	"prepsearch/internal/vectorstore"
)

// Storage is an in-memory vector index using brute-force cosine similarity.
// Entries are keyed by id, so re-upserting an id overwrites it.
type Storage struct {
	mu        sync.RWMutex
	dimension int
	entries   map[string]domain.Entry
	order     []string
}

// NewStorage creates an empty in-memory index.
func NewStorage() *Storage {
	return &Storage{entries: make(map[string]domain.Entry)}
}

// Init records the index dimensionality. Calling it again with the same
// dimension is a no-op; existing entries are kept.
func (s *Storage) Init(ctx context.Context, dimension int) error {
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dimension != 0 && s.dimension != dimension {
		return errors.New("index already initialized with a different dimension")
	}
	s.dimension = dimension
	return nil
}

// Upsert writes entries independently by id and returns how many were written.
func (s *Storage) Upsert(ctx context.Context, entries []domain.Entry) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dimension == 0 {
		return 0, errors.New("index not initialized")
	}
	for _, e := range entries {
		if len(e.Vector) != s.dimension {
			return 0, errors.New("vector dimension mismatch")
		}
	}
	for _, e := range entries {
		if _, exists := s.entries[e.ID]; !exists {
			s.order = append(s.order, e.ID)
		}
		s.entries[e.ID] = e
	}
	return len(entries), nil
}

// Query ranks all entries matching the filter by cosine similarity, keeps
// the topK, and drops everything below the score threshold.
func (s *Storage) Query(ctx context.Context, vector []float32, opts vectorstore.QueryOptions) ([]domain.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	topK := opts.TopK
	if topK <= 0 {
		topK = 5
	}
	var matches []domain.Match
	for _, id := range s.order {
		e := s.entries[id]
		if !matchesFilter(e.Metadata, opts.Filter) {
			continue
		}
		matches = append(matches, domain.Match{
			ID:       e.ID,
			Score:    cosine(e.Vector, vector),
			Metadata: e.Metadata,
		})
	}
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	if topK < len(matches) {
		matches = matches[:topK]
	}
	out := matches[:0]
	for _, m := range matches {
		if m.Score >= opts.ScoreThreshold {
			out = append(out, m)
		}
	}
	return out, nil
}

// Len reports the number of stored entries.
func (s *Storage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func matchesFilter(metadata map[string]any, filter domain.Filter) bool {
	for k, want := range filter {
		got, ok := metadata[k].(string)
		if !ok || got != want {
			return false
		}
	}
	return true
}

func cosine(a, b []float32) float32 {
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
	return float32(dot / (math.Sqrt(na) * math.Sqrt(nb)))
}
