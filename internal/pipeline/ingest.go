package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"prepsearch/internal/domain"
	"prepsearch/internal/embedding"
	"prepsearch/internal/validate"
	"prepsearch/internal/vectorstore"
)

// Ingestor runs the batch write path: validate records, chunk them, embed
// the chunk texts, and upsert the resulting entries. Records are independent
// of each other, so callers may run several Ingestors over disjoint record
// sets concurrently.
type Ingestor struct {
	chunker       domain.Chunker
	embedder      embedding.Embedder
	store         vectorstore.Storage
	logger        *slog.Logger
	minTextLength int
}

// Stats reports the outcome of one ingestion run.
type Stats struct {
	Records  int
	Rejected int
	Chunks   int
}

// NewIngestor wires the write path together.
func NewIngestor(chunker domain.Chunker, embedder embedding.Embedder, store vectorstore.Storage, logger *slog.Logger, minTextLength int) *Ingestor {
	if logger == nil {
		logger = slog.Default()
	}
	if minTextLength <= 0 {
		minTextLength = validate.DefaultMinTextLength
	}
	return &Ingestor{
		chunker:       chunker,
		embedder:      embedder,
		store:         store,
		logger:        logger,
		minTextLength: minTextLength,
	}
}

// IngestRecords ensures the index exists, then processes each record in
// order. Invalid records are logged and dropped, never fatal; embedding and
// index failures abort the run and propagate to the caller.
func (ing *Ingestor) IngestRecords(ctx context.Context, records []domain.Record) (Stats, error) {
	var stats Stats
	if err := ing.store.Init(ctx, ing.embedder.Dimension()); err != nil {
		return stats, err
	}
	for _, rec := range records {
		stats.Records++
		if err := validate.Check(rec, ing.minTextLength); err != nil {
			ing.logger.Info("skipping record", "id", rec.ID, "reason", err)
			stats.Rejected++
			continue
		}
		chunks, err := ing.chunker.Chunk(ctx, rec)
		if err != nil {
			return stats, fmt.Errorf("chunk record %s: %w", rec.ID, err)
		}
		if len(chunks) == 0 {
			ing.logger.Info("record produced no chunks", "id", rec.ID)
			continue
		}
		texts := make([]string, len(chunks))
		for i, ch := range chunks {
			texts[i] = ch.Text
		}
		vectors, err := ing.embedder.Embed(ctx, texts)
		if err != nil {
			return stats, fmt.Errorf("embed chunks of record %s: %w", rec.ID, err)
		}
		entries := make([]domain.Entry, len(chunks))
		for i, ch := range chunks {
			entries[i] = domain.Entry{
				ID:       entryID(rec.ID, ch.Index),
				Vector:   vectors[i],
				Metadata: entryMetadata(rec, ch),
			}
		}
		n, err := ing.store.Upsert(ctx, entries)
		if err != nil {
			return stats, fmt.Errorf("upsert entries of record %s: %w", rec.ID, err)
		}
		ing.logger.Info("indexed record", "id", rec.ID, "chunks", n)
		stats.Chunks += n
	}
	return stats, nil
}

// entryID combines the parent record id, the chunk ordinal, and a short
// random suffix. The suffix means re-ingesting the same record appends new
// entries instead of overwriting old ones.
func entryID(recordID string, ordinal int) string {
	id := uuid.New()
	return fmt.Sprintf("%s_chunk_%d_%x", recordID, ordinal, id[:3])
}

// entryMetadata is stored verbatim for display-time use; the chunk text is
// never re-embedded from it.
func entryMetadata(rec domain.Record, ch domain.Chunk) map[string]any {
	return map[string]any{
		"source":      rec.ID,
		"chunk_index": ch.Index,
		"text":        ch.Text,
		"title":       rec.Title,
		"origin":      rec.Origin,
		"permalink":   rec.Permalink,
		"role":        rec.Role,
		"company":     rec.Company,
	}
}
