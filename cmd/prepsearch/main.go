package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"prepsearch/internal/chunker"
	"prepsearch/internal/config"
	"prepsearch/internal/domain"
	"prepsearch/internal/embedding"
	"prepsearch/internal/embedding/hashing"
	"prepsearch/internal/embedding/openai"
	"prepsearch/internal/pipeline"
	"prepsearch/internal/retrieval"
	"prepsearch/internal/summarizer"
	"prepsearch/internal/tui"
	"prepsearch/internal/validate"
	"prepsearch/internal/vectorstore"
	"prepsearch/internal/vectorstore/memory"
	"prepsearch/internal/vectorstore/postgres"
	"prepsearch/internal/vectorstore/qdrant"
)

func main() {
	_ = godotenv.Load()

	var cfgPath string
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ~/.config/prepsearch/config.yaml if not provided)")
	flag.Parse()
	inputs := flag.Args()
	if len(inputs) == 0 {
		fmt.Println("Usage: prepsearch [--config=config.yaml] records1.json [records2.json ...]")
		os.Exit(1)
	}

	var cfg *config.AppConfig
	var err error
	if cfgPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(cfgPath)
	}
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	// Assemble components
	var emb embedding.Embedder
	switch cfg.Embedder.Type {
	case "hashing", "":
		emb = hashing.NewEmbedder()
	case "openai":
		if cfg.Embedder.OpenAI == nil {
			log.Fatalf("openai embedder config missing")
		}
		client, err := openai.NewClient(openai.Config{
			BaseURL:   cfg.Embedder.OpenAI.BaseURL,
			APIKeyEnv: cfg.Embedder.OpenAI.APIKeyEnv,
			Model:     cfg.Embedder.OpenAI.Model,
			Dimension: cfg.Embedder.OpenAI.Dimension,
			Timeout:   time.Duration(cfg.Embedder.OpenAI.TimeoutSecs) * time.Second,
		})
		if err != nil {
			log.Fatalf("openai embedder init failed: %v", err)
		}
		emb = client
	default:
		log.Fatalf("unknown embedder: %s", cfg.Embedder.Type)
	}

	ch := chunker.NewClusterChunker(emb, cfg.Chunker.MaxChunkSize, cfg.Chunker.SimilarityThreshold)

	var st vectorstore.Storage
	switch cfg.VectorStore.Type {
	case "memory", "":
		st = memory.NewStorage()
	case "qdrant":
		if cfg.VectorStore.Qdrant == nil {
			log.Fatalf("qdrant config missing")
		}
		st = qdrant.NewStorage(qdrant.Config{
			URL:        cfg.VectorStore.Qdrant.URL,
			APIKey:     cfg.VectorStore.Qdrant.APIKey,
			Collection: cfg.VectorStore.Qdrant.Collection,
			Metric:     cfg.Index.Metric,
			Timeout:    time.Duration(cfg.VectorStore.Qdrant.TimeoutSecs) * time.Second,
			Logger:     logger,
		})
	case "postgres":
		if cfg.VectorStore.Postgres == nil {
			log.Fatalf("postgres config missing")
		}
		pg, err := postgres.NewStorage(postgres.Config{
			DSN:    cfg.VectorStore.Postgres.DSN,
			Table:  cfg.VectorStore.Postgres.Table,
			Logger: logger,
		})
		if err != nil {
			log.Fatalf("postgres store init failed: %v", err)
		}
		defer pg.Close()
		st = pg
	default:
		log.Fatalf("unknown vector store: %s", cfg.VectorStore.Type)
	}

	records, err := loadRecords(inputs)
	if err != nil {
		log.Fatalf("failed to load records: %v", err)
	}

	ctx := context.Background()
	ing := pipeline.NewIngestor(ch, emb, st, logger, cfg.Validation.MinTextLength)
	stats, err := ing.IngestRecords(ctx, records)
	if err != nil {
		log.Fatalf("ingest failed: %v", err)
	}

	sum := summarizer.NewFrequencySummarizer()
	summary, err := sum.Summarize(acceptedText(records, cfg.Validation.MinTextLength), cfg.Summarizer.MaxSentences)
	if err != nil {
		log.Fatalf("summarize failed: %v", err)
	}
	header := fmt.Sprintf("%d records, %d rejected, %d chunks indexed. %s",
		stats.Records, stats.Rejected, stats.Chunks, summary)

	svc := retrieval.NewService(emb, st, logger)
	m := tui.New(answerWithDefaults{svc: svc, cfg: cfg}, header)
	if _, err := tea.NewProgram(m).Run(); err != nil {
		log.Fatal(err)
	}
}

// answerWithDefaults applies the configured top-k and score threshold to
// console queries.
type answerWithDefaults struct {
	svc *retrieval.Service
	cfg *config.AppConfig
}

func (a answerWithDefaults) Answer(ctx context.Context, req retrieval.Request) (*retrieval.Result, error) {
	if req.TopK == 0 {
		req.TopK = a.cfg.Query.TopK
	}
	if req.ScoreThreshold == 0 {
		req.ScoreThreshold = float32(a.cfg.Query.ScoreThreshold)
	}
	return a.svc.Answer(ctx, req)
}

// loadRecords reads JSON arrays of scraped records from the given files.
func loadRecords(paths []string) ([]domain.Record, error) {
	var records []domain.Record
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, err
		}
		var batch []domain.Record
		if err := json.Unmarshal(data, &batch); err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
		records = append(records, batch...)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("no records found")
	}
	return records, nil
}

// acceptedText concatenates the bodies of records that pass validation, for
// the post-ingest summary.
func acceptedText(records []domain.Record, minTextLength int) string {
	var b strings.Builder
	for _, rec := range records {
		if !validate.OK(rec, minTextLength) {
			continue
		}
		b.WriteString(rec.Text)
		b.WriteString("\n")
	}
	return b.String()
}
