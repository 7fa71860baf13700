package ingest

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/lumenlabs/kbpipe/internal/domain"
	"github.com/lumenlabs/kbpipe/internal/telemetry"
)

// DocumentSource enumerates the raw documents to ingest.
type DocumentSource interface {
	List(ctx context.Context) ([]domain.Document, error)
}

// EmbeddingClient defines the interface for generating embeddings
type EmbeddingClient interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// KnowledgeStore defines the store operations the pipeline needs.
type KnowledgeStore interface {
	DeleteAll(ctx context.Context) error
	Insert(ctx context.Context, item *domain.KnowledgeItem) error
}

// PipelineConfig controls chunking and batching for an ingestion run.
type PipelineConfig struct {
	ChunkSize    int
	ChunkOverlap int
	BatchSize    int
	BatchDelay   time.Duration
}

// DefaultPipelineConfig provides sane defaults for ingestion.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		ChunkSize:    DefaultChunkSize,
		ChunkOverlap: DefaultChunkOverlap,
		BatchSize:    10,
		BatchDelay:   time.Second,
	}
}

// Report accumulates the outcome of one ingestion run. Partial chunk
// failures are a normal terminal state, not an error.
type Report struct {
	DocumentsSeen    int
	DocumentsSkipped int
	ChunksAttempted  int
	ChunksStored     int
	ChunksFailed     int
}

// Summary renders the report as a single log-friendly line.
func (r *Report) Summary() string {
	return fmt.Sprintf("documents=%d skipped=%d chunks_attempted=%d chunks_stored=%d chunks_failed=%d",
		r.DocumentsSeen, r.DocumentsSkipped, r.ChunksAttempted, r.ChunksStored, r.ChunksFailed)
}

// Pipeline orchestrates a full-replace ingestion run: discover documents,
// clear the store, preprocess and chunk everything, then embed and store
// in rate-limited batches.
type Pipeline struct {
	source DocumentSource
	client EmbeddingClient
	store  KnowledgeStore
	cfg    PipelineConfig
}

// NewPipeline creates a new Pipeline instance
func NewPipeline(source DocumentSource, client EmbeddingClient, store KnowledgeStore, cfg PipelineConfig) *Pipeline {
	if cfg.ChunkSize == 0 {
		cfg.ChunkSize = DefaultChunkSize
	}
	if cfg.ChunkOverlap == 0 {
		cfg.ChunkOverlap = DefaultChunkOverlap
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 10
	}
	return &Pipeline{
		source: source,
		client: client,
		store:  store,
		cfg:    cfg,
	}
}

// Run executes one ingestion pass. It returns an error only for fatal
// conditions: invalid chunk configuration, an unreachable document
// source, or a failed store clear. Per-chunk embed/store failures are
// logged, counted in the report, and never abort the run.
func (p *Pipeline) Run(ctx context.Context) (*Report, error) {
	ctx, span := telemetry.StartSpan(ctx, "Pipeline.Run", telemetry.SpanAttributes{
		Operation: "ingest",
	})
	defer span.End()

	if p.cfg.ChunkSize <= 0 {
		return nil, domain.ErrInvalidChunkSize
	}
	if p.cfg.ChunkOverlap < 0 || p.cfg.ChunkOverlap >= p.cfg.ChunkSize {
		return nil, domain.ErrOverlapTooLarge
	}

	docs, err := p.source.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	log.Printf("ingest: discovered %d documents", len(docs))

	// Full-replace semantics: every run starts from an empty store.
	if err := p.store.DeleteAll(ctx); err != nil {
		return nil, domain.NewStoreError("failed to clear knowledge store", err)
	}

	report := &Report{DocumentsSeen: len(docs)}

	worklist, err := p.transform(docs, report)
	if err != nil {
		return nil, err
	}
	report.ChunksAttempted = len(worklist)
	log.Printf("ingest: prepared %d chunks from %d documents (%d skipped)",
		len(worklist), report.DocumentsSeen, report.DocumentsSkipped)

	for start := 0; start < len(worklist); start += p.cfg.BatchSize {
		end := start + p.cfg.BatchSize
		if end > len(worklist) {
			end = len(worklist)
		}

		stored := p.runBatch(ctx, worklist[start:end])
		report.ChunksStored += stored
		report.ChunksFailed += (end - start) - stored

		// Pause between batches to stay under provider rate limits; no
		// pause after the final batch.
		if end < len(worklist) && p.cfg.BatchDelay > 0 {
			select {
			case <-ctx.Done():
				return report, ctx.Err()
			case <-time.After(p.cfg.BatchDelay):
			}
		}
	}

	log.Printf("ingest: run complete: %s", report.Summary())
	return report, nil
}

// transform runs Preprocess, Categorize and the chunker over every
// document, accumulating one ordered worklist.
func (p *Pipeline) transform(docs []domain.Document, report *Report) ([]domain.Chunk, error) {
	var worklist []domain.Chunk
	for _, doc := range docs {
		pre := Preprocess(doc.Content)
		if pre.Skip {
			report.DocumentsSkipped++
			log.Printf("ingest: skipping %s: normalized text too short (%d chars)", doc.Filename, len(pre.Text))
			continue
		}

		normalized := domain.Document{Filename: doc.Filename, Content: pre.Text}
		chunks, err := ChunkDocument(normalized, Categorize(doc.Filename), pre.Title, p.cfg.ChunkSize, p.cfg.ChunkOverlap)
		if err != nil {
			return nil, err
		}
		worklist = append(worklist, chunks...)
	}
	return worklist, nil
}

// runBatch embeds and stores every chunk in the batch concurrently and
// returns how many succeeded. Each chunk is an independent unit of work;
// errors are reduced only after the whole batch has settled.
func (p *Pipeline) runBatch(ctx context.Context, batch []domain.Chunk) int {
	errs := make([]error, len(batch))

	var wg sync.WaitGroup
	for i := range batch {
		wg.Add(1)
		go func(i int, chunk domain.Chunk) {
			defer wg.Done()
			errs[i] = p.processChunk(ctx, chunk)
		}(i, batch[i])
	}
	wg.Wait()

	stored := 0
	for i, err := range errs {
		if err == nil {
			stored++
			continue
		}
		chunk := batch[i]
		log.Printf("ingest: chunk %d/%d of %s failed: %v",
			chunk.ChunkIndex+1, chunk.TotalChunks, chunk.SourceFilename, err)
		telemetry.CaptureError(ctx, err)
	}
	return stored
}

func (p *Pipeline) processChunk(ctx context.Context, chunk domain.Chunk) error {
	embedding, err := p.client.GenerateEmbedding(ctx, chunk.Content)
	if err != nil {
		return err
	}

	item := domain.NewKnowledgeItemFromChunk(chunk, embedding)
	if err := p.store.Insert(ctx, item); err != nil {
		return domain.NewStoreError("failed to store knowledge item", err)
	}

	return nil
}
