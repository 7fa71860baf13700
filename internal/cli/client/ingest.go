package client

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/lumenlabs/kbpipe/internal/config"
	"github.com/lumenlabs/kbpipe/internal/database"
	"github.com/lumenlabs/kbpipe/internal/ingest"
	"github.com/lumenlabs/kbpipe/internal/openai"
	"github.com/lumenlabs/kbpipe/internal/repository"
	"github.com/lumenlabs/kbpipe/internal/source"
)

// IngestCmd creates the ingest command.
func IngestCmd() *cobra.Command {
	var (
		docsDir string
		fromS3  bool
	)

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Rebuild the knowledge base from source documents",
		Long: `Reads documents from the configured source, chunks and embeds them,
and replaces the stored knowledge base. Individual chunk failures are
reported but do not abort the run; the command only fails when the
source, the store reset, or the configuration is broken.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngest(cmd.Context(), docsDir, fromS3)
		},
	}

	cmd.Flags().StringVarP(&docsDir, "dir", "d", "", "Directory of documents to ingest (overrides KBPIPE_DOCS_DIR)")
	cmd.Flags().BoolVar(&fromS3, "s3", false, "Read documents from the configured S3 bucket")

	return cmd
}

func runIngest(ctx context.Context, docsDir string, fromS3 bool) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if !cfg.HasOpenAI() {
		return fmt.Errorf("KBPIPE_OPENAI_API_KEY not set")
	}

	src, err := buildSource(ctx, cfg, docsDir, fromS3)
	if err != nil {
		return err
	}

	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	if err := database.Migrate(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	repo := repository.NewKnowledgeItemRepository(pool)
	client := openai.NewClient(cfg.OpenAIAPIKey)

	pipeline := ingest.NewPipeline(src, client, repo, ingest.PipelineConfig{
		ChunkSize:    cfg.ChunkSize,
		ChunkOverlap: cfg.ChunkOverlap,
		BatchSize:    cfg.IngestBatchSize,
		BatchDelay:   cfg.IngestBatchDelay,
	})

	report, err := pipeline.Run(ctx)
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	// Chunk-level failures are already logged by the pipeline; a partial
	// run still exits zero so schedulers don't treat it as fatal.
	if report.ChunksFailed > 0 {
		log.Printf("ingest finished with %d failed chunks", report.ChunksFailed)
	}

	fmt.Println(report.Summary())
	return nil
}

func buildSource(ctx context.Context, cfg *config.Config, docsDir string, fromS3 bool) (ingest.DocumentSource, error) {
	if fromS3 {
		if !cfg.HasS3() {
			return nil, fmt.Errorf("--s3 requires KBPIPE_S3_ENDPOINT and credentials")
		}
		s3Source, err := source.NewS3Source(ctx, source.S3SourceConfig{
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKey,
			SecretAccessKey: cfg.S3SecretKey,
			Bucket:          cfg.S3Bucket,
			Prefix:          cfg.S3Prefix,
			UsePathStyle:    true,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create S3 source: %w", err)
		}
		return s3Source, nil
	}

	dir := docsDir
	if dir == "" {
		dir = cfg.DocsDir
	}
	return source.NewDirSource(dir), nil
}
