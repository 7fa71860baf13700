package admin

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/lumenlabs/kbpipe/internal/api/handlers"
	"github.com/lumenlabs/kbpipe/internal/config"
	"github.com/lumenlabs/kbpipe/internal/database"
	"github.com/lumenlabs/kbpipe/internal/ingest"
	"github.com/lumenlabs/kbpipe/internal/openai"
	"github.com/lumenlabs/kbpipe/internal/repository"
	"github.com/lumenlabs/kbpipe/internal/retrieve"
	"github.com/lumenlabs/kbpipe/internal/server"
	"github.com/lumenlabs/kbpipe/internal/source"
	"github.com/lumenlabs/kbpipe/internal/telemetry"
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the kbpipe API server on the specified port",
		RunE:  runServe,
	}

	cmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	cmd.Flags().Bool("no-migrate", false, "Skip automatic database migrations on startup")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize Sentry with tracing if SENTRY_DSN is set
	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		environment := os.Getenv("ENVIRONMENT")
		if environment == "" {
			environment = "development"
		}

		// Default to 10% sampling in production, 100% in development
		sampleRate := 0.1
		if environment == "development" {
			sampleRate = 1.0
		}

		shutdownTelemetry, err := telemetry.Init(telemetry.Config{
			DSN:              dsn,
			Environment:      environment,
			TracesSampleRate: sampleRate,
		})
		if err != nil {
			log.Printf("telemetry init failed (continuing without tracing): %v", err)
		} else {
			defer shutdownTelemetry()
		}
	}

	portFlag, _ := cmd.Flags().GetString("port")
	if portFlag != "" && portFlag != "8080" {
		cfg.Port = portFlag
	}

	if !cfg.HasOpenAI() {
		return fmt.Errorf("KBPIPE_OPENAI_API_KEY not set")
	}

	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()
	log.Println("connected to database")

	// Run migrations unless --no-migrate flag is set
	noMigrate, _ := cmd.Flags().GetBool("no-migrate")
	if !noMigrate {
		if err := database.Migrate(cfg.DatabaseURL); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	repo := repository.NewKnowledgeItemRepository(pool)
	embeddingClient := openai.NewClient(cfg.OpenAIAPIKey)
	retriever := retrieve.NewRetrieverWithDefaults(embeddingClient, repo, cfg.MatchThreshold, cfg.MatchCount)

	var scheduler *ingest.Scheduler
	if cfg.ResyncInterval > 0 {
		src, err := buildResyncSource(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to create resync source: %w", err)
		}
		pipeline := ingest.NewPipeline(src, embeddingClient, repo, ingest.PipelineConfig{
			ChunkSize:    cfg.ChunkSize,
			ChunkOverlap: cfg.ChunkOverlap,
			BatchSize:    cfg.IngestBatchSize,
			BatchDelay:   cfg.IngestBatchDelay,
		})
		scheduler = ingest.NewScheduler(pipeline, cfg.ResyncInterval)
		go scheduler.Start(ctx)
		log.Printf("resync scheduler started (interval %s)", cfg.ResyncInterval)
	}

	routerCfg := server.RouterConfig{
		EmbeddingHandler: handlers.NewEmbeddingHandler(embeddingClient),
		SearchHandler:    handlers.NewSearchHandler(retriever),
		StatsHandler:     handlers.NewStatsHandler(repo),
	}

	router := server.NewRouter(routerCfg)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")

	if scheduler != nil {
		scheduler.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("server exited")
	return nil
}

func buildResyncSource(ctx context.Context, cfg *config.Config) (ingest.DocumentSource, error) {
	if cfg.HasS3() {
		return source.NewS3Source(ctx, source.S3SourceConfig{
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKey,
			SecretAccessKey: cfg.S3SecretKey,
			Bucket:          cfg.S3Bucket,
			Prefix:          cfg.S3Prefix,
			UsePathStyle:    true,
		})
	}
	return source.NewDirSource(cfg.DocsDir), nil
}
