package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port  string `envconfig:"PORT" default:"8080"`
	Debug bool   `envconfig:"DEBUG" default:"false"`

	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	OpenAIAPIKey string `envconfig:"OPENAI_API_KEY"`

	// Document source: a local directory by default, S3 when configured.
	DocsDir     string `envconfig:"DOCS_DIR" default:"./docs"`
	S3Endpoint  string `envconfig:"S3_ENDPOINT"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY_ID"`
	S3SecretKey string `envconfig:"S3_SECRET_ACCESS_KEY"`
	S3Bucket    string `envconfig:"S3_BUCKET" default:"kbpipe-docs"`
	S3Region    string `envconfig:"S3_REGION" default:"us-east-1"`
	S3Prefix    string `envconfig:"S3_PREFIX"`

	ChunkSize        int           `envconfig:"CHUNK_SIZE" default:"1000"`
	ChunkOverlap     int           `envconfig:"CHUNK_OVERLAP" default:"200"`
	IngestBatchSize  int           `envconfig:"INGEST_BATCH_SIZE" default:"10"`
	IngestBatchDelay time.Duration `envconfig:"INGEST_BATCH_DELAY" default:"1s"`

	MatchThreshold float64 `envconfig:"MATCH_THRESHOLD" default:"0.7"`
	MatchCount     int     `envconfig:"MATCH_COUNT" default:"5"`

	// Optional periodic re-ingestion in the daemon; zero disables it.
	ResyncInterval time.Duration `envconfig:"RESYNC_INTERVAL" default:"0"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("KBPIPE", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

func (c *Config) HasS3() bool {
	return c.S3Endpoint != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}

func (c *Config) HasOpenAI() bool {
	return c.OpenAIAPIKey != ""
}
