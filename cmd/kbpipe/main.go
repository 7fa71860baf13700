package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lumenlabs/kbpipe/internal/cli/client"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "kbpipe",
		Short: "kbpipe CLI - knowledge base ingestion and search",
		Long: `kbpipe CLI ingests documents into the knowledge base and queries it.

Environment variables:
  KBPIPE_DATABASE_URL     Postgres connection string (ingest)
  KBPIPE_OPENAI_API_KEY   OpenAI API key (ingest)
  KBPIPE_API_URL          API base URL for search/stats (default: http://localhost:8080)`,
		Version: version,
	}

	rootCmd.PersistentFlags().Bool("output", false, "Output as JSON")
	rootCmd.PersistentFlags().String("api-url", "", "API base URL (overrides env)")

	rootCmd.AddCommand(client.IngestCmd())
	rootCmd.AddCommand(client.SearchCmd())
	rootCmd.AddCommand(client.StatsCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
