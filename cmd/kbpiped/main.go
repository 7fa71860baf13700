package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lumenlabs/kbpipe/internal/cli/admin"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "kbpiped",
		Short: "kbpipe daemon",
		Long:  "kbpipe daemon for serving embeddings, search and stats over the knowledge base",
	}

	rootCmd.AddCommand(admin.ServeCmd())

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
