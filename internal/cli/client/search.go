package client

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// SearchRequest represents the search API request.
type SearchRequest struct {
	Query          string  `json:"query"`
	MatchThreshold float64 `json:"match_threshold,omitempty"`
	MatchCount     int     `json:"match_count,omitempty"`
}

// SearchResultMetadata describes where a result chunk came from.
type SearchResultMetadata struct {
	Source      string `json:"source"`
	Category    string `json:"category"`
	Title       string `json:"title,omitempty"`
	ChunkIndex  int    `json:"chunk_index"`
	TotalChunks int    `json:"total_chunks"`
}

// SearchResult represents a search result.
type SearchResult struct {
	Content    string               `json:"content"`
	Metadata   SearchResultMetadata `json:"metadata"`
	Similarity float64              `json:"similarity"`
}

// SearchResponse represents the search API response.
type SearchResponse struct {
	Results []SearchResult `json:"results"`
	Count   int            `json:"count"`
}

// SearchCmd creates the search command.
func SearchCmd() *cobra.Command {
	var (
		threshold float64
		count     int
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the knowledge base",
		Long:  "Searches stored document chunks by semantic similarity.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			api, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}
			return runSearch(api, args[0], threshold, count, outputJSON)
		},
	}

	cmd.Flags().Float64VarP(&threshold, "threshold", "t", 0, "Minimum similarity (0-1, server default when omitted)")
	cmd.Flags().IntVarP(&count, "count", "n", 0, "Maximum number of results (server default when omitted)")

	return cmd
}

func runSearch(api *APIClient, query string, threshold float64, count int, outputJSON bool) error {
	req := SearchRequest{
		Query:          query,
		MatchThreshold: threshold,
		MatchCount:     count,
	}

	resp, err := api.Post("/search", req)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	var searchResp SearchResponse
	if err := json.Unmarshal(resp.Data, &searchResp); err != nil {
		return fmt.Errorf("failed to parse search results: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(searchResp, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	if len(searchResp.Results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Printf("Found %d results:\n\n", len(searchResp.Results))
	for i, result := range searchResp.Results {
		header := result.Metadata.Source
		if result.Metadata.Title != "" {
			header = result.Metadata.Title
		}
		fmt.Printf("%d. %s (%.2f)\n", i+1, header, result.Similarity)
		fmt.Printf("   category: %s, chunk %d/%d\n",
			result.Metadata.Category, result.Metadata.ChunkIndex+1, result.Metadata.TotalChunks)

		content := result.Content
		if len(content) > 200 {
			content = content[:197] + "..."
		}
		fmt.Printf("   %s\n", content)
		if i < len(searchResp.Results)-1 {
			fmt.Println(strings.Repeat("-", 40))
		}
	}

	return nil
}
