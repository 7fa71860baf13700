package client

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

// StatsResponse represents the stats API response.
type StatsResponse struct {
	TotalItems int64            `json:"total_items"`
	Categories map[string]int64 `json:"categories"`
}

// StatsCmd creates the stats command.
func StatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show knowledge base statistics",
		Long:  "Shows the number of stored chunks overall and per category.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			api, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}
			return runStats(api, outputJSON)
		},
	}
}

func runStats(api *APIClient, outputJSON bool) error {
	resp, err := api.Get("/stats")
	if err != nil {
		return fmt.Errorf("stats failed: %w", err)
	}

	var statsResp StatsResponse
	if err := json.Unmarshal(resp.Data, &statsResp); err != nil {
		return fmt.Errorf("failed to parse stats: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(statsResp, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	fmt.Printf("Total chunks: %d\n", statsResp.TotalItems)
	if len(statsResp.Categories) == 0 {
		return nil
	}

	categories := make([]string, 0, len(statsResp.Categories))
	for category := range statsResp.Categories {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	fmt.Println("By category:")
	for _, category := range categories {
		fmt.Printf("  %-12s %d\n", category, statsResp.Categories[category])
	}

	return nil
}
