package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	appconfig "github.com/ca-srg/websearch/internal/config"
	"github.com/ca-srg/websearch/internal/search"
	"github.com/ca-srg/websearch/internal/types"
)

var (
	multiQuery      string
	multiProviders  []string
	multiMaxResults int
	multiJSON       bool
	multiTimeout    int
)

var multiCmd = &cobra.Command{
	Use:   "multi",
	Short: "Search the web using multiple providers concurrently",
	Long: `
Search the web using several providers at once and compare their results.
Each provider's failure is isolated: a failing provider yields an empty
result set with the error recorded, while the others still return results.

Examples:
  # Query two providers concurrently
  websearch multi -q "rust async runtimes" --providers duckduckgo,serpapi

  # All providers, JSON output
  websearch multi -q "llm benchmarks" --providers serpapi,perplexity,duckduckgo,tavily,claude --json
`,
	RunE: runMulti,
}

func init() {
	multiCmd.Flags().StringVarP(&multiQuery, "query", "q", "", "Text query to search for (required)")
	multiCmd.Flags().StringSliceVar(&multiProviders, "providers", []string{"duckduckgo"}, "Comma-separated list of providers to query")
	multiCmd.Flags().IntVarP(&multiMaxResults, "max-results", "n", 5, "Maximum number of results per provider")
	multiCmd.Flags().BoolVarP(&multiJSON, "json", "j", false, "Output results in JSON format")
	multiCmd.Flags().IntVar(&multiTimeout, "timeout", 60, "Overall command timeout in seconds")

	_ = multiCmd.MarkFlagRequired("query")
}

func runMulti(cmd *cobra.Command, args []string) error {
	cfg, err := appconfig.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	initMetricsStore(cfg)

	providers := make([]types.ProviderType, 0, len(multiProviders))
	for _, name := range multiProviders {
		providerType, err := types.ParseProviderType(name)
		if err != nil {
			return err
		}
		providers = append(providers, providerType)
	}

	coordinator, err := search.NewCoordinator(cfg)
	if err != nil {
		return fmt.Errorf("failed to create search coordinator: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(multiTimeout)*time.Second)
	defer cancel()

	results := coordinator.MultiProviderSearch(ctx, multiQuery, providers, multiMaxResults)

	if multiJSON {
		jsonOutput, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON output: %w", err)
		}
		fmt.Println(string(jsonOutput))
		return nil
	}

	printMultiResults(results)
	return nil
}

func printMultiResults(results map[string]*types.SearchResponse) {
	names := make([]string, 0, len(results))
	for name := range results {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		response := results[name]
		fmt.Printf("\n=== %s ===\n", name)

		if errMsg, ok := response.Metadata["error"]; ok {
			fmt.Printf("  Error: %v\n", errMsg)
			continue
		}

		if len(response.Results) == 0 {
			fmt.Println("  (no results found)")
			continue
		}

		for _, result := range response.Results {
			fmt.Printf("  %d. %s\n     %s\n", result.Position, result.Title, result.URL)
		}
	}
}
