package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	appconfig "github.com/ca-srg/websearch/internal/config"
	"github.com/ca-srg/websearch/internal/search"
	"github.com/ca-srg/websearch/internal/types"
)

var (
	searchQuery      string
	searchProvider   string
	searchMaxResults int
	searchFallback   bool
	searchJSON       bool
	searchTimeout    int
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search the web using a single provider",
	Long: `
Search the web using the configured default provider or an explicitly
selected one. With --fallback, available providers are tried in order
until one succeeds.

Examples:
  # Search with the default provider
  websearch search -q "golang error handling"

  # Search with a specific provider
  websearch search -q "golang generics" --provider serpapi

  # Try providers in fallback order
  websearch search -q "kubernetes operators" --fallback

  # JSON output
  websearch search -q "vector databases" --json
`,
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringVarP(&searchQuery, "query", "q", "", "Text query to search for (required)")
	searchCmd.Flags().StringVarP(&searchProvider, "provider", "p", "", "Provider to use: serpapi|perplexity|duckduckgo|tavily|claude")
	searchCmd.Flags().IntVarP(&searchMaxResults, "max-results", "n", 0, "Maximum number of results (0 uses provider default)")
	searchCmd.Flags().BoolVar(&searchFallback, "fallback", false, "Try available providers in order until one succeeds")
	searchCmd.Flags().BoolVarP(&searchJSON, "json", "j", false, "Output results in JSON format")
	searchCmd.Flags().IntVar(&searchTimeout, "timeout", 60, "Overall command timeout in seconds")

	_ = searchCmd.MarkFlagRequired("query")
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, err := appconfig.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	initMetricsStore(cfg)

	coordinator, err := search.NewCoordinator(cfg)
	if err != nil {
		return fmt.Errorf("failed to create search coordinator: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(searchTimeout)*time.Second)
	defer cancel()

	var response *types.SearchResponse
	if searchFallback {
		response = coordinator.SearchWithFallback(ctx, searchQuery, searchMaxResults)
	} else {
		var providerType types.ProviderType
		if searchProvider != "" {
			providerType, err = types.ParseProviderType(searchProvider)
			if err != nil {
				return err
			}
		}

		response, err = coordinator.Search(ctx, searchQuery, providerType, searchMaxResults)
		if err != nil {
			return fmt.Errorf("search failed: %w", err)
		}
	}

	return outputSearchResponse(response)
}

func outputSearchResponse(response *types.SearchResponse) error {
	if searchJSON {
		jsonOutput, err := json.MarshalIndent(response, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON output: %w", err)
		}
		fmt.Println(string(jsonOutput))
		return nil
	}

	printSearchResponse(response)
	return nil
}

func printSearchResponse(response *types.SearchResponse) {
	fmt.Printf("\nQuery: %s\n", response.Query)
	fmt.Printf("Provider: %s\n", response.Provider)

	if errMsg, ok := response.Metadata["error"]; ok {
		fmt.Printf("Error: %v\n", errMsg)
	}
	if attempted, ok := response.Metadata["attempted_providers"]; ok {
		fmt.Printf("Attempted Providers: %v\n", attempted)
	}

	fmt.Printf("Found %d results\n", len(response.Results))

	if len(response.Results) == 0 {
		fmt.Println("  (no results found)")
		return
	}

	fmt.Println("\nResults:")
	for _, result := range response.Results {
		fmt.Printf("\n  %d. %s\n", result.Position, result.Title)
		fmt.Printf("     URL: %s\n", result.URL)
		if result.Snippet != "" {
			fmt.Printf("     %s\n", result.Snippet)
		}
	}
}
