package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	appconfig "github.com/ca-srg/websearch/internal/config"
	"github.com/ca-srg/websearch/internal/metrics"
	"github.com/ca-srg/websearch/internal/search"
	"github.com/ca-srg/websearch/internal/types"
)

var (
	providersJSON  bool
	providersStats bool
)

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List search providers, their availability, and the fallback order",
	RunE:  runProviders,
}

func init() {
	providersCmd.Flags().BoolVarP(&providersJSON, "json", "j", false, "Output in JSON format")
	providersCmd.Flags().BoolVar(&providersStats, "stats", false, "Include recorded search counts per provider")
}

func runProviders(cmd *cobra.Command, args []string) error {
	cfg, err := appconfig.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if providersStats {
		initMetricsStore(cfg)
	}

	coordinator, err := search.NewCoordinator(cfg)
	if err != nil {
		return fmt.Errorf("failed to create search coordinator: %w", err)
	}

	availability := coordinator.AvailableProviders()
	chain := coordinator.FallbackChain()

	if providersJSON {
		payload := map[string]interface{}{
			"providers":      availability,
			"fallback_order": chain,
		}
		if providersStats {
			payload["search_counts"] = metrics.GetStats()
		}
		jsonOutput, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON output: %w", err)
		}
		fmt.Println(string(jsonOutput))
		return nil
	}

	fmt.Println("Providers:")
	for _, provider := range types.AllProviders() {
		status := "unavailable"
		if availability[provider] {
			status = "available"
		}
		fmt.Printf("  %-12s %s\n", provider, status)
	}

	fmt.Println("\nFallback order:")
	for i, provider := range chain {
		fmt.Printf("  %d. %s\n", i+1, provider)
	}

	if providersStats {
		fmt.Println("\nSearch counts:")
		stats := metrics.GetStats()
		for _, provider := range types.AllProviders() {
			fmt.Printf("  %-12s %d\n", provider, stats[string(provider)])
		}
	}

	return nil
}
