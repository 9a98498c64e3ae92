package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	appconfig "github.com/ca-srg/websearch/internal/config"
	"github.com/ca-srg/websearch/internal/metrics"
)

var rootCmd = &cobra.Command{
	Use:   "websearch",
	Short: "websearch - multi-provider web search with automatic fallback",
	Long: `websearch is a CLI tool and MCP server for searching the web through
multiple providers (SerpAPI, Perplexity, DuckDuckGo, Tavily, Claude) with
automatic fallback between available providers.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Best effort; missing .env is not an error.
		_ = godotenv.Load()
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(multiCmd)
	rootCmd.AddCommand(providersCmd)
	rootCmd.AddCommand(mcpServerCmd)
}

// initMetricsStore opens the search counter store, honoring METRICS_DB_PATH.
// Failures are non-fatal; searches still work without counters.
func initMetricsStore(cfg *appconfig.Config) {
	if cfg.MetricsDBPath != "" {
		_ = metrics.InitWithPath(cfg.MetricsDBPath)
		return
	}
	_ = metrics.Init()
}
