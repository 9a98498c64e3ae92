package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	appconfig "github.com/ca-srg/websearch/internal/config"
	"github.com/ca-srg/websearch/internal/mcpserver"
	"github.com/ca-srg/websearch/internal/metrics"
	"github.com/ca-srg/websearch/internal/observability"
	"github.com/ca-srg/websearch/internal/search"
)

var (
	mcpTransport    string
	mcpServerHost   string
	mcpServerPort   int
	mcpAllowedIPs   []string
	mcpEnableIPAuth bool
)

var mcpServerCmd = &cobra.Command{
	Use:   "mcp-server",
	Short: "Start MCP (Model Context Protocol) server for web search",
	Long: `
Start an MCP server that exposes web search as tools usable by
MCP-compatible clients like Claude Desktop, IDEs, and other applications.

The server provides three tools:
  web_search            - search using one provider, with optional fallback
  multi_provider_search - search using several providers concurrently
  list_providers        - report provider availability and fallback order

Configuration is loaded from environment variables (see README for details).

Examples:
  websearch mcp-server                                  # stdio transport (default)
  websearch mcp-server --transport http --port 9000     # streamable HTTP on port 9000
  websearch mcp-server --transport http --allowed-ips "192.168.1.0/24"
`,
	RunE: runMCPServer,
}

func init() {
	mcpServerCmd.Flags().StringVar(&mcpTransport, "transport", "stdio", "Transport to serve: stdio|http")
	mcpServerCmd.Flags().StringVar(&mcpServerHost, "host", "127.0.0.1", "Server host address (http transport)")
	mcpServerCmd.Flags().IntVar(&mcpServerPort, "port", 8080, "Server port (http transport)")
	mcpServerCmd.Flags().StringSliceVar(&mcpAllowedIPs, "allowed-ips", []string{"127.0.0.1", "::1"}, "Comma-separated list of allowed IP addresses/ranges")
	mcpServerCmd.Flags().BoolVar(&mcpEnableIPAuth, "enable-ip-auth", false, "Enable IP-based authentication (http transport)")
}

func runMCPServer(cmd *cobra.Command, args []string) error {
	cfg, err := appconfig.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if cmd.Flags().Changed("host") {
		cfg.MCPServerHost = mcpServerHost
	}
	if cmd.Flags().Changed("port") {
		cfg.MCPServerPort = mcpServerPort
	}
	if cmd.Flags().Changed("allowed-ips") {
		cfg.MCPAllowedIPs = mcpAllowedIPs
	}
	if cmd.Flags().Changed("enable-ip-auth") {
		cfg.MCPIPAuthEnabled = mcpEnableIPAuth
	}

	if mcpTransport != "stdio" && mcpTransport != "http" {
		return fmt.Errorf("invalid transport: %s (allowed: stdio|http)", mcpTransport)
	}

	logger := log.New(os.Stderr, "[MCP Server] ", log.LstdFlags)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownObservability, err := observability.Init(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		if err := shutdownObservability(context.Background()); err != nil {
			logger.Printf("observability shutdown failed: %v", err)
		}
	}()

	initMetricsStore(cfg)
	if err := metrics.InitOTelMetrics(); err != nil {
		logger.Printf("failed to register OTel metrics: %v", err)
	}

	coordinator, err := search.NewCoordinator(cfg)
	if err != nil {
		return fmt.Errorf("failed to create search coordinator: %w", err)
	}
	coordinator.SetLogger(logger)

	server, err := mcpserver.NewServer(cfg, coordinator)
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Printf("Received shutdown signal, stopping server...")
		cancel()
	}()

	switch mcpTransport {
	case "http":
		logger.Printf("Starting MCP server on %s:%d", cfg.MCPServerHost, cfg.MCPServerPort)
		if err := server.ServeHTTP(ctx); err != nil {
			return fmt.Errorf("MCP server failed: %w", err)
		}
	default:
		if err := server.ServeStdio(ctx); err != nil && ctx.Err() == nil {
			return fmt.Errorf("MCP server failed: %w", err)
		}
	}

	logger.Printf("MCP server stopped")
	return nil
}
