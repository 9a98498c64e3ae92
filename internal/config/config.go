package config

import (
	"fmt"
	"strings"

	"github.com/ca-srg/websearch/internal/types"
	env "github.com/netflix/go-env"
)

// Type alias for Config
type Config = types.Config

// Load loads configuration from environment variables
func Load() (*Config, error) {
	var config Config

	_, err := env.UnmarshalFromEnviron(&config)
	if err != nil {
		return nil, fmt.Errorf("failed to parse environment variables: %w", err)
	}

	// Parse MCPAllowedIPs from comma-separated string
	if config.MCPAllowedIPsStr != "" {
		ips := strings.Split(config.MCPAllowedIPsStr, ",")
		config.MCPAllowedIPs = make([]string, 0, len(ips))
		for _, ip := range ips {
			if trimmed := strings.TrimSpace(ip); trimmed != "" {
				config.MCPAllowedIPs = append(config.MCPAllowedIPs, trimmed)
			}
		}
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &config, nil
}

// validateConfig validates configuration values and adjusts them to safe ranges
func validateConfig(config *Config) error {
	if _, err := types.ParseProviderType(config.DefaultProvider); err != nil {
		return fmt.Errorf("DEFAULT_SEARCH_PROVIDER: %w", err)
	}

	if config.SearchTimeoutSeconds <= 0 {
		return fmt.Errorf("SEARCH_TIMEOUT must be greater than 0")
	}
	if config.SearchTimeoutSeconds > 300 {
		return fmt.Errorf("SEARCH_TIMEOUT cannot exceed 300 seconds")
	}

	// Clamp non-positive result limits back to the documented default
	for _, limit := range []*int{
		&config.SerpAPIMaxResults,
		&config.PerplexityMaxResults,
		&config.DuckDuckGoMaxResults,
		&config.TavilyMaxResults,
		&config.ClaudeMaxResults,
	} {
		if *limit <= 0 {
			*limit = 10
		}
	}

	switch config.DuckDuckGoSafeSearch {
	case "off", "moderate", "strict":
	default:
		return fmt.Errorf("DUCKDUCKGO_SAFESEARCH must be one of off, moderate, strict")
	}

	if err := validateMCPConfig(config); err != nil {
		return fmt.Errorf("MCP server configuration validation failed: %w", err)
	}

	return nil
}

// validateMCPConfig validates MCP server-specific configuration
func validateMCPConfig(config *Config) error {
	if config.MCPServerPort < 1 || config.MCPServerPort > 65535 {
		return fmt.Errorf("MCP_SERVER_PORT must be between 1 and 65535")
	}

	if config.MCPServerHost == "" {
		return fmt.Errorf("MCP_SERVER_HOST cannot be empty")
	}

	if config.MCPServerReadTimeout <= 0 {
		return fmt.Errorf("MCP_SERVER_READ_TIMEOUT must be greater than 0")
	}
	if config.MCPServerWriteTimeout <= 0 {
		return fmt.Errorf("MCP_SERVER_WRITE_TIMEOUT must be greater than 0")
	}
	if config.MCPServerIdleTimeout <= 0 {
		return fmt.Errorf("MCP_SERVER_IDLE_TIMEOUT must be greater than 0")
	}
	if config.MCPServerShutdownTimeout <= 0 {
		return fmt.Errorf("MCP_SERVER_SHUTDOWN_TIMEOUT must be greater than 0")
	}

	if config.MCPIPAuthEnabled && len(config.MCPAllowedIPs) == 0 {
		return fmt.Errorf("MCP_ALLOWED_IPS cannot be empty when IP authentication is enabled")
	}

	return nil
}
