package types

import "time"

// Config represents the websearch configuration resolved from environment
// variables. Missing credentials are not an error; providers without one are
// simply reported unavailable.
type Config struct {
	// Provider routing
	DefaultProvider string `json:"default_search_provider" env:"DEFAULT_SEARCH_PROVIDER,default=duckduckgo"`

	// SerpAPI
	SerpAPIKey        string `json:"-" env:"SERPAPI_API_KEY"`
	SerpAPIMaxResults int    `json:"serpapi_max_results" env:"SERPAPI_MAX_RESULTS,default=10"`
	SerpAPIEngine     string `json:"serpapi_engine" env:"SERPAPI_ENGINE,default=google"`

	// Perplexity
	PerplexityAPIKey     string `json:"-" env:"PERPLEXITY_API_KEY"`
	PerplexityMaxResults int    `json:"perplexity_max_results" env:"PERPLEXITY_MAX_RESULTS,default=10"`
	PerplexityModel      string `json:"perplexity_model" env:"PERPLEXITY_MODEL,default=sonar-pro"`

	// DuckDuckGo (no API key required)
	DuckDuckGoMaxResults int    `json:"duckduckgo_max_results" env:"DUCKDUCKGO_MAX_RESULTS,default=10"`
	DuckDuckGoSafeSearch string `json:"duckduckgo_safesearch" env:"DUCKDUCKGO_SAFESEARCH,default=moderate"`

	// Tavily
	TavilyAPIKey     string `json:"-" env:"TAVILY_API_KEY"`
	TavilyMaxResults int    `json:"tavily_max_results" env:"TAVILY_MAX_RESULTS,default=10"`

	// Claude
	AnthropicAPIKey  string `json:"-" env:"ANTHROPIC_API_KEY"`
	ClaudeMaxResults int    `json:"claude_max_results" env:"CLAUDE_MAX_RESULTS,default=10"`

	// Shared timeout applied to every provider invocation
	SearchTimeoutSeconds int `json:"search_timeout_seconds" env:"SEARCH_TIMEOUT,default=30"`

	// MCP server
	MCPServerHost            string        `json:"mcp_server_host" env:"MCP_SERVER_HOST,default=127.0.0.1"`
	MCPServerPort            int           `json:"mcp_server_port" env:"MCP_SERVER_PORT,default=8080"`
	MCPServerReadTimeout     time.Duration `json:"mcp_server_read_timeout" env:"MCP_SERVER_READ_TIMEOUT,default=30s"`
	MCPServerWriteTimeout    time.Duration `json:"mcp_server_write_timeout" env:"MCP_SERVER_WRITE_TIMEOUT,default=60s"`
	MCPServerIdleTimeout     time.Duration `json:"mcp_server_idle_timeout" env:"MCP_SERVER_IDLE_TIMEOUT,default=120s"`
	MCPServerShutdownTimeout time.Duration `json:"mcp_server_shutdown_timeout" env:"MCP_SERVER_SHUTDOWN_TIMEOUT,default=10s"`
	MCPIPAuthEnabled         bool          `json:"mcp_ip_auth_enabled" env:"MCP_IP_AUTH_ENABLED,default=false"`
	MCPAllowedIPsStr         string        `json:"-" env:"MCP_ALLOWED_IPS"`
	MCPAllowedIPs            []string      `json:"mcp_allowed_ips" env:"-"`

	// Metrics
	MetricsDBPath string `json:"metrics_db_path" env:"METRICS_DB_PATH"`

	// OpenTelemetry
	OTelEnabled              bool    `json:"otel_enabled" env:"OTEL_ENABLED,default=false"`
	OTelServiceName          string  `json:"otel_service_name" env:"OTEL_SERVICE_NAME,default=websearch"`
	OTelExporterOTLPEndpoint string  `json:"otel_exporter_otlp_endpoint" env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OTelExporterOTLPProtocol string  `json:"otel_exporter_otlp_protocol" env:"OTEL_EXPORTER_OTLP_PROTOCOL,default=http/protobuf"`
	OTelResourceAttributes   string  `json:"otel_resource_attributes" env:"OTEL_RESOURCE_ATTRIBUTES"`
	OTelTracesSampler        string  `json:"otel_traces_sampler" env:"OTEL_TRACES_SAMPLER,default=always_on"`
	OTelTracesSamplerArg     float64 `json:"otel_traces_sampler_arg" env:"OTEL_TRACES_SAMPLER_ARG,default=1.0"`
}
