package types

import (
	"fmt"
	"time"
)

// ProviderType identifies a search backend.
type ProviderType string

const (
	ProviderSerpAPI    ProviderType = "serpapi"
	ProviderPerplexity ProviderType = "perplexity"
	ProviderDuckDuckGo ProviderType = "duckduckgo"
	ProviderTavily     ProviderType = "tavily"
	ProviderClaude     ProviderType = "claude"
)

// AllProviders returns every known provider type.
func AllProviders() []ProviderType {
	return []ProviderType{
		ProviderSerpAPI,
		ProviderPerplexity,
		ProviderDuckDuckGo,
		ProviderTavily,
		ProviderClaude,
	}
}

// ParseProviderType converts a string identifier into a ProviderType.
func ParseProviderType(s string) (ProviderType, error) {
	switch ProviderType(s) {
	case ProviderSerpAPI, ProviderPerplexity, ProviderDuckDuckGo, ProviderTavily, ProviderClaude:
		return ProviderType(s), nil
	default:
		return "", fmt.Errorf("unknown search provider: %q", s)
	}
}

// ProviderConfig holds per-provider settings resolved from the environment.
// The coordinator clones an entry before applying call-scoped overrides so
// the cached base table is never mutated.
type ProviderConfig struct {
	Provider       ProviderType `json:"provider"`
	APIKey         string       `json:"-"`
	MaxResults     int          `json:"max_results"`
	TimeoutSeconds int          `json:"timeout_seconds"`

	// Provider-specific knobs
	Engine     string `json:"engine,omitempty"`      // SerpAPI search engine
	Model      string `json:"model,omitempty"`       // Perplexity model
	SafeSearch string `json:"safe_search,omitempty"` // DuckDuckGo safesearch level
}

// Clone returns an independent copy of the config.
func (c *ProviderConfig) Clone() *ProviderConfig {
	clone := *c
	return &clone
}

// Timeout returns the configured timeout as a duration.
func (c *ProviderConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// SearchResult is a single hit produced by a provider. The coordinator never
// inspects it beyond passing it through.
type SearchResult struct {
	Title    string `json:"title"`
	URL      string `json:"url"`
	Snippet  string `json:"snippet,omitempty"`
	Position int    `json:"position,omitempty"`
	Source   string `json:"source,omitempty"`
}

// SearchResponse is the normalized response shape shared by all providers.
// It is always produced, even on total failure (empty results plus an error
// entry in metadata).
type SearchResponse struct {
	Query    string                 `json:"query"`
	Provider ProviderType           `json:"provider"`
	Results  []SearchResult         `json:"results"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}
