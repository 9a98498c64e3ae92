// Package provider implements the search backend clients and the static
// registry mapping each provider identifier to its client factory.
package provider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ca-srg/websearch/internal/types"
)

// ErrUnknownProvider is returned when a provider identifier has no registered
// client factory.
var ErrUnknownProvider = errors.New("unknown search provider")

// SearchClient is the capability every backend implements. A client is
// acquired per call and must be released with Close on every exit path.
type SearchClient interface {
	Search(ctx context.Context, query string) (*types.SearchResponse, error)
	Close() error
}

// Factory constructs a client for a single search call from its config.
type Factory func(cfg *types.ProviderConfig) SearchClient

// Registry returns the fixed provider → factory table. The table is built
// fresh on each call so callers can never mutate shared state.
func Registry() map[types.ProviderType]Factory {
	return map[types.ProviderType]Factory{
		types.ProviderSerpAPI:    func(cfg *types.ProviderConfig) SearchClient { return NewSerpAPIClient(cfg) },
		types.ProviderPerplexity: func(cfg *types.ProviderConfig) SearchClient { return NewPerplexityClient(cfg) },
		types.ProviderDuckDuckGo: func(cfg *types.ProviderConfig) SearchClient { return NewDuckDuckGoClient(cfg) },
		types.ProviderTavily:     func(cfg *types.ProviderConfig) SearchClient { return NewTavilyClient(cfg) },
		types.ProviderClaude:     func(cfg *types.ProviderConfig) SearchClient { return NewClaudeClient(cfg) },
	}
}

// New constructs a client for the provider named in the config.
func New(cfg *types.ProviderConfig) (SearchClient, error) {
	factory, ok := Registry()[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, cfg.Provider)
	}
	return factory(cfg), nil
}

const (
	httpMaxIdleConns        = 10
	httpMaxIdleConnsPerHost = 10
	httpIdleConnTimeout     = 90 * time.Second
)

// newHTTPClient builds a client honoring the per-provider timeout.
func newHTTPClient(cfg *types.ProviderConfig) *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        httpMaxIdleConns,
			MaxIdleConnsPerHost: httpMaxIdleConnsPerHost,
			IdleConnTimeout:     httpIdleConnTimeout,
		},
		Timeout: cfg.Timeout(),
	}
}

// closeIdle releases pooled connections held by a per-call client.
func closeIdle(c *http.Client) {
	if transport, ok := c.Transport.(*http.Transport); ok {
		transport.CloseIdleConnections()
	}
}

// statusError converts a non-2xx backend reply into a descriptive error. The
// body is drained (truncated) so auth and rate-limit messages survive into
// the error text.
func statusError(provider types.ProviderType, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return fmt.Errorf("%s: backend returned status %d: %s", provider, resp.StatusCode, string(body))
}
