// Package search implements the provider routing and fallback coordinator:
// single-provider search, concurrent multi-provider fan-out, and
// priority-ordered fallback over the available providers.
package search

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/ca-srg/websearch/internal/metrics"
	"github.com/ca-srg/websearch/internal/provider"
	"github.com/ca-srg/websearch/internal/types"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"
)

var searchTracer = otel.Tracer("websearch/search")

// fallbackOrder is the fixed provider priority for fallback search:
// the keyless provider first, then the keyed backends.
var fallbackOrder = []types.ProviderType{
	types.ProviderDuckDuckGo,
	types.ProviderSerpAPI,
	types.ProviderPerplexity,
	types.ProviderTavily,
	types.ProviderClaude,
}

// Coordinator routes queries to search providers. It owns the cached
// per-provider config table for its lifetime; the table and the registry are
// read-only after construction, so concurrent calls are safe.
type Coordinator struct {
	defaultProvider types.ProviderType
	configs         map[types.ProviderType]*types.ProviderConfig
	factories       map[types.ProviderType]provider.Factory
	logger          *log.Logger
}

// NewCoordinator builds a coordinator from the root configuration. The
// per-provider config table is resolved once here and never reloaded.
func NewCoordinator(cfg *types.Config) (*Coordinator, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	defaultProvider, err := types.ParseProviderType(cfg.DefaultProvider)
	if err != nil {
		return nil, fmt.Errorf("invalid default provider: %w", err)
	}

	c := &Coordinator{
		defaultProvider: defaultProvider,
		factories:       provider.Registry(),
		logger:          log.Default(),
	}
	c.loadConfigs(cfg)

	return c, nil
}

// loadConfigs builds the per-provider configuration table from the root
// config.
func (c *Coordinator) loadConfigs(cfg *types.Config) {
	c.configs = map[types.ProviderType]*types.ProviderConfig{
		types.ProviderSerpAPI: {
			Provider:       types.ProviderSerpAPI,
			APIKey:         cfg.SerpAPIKey,
			MaxResults:     cfg.SerpAPIMaxResults,
			Engine:         cfg.SerpAPIEngine,
			TimeoutSeconds: cfg.SearchTimeoutSeconds,
		},
		types.ProviderPerplexity: {
			Provider:       types.ProviderPerplexity,
			APIKey:         cfg.PerplexityAPIKey,
			MaxResults:     cfg.PerplexityMaxResults,
			Model:          cfg.PerplexityModel,
			TimeoutSeconds: cfg.SearchTimeoutSeconds,
		},
		types.ProviderDuckDuckGo: {
			Provider:       types.ProviderDuckDuckGo,
			MaxResults:     cfg.DuckDuckGoMaxResults,
			SafeSearch:     cfg.DuckDuckGoSafeSearch,
			TimeoutSeconds: cfg.SearchTimeoutSeconds,
		},
		types.ProviderTavily: {
			Provider:       types.ProviderTavily,
			APIKey:         cfg.TavilyAPIKey,
			MaxResults:     cfg.TavilyMaxResults,
			TimeoutSeconds: cfg.SearchTimeoutSeconds,
		},
		types.ProviderClaude: {
			Provider:       types.ProviderClaude,
			APIKey:         cfg.AnthropicAPIKey,
			MaxResults:     cfg.ClaudeMaxResults,
			TimeoutSeconds: cfg.SearchTimeoutSeconds,
		},
	}
}

// DefaultProvider returns the provider used when a search names none.
func (c *Coordinator) DefaultProvider() types.ProviderType {
	return c.defaultProvider
}

// AvailableProviders reports, per provider, whether it can be attempted.
// DuckDuckGo requires no credential and is always available; every other
// provider is available iff its API key is non-empty.
func (c *Coordinator) AvailableProviders() map[types.ProviderType]bool {
	status := make(map[types.ProviderType]bool, len(c.configs))
	for providerType, cfg := range c.configs {
		if providerType == types.ProviderDuckDuckGo {
			status[providerType] = true
			continue
		}
		status[providerType] = cfg.APIKey != ""
	}
	return status
}

// Search performs a search using the named provider, or the default when
// providerType is empty. A positive maxResults overrides the provider's
// configured limit on a call-scoped clone; zero or negative overrides are
// ignored and the configured default stays in effect. Requesting an unknown
// provider is a caller error and fails loudly.
func (c *Coordinator) Search(ctx context.Context, query string, providerType types.ProviderType, maxResults int) (*types.SearchResponse, error) {
	if providerType == "" {
		providerType = c.defaultProvider
	}

	baseCfg, ok := c.configs[providerType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", provider.ErrUnknownProvider, providerType)
	}

	callCfg := baseCfg.Clone()
	if maxResults > 0 {
		callCfg.MaxResults = maxResults
	}

	ctx, span := searchTracer.Start(ctx, "search.single")
	defer span.End()
	span.SetAttributes(
		attribute.String("search.provider", string(providerType)),
		attribute.Int("search.max_results", callCfg.MaxResults),
	)

	factory, ok := c.factories[providerType]
	if !ok {
		err := fmt.Errorf("%w: %s", provider.ErrUnknownProvider, providerType)
		span.RecordError(err)
		span.SetStatus(codes.Error, "provider_resolution_failed")
		return nil, err
	}
	client := factory(callCfg)
	defer func() {
		if closeErr := client.Close(); closeErr != nil {
			c.logger.Printf("failed to close %s client: %v", providerType, closeErr)
		}
	}()

	metrics.RecordSearch(providerType)

	response, err := client.Search(ctx, query)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "provider_search_failed")
		return nil, fmt.Errorf("%s search failed: %w", providerType, err)
	}

	span.SetAttributes(attribute.Int("search.results", len(response.Results)))
	span.SetStatus(codes.Ok, "search_completed")
	return response, nil
}

// MultiProviderSearch fans the query out to every requested provider
// concurrently. A failure for one provider never aborts the others; the
// failed provider's entry carries empty results and the error description in
// metadata. Every requested provider appears exactly once in the result map.
func (c *Coordinator) MultiProviderSearch(ctx context.Context, query string, providers []types.ProviderType, maxResultsPerProvider int) map[string]*types.SearchResponse {
	ctx, span := searchTracer.Start(ctx, "search.multi")
	defer span.End()
	span.SetAttributes(attribute.Int("search.providers", len(providers)))

	results := make(map[string]*types.SearchResponse, len(providers))

	var mu sync.Mutex
	group, ctx := errgroup.WithContext(ctx)

	for _, providerType := range providers {
		group.Go(func() error {
			response, err := c.Search(ctx, query, providerType, maxResultsPerProvider)
			if err != nil {
				c.logger.Printf("multi-provider search: %s failed: %v", providerType, err)
				response = &types.SearchResponse{
					Query:    query,
					Provider: providerType,
					Results:  []types.SearchResult{},
					Metadata: map[string]interface{}{"error": err.Error()},
				}
			}
			mu.Lock()
			results[string(providerType)] = response
			mu.Unlock()
			return nil
		})
	}

	// Goroutines never return errors; failures are folded into the map.
	_ = group.Wait()

	return results
}

// FallbackChain returns the fixed-priority provider order filtered to the
// providers currently available.
func (c *Coordinator) FallbackChain() []types.ProviderType {
	available := c.AvailableProviders()

	chain := make([]types.ProviderType, 0, len(fallbackOrder))
	for _, providerType := range fallbackOrder {
		if available[providerType] {
			chain = append(chain, providerType)
		}
	}
	return chain
}

// SearchWithFallback tries each available provider in priority order and
// returns the first successful response unmodified. It never returns an
// error: when every provider fails, or none is available, the response
// carries empty results and the failure description in metadata.
func (c *Coordinator) SearchWithFallback(ctx context.Context, query string, maxResults int) *types.SearchResponse {
	ctx, span := searchTracer.Start(ctx, "search.fallback")
	defer span.End()

	chain := c.FallbackChain()

	var lastErr error
	for _, providerType := range chain {
		response, err := c.Search(ctx, query, providerType, maxResults)
		if err == nil {
			span.SetAttributes(attribute.String("search.provider", string(providerType)))
			span.SetStatus(codes.Ok, "fallback_completed")
			return response
		}
		c.logger.Printf("fallback search: %s failed, trying next provider: %v", providerType, err)
		lastErr = err
	}

	lastErrText := "None"
	if lastErr != nil {
		lastErrText = lastErr.Error()
	}

	attempted := make([]string, len(chain))
	for i, providerType := range chain {
		attempted[i] = string(providerType)
	}

	span.SetStatus(codes.Error, "all_providers_failed")

	return &types.SearchResponse{
		Query:    query,
		Provider: types.ProviderDuckDuckGo, // fixed sentinel
		Results:  []types.SearchResult{},
		Metadata: map[string]interface{}{
			"error":               fmt.Sprintf("All providers failed. Last error: %s", lastErrText),
			"attempted_providers": attempted,
		},
	}
}

// SetLogger sets a custom logger for the coordinator.
func (c *Coordinator) SetLogger(logger *log.Logger) {
	c.logger = logger
}
