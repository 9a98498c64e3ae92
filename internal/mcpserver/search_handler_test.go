package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/ca-srg/websearch/internal/types"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"
)

type stubSearcher struct {
	searchResponse   *types.SearchResponse
	searchErr        error
	fallbackResponse *types.SearchResponse
	multiResults     map[string]*types.SearchResponse

	gotProvider   types.ProviderType
	gotMaxResults int
	gotProviders  []types.ProviderType
	usedFallback  bool
}

func (s *stubSearcher) Search(ctx context.Context, query string, providerType types.ProviderType, maxResults int) (*types.SearchResponse, error) {
	s.gotProvider = providerType
	s.gotMaxResults = maxResults
	return s.searchResponse, s.searchErr
}

func (s *stubSearcher) MultiProviderSearch(ctx context.Context, query string, providers []types.ProviderType, maxResultsPerProvider int) map[string]*types.SearchResponse {
	s.gotProviders = providers
	s.gotMaxResults = maxResultsPerProvider
	return s.multiResults
}

func (s *stubSearcher) SearchWithFallback(ctx context.Context, query string, maxResults int) *types.SearchResponse {
	s.usedFallback = true
	s.gotMaxResults = maxResults
	return s.fallbackResponse
}

func (s *stubSearcher) AvailableProviders() map[types.ProviderType]bool {
	return map[types.ProviderType]bool{
		types.ProviderDuckDuckGo: true,
		types.ProviderSerpAPI:    true,
		types.ProviderPerplexity: false,
		types.ProviderTavily:     false,
		types.ProviderClaude:     false,
	}
}

func (s *stubSearcher) FallbackChain() []types.ProviderType {
	return []types.ProviderType{types.ProviderDuckDuckGo, types.ProviderSerpAPI}
}

func toolRequest(name string, args string) *mcp.CallToolRequest {
	return &mcp.CallToolRequest{
		Params: &mcp.CallToolParamsRaw{
			Name:      name,
			Arguments: json.RawMessage(args),
		},
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.Len(t, result.Content, 1)
	text, ok := result.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func TestHandleWebSearch(t *testing.T) {
	t.Run("single provider search", func(t *testing.T) {
		searcher := &stubSearcher{
			searchResponse: &types.SearchResponse{
				Query:    "golang",
				Provider: types.ProviderSerpAPI,
				Results:  []types.SearchResult{{Title: "Go", URL: "https://go.dev", Position: 1}},
			},
		}
		handler := newSearchToolHandler(searcher, nil)

		result, err := handler.handleWebSearch(context.Background(),
			toolRequest("web_search", `{"query": "golang", "provider": "serpapi", "max_results": 3}`))
		require.NoError(t, err)
		require.False(t, result.IsError)
		require.Equal(t, types.ProviderSerpAPI, searcher.gotProvider)
		require.Equal(t, 3, searcher.gotMaxResults)
		require.False(t, searcher.usedFallback)

		var response types.SearchResponse
		require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &response))
		require.Equal(t, "golang", response.Query)
		require.Len(t, response.Results, 1)
	})

	t.Run("fallback search", func(t *testing.T) {
		searcher := &stubSearcher{
			fallbackResponse: &types.SearchResponse{
				Query:    "golang",
				Provider: types.ProviderDuckDuckGo,
				Results:  []types.SearchResult{},
			},
		}
		handler := newSearchToolHandler(searcher, nil)

		result, err := handler.handleWebSearch(context.Background(),
			toolRequest("web_search", `{"query": "golang", "fallback": true}`))
		require.NoError(t, err)
		require.False(t, result.IsError)
		require.True(t, searcher.usedFallback)
	})

	t.Run("missing query", func(t *testing.T) {
		handler := newSearchToolHandler(&stubSearcher{}, nil)

		result, err := handler.handleWebSearch(context.Background(),
			toolRequest("web_search", `{}`))
		require.NoError(t, err)
		require.True(t, result.IsError)
		require.Contains(t, resultText(t, result), "query cannot be empty")
	})

	t.Run("invalid provider", func(t *testing.T) {
		handler := newSearchToolHandler(&stubSearcher{}, nil)

		result, err := handler.handleWebSearch(context.Background(),
			toolRequest("web_search", `{"query": "golang", "provider": "bing"}`))
		require.NoError(t, err)
		require.True(t, result.IsError)
		require.Contains(t, resultText(t, result), "bing")
	})

	t.Run("search error becomes tool error", func(t *testing.T) {
		searcher := &stubSearcher{searchErr: errors.New("backend down")}
		handler := newSearchToolHandler(searcher, nil)

		result, err := handler.handleWebSearch(context.Background(),
			toolRequest("web_search", `{"query": "golang"}`))
		require.NoError(t, err)
		require.True(t, result.IsError)
		require.Contains(t, resultText(t, result), "backend down")
	})
}

func TestHandleMultiProviderSearch(t *testing.T) {
	t.Run("fans out to requested providers", func(t *testing.T) {
		searcher := &stubSearcher{
			multiResults: map[string]*types.SearchResponse{
				"duckduckgo": {Query: "golang", Provider: types.ProviderDuckDuckGo, Results: []types.SearchResult{}},
				"serpapi":    {Query: "golang", Provider: types.ProviderSerpAPI, Results: []types.SearchResult{}},
			},
		}
		handler := newSearchToolHandler(searcher, nil)

		result, err := handler.handleMultiProviderSearch(context.Background(),
			toolRequest("multi_provider_search", `{"query": "golang", "providers": ["duckduckgo", "serpapi"]}`))
		require.NoError(t, err)
		require.False(t, result.IsError)
		require.Equal(t, []types.ProviderType{types.ProviderDuckDuckGo, types.ProviderSerpAPI}, searcher.gotProviders)
		// Default per-provider limit applies when omitted.
		require.Equal(t, defaultMultiSearchResults, searcher.gotMaxResults)

		var response map[string]*types.SearchResponse
		require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &response))
		require.Len(t, response, 2)
	})

	t.Run("empty providers rejected", func(t *testing.T) {
		handler := newSearchToolHandler(&stubSearcher{}, nil)

		result, err := handler.handleMultiProviderSearch(context.Background(),
			toolRequest("multi_provider_search", `{"query": "golang", "providers": []}`))
		require.NoError(t, err)
		require.True(t, result.IsError)
		require.Contains(t, resultText(t, result), "providers cannot be empty")
	})

	t.Run("unknown provider rejected", func(t *testing.T) {
		handler := newSearchToolHandler(&stubSearcher{}, nil)

		result, err := handler.handleMultiProviderSearch(context.Background(),
			toolRequest("multi_provider_search", `{"query": "golang", "providers": ["bing"]}`))
		require.NoError(t, err)
		require.True(t, result.IsError)
	})
}

func TestHandleListProviders(t *testing.T) {
	handler := newSearchToolHandler(&stubSearcher{}, nil)

	result, err := handler.handleListProviders(context.Background(),
		toolRequest("list_providers", `{}`))
	require.NoError(t, err)
	require.False(t, result.IsError)

	var response struct {
		Providers     map[string]bool `json:"providers"`
		FallbackOrder []string        `json:"fallback_order"`
	}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &response))
	require.Len(t, response.Providers, 5)
	require.True(t, response.Providers["duckduckgo"])
	require.False(t, response.Providers["tavily"])
	require.Equal(t, []string{"duckduckgo", "serpapi"}, response.FallbackOrder)
}

func TestNewServerValidation(t *testing.T) {
	cfg := &types.Config{MCPServerHost: "127.0.0.1", MCPServerPort: 8080}

	_, err := NewServer(nil, &stubSearcher{})
	require.Error(t, err)

	_, err = NewServer(cfg, nil)
	require.Error(t, err)

	server, err := NewServer(cfg, &stubSearcher{})
	require.NoError(t, err)
	require.NotNil(t, server)
}
