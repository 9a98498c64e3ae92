package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ca-srg/websearch/internal/types"
	"github.com/stretchr/testify/require"
)

func serpapiTestConfig() *types.ProviderConfig {
	return &types.ProviderConfig{
		Provider:       types.ProviderSerpAPI,
		APIKey:         "sk-test",
		MaxResults:     10,
		TimeoutSeconds: 5,
		Engine:         "google",
	}
}

func TestSerpAPISearch(t *testing.T) {
	t.Run("maps organic results", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "google", r.URL.Query().Get("engine"))
			require.Equal(t, "golang", r.URL.Query().Get("q"))
			require.Equal(t, "sk-test", r.URL.Query().Get("api_key"))

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{
				"search_metadata": {"id": "abc123", "status": "Success"},
				"organic_results": [
					{"position": 1, "title": "The Go Programming Language", "link": "https://go.dev", "snippet": "Go is open source"},
					{"position": 2, "title": "Go Docs", "link": "https://go.dev/doc", "snippet": "Documentation"}
				]
			}`))
		}))
		defer server.Close()

		client := NewSerpAPIClient(serpapiTestConfig())
		client.baseURL = server.URL

		response, err := client.Search(context.Background(), "golang")
		require.NoError(t, err)
		require.Equal(t, types.ProviderSerpAPI, response.Provider)
		require.Len(t, response.Results, 2)
		require.Equal(t, "The Go Programming Language", response.Results[0].Title)
		require.Equal(t, "https://go.dev", response.Results[0].URL)
		require.Equal(t, 1, response.Results[0].Position)
		require.Equal(t, "serpapi", response.Results[0].Source)
		require.Equal(t, "abc123", response.Metadata["search_id"])
	})

	t.Run("truncates to max results", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"organic_results": [
				{"title": "a", "link": "https://a"},
				{"title": "b", "link": "https://b"},
				{"title": "c", "link": "https://c"}
			]}`))
		}))
		defer server.Close()

		cfg := serpapiTestConfig()
		cfg.MaxResults = 2
		client := NewSerpAPIClient(cfg)
		client.baseURL = server.URL

		response, err := client.Search(context.Background(), "golang")
		require.NoError(t, err)
		require.Len(t, response.Results, 2)
		// Positions fall back to list order when the backend omits them.
		require.Equal(t, 1, response.Results[0].Position)
		require.Equal(t, 2, response.Results[1].Position)
	})

	t.Run("missing API key", func(t *testing.T) {
		cfg := serpapiTestConfig()
		cfg.APIKey = ""
		client := NewSerpAPIClient(cfg)

		_, err := client.Search(context.Background(), "golang")
		require.Error(t, err)
		require.Contains(t, err.Error(), "API key")
	})

	t.Run("backend error field", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"error": "Google hasn't returned any results for this query."}`))
		}))
		defer server.Close()

		client := NewSerpAPIClient(serpapiTestConfig())
		client.baseURL = server.URL

		_, err := client.Search(context.Background(), "golang")
		require.Error(t, err)
		require.Contains(t, err.Error(), "hasn't returned any results")
	})

	t.Run("non-200 status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error": "Invalid API key"}`))
		}))
		defer server.Close()

		client := NewSerpAPIClient(serpapiTestConfig())
		client.baseURL = server.URL

		_, err := client.Search(context.Background(), "golang")
		require.Error(t, err)
		require.Contains(t, err.Error(), "status 401")
		require.Contains(t, err.Error(), "Invalid API key")
	})
}
