package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ca-srg/websearch/internal/types"
	"github.com/stretchr/testify/require"
)

func ddgTestConfig() *types.ProviderConfig {
	return &types.ProviderConfig{
		Provider:       types.ProviderDuckDuckGo,
		MaxResults:     10,
		TimeoutSeconds: 5,
		SafeSearch:     "moderate",
	}
}

func TestDuckDuckGoSearch(t *testing.T) {
	t.Run("abstract plus related topics", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "json", r.URL.Query().Get("format"))
			require.Equal(t, "1", r.URL.Query().Get("no_html"))
			require.Equal(t, "-1", r.URL.Query().Get("kp"))

			_, _ = w.Write([]byte(`{
				"Heading": "Go (programming language)",
				"AbstractText": "Go is a statically typed language.",
				"AbstractURL": "https://en.wikipedia.org/wiki/Go",
				"RelatedTopics": [
					{"FirstURL": "https://go.dev", "Text": "The Go website"},
					{"Topics": [
						{"FirstURL": "https://go.dev/doc", "Text": "Go documentation"}
					]}
				]
			}`))
		}))
		defer server.Close()

		client := NewDuckDuckGoClient(ddgTestConfig())
		client.baseURL = server.URL

		response, err := client.Search(context.Background(), "golang")
		require.NoError(t, err)
		require.Equal(t, types.ProviderDuckDuckGo, response.Provider)
		require.Len(t, response.Results, 3)

		require.Equal(t, "Go (programming language)", response.Results[0].Title)
		require.Equal(t, "https://en.wikipedia.org/wiki/Go", response.Results[0].URL)
		require.Equal(t, 1, response.Results[0].Position)

		// Nested category topics are flattened.
		require.Equal(t, "https://go.dev/doc", response.Results[2].URL)
		require.Equal(t, 3, response.Results[2].Position)

		require.Equal(t, "instant_answer_api", response.Metadata["source"])
	})

	t.Run("topics without URL or text are skipped", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{
				"RelatedTopics": [
					{"FirstURL": "", "Text": "orphan"},
					{"FirstURL": "https://go.dev", "Text": ""},
					{"FirstURL": "https://go.dev", "Text": "kept"}
				]
			}`))
		}))
		defer server.Close()

		client := NewDuckDuckGoClient(ddgTestConfig())
		client.baseURL = server.URL

		response, err := client.Search(context.Background(), "golang")
		require.NoError(t, err)
		require.Len(t, response.Results, 1)
		require.Equal(t, "kept", response.Results[0].Title)
	})

	t.Run("respects max results", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{
				"RelatedTopics": [
					{"FirstURL": "https://a", "Text": "a"},
					{"FirstURL": "https://b", "Text": "b"},
					{"FirstURL": "https://c", "Text": "c"}
				]
			}`))
		}))
		defer server.Close()

		cfg := ddgTestConfig()
		cfg.MaxResults = 2
		client := NewDuckDuckGoClient(cfg)
		client.baseURL = server.URL

		response, err := client.Search(context.Background(), "golang")
		require.NoError(t, err)
		require.Len(t, response.Results, 2)
	})

	t.Run("non-200 status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer server.Close()

		client := NewDuckDuckGoClient(ddgTestConfig())
		client.baseURL = server.URL

		_, err := client.Search(context.Background(), "golang")
		require.Error(t, err)
		require.Contains(t, err.Error(), "status 429")
	})
}

func TestSafeSearchParam(t *testing.T) {
	require.Equal(t, "1", safeSearchParam("strict"))
	require.Equal(t, "-2", safeSearchParam("off"))
	require.Equal(t, "-1", safeSearchParam("moderate"))
	require.Equal(t, "-1", safeSearchParam(""))
}
