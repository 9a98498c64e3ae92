package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/ca-srg/websearch/internal/types"
)

const serpapiBaseURL = "https://serpapi.com/search.json"

// SerpAPIClient queries SerpAPI with the configured engine.
type SerpAPIClient struct {
	cfg        *types.ProviderConfig
	httpClient *http.Client
	baseURL    string
}

func NewSerpAPIClient(cfg *types.ProviderConfig) *SerpAPIClient {
	return &SerpAPIClient{
		cfg:        cfg,
		httpClient: newHTTPClient(cfg),
		baseURL:    serpapiBaseURL,
	}
}

type serpapiOrganicResult struct {
	Position int    `json:"position"`
	Title    string `json:"title"`
	Link     string `json:"link"`
	Snippet  string `json:"snippet"`
}

type serpapiResponse struct {
	Error          string                 `json:"error"`
	OrganicResults []serpapiOrganicResult `json:"organic_results"`
	SearchMetadata struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	} `json:"search_metadata"`
}

func (c *SerpAPIClient) Search(ctx context.Context, query string) (*types.SearchResponse, error) {
	if c.cfg.APIKey == "" {
		return nil, fmt.Errorf("serpapi: API key is not configured")
	}

	params := url.Values{}
	params.Set("engine", c.cfg.Engine)
	params.Set("q", query)
	params.Set("api_key", c.cfg.APIKey)
	params.Set("num", strconv.Itoa(c.cfg.MaxResults))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("serpapi: build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("serpapi: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(types.ProviderSerpAPI, resp)
	}

	var body serpapiResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("serpapi: decode response: %w", err)
	}
	if body.Error != "" {
		return nil, fmt.Errorf("serpapi: backend error: %s", body.Error)
	}

	results := make([]types.SearchResult, 0, len(body.OrganicResults))
	for i, item := range body.OrganicResults {
		if len(results) >= c.cfg.MaxResults {
			break
		}
		position := item.Position
		if position == 0 {
			position = i + 1
		}
		results = append(results, types.SearchResult{
			Title:    item.Title,
			URL:      item.Link,
			Snippet:  item.Snippet,
			Position: position,
			Source:   string(types.ProviderSerpAPI),
		})
	}

	return &types.SearchResponse{
		Query:    query,
		Provider: types.ProviderSerpAPI,
		Results:  results,
		Metadata: map[string]interface{}{
			"engine":    c.cfg.Engine,
			"search_id": body.SearchMetadata.ID,
		},
	}, nil
}

func (c *SerpAPIClient) Close() error {
	closeIdle(c.httpClient)
	return nil
}
