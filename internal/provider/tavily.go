package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/ca-srg/websearch/internal/types"
)

const tavilyBaseURL = "https://api.tavily.com/search"

// TavilyClient queries the Tavily search API.
type TavilyClient struct {
	cfg        *types.ProviderConfig
	httpClient *http.Client
	baseURL    string
}

func NewTavilyClient(cfg *types.ProviderConfig) *TavilyClient {
	return &TavilyClient{
		cfg:        cfg,
		httpClient: newHTTPClient(cfg),
		baseURL:    tavilyBaseURL,
	}
}

type tavilyRequest struct {
	Query      string `json:"query"`
	MaxResults int    `json:"max_results"`
}

type tavilyResult struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

type tavilyResponse struct {
	Answer       string         `json:"answer"`
	Results      []tavilyResult `json:"results"`
	ResponseTime float64        `json:"response_time"`
}

func (c *TavilyClient) Search(ctx context.Context, query string) (*types.SearchResponse, error) {
	if c.cfg.APIKey == "" {
		return nil, fmt.Errorf("tavily: API key is not configured")
	}

	payload, err := json.Marshal(tavilyRequest{Query: query, MaxResults: c.cfg.MaxResults})
	if err != nil {
		return nil, fmt.Errorf("tavily: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("tavily: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tavily: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(types.ProviderTavily, resp)
	}

	var body tavilyResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("tavily: decode response: %w", err)
	}

	results := make([]types.SearchResult, 0, len(body.Results))
	for i, item := range body.Results {
		if len(results) >= c.cfg.MaxResults {
			break
		}
		results = append(results, types.SearchResult{
			Title:    item.Title,
			URL:      item.URL,
			Snippet:  item.Content,
			Position: i + 1,
			Source:   string(types.ProviderTavily),
		})
	}

	metadata := map[string]interface{}{
		"response_time": body.ResponseTime,
	}
	if body.Answer != "" {
		metadata["answer"] = body.Answer
	}

	return &types.SearchResponse{
		Query:    query,
		Provider: types.ProviderTavily,
		Results:  results,
		Metadata: metadata,
	}, nil
}

func (c *TavilyClient) Close() error {
	closeIdle(c.httpClient)
	return nil
}
