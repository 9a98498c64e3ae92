package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/ca-srg/websearch/internal/types"
)

const perplexityBaseURL = "https://api.perplexity.ai/chat/completions"

// PerplexityClient queries the Perplexity chat completions API. The answer is
// grounded by the backend; cited search results map onto the normalized
// result list and the synthesized answer travels in metadata.
type PerplexityClient struct {
	cfg        *types.ProviderConfig
	httpClient *http.Client
	baseURL    string
}

func NewPerplexityClient(cfg *types.ProviderConfig) *PerplexityClient {
	return &PerplexityClient{
		cfg:        cfg,
		httpClient: newHTTPClient(cfg),
		baseURL:    perplexityBaseURL,
	}
}

type perplexityMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type perplexityRequest struct {
	Model    string              `json:"model"`
	Messages []perplexityMessage `json:"messages"`
}

type perplexitySearchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
	Date    string `json:"date"`
}

type perplexityResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message perplexityMessage `json:"message"`
	} `json:"choices"`
	SearchResults []perplexitySearchResult `json:"search_results"`
}

func (c *PerplexityClient) Search(ctx context.Context, query string) (*types.SearchResponse, error) {
	if c.cfg.APIKey == "" {
		return nil, fmt.Errorf("perplexity: API key is not configured")
	}

	payload, err := json.Marshal(perplexityRequest{
		Model: c.cfg.Model,
		Messages: []perplexityMessage{
			{Role: "user", Content: query},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("perplexity: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("perplexity: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("perplexity: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(types.ProviderPerplexity, resp)
	}

	var body perplexityResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("perplexity: decode response: %w", err)
	}

	results := make([]types.SearchResult, 0, len(body.SearchResults))
	for i, item := range body.SearchResults {
		if len(results) >= c.cfg.MaxResults {
			break
		}
		results = append(results, types.SearchResult{
			Title:    item.Title,
			URL:      item.URL,
			Snippet:  item.Snippet,
			Position: i + 1,
			Source:   string(types.ProviderPerplexity),
		})
	}

	metadata := map[string]interface{}{
		"model": c.cfg.Model,
	}
	if len(body.Choices) > 0 {
		metadata["answer"] = body.Choices[0].Message.Content
	}

	return &types.SearchResponse{
		Query:    query,
		Provider: types.ProviderPerplexity,
		Results:  results,
		Metadata: metadata,
	}, nil
}

func (c *PerplexityClient) Close() error {
	closeIdle(c.httpClient)
	return nil
}
