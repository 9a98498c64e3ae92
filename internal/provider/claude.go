package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/ca-srg/websearch/internal/types"
)

const (
	claudeBaseURL          = "https://api.anthropic.com/v1/messages"
	claudeAPIVersion       = "2023-06-01"
	claudeModel            = "claude-sonnet-4-5"
	claudeMaxTokens        = 1024
	claudeWebSearchVersion = "web_search_20250305"
)

// ClaudeClient searches through the Anthropic Messages API using the
// server-side web_search tool. Result blocks map onto the normalized result
// list; the model's answer text travels in metadata.
type ClaudeClient struct {
	cfg        *types.ProviderConfig
	httpClient *http.Client
	baseURL    string
}

func NewClaudeClient(cfg *types.ProviderConfig) *ClaudeClient {
	return &ClaudeClient{
		cfg:        cfg,
		httpClient: newHTTPClient(cfg),
		baseURL:    claudeBaseURL,
	}
}

type claudeTool struct {
	Type    string `json:"type"`
	Name    string `json:"name"`
	MaxUses int    `json:"max_uses,omitempty"`
}

type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type claudeRequest struct {
	Model     string          `json:"model"`
	MaxTokens int             `json:"max_tokens"`
	Tools     []claudeTool    `json:"tools"`
	Messages  []claudeMessage `json:"messages"`
}

type claudeWebSearchResult struct {
	Type  string `json:"type"`
	URL   string `json:"url"`
	Title string `json:"title"`
}

type claudeContentBlock struct {
	Type    string                  `json:"type"`
	Text    string                  `json:"text,omitempty"`
	Content []claudeWebSearchResult `json:"content,omitempty"`
}

type claudeResponse struct {
	Model   string               `json:"model"`
	Content []claudeContentBlock `json:"content"`
}

func (c *ClaudeClient) Search(ctx context.Context, query string) (*types.SearchResponse, error) {
	if c.cfg.APIKey == "" {
		return nil, fmt.Errorf("claude: API key is not configured")
	}

	payload, err := json.Marshal(claudeRequest{
		Model:     claudeModel,
		MaxTokens: claudeMaxTokens,
		Tools: []claudeTool{
			{Type: claudeWebSearchVersion, Name: "web_search", MaxUses: 1},
		},
		Messages: []claudeMessage{
			{Role: "user", Content: query},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("claude: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("claude: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.cfg.APIKey)
	req.Header.Set("anthropic-version", claudeAPIVersion)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("claude: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(types.ProviderClaude, resp)
	}

	var body claudeResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("claude: decode response: %w", err)
	}

	results := make([]types.SearchResult, 0, c.cfg.MaxResults)
	var answer strings.Builder
	for _, block := range body.Content {
		switch block.Type {
		case "text":
			answer.WriteString(block.Text)
		case "web_search_tool_result":
			for _, item := range block.Content {
				if item.Type != "web_search_result" || len(results) >= c.cfg.MaxResults {
					continue
				}
				results = append(results, types.SearchResult{
					Title:    item.Title,
					URL:      item.URL,
					Position: len(results) + 1,
					Source:   string(types.ProviderClaude),
				})
			}
		}
	}

	metadata := map[string]interface{}{
		"model": body.Model,
	}
	if answer.Len() > 0 {
		metadata["answer"] = answer.String()
	}

	return &types.SearchResponse{
		Query:    query,
		Provider: types.ProviderClaude,
		Results:  results,
		Metadata: metadata,
	}, nil
}

func (c *ClaudeClient) Close() error {
	closeIdle(c.httpClient)
	return nil
}
