package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/ca-srg/websearch/internal/types"
	"golang.org/x/time/rate"
)

const duckduckgoBaseURL = "https://api.duckduckgo.com/"

// ddgLimiter throttles requests against the keyless public endpoint. Shared
// across all per-call clients in the process.
var ddgLimiter = rate.NewLimiter(rate.Every(time.Second), 3)

// DuckDuckGoClient queries the DuckDuckGo Instant Answer API. No credential
// is required.
type DuckDuckGoClient struct {
	cfg        *types.ProviderConfig
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
}

func NewDuckDuckGoClient(cfg *types.ProviderConfig) *DuckDuckGoClient {
	return &DuckDuckGoClient{
		cfg:        cfg,
		httpClient: newHTTPClient(cfg),
		baseURL:    duckduckgoBaseURL,
		limiter:    ddgLimiter,
	}
}

type ddgTopic struct {
	FirstURL string     `json:"FirstURL"`
	Text     string     `json:"Text"`
	Topics   []ddgTopic `json:"Topics"`
}

type ddgResponse struct {
	Abstract      string     `json:"Abstract"`
	AbstractText  string     `json:"AbstractText"`
	AbstractURL   string     `json:"AbstractURL"`
	Heading       string     `json:"Heading"`
	RelatedTopics []ddgTopic `json:"RelatedTopics"`
}

func (c *DuckDuckGoClient) Search(ctx context.Context, query string) (*types.SearchResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("duckduckgo: rate limiter wait: %w", err)
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("no_html", "1")
	params.Set("skip_disambig", "1")
	params.Set("kp", safeSearchParam(c.cfg.SafeSearch))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("duckduckgo: build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("duckduckgo: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(types.ProviderDuckDuckGo, resp)
	}

	var body ddgResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("duckduckgo: decode response: %w", err)
	}

	results := make([]types.SearchResult, 0, c.cfg.MaxResults)
	if body.AbstractText != "" && body.AbstractURL != "" {
		results = append(results, types.SearchResult{
			Title:    body.Heading,
			URL:      body.AbstractURL,
			Snippet:  body.AbstractText,
			Position: 1,
			Source:   string(types.ProviderDuckDuckGo),
		})
	}
	for _, topic := range flattenTopics(body.RelatedTopics) {
		if len(results) >= c.cfg.MaxResults {
			break
		}
		if topic.FirstURL == "" || topic.Text == "" {
			continue
		}
		results = append(results, types.SearchResult{
			Title:    topic.Text,
			URL:      topic.FirstURL,
			Snippet:  topic.Text,
			Position: len(results) + 1,
			Source:   string(types.ProviderDuckDuckGo),
		})
	}

	return &types.SearchResponse{
		Query:    query,
		Provider: types.ProviderDuckDuckGo,
		Results:  results,
		Metadata: map[string]interface{}{
			"source":     "instant_answer_api",
			"safesearch": c.cfg.SafeSearch,
		},
	}, nil
}

func (c *DuckDuckGoClient) Close() error {
	closeIdle(c.httpClient)
	return nil
}

// flattenTopics unwraps category groupings into a flat topic list.
func flattenTopics(topics []ddgTopic) []ddgTopic {
	flat := make([]ddgTopic, 0, len(topics))
	for _, topic := range topics {
		if len(topic.Topics) > 0 {
			flat = append(flat, flattenTopics(topic.Topics)...)
			continue
		}
		flat = append(flat, topic)
	}
	return flat
}

func safeSearchParam(level string) string {
	switch level {
	case "strict":
		return "1"
	case "off":
		return "-2"
	default: // moderate
		return "-1"
	}
}
