package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/ca-srg/websearch/internal/types"
	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const defaultMultiSearchResults = 5

// searchToolHandler executes the search tools against the coordinator.
type searchToolHandler struct {
	searcher Searcher
	logger   *log.Logger
}

func newSearchToolHandler(searcher Searcher, logger *log.Logger) *searchToolHandler {
	if logger == nil {
		logger = log.Default()
	}
	return &searchToolHandler{
		searcher: searcher,
		logger:   logger,
	}
}

type webSearchArgs struct {
	Query      string `json:"query"`
	Provider   string `json:"provider,omitempty"`
	MaxResults int    `json:"max_results,omitempty"`
	Fallback   bool   `json:"fallback,omitempty"`
}

type multiProviderSearchArgs struct {
	Query                 string   `json:"query"`
	Providers             []string `json:"providers"`
	MaxResultsPerProvider int      `json:"max_results_per_provider,omitempty"`
}

func (h *searchToolHandler) handleWebSearch(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	requestID := uuid.New().String()

	var args webSearchArgs
	if err := unmarshalArgs(req, &args); err != nil {
		return errorResult(fmt.Sprintf("Invalid parameters: %v", err)), nil
	}
	if args.Query == "" {
		return errorResult("Invalid parameters: query cannot be empty"), nil
	}

	var providerType types.ProviderType
	if args.Provider != "" {
		parsed, err := types.ParseProviderType(args.Provider)
		if err != nil {
			return errorResult(fmt.Sprintf("Invalid parameters: %v", err)), nil
		}
		providerType = parsed
	}

	h.logger.Printf("[%s] web_search query=%q provider=%q fallback=%v", requestID, args.Query, args.Provider, args.Fallback)

	var response *types.SearchResponse
	if args.Fallback {
		response = h.searcher.SearchWithFallback(ctx, args.Query, args.MaxResults)
	} else {
		var err error
		response, err = h.searcher.Search(ctx, args.Query, providerType, args.MaxResults)
		if err != nil {
			h.logger.Printf("[%s] search failed: %v", requestID, err)
			return errorResult(fmt.Sprintf("Search failed: %v", err)), nil
		}
	}

	return jsonResult(response)
}

func (h *searchToolHandler) handleMultiProviderSearch(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	requestID := uuid.New().String()

	var args multiProviderSearchArgs
	if err := unmarshalArgs(req, &args); err != nil {
		return errorResult(fmt.Sprintf("Invalid parameters: %v", err)), nil
	}
	if args.Query == "" {
		return errorResult("Invalid parameters: query cannot be empty"), nil
	}
	if len(args.Providers) == 0 {
		return errorResult("Invalid parameters: providers cannot be empty"), nil
	}

	providers := make([]types.ProviderType, 0, len(args.Providers))
	for _, name := range args.Providers {
		parsed, err := types.ParseProviderType(name)
		if err != nil {
			return errorResult(fmt.Sprintf("Invalid parameters: %v", err)), nil
		}
		providers = append(providers, parsed)
	}

	maxResults := args.MaxResultsPerProvider
	if maxResults <= 0 {
		maxResults = defaultMultiSearchResults
	}

	h.logger.Printf("[%s] multi_provider_search query=%q providers=%v", requestID, args.Query, args.Providers)

	results := h.searcher.MultiProviderSearch(ctx, args.Query, providers, maxResults)
	return jsonResult(results)
}

func (h *searchToolHandler) handleListProviders(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	availability := h.searcher.AvailableProviders()

	providers := make(map[string]bool, len(availability))
	for p, available := range availability {
		providers[string(p)] = available
	}

	chain := h.searcher.FallbackChain()
	fallbackOrder := make([]string, 0, len(chain))
	for _, p := range chain {
		fallbackOrder = append(fallbackOrder, string(p))
	}

	return jsonResult(map[string]interface{}{
		"providers":      providers,
		"fallback_order": fallbackOrder,
	})
}

func unmarshalArgs(req *mcp.CallToolRequest, target interface{}) error {
	if req.Params.Arguments == nil {
		return fmt.Errorf("missing arguments")
	}
	if err := json.Unmarshal(req.Params.Arguments, target); err != nil {
		return fmt.Errorf("failed to unmarshal tool arguments: %w", err)
	}
	return nil
}

func jsonResult(payload interface{}) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return errorResult(fmt.Sprintf("Failed to serialize response: %v", err)), nil
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
	}, nil
}

func errorResult(message string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: message}},
		IsError: true,
	}
}
