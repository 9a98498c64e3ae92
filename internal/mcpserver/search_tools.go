package mcpserver

import (
	"encoding/json"

	"github.com/ca-srg/websearch/internal/types"
	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func providerEnum() []string {
	all := types.AllProviders()
	names := make([]string, 0, len(all))
	for _, p := range all {
		names = append(names, string(p))
	}
	return names
}

// schemaFromMap converts a plain schema map into the SDK schema type.
func schemaFromMap(schemaMap map[string]interface{}) *jsonschema.Schema {
	var schema *jsonschema.Schema
	schemaBytes, err := json.Marshal(schemaMap)
	if err == nil {
		schema = &jsonschema.Schema{}
		_ = json.Unmarshal(schemaBytes, schema)
	}
	return schema
}

func webSearchTool() *mcp.Tool {
	schemaMap := map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"query": map[string]interface{}{
				"type":        "string",
				"description": "Search query text",
			},
			"provider": map[string]interface{}{
				"type":        "string",
				"description": "Search provider to use; defaults to the configured default provider",
				"enum":        providerEnum(),
			},
			"max_results": map[string]interface{}{
				"type":        "integer",
				"description": "Maximum number of results to return (1-100)",
				"minimum":     1,
				"maximum":     100,
			},
			"fallback": map[string]interface{}{
				"type":        "boolean",
				"description": "Try available providers in order until one succeeds",
				"default":     false,
			},
		},
		"required": []string{"query"},
	}

	return &mcp.Tool{
		Name:        "web_search",
		Description: "Search the web using a configured provider, optionally falling back through all available providers",
		InputSchema: schemaFromMap(schemaMap),
	}
}

func multiProviderSearchTool() *mcp.Tool {
	schemaMap := map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"query": map[string]interface{}{
				"type":        "string",
				"description": "Search query text",
			},
			"providers": map[string]interface{}{
				"type":        "array",
				"description": "Providers to query concurrently",
				"items": map[string]interface{}{
					"type": "string",
					"enum": providerEnum(),
				},
				"minItems": 1,
			},
			"max_results_per_provider": map[string]interface{}{
				"type":        "integer",
				"description": "Maximum number of results per provider (1-100)",
				"minimum":     1,
				"maximum":     100,
				"default":     5,
			},
		},
		"required": []string{"query", "providers"},
	}

	return &mcp.Tool{
		Name:        "multi_provider_search",
		Description: "Search the web using multiple providers concurrently and compare results",
		InputSchema: schemaFromMap(schemaMap),
	}
}

func listProvidersTool() *mcp.Tool {
	schemaMap := map[string]interface{}{
		"type":       "object",
		"properties": map[string]interface{}{},
	}

	return &mcp.Tool{
		Name:        "list_providers",
		Description: "List search providers, their availability, and the fallback order",
		InputSchema: schemaFromMap(schemaMap),
	}
}
