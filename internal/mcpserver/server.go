// Package mcpserver exposes the search coordinator as an MCP server over
// stdio and streamable HTTP transports.
package mcpserver

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"strconv"

	"github.com/ca-srg/websearch/internal/types"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	serverName    = "websearch-mcp-server"
	serverVersion = "1.0.0"
)

// Searcher is the coordinator surface the MCP tools consume.
type Searcher interface {
	Search(ctx context.Context, query string, providerType types.ProviderType, maxResults int) (*types.SearchResponse, error)
	MultiProviderSearch(ctx context.Context, query string, providers []types.ProviderType, maxResultsPerProvider int) map[string]*types.SearchResponse
	SearchWithFallback(ctx context.Context, query string, maxResults int) *types.SearchResponse
	AvailableProviders() map[types.ProviderType]bool
	FallbackChain() []types.ProviderType
}

// Server wraps the MCP SDK server around the search coordinator.
type Server struct {
	cfg       *types.Config
	searcher  Searcher
	sdkServer *mcp.Server
	logger    *log.Logger
}

// NewServer creates an MCP server with the search tools registered.
func NewServer(cfg *types.Config, searcher Searcher) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	if searcher == nil {
		return nil, fmt.Errorf("searcher cannot be nil")
	}

	s := &Server{
		cfg:      cfg,
		searcher: searcher,
		logger:   log.New(os.Stderr, "[MCPServer] ", log.LstdFlags),
	}

	s.sdkServer = mcp.NewServer(&mcp.Implementation{
		Name:    serverName,
		Version: serverVersion,
	}, nil)

	s.registerTools()

	return s, nil
}

func (s *Server) registerTools() {
	handler := newSearchToolHandler(s.searcher, s.logger)

	s.sdkServer.AddTool(webSearchTool(), handler.handleWebSearch)
	s.sdkServer.AddTool(multiProviderSearchTool(), handler.handleMultiProviderSearch)
	s.sdkServer.AddTool(listProvidersTool(), handler.handleListProviders)
}

// ServeStdio runs the server on the stdio transport until ctx is cancelled.
func (s *Server) ServeStdio(ctx context.Context) error {
	s.logger.Printf("serving MCP over stdio")
	return s.sdkServer.Run(ctx, &mcp.StdioTransport{})
}

// ServeHTTP runs the streamable HTTP transport until ctx is cancelled, then
// shuts down gracefully within the configured timeout.
func (s *Server) ServeHTTP(ctx context.Context) error {
	mcpHandler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.sdkServer
	}, nil)

	var handler http.Handler = mcpHandler
	if s.cfg.MCPIPAuthEnabled {
		ipAuth, err := NewIPAuthMiddleware(s.cfg.MCPAllowedIPs, true)
		if err != nil {
			return fmt.Errorf("failed to initialize IP authentication: %w", err)
		}
		handler = ipAuth.Middleware(handler)
	}

	addr := net.JoinHostPort(s.cfg.MCPServerHost, strconv.Itoa(s.cfg.MCPServerPort))
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  s.cfg.MCPServerReadTimeout,
		WriteTimeout: s.cfg.MCPServerWriteTimeout,
		IdleTimeout:  s.cfg.MCPServerIdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Printf("serving MCP over HTTP on %s", addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.MCPServerShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return <-errCh
	}
}
