// Package server assembles the KDB-X MCP server: read-only SQL and search
// tools, schema and guidance resources, and the table analysis prompt, served
// over stdio or streamable HTTP.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/stacklok/kdbx-mcp/pkg/logger"
)

// Config holds the server-facing settings.
type Config struct {
	Name      string
	Version   string
	Transport string
	Host      string
	Port      int

	// SearchEnabled gates the similarity and hybrid search tools; it is the
	// outcome of the AI-capability preflight probe.
	SearchEnabled bool
}

// Server is the KDB-X MCP server over one of the supported transports.
type Server struct {
	config     *Config
	mcpServer  *server.MCPServer
	httpServer *http.Server
	handler    *Handler
}

// New creates the MCP server and registers every tool, resource, and prompt.
func New(ctx context.Context, config *Config, handler *Handler) *Server {
	mcpServer := server.NewMCPServer(
		config.Name,
		config.Version,
		server.WithToolCapabilities(false),
		server.WithLogging(),
	)

	registerTools(mcpServer, handler, config.SearchEnabled)
	registerResources(mcpServer, handler)
	registerPrompts(mcpServer, handler)

	s := &Server{
		config:    config,
		mcpServer: mcpServer,
		handler:   handler,
	}

	if config.Transport == "streamable-http" {
		addr := fmt.Sprintf("%s:%d", config.Host, config.Port)
		streamableServer := server.NewStreamableHTTPServer(
			mcpServer,
			server.WithEndpointPath("/mcp"),
			server.WithHTTPContextFunc(func(_ context.Context, _ *http.Request) context.Context {
				return ctx
			}),
		)

		s.httpServer = &http.Server{
			Addr:              addr,
			Handler:           streamableServer,
			ReadHeaderTimeout: 10 * time.Second, // Prevent Slowloris attacks
		}
	}

	return s
}

// Start serves until the transport shuts down. Over stdio it returns when
// the client closes the stream; over HTTP it returns when Shutdown is called.
func (s *Server) Start() error {
	if s.httpServer == nil {
		logger.Info("Starting KDB-X MCP server on stdio")
		if err := server.ServeStdio(s.mcpServer); err != nil {
			return fmt.Errorf("MCP server error: %w", err)
		}
		return nil
	}

	logger.Infof("Starting KDB-X MCP server on http://%s/mcp", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("MCP server error: %w", err)
	}
	return nil
}

// Shutdown drains the HTTP transport. It is a no-op over stdio.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	logger.Info("Shutting down MCP server...")
	return s.httpServer.Shutdown(ctx)
}

// Address returns the MCP endpoint for the HTTP transport.
func (s *Server) Address() string {
	if s.httpServer == nil {
		return "stdio"
	}
	return fmt.Sprintf("http://%s/mcp", s.httpServer.Addr)
}

// registerTools registers the tool surface. The search tools are only
// offered when the database carries the AI search capability.
func registerTools(mcpServer *server.MCPServer, handler *Handler, searchEnabled bool) {
	mcpServer.AddTool(mcp.Tool{
		Name:        "run_sql_query",
		Description: "Run a read-only SQL SELECT query against the KDB-X database",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "SQL SELECT statement to execute",
				},
			},
			Required: []string{"query"},
		},
	}, handler.RunSQLQuery)

	if !searchEnabled {
		return
	}

	mcpServer.AddTool(mcp.Tool{
		Name:        "similarity_search",
		Description: "Find the rows of a table most similar to a natural language query using dense vector search",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"table_name": map[string]interface{}{
					"type":        "string",
					"description": "Name of the table to search",
				},
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Natural language query text",
				},
				"n": map[string]interface{}{
					"type":        "integer",
					"description": "Number of results to return (defaults to the configured k)",
				},
			},
			Required: []string{"table_name", "query"},
		},
	}, handler.SimilaritySearch)

	mcpServer.AddTool(mcp.Tool{
		Name:        "hybrid_search",
		Description: "Search a table by fusing dense vector similarity with sparse BM25 ranking; requires a sparse index on the table",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"table_name": map[string]interface{}{
					"type":        "string",
					"description": "Name of the table to search",
				},
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Natural language query text",
				},
				"n": map[string]interface{}{
					"type":        "integer",
					"description": "Number of results to return (defaults to the configured k)",
				},
			},
			Required: []string{"table_name", "query"},
		},
	}, handler.HybridSearch)
}

func registerResources(mcpServer *server.MCPServer, handler *Handler) {
	mcpServer.AddResource(mcp.Resource{
		URI:         "kdbx://tables-overview",
		Name:        "Tables Overview",
		Description: "Schema and a short preview of every user-facing table",
		MIMEType:    "text/plain",
	}, handler.TablesOverview)

	mcpServer.AddResource(mcp.Resource{
		URI:         "kdbx://sql-guidance",
		Name:        "SQL Guidance",
		Description: "Guidance for writing SQL queries against KDB-X",
		MIMEType:    "text/markdown",
	}, handler.SQLGuidance)
}

func registerPrompts(mcpServer *server.MCPServer, handler *Handler) {
	mcpServer.AddPrompt(mcp.NewPrompt("table_analysis",
		mcp.WithPromptDescription("Generate an analysis prompt for a table"),
		mcp.WithArgument("table_name",
			mcp.ArgumentDescription("Name of the table to analyze"),
			mcp.RequiredArgument(),
		),
		mcp.WithArgument("analysis_type",
			mcp.ArgumentDescription("Type of analysis: statistical or data_quality (default statistical)"),
		),
		mcp.WithArgument("sample_size",
			mcp.ArgumentDescription("Number of rows to sample (default 10)"),
		),
	), handler.TableAnalysis)
}
