package server

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// RunSQLQuery executes a read-only SQL query.
func (h *Handler) RunSQLQuery(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := struct {
		Query string `json:"query"`
	}{}

	if err := request.BindArguments(&args); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to parse arguments: %v", err)), nil
	}
	if strings.TrimSpace(args.Query) == "" {
		return mcp.NewToolResultError("query must not be empty"), nil
	}

	return mcp.NewToolResultStructuredOnly(h.executor.Run(ctx, args.Query)), nil
}

type searchArgs struct {
	TableName string `json:"table_name"`
	Query     string `json:"query"`
	N         int    `json:"n,omitempty"`
}

func bindSearchArgs(request mcp.CallToolRequest) (*searchArgs, string) {
	args := &searchArgs{}
	if err := request.BindArguments(args); err != nil {
		return nil, fmt.Sprintf("Failed to parse arguments: %v", err)
	}
	if strings.TrimSpace(args.TableName) == "" {
		return nil, "table_name must not be empty"
	}
	if strings.TrimSpace(args.Query) == "" {
		return nil, "query must not be empty"
	}
	return args, ""
}

// SimilaritySearch runs a dense vector search over a table.
func (h *Handler) SimilaritySearch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, errMsg := bindSearchArgs(request)
	if errMsg != "" {
		return mcp.NewToolResultError(errMsg), nil
	}

	result := h.orchestrator.Similarity(ctx, args.TableName, args.Query, args.N)
	return mcp.NewToolResultStructuredOnly(result), nil
}

// HybridSearch runs a fused dense+sparse search over a table.
func (h *Handler) HybridSearch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, errMsg := bindSearchArgs(request)
	if errMsg != "" {
		return mcp.NewToolResultError(errMsg), nil
	}

	result := h.orchestrator.Hybrid(ctx, args.TableName, args.Query, args.N)
	return mcp.NewToolResultStructuredOnly(result), nil
}
