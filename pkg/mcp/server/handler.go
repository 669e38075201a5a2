package server

import (
	"context"
	"fmt"

	"github.com/stacklok/kdbx-mcp/pkg/format"
	"github.com/stacklok/kdbx-mcp/pkg/kdb"
	"github.com/stacklok/kdbx-mcp/pkg/logger"
	"github.com/stacklok/kdbx-mcp/pkg/query"
	"github.com/stacklok/kdbx-mcp/pkg/search"
)

// Handler holds the collaborators behind the MCP tools, resources, and
// prompts. One Handler serves every session.
type Handler struct {
	client       kdb.Client
	executor     *query.Executor
	orchestrator *search.Orchestrator
	formatter    *format.Formatter
	guidancePath string
}

// NewHandler wires a Handler from the database client and the embedding
// stack. guidancePath may be empty; the SQL guidance resource then serves the
// compiled-in text.
func NewHandler(
	client kdb.Client,
	orchestrator *search.Orchestrator,
	formatter *format.Formatter,
	guidancePath string,
) *Handler {
	return &Handler{
		client:       client,
		executor:     query.NewExecutor(client),
		orchestrator: orchestrator,
		formatter:    formatter,
		guidancePath: guidancePath,
	}
}

// Preflight runs the startup connectivity checks. Database reachability and
// the SQL interface are required; the AI search capability is optional and
// its absence only disables the search tools.
func Preflight(ctx context.Context, client kdb.Client) (searchEnabled bool, err error) {
	hasSQL, err := client.HasSQLInterface(ctx)
	if err != nil {
		return false, fmt.Errorf("database is not reachable: %w", err)
	}
	if !hasSQL {
		return false, fmt.Errorf("the SQL interface (.s.e) is not loaded on the database")
	}

	hasAI, err := client.HasAILibs(ctx)
	if err != nil || !hasAI {
		logger.Warnw("AI search capability is not available, disabling search tools", "error", err)
		return false, nil
	}
	return true, nil
}
