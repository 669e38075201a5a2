package server

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/stacklok/kdbx-mcp/pkg/format"
	"github.com/stacklok/kdbx-mcp/pkg/logger"
)

// previewRows is how many rows of each table the overview shows.
const previewRows = 3

// reservedSuffixes marks internal tables that are hidden from the overview:
// chunked documents, precomputed statistics, and token stores.
var reservedSuffixes = []string{"document", "stats", "token"}

func isInternalTable(name string) bool {
	for _, suffix := range reservedSuffixes {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}

// TablesOverview renders the schema and a short preview of every user-facing
// table. A table that fails to render is reported inline rather than failing
// the whole overview.
func (h *Handler) TablesOverview(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	tables, err := h.client.Tables(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}

	var b strings.Builder
	b.WriteString("# Tables Overview\n")

	count := 0
	for _, table := range tables {
		if isInternalTable(table) {
			continue
		}
		count++

		b.WriteString(fmt.Sprintf("\n## %s\n", table))
		b.WriteString(h.describeTable(ctx, table))
	}

	if count == 0 {
		b.WriteString("\nNo user-facing tables found.\n")
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: "text/plain",
			Text:     b.String(),
		},
	}, nil
}

func (h *Handler) describeTable(ctx context.Context, table string) string {
	var b strings.Builder

	meta, err := h.client.TableMeta(ctx, table)
	if err != nil {
		logger.Warnw("failed to read table schema", "table", table, "error", err)
		return fmt.Sprintf("schema unavailable: %v\n", err)
	}
	schema, err := format.RenderTable(format.NormalizeForDisplay(meta))
	if err != nil {
		return fmt.Sprintf("schema unavailable: %v\n", err)
	}
	b.WriteString("Schema:\n")
	b.WriteString(schema)

	preview, err := h.client.TablePreview(ctx, table, previewRows)
	if err != nil {
		logger.Warnw("failed to preview table", "table", table, "error", err)
		b.WriteString(fmt.Sprintf("preview unavailable: %v\n", err))
		return b.String()
	}
	preview = h.formatter.StripVectorColumns(preview, table)
	rendered, err := format.RenderTable(format.NormalizeForDisplay(preview))
	if err != nil {
		b.WriteString(fmt.Sprintf("preview unavailable: %v\n", err))
		return b.String()
	}
	b.WriteString(fmt.Sprintf("First %d rows:\n", preview.RowCount()))
	b.WriteString(rendered)

	return b.String()
}

// defaultSQLGuidance is served when no guidance file is configured or the
// configured file cannot be read.
const defaultSQLGuidance = `# KDB-X SQL Guidance

The run_sql_query tool executes read-only SQL SELECT statements through the
database's SQL interface.

- Only SELECT statements are accepted. Mutating statements (INSERT, DROP,
  DELETE, TRUNCATE, ALTER, CREATE) are rejected before reaching the database.
- Results are capped at 1000 rows; narrow your query with WHERE clauses and
  aggregation instead of paging through large tables.
- Column and table names are case-sensitive.
- Temporal columns are returned as ISO-8601 strings.
- Use the tables-overview resource to inspect schemas before writing queries.
`

// SQLGuidance serves the SQL guidance text, preferring the configured file
// over the compiled-in fallback.
func (h *Handler) SQLGuidance(_ context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	text := defaultSQLGuidance
	if h.guidancePath != "" {
		raw, err := os.ReadFile(h.guidancePath)
		if err != nil {
			logger.Warnw("failed to read SQL guidance file, serving built-in text",
				"path", h.guidancePath, "error", err)
		} else {
			text = string(raw)
		}
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: "text/markdown",
			Text:     text,
		},
	}, nil
}
