// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package query runs read-only SQL against the analytics engine: it gates the
// statement text, executes it through the shared connection, and shapes the
// result for the tool boundary.
package query

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/stacklok/kdbx-mcp/pkg/kdb"
	"github.com/stacklok/kdbx-mcp/pkg/logger"
)

// MaxRowsReturned caps how many rows a single query may hand back to the
// client. Rows beyond the cap are never materialized into the response.
const MaxRowsReturned = 1000

// Error classifications surfaced in QueryResult.ErrorType.
const (
	ErrorTypeGeneric             = "error"
	ErrorTypeQueryRejected       = "query_rejected"
	ErrorTypeSQLInterfaceMissing = "sql_interface_not_loaded"
)

// sqlInterfaceMarker appears in the engine's error text when the SQL
// capability has not been loaded.
const sqlInterfaceMarker = ".s.e"

const sqlInterfaceRemediation = "The SQL interface is not loaded on the KDB-X process. " +
	"Run `\\l s.k_` (or start the process with the sql package enabled) and try again."

// deniedKeywords is the denylist applied to statements that do not start with
// SELECT. This is a textual heuristic, not a SQL parser: a keyword hidden by
// comments or unusual whitespace can slip through, and a SELECT containing one
// of these words in a string literal is still allowed.
var deniedKeywords = []string{"INSERT", "DROP", "DELETE", "TRUNCATE", "ALTER", "CREATE"}

// A SQLRunner evaluates a SQL statement remotely. *kdb.Client satisfies it.
type SQLRunner interface {
	QuerySQL(ctx context.Context, query string) (*kdb.Table, error)
}

// QueryResult is the structured outcome handed to the tool boundary.
type QueryResult struct {
	Status           string    `json:"status"`
	Columns          []string  `json:"columns,omitempty"`
	Data             []kdb.Row `json:"data,omitempty"`
	Message          string    `json:"message,omitempty"`
	ErrorType        string    `json:"error_type,omitempty"`
	TechnicalDetails string    `json:"technical_details,omitempty"`
}

// Executor validates and runs read-only SQL queries.
type Executor struct {
	db SQLRunner
}

// NewExecutor creates an Executor on top of the given runner.
func NewExecutor(db SQLRunner) *Executor {
	return &Executor{db: db}
}

// Run executes a SQL SELECT and shapes the result. Failures never escape as
// errors; every outcome is a QueryResult with Status set.
func (e *Executor) Run(ctx context.Context, sqlText string) *QueryResult {
	if reason := rejectUnsafe(sqlText); reason != "" {
		logger.Warnw("query rejected before execution", "reason", reason)
		return &QueryResult{
			Status:    "error",
			Message:   reason,
			ErrorType: ErrorTypeQueryRejected,
		}
	}

	tbl, err := e.db.QuerySQL(ctx, sqlText)
	if err != nil {
		return classifyFailure(err)
	}

	switch n := tbl.RowCount(); {
	case n == 0:
		return &QueryResult{Status: "success", Data: []kdb.Row{}, Message: "No rows returned"}
	case n > MaxRowsReturned:
		cut := tbl.Truncate(MaxRowsReturned)
		return &QueryResult{
			Status:  "success",
			Columns: cut.Columns,
			Data:    cut.Rows,
			Message: fmt.Sprintf("Showing first %d of %d rows", MaxRowsReturned, n),
		}
	default:
		return &QueryResult{Status: "success", Columns: tbl.Columns, Data: tbl.Rows}
	}
}

// rejectUnsafe returns a non-empty rejection reason when the statement trips
// the mutating-keyword denylist. SELECT-prefixed statements always pass, even
// when a denied keyword appears as a substring.
func rejectUnsafe(sqlText string) string {
	upper := strings.ToUpper(strings.TrimSpace(sqlText))
	if upper == "" {
		return "query must not be empty"
	}
	if strings.HasPrefix(upper, "SELECT") {
		return ""
	}
	for _, kw := range deniedKeywords {
		if strings.Contains(upper, kw) {
			return fmt.Sprintf("only SELECT statements are allowed; query contains %s", kw)
		}
	}
	return ""
}

func classifyFailure(err error) *QueryResult {
	var connErr *kdb.ConnectionError
	if errors.As(err, &connErr) {
		return &QueryResult{
			Status:           "error",
			Message:          "Could not reach the database",
			ErrorType:        ErrorTypeGeneric,
			TechnicalDetails: err.Error(),
		}
	}

	if strings.Contains(err.Error(), sqlInterfaceMarker) {
		return &QueryResult{
			Status:           "error",
			Message:          sqlInterfaceRemediation,
			ErrorType:        ErrorTypeSQLInterfaceMissing,
			TechnicalDetails: err.Error(),
		}
	}

	return &QueryResult{
		Status:           "error",
		Message:          "Query execution failed",
		ErrorType:        ErrorTypeGeneric,
		TechnicalDetails: err.Error(),
	}
}
