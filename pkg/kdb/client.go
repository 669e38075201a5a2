// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package kdb

//go:generate mockgen -destination=mocks/mock_client.go -package=mocks github.com/stacklok/kdbx-mcp/pkg/kdb Client

import (
	"context"
	"fmt"
	"sort"
	"time"

	q "github.com/sv/kdbgo"
)

// Server-side entry points. The SQL interface and the AI libs are optional
// capabilities of the engine; their presence is probed at startup.
const (
	sqlExecFn          = ".s.e"
	similaritySearchFn = ".ai.similaritySearch"
	hybridSearchFn     = ".ai.hybridSearch"

	tablesExpr   = "tables[]"
	sqlProbeExpr = `@[{value x;1b};".s.e";{[e]0b}]`
	aiProbeExpr  = `@[{value x;1b};".ai.similaritySearch";{[e]0b}]`

	metaFn    = "meta"
	previewFn = "{[t;n] n sublist 0! value t}"
)

// VectorSearchParams describes one dense similarity search remote call.
type VectorSearchParams struct {
	Table        string
	VectorColumn string
	Query        []float32
	K            int
	Metric       string
}

// HybridSearchParams describes one hybrid search remote call. The engine
// fuses the dense and sparse branches server-side with reciprocal-rank fusion.
type HybridSearchParams struct {
	Table        string
	VectorColumn string
	SparseIndex  string
	Query        []float32
	SparseQuery  map[string]float64
	K            int
	Metric       string
}

// Client issues the remote calls the MCP tools depend on. All methods are
// bounded by the configured connect timeout and safe for concurrent use.
type Client interface {
	// QuerySQL evaluates a SQL statement through the engine's SQL interface.
	QuerySQL(ctx context.Context, query string) (*Table, error)

	// VectorSearch issues one dense similarity search.
	VectorSearch(ctx context.Context, p VectorSearchParams) (*Table, error)

	// HybridSearch issues one fused dense+sparse search.
	HybridSearch(ctx context.Context, p HybridSearchParams) (*Table, error)

	// Tables lists the table names defined in the root namespace.
	Tables(ctx context.Context) ([]string, error)

	// TableMeta returns the schema (meta) of a table.
	TableMeta(ctx context.Context, table string) (*Table, error)

	// TablePreview returns up to n rows of a table.
	TablePreview(ctx context.Context, table string, n int) (*Table, error)

	// HasSQLInterface reports whether the SQL capability is loaded.
	HasSQLInterface(ctx context.Context) (bool, error)

	// HasAILibs reports whether the vector/hybrid search capability is loaded.
	HasAILibs(ctx context.Context) (bool, error)

	// Close releases the underlying connection.
	Close() error
}

type client struct {
	pool    *Pool
	timeout time.Duration
}

// NewClient creates a Client on top of its own size-one connection pool.
// The config must have been validated.
func NewClient(cfg *Config) Client {
	return &client{pool: NewPool(cfg), timeout: cfg.ConnectTimeout}
}

// NewClientWithPool creates a Client that shares an externally owned pool.
func NewClientWithPool(pool *Pool) Client {
	return &client{pool: pool, timeout: pool.cfg.ConnectTimeout}
}

func (c *client) QuerySQL(ctx context.Context, query string) (*Table, error) {
	res, err := c.call(ctx, sqlExecFn, charVector(query))
	if err != nil {
		return nil, err
	}
	return decodeTable(res)
}

func (c *client) VectorSearch(ctx context.Context, p VectorSearchParams) (*Table, error) {
	res, err := c.call(ctx, similaritySearchFn,
		q.Symbol(p.Table),
		q.Symbol(p.VectorColumn),
		q.FloatV(toFloat64(p.Query)),
		q.Long(int64(p.K)),
		q.Symbol(p.Metric),
	)
	if err != nil {
		return nil, err
	}
	return decodeTable(res)
}

func (c *client) HybridSearch(ctx context.Context, p HybridSearchParams) (*Table, error) {
	res, err := c.call(ctx, hybridSearchFn,
		q.Symbol(p.Table),
		q.Symbol(p.VectorColumn),
		q.Symbol(p.SparseIndex),
		q.FloatV(toFloat64(p.Query)),
		sparseDict(p.SparseQuery),
		q.Long(int64(p.K)),
		q.Symbol(p.Metric),
	)
	if err != nil {
		return nil, err
	}
	return decodeTable(res)
}

func (c *client) Tables(ctx context.Context) ([]string, error) {
	res, err := c.call(ctx, tablesExpr)
	if err != nil {
		return nil, err
	}
	return decodeSymbols(res)
}

func (c *client) TableMeta(ctx context.Context, table string) (*Table, error) {
	res, err := c.call(ctx, metaFn, q.Symbol(table))
	if err != nil {
		return nil, err
	}
	return decodeTable(res)
}

func (c *client) TablePreview(ctx context.Context, table string, n int) (*Table, error) {
	res, err := c.call(ctx, previewFn, q.Symbol(table), q.Long(int64(n)))
	if err != nil {
		return nil, err
	}
	return decodeTable(res)
}

func (c *client) HasSQLInterface(ctx context.Context) (bool, error) {
	res, err := c.call(ctx, sqlProbeExpr)
	if err != nil {
		return false, err
	}
	return decodeBool(res)
}

func (c *client) HasAILibs(ctx context.Context) (bool, error) {
	res, err := c.call(ctx, aiProbeExpr)
	if err != nil {
		return false, err
	}
	return decodeBool(res)
}

func (c *client) Close() error {
	return c.pool.Close()
}

// call acquires the shared connection and issues one remote call bounded by
// the configured timeout. The IPC stream carries at most one outstanding
// request; if the deadline expires the connection is invalidated because the
// late response would otherwise be read as the answer to the next call.
func (c *client) call(ctx context.Context, cmd string, args ...*q.K) (*q.K, error) {
	conn, err := c.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	type callResult struct {
		res *q.K
		err error
	}
	done := make(chan callResult, 1)
	go func() {
		res, err := conn.call(cmd, args...)
		done <- callResult{res, err}
	}()

	select {
	case r := <-done:
		return r.res, r.err
	case <-ctx.Done():
		c.pool.invalidate(conn)
		return nil, fmt.Errorf("remote call abandoned: %w", ctx.Err())
	}
}

func charVector(s string) *q.K {
	return &q.K{Type: q.KC, Attr: q.NONE, Data: s}
}

func toFloat64(v []float32) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = float64(x)
	}
	return out
}

// sparseDict converts a term-weight map into a q dictionary with sorted keys
// so that identical queries produce byte-identical payloads.
func sparseDict(terms map[string]float64) *q.K {
	keys := make([]string, 0, len(terms))
	for k := range terms {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	weights := make([]float64, len(keys))
	for i, k := range keys {
		weights[i] = terms[k]
	}
	return q.NewDict(q.SymbolV(keys), q.FloatV(weights))
}
