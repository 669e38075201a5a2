// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package search orchestrates the similarity and hybrid search tools: it
// resolves the table's embedding configuration, turns the query text into
// dense and sparse query vectors, issues one remote search call, and shapes
// the answer for the client.
package search

import (
	"context"
	"fmt"

	"github.com/stacklok/kdbx-mcp/pkg/embedconfig"
	"github.com/stacklok/kdbx-mcp/pkg/embeddings"
	"github.com/stacklok/kdbx-mcp/pkg/format"
	"github.com/stacklok/kdbx-mcp/pkg/kdb"
	"github.com/stacklok/kdbx-mcp/pkg/logger"
)

const msgNoResults = "No results found for the query"

// Result is the structured answer of a search tool call. A search never
// returns a bare error to the caller; every failure is folded into a Result
// with Status "error" so the model sees a uniform shape.
type Result struct {
	Status       string    `json:"status"`
	Table        string    `json:"table"`
	RecordsCount int       `json:"recordsCount"`
	Records      []kdb.Row `json:"records,omitempty"`
	Message      string    `json:"message,omitempty"`
}

// ConfigResolver resolves the embedding configuration row of a table.
// *embedconfig.Lookup satisfies it.
type ConfigResolver interface {
	Resolve(path, table string) (*embedconfig.EmbeddingConfig, error)
}

// ProviderSource maps provider names to embedding providers.
// *embeddings.Registry satisfies it.
type ProviderSource interface {
	Get(name string) (embeddings.Provider, error)
}

// Options wires an Orchestrator.
type Options struct {
	Client     kdb.Client
	Resolver   ConfigResolver
	Providers  ProviderSource
	Formatter  *format.Formatter
	ConfigPath string
	DefaultK   int
	Metric     string
}

// Orchestrator runs similarity and hybrid searches end to end.
type Orchestrator struct {
	client     kdb.Client
	resolver   ConfigResolver
	providers  ProviderSource
	formatter  *format.Formatter
	configPath string
	defaultK   int
	metric     string
}

// NewOrchestrator creates an Orchestrator from its wiring options.
func NewOrchestrator(opts Options) *Orchestrator {
	return &Orchestrator{
		client:     opts.Client,
		resolver:   opts.Resolver,
		providers:  opts.Providers,
		formatter:  opts.Formatter,
		configPath: opts.ConfigPath,
		defaultK:   opts.DefaultK,
		metric:     opts.Metric,
	}
}

// Similarity runs a dense vector search over the given table. n caps the
// number of neighbors; n <= 0 falls back to the configured default.
func (o *Orchestrator) Similarity(ctx context.Context, table, query string, n int) (result *Result) {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("similarity search panicked: %v", r)
			result = errorResult(table, fmt.Sprintf("similarity search failed: %v", r))
		}
	}()

	cfg, err := o.resolveDense(table)
	if err != nil {
		return errorResult(table, err.Error())
	}

	provider, err := o.providers.Get(cfg.EmbeddingProvider)
	if err != nil {
		return errorResult(table, err.Error())
	}

	vec, err := provider.Embed(ctx, cfg.EmbeddingModel, query)
	if err != nil {
		return errorResult(table, fmt.Sprintf("failed to embed query: %v", err))
	}

	tbl, err := o.client.VectorSearch(ctx, kdb.VectorSearchParams{
		Table:        table,
		VectorColumn: cfg.EmbeddingColumn,
		Query:        vec,
		K:            o.k(n),
		Metric:       o.metric,
	})
	if err != nil {
		return errorResult(table, fmt.Sprintf("similarity search failed: %v", err))
	}

	return o.finish(table, tbl)
}

// Hybrid runs a fused dense+sparse search over the given table. The table
// must carry a sparse index; its absence is reported as an error result
// before any embedding work is done.
func (o *Orchestrator) Hybrid(ctx context.Context, table, query string, n int) (result *Result) {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("hybrid search panicked: %v", r)
			result = errorResult(table, fmt.Sprintf("hybrid search failed: %v", r))
		}
	}()

	cfg, err := o.resolveDense(table)
	if err != nil {
		return errorResult(table, err.Error())
	}
	if cfg.SparseIndex == "" {
		return errorResult(table, fmt.Sprintf("table %q does not have a sparse index configured", table))
	}

	denseProvider, err := o.providers.Get(cfg.EmbeddingProvider)
	if err != nil {
		return errorResult(table, err.Error())
	}

	// The sparse tokenizer defaults to the dense provider and model.
	tokenizerProvider := cfg.SparseTokenizerProvider
	if tokenizerProvider == "" {
		tokenizerProvider = cfg.EmbeddingProvider
	}
	tokenizerModel := cfg.SparseTokenizerModel
	if tokenizerModel == "" {
		tokenizerModel = cfg.EmbeddingModel
	}
	sparseProvider, err := o.providers.Get(tokenizerProvider)
	if err != nil {
		return errorResult(table, err.Error())
	}

	// Compute both query representations in parallel.
	type denseResult struct {
		vec []float32
		err error
	}
	type sparseResult struct {
		terms embeddings.SparseVector
		err   error
	}
	denseCh := make(chan denseResult, 1)
	sparseCh := make(chan sparseResult, 1)

	go func() {
		vec, err := denseProvider.Embed(ctx, cfg.EmbeddingModel, query)
		denseCh <- denseResult{vec, err}
	}()
	go func() {
		terms, err := sparseProvider.SparseEmbed(ctx, tokenizerModel, query)
		sparseCh <- sparseResult{terms, err}
	}()

	dense := <-denseCh
	sparse := <-sparseCh
	if dense.err != nil {
		return errorResult(table, fmt.Sprintf("failed to embed query: %v", dense.err))
	}
	if sparse.err != nil {
		return errorResult(table, fmt.Sprintf("failed to compute sparse query: %v", sparse.err))
	}

	tbl, err := o.client.HybridSearch(ctx, kdb.HybridSearchParams{
		Table:        table,
		VectorColumn: cfg.EmbeddingColumn,
		SparseIndex:  cfg.SparseIndex,
		Query:        dense.vec,
		SparseQuery:  sparse.terms,
		K:            o.k(n),
		Metric:       o.metric,
	})
	if err != nil {
		return errorResult(table, fmt.Sprintf("hybrid search failed: %v", err))
	}

	return o.finish(table, tbl)
}

// resolveDense resolves the table's configuration row and checks the fields
// dense search depends on.
func (o *Orchestrator) resolveDense(table string) (*embedconfig.EmbeddingConfig, error) {
	cfg, err := o.resolver.Resolve(o.configPath, table)
	if err != nil {
		return nil, err
	}
	if !cfg.HasDenseConfig() {
		return nil, &embedconfig.ConfigError{Table: table, Reason: "no embedding configuration present"}
	}
	return cfg, nil
}

func (o *Orchestrator) k(n int) int {
	if n <= 0 {
		return o.defaultK
	}
	return n
}

// finish strips the stored vector columns, normalizes temporal values, and
// wraps the rows into a success result.
func (o *Orchestrator) finish(table string, tbl *kdb.Table) *Result {
	tbl = o.formatter.StripVectorColumns(tbl, table)
	tbl = format.NormalizeForDisplay(tbl)

	if tbl.RowCount() == 0 {
		return &Result{Status: "success", Table: table, Message: msgNoResults}
	}

	logger.Debugw("search completed", "table", table, "rows", tbl.RowCount())
	return &Result{
		Status:       "success",
		Table:        table,
		RecordsCount: tbl.RowCount(),
		Records:      tbl.Rows,
	}
}

func errorResult(table, message string) *Result {
	return &Result{Status: "error", Table: table, Message: message}
}
