// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package embedconfig resolves per-table embedding configuration from the
// side configuration table that ships with the database deployment.
package embedconfig

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/stacklok/kdbx-mcp/pkg/logger"
)

// EmbeddingConfig describes how one table's embeddings are stored and which
// provider produced them. Everything except Table is optional.
type EmbeddingConfig struct {
	Table                   string
	EmbeddingColumn         string
	EmbeddingProvider       string
	EmbeddingModel          string
	SparseEmbeddingColumn   string
	SparseIndex             string
	SparseTokenizerProvider string
	SparseTokenizerModel    string
}

// HasDenseConfig reports whether the fields required for similarity search
// are all present.
func (c *EmbeddingConfig) HasDenseConfig() bool {
	return c.EmbeddingColumn != "" && c.EmbeddingProvider != "" && c.EmbeddingModel != ""
}

// ConfigError indicates missing or ambiguous embedding configuration.
type ConfigError struct {
	Table  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("embedding configuration for table %q: %s", e.Table, e.Reason)
}

// Lookup loads embedding configuration tables and caches them by path for the
// process lifetime. The table is assumed static while the server runs; no
// invalidation is attempted.
type Lookup struct {
	loadFile func(string) ([]byte, error)

	mu    sync.Mutex
	cache map[string][]EmbeddingConfig
}

// NewLookup creates an empty Lookup. Nothing is read until the first Resolve.
func NewLookup() *Lookup {
	return &Lookup{
		loadFile: os.ReadFile,
		cache:    make(map[string][]EmbeddingConfig),
	}
}

// Resolve returns the configuration row for the given table, loading the
// backing file on first use of its path. Zero or multiple matching rows is a
// hard error, never silently resolved.
func (l *Lookup) Resolve(path, table string) (*EmbeddingConfig, error) {
	rows, err := l.load(path)
	if err != nil {
		return nil, err
	}

	var match *EmbeddingConfig
	for i := range rows {
		if rows[i].Table != table {
			continue
		}
		if match != nil {
			return nil, &ConfigError{Table: table, Reason: "multiple configuration rows match"}
		}
		match = &rows[i]
	}
	if match == nil {
		return nil, &ConfigError{Table: table, Reason: "no configuration row found"}
	}

	out := *match
	return &out, nil
}

// All returns every configuration row of the backing table, loading it on
// first use. Used for startup model warming.
func (l *Lookup) All(path string) ([]EmbeddingConfig, error) {
	rows, err := l.load(path)
	if err != nil {
		return nil, err
	}
	return append([]EmbeddingConfig(nil), rows...), nil
}

func (l *Lookup) load(path string) ([]EmbeddingConfig, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if rows, ok := l.cache[path]; ok {
		return rows, nil
	}

	raw, err := l.loadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read embedding configuration table %s: %w", path, err)
	}

	rows, err := parseTable(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse embedding configuration table %s: %w", path, err)
	}

	logger.Infow("embedding configuration loaded", "path", path, "tables", len(rows))
	l.cache[path] = rows
	return rows, nil
}

func parseTable(raw []byte) ([]EmbeddingConfig, error) {
	r := csv.NewReader(strings.NewReader(string(raw)))
	r.TrimLeadingSpace = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("table has no header row")
	}

	col := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	if _, ok := col["table"]; !ok {
		return nil, fmt.Errorf("table column is required in the header")
	}

	field := func(record []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	rows := make([]EmbeddingConfig, 0, len(records)-1)
	for _, record := range records[1:] {
		name := field(record, "table")
		if name == "" {
			continue
		}
		rows = append(rows, EmbeddingConfig{
			Table:                   name,
			EmbeddingColumn:         field(record, "embedding_column"),
			EmbeddingProvider:       field(record, "embedding_provider"),
			EmbeddingModel:          field(record, "embedding_model"),
			SparseEmbeddingColumn:   field(record, "sparse_embedding_column"),
			SparseIndex:             field(record, "sparse_index"),
			SparseTokenizerProvider: field(record, "sparse_tokenizer_provider"),
			SparseTokenizerModel:    field(record, "sparse_tokenizer_model"),
		})
	}
	return rows, nil
}
