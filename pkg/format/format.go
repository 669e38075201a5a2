// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package format shapes query and search results for human and LLM
// consumption: it strips internal vector columns, normalizes temporal values,
// and renders fixed-width text tables.
package format

import (
	"fmt"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/stacklok/kdbx-mcp/pkg/embedconfig"
	"github.com/stacklok/kdbx-mcp/pkg/kdb"
)

// Resolver resolves a table's embedding configuration. *embedconfig.Lookup
// satisfies it.
type Resolver interface {
	Resolve(path, table string) (*embedconfig.EmbeddingConfig, error)
}

// Formatter strips vector columns according to the embedding configuration
// table at configPath.
type Formatter struct {
	resolver   Resolver
	configPath string
}

// NewFormatter creates a Formatter backed by the given resolver.
func NewFormatter(resolver Resolver, configPath string) *Formatter {
	return &Formatter{resolver: resolver, configPath: configPath}
}

// StripVectorColumns removes the dense and sparse embedding columns from
// every row, leaving all other columns and their order intact. A table with
// no resolvable embedding configuration passes through unchanged; that is a
// deliberately lenient fallback, not an error path. The input is never
// mutated, and applying the operation twice yields the same output as once.
func (f *Formatter) StripVectorColumns(tbl *kdb.Table, table string) *kdb.Table {
	if tbl == nil {
		return nil
	}

	cfg, err := f.resolver.Resolve(f.configPath, table)
	if err != nil {
		return tbl
	}

	drop := make(map[string]bool, 2)
	if cfg.EmbeddingColumn != "" {
		drop[cfg.EmbeddingColumn] = true
	}
	if cfg.SparseEmbeddingColumn != "" {
		drop[cfg.SparseEmbeddingColumn] = true
	}
	if len(drop) == 0 {
		return tbl
	}

	out := &kdb.Table{Columns: make([]string, 0, len(tbl.Columns))}
	for _, c := range tbl.Columns {
		if !drop[c] {
			out.Columns = append(out.Columns, c)
		}
	}
	out.Rows = make([]kdb.Row, 0, len(tbl.Rows))
	for _, row := range tbl.Rows {
		clean := make(kdb.Row, len(out.Columns))
		for _, c := range out.Columns {
			if v, ok := row[c]; ok {
				clean[c] = v
			}
		}
		out.Rows = append(out.Rows, clean)
	}
	return out
}

// NormalizeForDisplay converts temporal and duration cells to ISO-8601
// strings. All other cell types pass through unchanged. The input is never
// mutated.
func NormalizeForDisplay(tbl *kdb.Table) *kdb.Table {
	if tbl == nil {
		return nil
	}

	out := &kdb.Table{Columns: tbl.Columns, Rows: make([]kdb.Row, 0, len(tbl.Rows))}
	for _, row := range tbl.Rows {
		norm := make(kdb.Row, len(row))
		for c, v := range row {
			norm[c] = normalizeValue(v)
		}
		out.Rows = append(out.Rows, norm)
	}
	return out
}

func normalizeValue(v any) any {
	switch t := v.(type) {
	case time.Time:
		return t.UTC().Format(time.RFC3339Nano)
	case time.Duration:
		return isoDuration(t)
	default:
		return v
	}
}

// isoDuration renders a duration in the ISO-8601 PT…H…M…S form.
func isoDuration(d time.Duration) string {
	sign := ""
	if d < 0 {
		sign = "-"
		d = -d
	}

	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d.Seconds()

	var b strings.Builder
	b.WriteString(sign)
	b.WriteString("PT")
	if h > 0 {
		fmt.Fprintf(&b, "%dH", h)
	}
	if m > 0 {
		fmt.Fprintf(&b, "%dM", m)
	}
	if s > 0 || (h == 0 && m == 0) {
		fmt.Fprintf(&b, "%gS", s)
	}
	return b.String()
}

// RenderTable produces a fixed-width plain-text rendering of the table:
// header row, separator, then one line per record, columns left-aligned and
// padded per column.
func RenderTable(tbl *kdb.Table) (string, error) {
	if tbl == nil || len(tbl.Columns) == 0 {
		return "(no columns)", nil
	}

	var sb strings.Builder
	w := tablewriter.NewWriter(&sb)
	w.Options(
		tablewriter.WithHeader(tbl.Columns),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.Border{
				Left:   tw.State(1),
				Top:    tw.State(1),
				Right:  tw.State(1),
				Bottom: tw.State(1),
			},
		}),
		tablewriter.WithAlignment(tw.MakeAlign(len(tbl.Columns), tw.AlignLeft)),
	)

	for _, row := range tbl.Rows {
		cells := make([]string, len(tbl.Columns))
		for i, c := range tbl.Columns {
			cells[i] = cellString(row[c])
		}
		if err := w.Append(cells); err != nil {
			return "", fmt.Errorf("failed to append row: %w", err)
		}
	}

	if err := w.Render(); err != nil {
		return "", fmt.Errorf("failed to render table: %w", err)
	}
	return sb.String(), nil
}

// RenderMetadata renders a single record as a two-column field/value table,
// preserving the given column order.
func RenderMetadata(row kdb.Row, columns []string) (string, error) {
	var sb strings.Builder
	w := tablewriter.NewWriter(&sb)
	w.Options(
		tablewriter.WithHeader([]string{"field", "value"}),
		tablewriter.WithAlignment(tw.MakeAlign(2, tw.AlignLeft)),
	)

	for _, c := range columns {
		if err := w.Append([]string{c, cellString(row[c])}); err != nil {
			return "", fmt.Errorf("failed to append row: %w", err)
		}
	}

	if err := w.Render(); err != nil {
		return "", fmt.Errorf("failed to render metadata: %w", err)
	}
	return sb.String(), nil
}

func cellString(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%v", v)
}
