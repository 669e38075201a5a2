// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package kdb

// Row maps column names to scalar or temporal values for a single record.
// Go maps are unordered, so the display order of columns is carried by
// Table.Columns instead.
type Row map[string]any

// Table is the decoded form of a tabular query result. Columns preserves the
// insertion order the database returned them in.
type Table struct {
	Columns []string
	Rows    []Row
}

// RowCount returns the number of rows in the table.
func (t *Table) RowCount() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Truncate returns a table containing at most n rows. The original table is
// never mutated; when no truncation is needed the receiver is returned as is.
func (t *Table) Truncate(n int) *Table {
	if t == nil || len(t.Rows) <= n {
		return t
	}
	return &Table{Columns: t.Columns, Rows: t.Rows[:n]}
}
