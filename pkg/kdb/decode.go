// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package kdb

import (
	"fmt"
	"reflect"
	"time"

	q "github.com/sv/kdbgo"
)

// decodeTable converts a raw IPC result into a Table. It understands plain
// tables, keyed tables (meta results), dictionaries and the empty list that
// q returns for queries with no output.
func decodeTable(res *q.K) (*Table, error) {
	if res == nil {
		return &Table{}, nil
	}

	switch res.Type {
	case q.XT:
		kt, ok := res.Data.(q.Table)
		if !ok {
			return nil, fmt.Errorf("malformed table payload of type %T", res.Data)
		}
		return fromKTable(&kt)

	case q.XD:
		d, ok := res.Data.(q.Dict)
		if !ok {
			return nil, fmt.Errorf("malformed dict payload of type %T", res.Data)
		}
		// Keyed tables (e.g. meta output) are a dict of two tables; splice the
		// key columns back in front of the value columns.
		if d.Key.Type == q.XT && d.Value.Type == q.XT {
			return fromKeyedTable(&d)
		}
		return fromDict(&d)

	case q.K0:
		// The empty list a query with no matches evaluates to.
		return &Table{}, nil

	default:
		return nil, fmt.Errorf("expected tabular result, got q type %d", res.Type)
	}
}

func fromKTable(kt *q.Table) (*Table, error) {
	out := &Table{Columns: append([]string(nil), kt.Columns...)}
	if len(kt.Data) == 0 {
		return out, nil
	}

	rows := vectorLen(kt.Data[0])
	out.Rows = make([]Row, 0, rows)
	for i := 0; i < rows; i++ {
		row := make(Row, len(kt.Columns))
		for c, name := range kt.Columns {
			row[name] = cellValue(kt.Data[c], i)
		}
		out.Rows = append(out.Rows, row)
	}
	return out, nil
}

func fromKeyedTable(d *q.Dict) (*Table, error) {
	key, ok := d.Key.Data.(q.Table)
	if !ok {
		return nil, fmt.Errorf("malformed keyed table key of type %T", d.Key.Data)
	}
	value, ok := d.Value.Data.(q.Table)
	if !ok {
		return nil, fmt.Errorf("malformed keyed table value of type %T", d.Value.Data)
	}

	merged := q.Table{
		Columns: append(append([]string(nil), key.Columns...), value.Columns...),
		Data:    append(append([]*q.K(nil), key.Data...), value.Data...),
	}
	return fromKTable(&merged)
}

// fromDict renders a plain dictionary as a single-row table so that callers
// never have to special-case scalar metadata results.
func fromDict(d *q.Dict) (*Table, error) {
	keys, ok := d.Key.Data.([]string)
	if !ok {
		return nil, fmt.Errorf("dict keys of type %T are not symbols", d.Key.Data)
	}

	row := make(Row, len(keys))
	for i, k := range keys {
		row[k] = cellValue(d.Value, i)
	}
	return &Table{Columns: append([]string(nil), keys...), Rows: []Row{row}}, nil
}

// cellValue extracts one element from a column vector. Char columns arrive as
// mixed lists of char vectors, which is why the nested *q.K case resolves to
// atomValue.
func cellValue(col *q.K, i int) any {
	switch data := col.Data.(type) {
	case []bool:
		return data[i]
	case []byte:
		return data[i]
	case []int16:
		return data[i]
	case []int32:
		return data[i]
	case []int64:
		return data[i]
	case []float32:
		return data[i]
	case []float64:
		return data[i]
	case []string:
		return data[i]
	case []time.Time:
		return data[i]
	case []time.Duration:
		return data[i]
	case string:
		// char vector indexed as an atom
		return string(data[i])
	case []*q.K:
		return atomValue(data[i])
	default:
		v := reflect.ValueOf(col.Data)
		if v.Kind() == reflect.Slice && i < v.Len() {
			return v.Index(i).Interface()
		}
		return nil
	}
}

func atomValue(k *q.K) any {
	if k == nil {
		return nil
	}
	switch k.Type {
	case q.KC:
		// char vectors decode to Go strings
		return k.Data
	case q.XT, q.XD:
		nested, err := decodeTable(k)
		if err != nil {
			return k.Data
		}
		return nested
	default:
		return k.Data
	}
}

func vectorLen(col *q.K) int {
	if col == nil {
		return 0
	}
	if s, ok := col.Data.(string); ok {
		return len(s)
	}
	v := reflect.ValueOf(col.Data)
	if v.Kind() == reflect.Slice {
		return v.Len()
	}
	return 0
}

// decodeBool interprets the result of a capability probe expression.
func decodeBool(res *q.K) (bool, error) {
	if res == nil {
		return false, fmt.Errorf("empty probe result")
	}
	if b, ok := res.Data.(bool); ok {
		return b, nil
	}
	return false, fmt.Errorf("expected boolean probe result, got q type %d", res.Type)
}

// decodeSymbols interprets a symbol vector result such as tables[].
func decodeSymbols(res *q.K) ([]string, error) {
	if res == nil {
		return nil, fmt.Errorf("empty symbol result")
	}
	switch data := res.Data.(type) {
	case []string:
		return data, nil
	case string:
		return []string{data}, nil
	default:
		return nil, fmt.Errorf("expected symbol list, got q type %d", res.Type)
	}
}
