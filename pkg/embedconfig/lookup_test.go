// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package embedconfig

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleTable = `table,embedding_column,embedding_provider,embedding_model,sparse_embedding_column,sparse_index,sparse_tokenizer_provider,sparse_tokenizer_model
news,vec,openai,text-embedding-3-small,sparse_vec,news_sparse_idx,,
trades,vec,ollama,nomic-embed-text,,,,
news,vec2,openai,text-embedding-3-large,,,,
`

func newTestLookup(content string) (*Lookup, *int) {
	loads := 0
	l := NewLookup()
	l.loadFile = func(string) ([]byte, error) {
		loads++
		return []byte(content), nil
	}
	return l, &loads
}

func TestResolveSingleMatch(t *testing.T) {
	t.Parallel()

	l, _ := newTestLookup(sampleTable)
	cfg, err := l.Resolve("embeddings.csv", "trades")
	require.NoError(t, err)

	assert.Equal(t, "trades", cfg.Table)
	assert.Equal(t, "vec", cfg.EmbeddingColumn)
	assert.Equal(t, "ollama", cfg.EmbeddingProvider)
	assert.Equal(t, "nomic-embed-text", cfg.EmbeddingModel)
	assert.Empty(t, cfg.SparseIndex)
	assert.True(t, cfg.HasDenseConfig())
}

func TestResolveNoMatchIsHardError(t *testing.T) {
	t.Parallel()

	l, _ := newTestLookup(sampleTable)
	_, err := l.Resolve("embeddings.csv", "missing")

	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "missing", cfgErr.Table)
	assert.Contains(t, cfgErr.Reason, "no configuration row")
}

func TestResolveAmbiguousMatchIsHardError(t *testing.T) {
	t.Parallel()

	l, _ := newTestLookup(sampleTable)
	_, err := l.Resolve("embeddings.csv", "news")

	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, cfgErr.Reason, "multiple configuration rows")
}

func TestTableLoadedOncePerPath(t *testing.T) {
	t.Parallel()

	l, loads := newTestLookup(sampleTable)
	for i := 0; i < 5; i++ {
		_, err := l.Resolve("embeddings.csv", "trades")
		require.NoError(t, err)
	}
	assert.Equal(t, 1, *loads)

	_, err := l.Resolve("other.csv", "trades")
	require.NoError(t, err)
	assert.Equal(t, 2, *loads, "each distinct path is loaded once")
}

func TestLoadFailureIsNotCached(t *testing.T) {
	t.Parallel()

	calls := 0
	l := NewLookup()
	l.loadFile = func(string) ([]byte, error) {
		calls++
		if calls == 1 {
			return nil, fmt.Errorf("no such file")
		}
		return []byte(sampleTable), nil
	}

	_, err := l.Resolve("embeddings.csv", "trades")
	require.ErrorContains(t, err, "no such file")

	_, err = l.Resolve("embeddings.csv", "trades")
	require.NoError(t, err)
}

func TestParseRejectsMissingTableColumn(t *testing.T) {
	t.Parallel()

	l, _ := newTestLookup("name,embedding_column\nnews,vec\n")
	_, err := l.Resolve("embeddings.csv", "news")
	require.ErrorContains(t, err, "table column is required")
}

func TestAllReturnsCopy(t *testing.T) {
	t.Parallel()

	l, _ := newTestLookup(sampleTable)
	rows, err := l.All("embeddings.csv")
	require.NoError(t, err)
	require.Len(t, rows, 3)

	rows[0].Table = "mutated"
	again, err := l.All("embeddings.csv")
	require.NoError(t, err)
	assert.Equal(t, "news", again[0].Table)
}
