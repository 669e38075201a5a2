// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package embeddings

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacklok/kdbx-mcp/pkg/networking"
)

func TestOpenAIEmbed(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/embeddings", r.URL.Path)
		require.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		var req openaiEmbedRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "text-embedding-3-small", req.Model)
		assert.Equal(t, "hello", req.Input)

		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{{"embedding": []float32{0.1, 0.2, 0.3}}},
		})
	}))
	defer srv.Close()

	p := newOpenAIProvider(srv.URL, "secret", time.Second)
	vec, err := p.Embed(context.Background(), "text-embedding-3-small", "hello")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, vec)
}

func TestOpenAISparseEmbedCountsTokens(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/tokenize", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{"tokens": []int64{17, 42, 17}})
	}))
	defer srv.Close()

	p := newOpenAIProvider(srv.URL, "", time.Second)
	vec, err := p.SparseEmbed(context.Background(), "m", "the quick fox")
	require.NoError(t, err)
	assert.Equal(t, SparseVector{"17": 2, "42": 1}, vec)
}

func TestOpenAIEmbedSurfacesHTTPFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	p := newOpenAIProvider(srv.URL, "", time.Second)
	_, err := p.Embed(context.Background(), "missing", "hello")

	var provErr *ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.True(t, networking.IsHTTPError(err, http.StatusNotFound))
	assert.Contains(t, provErr.Error(), "model not found")
}

func TestOpenAIEmbedRejectsEmptyData(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"data": []any{}})
	}))
	defer srv.Close()

	p := newOpenAIProvider(srv.URL, "", time.Second)
	_, err := p.Embed(context.Background(), "m", "hello")
	require.ErrorContains(t, err, "no data")
}
