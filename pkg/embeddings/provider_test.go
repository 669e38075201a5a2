// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package embeddings

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacklok/kdbx-mcp/pkg/embedconfig"
)

func TestRegistryMapsKnownProviders(t *testing.T) {
	t.Parallel()

	reg := NewRegistry(&Config{})

	for _, name := range []string{"openai", "ollama"} {
		p, err := reg.Get(name)
		require.NoError(t, err, name)
		require.NotNil(t, p, name)
	}
}

func TestRegistryRejectsUnknownProvider(t *testing.T) {
	t.Parallel()

	reg := NewRegistry(&Config{})
	_, err := reg.Get("huggingface")

	var provErr *ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, "huggingface", provErr.Provider)
	assert.Contains(t, err.Error(), "unknown provider")
}

func TestFakeProviderIsDeterministic(t *testing.T) {
	t.Parallel()

	f := NewFakeProvider(8)
	a, err := f.Embed(context.Background(), "m", "hello")
	require.NoError(t, err)
	b, err := f.Embed(context.Background(), "m", "hello")
	require.NoError(t, err)
	assert.Equal(t, a, b)

	c, err := f.Embed(context.Background(), "m", "goodbye")
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 8)
}

// countingProvider records Embed calls and can be told to fail.
type countingProvider struct {
	calls atomic.Int32
	err   error
}

func (p *countingProvider) Embed(context.Context, string, string) ([]float32, error) {
	p.calls.Add(1)
	return []float32{1}, p.err
}

func (*countingProvider) SparseEmbed(context.Context, string, string) (SparseVector, error) {
	return nil, nil
}

func (*countingProvider) Close() error { return nil }

func TestWarmDeduplicatesProviderModelPairs(t *testing.T) {
	t.Parallel()

	counting := &countingProvider{}
	reg := newRegistryWithProviders(map[ProviderKind]Provider{KindOllama: counting})

	rows := []embedconfig.EmbeddingConfig{
		{Table: "a", EmbeddingProvider: "ollama", EmbeddingModel: "m1"},
		{Table: "b", EmbeddingProvider: "ollama", EmbeddingModel: "m1"},
		{Table: "c", EmbeddingProvider: "ollama", EmbeddingModel: "m2"},
		{Table: "d"}, // unconfigured table, skipped
	}
	Warm(context.Background(), reg, rows)

	assert.Equal(t, int32(2), counting.calls.Load())
}

func TestWarmSwallowsFailures(t *testing.T) {
	t.Parallel()

	counting := &countingProvider{err: errors.New("model pull failed")}
	reg := newRegistryWithProviders(map[ProviderKind]Provider{KindOllama: counting})

	rows := []embedconfig.EmbeddingConfig{
		{Table: "a", EmbeddingProvider: "ollama", EmbeddingModel: "m1"},
		{Table: "b", EmbeddingProvider: "unknown", EmbeddingModel: "m2"},
	}

	// must not panic or propagate anything
	Warm(context.Background(), reg, rows)
	assert.Equal(t, int32(1), counting.calls.Load())
}
