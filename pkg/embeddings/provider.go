// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package embeddings generates dense and sparse query embeddings through a
// closed set of providers: an OpenAI-compatible hosted API and a local Ollama
// instance.
package embeddings

import (
	"context"
	"fmt"
	"time"
)

// ProviderKind names one of the supported provider variants. The set is
// closed; provider names from the embedding configuration table are mapped to
// a kind when the registry is built, not looked up dynamically per request.
type ProviderKind string

const (
	// KindOpenAI is the hosted OpenAI-compatible API variant (OpenAI, vLLM, TEI).
	KindOpenAI ProviderKind = "openai"
	// KindOllama is the local-model variant.
	KindOllama ProviderKind = "ollama"
)

// DefaultTimeout bounds a single embedding HTTP request.
const DefaultTimeout = 30 * time.Second

// SparseVector maps a term identifier to its weight, the query-side input of
// a BM25-style sparse search branch.
type SparseVector map[string]float64

// Provider computes embeddings for query text.
type Provider interface {
	// Embed returns a dense vector for the given text using the given model.
	Embed(ctx context.Context, model, text string) ([]float32, error)

	// SparseEmbed returns a term-weight map for the given text. The model
	// names the tokenizer where the provider has one.
	SparseEmbed(ctx context.Context, model, text string) (SparseVector, error)

	// Close releases any resources held by the provider.
	Close() error
}

// ProviderError indicates an unknown provider name or a provider call failure.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("embedding provider %q: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Config holds the endpoints of the provider variants.
type Config struct {
	OpenAIBaseURL string
	OpenAIAPIKey  string
	OllamaBaseURL string
	Timeout       time.Duration
}

// Registry holds the closed provider set, built once at configuration-load
// time.
type Registry struct {
	providers map[ProviderKind]Provider
}

// NewRegistry builds the provider set from config. Both variants are always
// constructed; a variant whose endpoint is unreachable fails on first use,
// not at startup.
func NewRegistry(cfg *Config) *Registry {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Registry{providers: map[ProviderKind]Provider{
		KindOpenAI: newOpenAIProvider(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, timeout),
		KindOllama: newOllamaProvider(cfg.OllamaBaseURL, timeout),
	}}
}

// newRegistryWithProviders wires an explicit provider set; used by tests.
func newRegistryWithProviders(providers map[ProviderKind]Provider) *Registry {
	return &Registry{providers: providers}
}

// Get maps a provider name from the embedding configuration table to its
// variant. Unknown names fail with a *ProviderError.
func (r *Registry) Get(name string) (Provider, error) {
	p, ok := r.providers[ProviderKind(name)]
	if !ok {
		return nil, &ProviderError{Provider: name, Err: fmt.Errorf("unknown provider (supported: %s, %s)", KindOpenAI, KindOllama)}
	}
	return p, nil
}

// Close releases every provider in the set.
func (r *Registry) Close() error {
	var firstErr error
	for _, p := range r.providers {
		if err := p.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
