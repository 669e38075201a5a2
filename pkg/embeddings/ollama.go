// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package embeddings

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/stacklok/kdbx-mcp/pkg/networking"
)

// DefaultOllamaBaseURL is the standard local Ollama endpoint.
const DefaultOllamaBaseURL = "http://localhost:11434"

// ollamaProvider serves dense embeddings from a local Ollama instance.
// Ollama has no tokenize endpoint, so the sparse branch falls back to local
// term-frequency weights, which is all the query side of a BM25 search needs.
type ollamaProvider struct {
	baseURL string
	client  *http.Client
}

type ollamaEmbedRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type ollamaEmbedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

func newOllamaProvider(baseURL string, timeout time.Duration) *ollamaProvider {
	if baseURL == "" {
		baseURL = DefaultOllamaBaseURL
	}
	return &ollamaProvider{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

func (o *ollamaProvider) Embed(ctx context.Context, model, text string) ([]float32, error) {
	payload, err := json.Marshal(ollamaEmbedRequest{Model: model, Input: text})
	if err != nil {
		return nil, &ProviderError{Provider: string(KindOllama), Err: fmt.Errorf("failed to marshal request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/api/embed", bytes.NewReader(payload))
	if err != nil {
		return nil, &ProviderError{Provider: string(KindOllama), Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, &ProviderError{Provider: string(KindOllama), Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyPreview))
		return nil, &ProviderError{
			Provider: string(KindOllama),
			Err:      networking.NewHTTPError(resp.StatusCode, o.baseURL+"/api/embed", string(raw)),
		}
	}

	var out ollamaEmbedResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, &ProviderError{Provider: string(KindOllama), Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	if len(out.Embeddings) == 0 {
		return nil, &ProviderError{Provider: string(KindOllama), Err: fmt.Errorf("embed response contains no vectors")}
	}
	return out.Embeddings[0], nil
}

func (o *ollamaProvider) SparseEmbed(_ context.Context, _, text string) (SparseVector, error) {
	return termFrequencies(text), nil
}

func (o *ollamaProvider) Close() error {
	o.client.CloseIdleConnections()
	return nil
}
