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
	"strconv"
	"time"

	"github.com/stacklok/kdbx-mcp/pkg/networking"
)

// maxErrorBodyPreview caps how much of an error response body is carried in
// the returned error.
const maxErrorBodyPreview = 2048

// DefaultOpenAIBaseURL is used when no hosted endpoint is configured.
const DefaultOpenAIBaseURL = "https://api.openai.com"

// openaiProvider talks to any OpenAI-compatible embedding service: OpenAI
// itself, vLLM, or TEI. Dense embeddings use the standard /v1/embeddings
// endpoint; sparse embeddings use the /tokenize endpoint that vLLM and TEI
// expose, mapping token ids to their occurrence counts.
type openaiProvider struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

type openaiEmbedRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type openaiEmbedResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

type tokenizeRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type tokenizeResponse struct {
	Tokens []int64 `json:"tokens"`
}

func newOpenAIProvider(baseURL, apiKey string, timeout time.Duration) *openaiProvider {
	if baseURL == "" {
		baseURL = DefaultOpenAIBaseURL
	}
	return &openaiProvider{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

func (o *openaiProvider) Embed(ctx context.Context, model, text string) ([]float32, error) {
	var out openaiEmbedResponse
	err := o.post(ctx, "/v1/embeddings", openaiEmbedRequest{Model: model, Input: text}, &out)
	if err != nil {
		return nil, err
	}
	if len(out.Data) == 0 {
		return nil, &ProviderError{Provider: string(KindOpenAI), Err: fmt.Errorf("embeddings response contains no data")}
	}
	return out.Data[0].Embedding, nil
}

func (o *openaiProvider) SparseEmbed(ctx context.Context, model, text string) (SparseVector, error) {
	var out tokenizeResponse
	err := o.post(ctx, "/tokenize", tokenizeRequest{Model: model, Prompt: text}, &out)
	if err != nil {
		return nil, err
	}

	vec := make(SparseVector, len(out.Tokens))
	for _, id := range out.Tokens {
		vec[strconv.FormatInt(id, 10)]++
	}
	return vec, nil
}

func (o *openaiProvider) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return &ProviderError{Provider: string(KindOpenAI), Err: fmt.Errorf("failed to marshal request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return &ProviderError{Provider: string(KindOpenAI), Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	if o.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+o.apiKey)
	}

	resp, err := o.client.Do(req)
	if err != nil {
		return &ProviderError{Provider: string(KindOpenAI), Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyPreview))
		return &ProviderError{
			Provider: string(KindOpenAI),
			Err:      networking.NewHTTPError(resp.StatusCode, o.baseURL+path, string(raw)),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &ProviderError{Provider: string(KindOpenAI), Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	return nil
}

func (o *openaiProvider) Close() error {
	o.client.CloseIdleConnections()
	return nil
}
