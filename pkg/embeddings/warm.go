// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package embeddings

import (
	"context"

	"github.com/stacklok/kdbx-mcp/pkg/embedconfig"
	"github.com/stacklok/kdbx-mcp/pkg/logger"
)

// warmupText is the throwaway input used to pull models into memory.
const warmupText = "warmup"

// Warm issues one embedding call per distinct provider/model pair referenced
// by the configuration rows, so the first real search does not pay the model
// load cost. It is best-effort: failures are logged and swallowed. Callers
// run it in a goroutine; it never gates server readiness.
func Warm(ctx context.Context, reg *Registry, rows []embedconfig.EmbeddingConfig) {
	type pair struct{ provider, model string }
	seen := make(map[pair]bool)

	for _, row := range rows {
		if row.EmbeddingProvider == "" || row.EmbeddingModel == "" {
			continue
		}
		p := pair{row.EmbeddingProvider, row.EmbeddingModel}
		if seen[p] {
			continue
		}
		seen[p] = true

		provider, err := reg.Get(p.provider)
		if err != nil {
			logger.Warnw("model warmup skipped", "provider", p.provider, "model", p.model, "error", err)
			continue
		}
		if _, err := provider.Embed(ctx, p.model, warmupText); err != nil {
			logger.Warnw("model warmup failed", "provider", p.provider, "model", p.model, "error", err)
			continue
		}
		logger.Debugw("model warmed", "provider", p.provider, "model", p.model)
	}
}
