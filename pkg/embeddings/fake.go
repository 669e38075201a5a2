// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package embeddings

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"math"
	"math/rand"
)

// FakeProvider is a deterministic provider for testing. Dense vectors are
// seeded from a SHA-256 hash of model and text and L2-normalized to unit
// length; sparse vectors are plain term frequencies.
type FakeProvider struct {
	dim int
}

// NewFakeProvider creates a FakeProvider that produces vectors of the given
// dimension.
func NewFakeProvider(dimension int) *FakeProvider {
	return &FakeProvider{dim: dimension}
}

// Embed returns a deterministic, unit-normalized vector for the given text.
func (f *FakeProvider) Embed(_ context.Context, model, text string) ([]float32, error) {
	hash := sha256.Sum256([]byte(model + "\x00" + text))
	//nolint:gosec // overflow is acceptable for seeding a non-crypto RNG
	seed := int64(binary.LittleEndian.Uint64(hash[:8]))
	//nolint:gosec // deterministic RNG is intentional for fake embeddings
	rng := rand.New(rand.NewSource(seed))

	vec := make([]float32, f.dim)
	var norm float64
	for i := range vec {
		v := rng.Float32()*2 - 1 // [-1, 1]
		vec[i] = v
		norm += float64(v) * float64(v)
	}

	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range vec {
			vec[i] = float32(float64(vec[i]) / norm)
		}
	}

	return vec, nil
}

// SparseEmbed returns term-frequency weights for the given text.
func (*FakeProvider) SparseEmbed(_ context.Context, _, text string) (SparseVector, error) {
	return termFrequencies(text), nil
}

// Close is a no-op for the fake provider.
func (*FakeProvider) Close() error {
	return nil
}
