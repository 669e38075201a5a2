// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package embeddings

import (
	"strings"
	"unicode"
)

// termFrequencies produces a query-side sparse vector by lowercasing the text
// and counting word occurrences. Single-character fragments carry no lexical
// signal and are dropped.
func termFrequencies(text string) SparseVector {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	vec := make(SparseVector, len(words))
	for _, w := range words {
		if len(w) < 2 {
			continue
		}
		vec[w]++
	}
	return vec
}
