// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnstructuredLogsCheck(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		envValue string
		expected bool
	}{
		{"Default Case", "", true},
		{"Explicitly True", "true", true},
		{"Explicitly False", "false", false},
		{"Invalid Value", "not-a-bool", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			getenv := func(string) string { return tt.envValue }
			assert.Equal(t, tt.expected, unstructuredLogsWithEnv(getenv))
		})
	}
}

// setSingletonForTest temporarily replaces the singleton logger and restores
// the previous one when the test finishes.
func setSingletonForTest(t *testing.T, l *slog.Logger) {
	t.Helper()
	prev := Get()
	Set(l)
	t.Cleanup(func() { Set(prev) })
}

func TestStructuredLogOutput(t *testing.T) { //nolint:paralleltest // swaps the singleton
	var buf bytes.Buffer
	setSingletonForTest(t, slog.New(slog.NewJSONHandler(&buf, nil)))

	Infow("connection established", "host", "localhost", "port", 5000)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "connection established", entry["msg"])
	assert.Equal(t, "localhost", entry["host"])
	assert.Equal(t, float64(5000), entry["port"])
}

func TestFormattedLogOutput(t *testing.T) { //nolint:paralleltest // swaps the singleton
	var buf bytes.Buffer
	setSingletonForTest(t, slog.New(slog.NewTextHandler(&buf, nil)))

	Warnf("attempt %d of %d failed", 2, 3)

	assert.Contains(t, buf.String(), "attempt 2 of 3 failed")
}
