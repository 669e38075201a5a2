// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package networking

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHTTPError(t *testing.T) {
	t.Parallel()

	err := NewHTTPError(404, "http://localhost:11434/api/embed", "model not found")

	require.Error(t, err)
	var httpErr *HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, 404, httpErr.StatusCode)
	assert.Equal(t, "http://localhost:11434/api/embed", httpErr.URL)
	assert.Equal(t, "model not found", httpErr.Message)
}

func TestHTTPError_Error(t *testing.T) {
	t.Parallel()

	err := &HTTPError{
		StatusCode: 404,
		Message:    "not found",
		URL:        "http://example.com/api",
	}

	assert.Equal(t, "HTTP 404 for URL http://example.com/api: not found", err.Error())
}

func TestIsHTTPError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		statusCode int
		expected   bool
	}{
		{
			name:       "matching status code",
			err:        NewHTTPError(429, "http://example.com", "rate limited"),
			statusCode: 429,
			expected:   true,
		},
		{
			name:       "different status code",
			err:        NewHTTPError(500, "http://example.com", "server error"),
			statusCode: 429,
			expected:   false,
		},
		{
			name:       "zero matches any HTTPError",
			err:        NewHTTPError(500, "http://example.com", "server error"),
			statusCode: 0,
			expected:   true,
		},
		{
			name:       "wrapped HTTPError",
			err:        fmt.Errorf("embed failed: %w", NewHTTPError(401, "http://example.com", "unauthorized")),
			statusCode: 401,
			expected:   true,
		},
		{
			name:       "not an HTTPError",
			err:        errors.New("connection refused"),
			statusCode: 0,
			expected:   false,
		},
		{
			name:       "nil error",
			err:        nil,
			statusCode: 0,
			expected:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, IsHTTPError(tt.err, tt.statusCode))
		})
	}
}
