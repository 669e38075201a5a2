// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package networking

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsAvailable(t *testing.T) {
	t.Parallel()

	// Grab a port, then check availability while it is held and after release.
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port

	assert.False(t, IsAvailable("127.0.0.1", port))

	require.NoError(t, l.Close())
	assert.True(t, IsAvailable("127.0.0.1", port))
}

func TestEnsureAvailable(t *testing.T) {
	t.Parallel()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()
	port := l.Addr().(*net.TCPAddr).Port

	err = EnsureAvailable("127.0.0.1", port)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not available")
}
