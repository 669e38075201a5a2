// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package networking holds small network helpers shared by the server: the
// startup port check and the HTTP error type the embedding providers return.
package networking

import (
	"fmt"
	"net"
)

// IsAvailable reports whether the given TCP port can be bound on the host.
func IsAvailable(host string, port int) bool {
	l, err := net.Listen("tcp", net.JoinHostPort(host, fmt.Sprintf("%d", port)))
	if err != nil {
		return false
	}
	l.Close()
	return true
}

// EnsureAvailable fails with a descriptive error when the port cannot be
// bound. Called once at startup before the HTTP transport is brought up.
func EnsureAvailable(host string, port int) error {
	if !IsAvailable(host, port) {
		return fmt.Errorf("port %d is not available on %s", port, host)
	}
	return nil
}
