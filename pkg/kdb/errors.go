// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package kdb

import "fmt"

// ConnectionError indicates the database could not be reached after
// exhausting all connect retries. It carries the target address so the
// operator can tell which endpoint was refused.
type ConnectionError struct {
	Addr     string
	Attempts int
	Err      error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("failed to connect to KDB-X at %s after %d attempts: %v", e.Addr, e.Attempts, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}
