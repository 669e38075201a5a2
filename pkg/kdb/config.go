// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package kdb owns the connection to the KDB-X analytics engine and exposes
// the opaque remote calls the rest of the server is built on.
package kdb

import (
	"fmt"
	"time"
)

const (
	// DefaultHost is the default KDB-X host.
	DefaultHost = "localhost"
	// DefaultPort is the default KDB-X listener port.
	DefaultPort = 5000
	// DefaultConnectTimeout bounds a single dial attempt and every remote call.
	DefaultConnectTimeout = 30 * time.Second
	// DefaultRetryCount is the number of additional dial attempts after the first.
	DefaultRetryCount = 2
	// DefaultMetric is the similarity metric passed to the AI-libs search primitives.
	DefaultMetric = "CS"
	// DefaultK is the result count used when a search request does not specify one.
	DefaultK = 5
)

// Config holds the database connection settings. It is immutable after load
// and passed by reference into every operation that touches the database.
type Config struct {
	Host                 string
	Port                 int
	Username             string
	Password             string
	UseTLS               bool
	ConnectTimeout       time.Duration
	RetryCount           int
	Metric               string
	DefaultK             int
	EmbeddingsConfigPath string
}

// Addr returns the host:port the config points at, used in log lines and
// connection error messages.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// auth returns the credentials in the user:password form the IPC handshake expects.
func (c *Config) auth() string {
	if c.Username == "" {
		return ""
	}
	return c.Username + ":" + c.Password
}

// Validate checks the config for values that can never work and fills in
// defaults for the optional knobs.
func (c *Config) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("database port %d is out of range", c.Port)
	}
	if c.RetryCount < 0 {
		return fmt.Errorf("retry count must not be negative")
	}
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = DefaultConnectTimeout
	}
	if c.Metric == "" {
		c.Metric = DefaultMetric
	}
	if c.DefaultK <= 0 {
		c.DefaultK = DefaultK
	}
	return nil
}
