// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package kdb

import (
	"context"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"golang.org/x/sync/singleflight"

	"github.com/stacklok/kdbx-mcp/pkg/logger"
)

// Pool owns the process's single cached connection to the database. It is
// constructed once at startup, passed by reference into every request path,
// and torn down on shutdown. At most one connection is live at a time, and
// concurrent acquirers that find no usable connection share one dial sequence
// instead of racing their own.
type Pool struct {
	cfg           *Config
	dial          func(*Config) (Conn, error)
	retryInterval time.Duration

	group singleflight.Group

	mu   sync.Mutex
	conn Conn
}

// NewPool creates a connection pool for the given config. No connection is
// made until the first Acquire.
func NewPool(cfg *Config) *Pool {
	return newPool(cfg, dialIPC)
}

func newPool(cfg *Config, dial func(*Config) (Conn, error)) *Pool {
	return &Pool{
		cfg:           cfg,
		dial:          dial,
		retryInterval: time.Second,
	}
}

// Acquire returns the cached connection when it still reports connected, with
// no validation round-trip. Otherwise it dials, retrying up to RetryCount
// additional times with a linearly growing delay, and caches the result.
// On exhaustion it returns a *ConnectionError annotated with the target address.
func (p *Pool) Acquire(ctx context.Context) (Conn, error) {
	p.mu.Lock()
	if p.conn != nil && p.conn.Connected() {
		c := p.conn
		p.mu.Unlock()
		return c, nil
	}
	p.mu.Unlock()

	// singleflight serializes establishment: an acquirer that arrives while a
	// dial sequence is in flight awaits its outcome rather than duplicating it.
	v, err, _ := p.group.Do("connect", func() (any, error) {
		return p.connect(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.(Conn), nil
}

func (p *Pool) connect(ctx context.Context) (Conn, error) {
	attempt := 0
	operation := func() (Conn, error) {
		attempt++
		c, err := p.dial(p.cfg)
		if err != nil {
			logger.Warnw("database connect failed", "addr", p.cfg.Addr(), "attempt", attempt, "error", err)
			return nil, err
		}
		logger.Infow("database connection established", "addr", p.cfg.Addr(), "attempt", attempt)
		return c, nil
	}

	c, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(&linearBackOff{interval: p.retryInterval}),
		backoff.WithMaxTries(uint(p.cfg.RetryCount+1)), //nolint:gosec // RetryCount is validated non-negative
	)
	if err != nil {
		return nil, &ConnectionError{Addr: p.cfg.Addr(), Attempts: attempt, Err: err}
	}

	p.mu.Lock()
	p.conn = c
	p.mu.Unlock()
	return c, nil
}

// Close tears down the cached connection and empties the cache so the next
// Acquire dials from scratch. It is idempotent.
func (p *Pool) Close() error {
	p.mu.Lock()
	c := p.conn
	p.conn = nil
	p.mu.Unlock()

	if c == nil {
		return nil
	}
	return c.Close()
}

// invalidate drops the cached connection if it is the given one, closing it.
// Used after an abandoned call leaves the IPC stream in an unusable state.
func (p *Pool) invalidate(c Conn) {
	p.mu.Lock()
	if p.conn == c {
		p.conn = nil
	}
	p.mu.Unlock()
	_ = c.Close()
}

// linearBackOff waits interval×attempt between dial attempts: 1s before the
// second attempt, 2s before the third, and so on.
type linearBackOff struct {
	interval time.Duration
	attempt  int
}

func (b *linearBackOff) NextBackOff() time.Duration {
	b.attempt++
	return time.Duration(b.attempt) * b.interval
}

func (b *linearBackOff) Reset() {
	b.attempt = 0
}
