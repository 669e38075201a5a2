// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package kdb

import (
	"sync/atomic"

	q "github.com/sv/kdbgo"
)

// Conn is one live connection to the database. Implementations report their
// own liveness so the pool can decide when a cached handle must be replaced.
type Conn interface {
	// call issues a raw IPC call. The command is evaluated server-side with
	// the given arguments applied.
	call(cmd string, args ...*q.K) (*q.K, error)

	// Connected reports whether the connection is believed to be live.
	// No round-trip is made; a connection is marked dead on the first
	// transport-level failure.
	Connected() bool

	// Close tears the connection down. Safe to call more than once.
	Close() error
}

// ipcConn wraps the kdbgo connection with liveness tracking.
type ipcConn struct {
	kc        *q.KDBConn
	connected atomic.Bool
}

// dialIPC establishes a new IPC connection according to the config.
func dialIPC(cfg *Config) (Conn, error) {
	var (
		kc  *q.KDBConn
		err error
	)
	if cfg.UseTLS {
		kc, err = q.DialTLS(cfg.Host, cfg.Port, cfg.auth(), nil)
	} else {
		kc, err = q.DialKDBTimeout(cfg.Host, cfg.Port, cfg.auth(), cfg.ConnectTimeout)
	}
	if err != nil {
		return nil, err
	}

	c := &ipcConn{kc: kc}
	c.connected.Store(true)
	return c, nil
}

func (c *ipcConn) call(cmd string, args ...*q.K) (*q.K, error) {
	res, err := c.kc.Call(cmd, args...)
	if err != nil {
		// A transport failure invalidates the handle; q-level errors ('type,
		// 'length, …) arrive as KERR results and leave the socket usable.
		c.connected.Store(false)
		return nil, err
	}
	if res != nil && res.Type == q.KERR {
		if qerr, ok := res.Data.(error); ok {
			return nil, qerr
		}
	}
	return res, nil
}

func (c *ipcConn) Connected() bool {
	return c.connected.Load()
}

func (c *ipcConn) Close() error {
	if !c.connected.Swap(false) {
		return nil
	}
	return c.kc.Close()
}
