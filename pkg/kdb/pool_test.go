// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package kdb

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	q "github.com/sv/kdbgo"
)

type fakeConn struct {
	connected atomic.Bool
	closes    atomic.Int32
}

func newFakeConn() *fakeConn {
	c := &fakeConn{}
	c.connected.Store(true)
	return c
}

func (*fakeConn) call(string, ...*q.K) (*q.K, error) { return nil, nil }

func (c *fakeConn) Connected() bool { return c.connected.Load() }

func (c *fakeConn) Close() error {
	c.connected.Store(false)
	c.closes.Add(1)
	return nil
}

func testConfig(retries int) *Config {
	return &Config{Host: "localhost", Port: 5000, RetryCount: retries}
}

func TestAcquireReturnsCachedConnection(t *testing.T) {
	t.Parallel()

	var dials atomic.Int32
	p := newPool(testConfig(0), func(*Config) (Conn, error) {
		dials.Add(1)
		return newFakeConn(), nil
	})
	p.retryInterval = time.Millisecond

	first, err := p.Acquire(context.Background())
	require.NoError(t, err)
	second, err := p.Acquire(context.Background())
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, int32(1), dials.Load())
}

func TestAcquireRetriesUntilExhaustion(t *testing.T) {
	t.Parallel()

	var dials atomic.Int32
	p := newPool(testConfig(2), func(*Config) (Conn, error) {
		dials.Add(1)
		return nil, errors.New("connection refused")
	})
	p.retryInterval = time.Millisecond

	_, err := p.Acquire(context.Background())
	require.Error(t, err)

	var connErr *ConnectionError
	require.ErrorAs(t, err, &connErr)
	assert.Equal(t, "localhost:5000", connErr.Addr)
	assert.Equal(t, 3, connErr.Attempts, "retryCount=2 means 3 attempts total")
	assert.Equal(t, int32(3), dials.Load())
}

func TestAcquireSucceedsAfterTransientFailure(t *testing.T) {
	t.Parallel()

	var dials atomic.Int32
	p := newPool(testConfig(2), func(*Config) (Conn, error) {
		if dials.Add(1) < 3 {
			return nil, errors.New("connection refused")
		}
		return newFakeConn(), nil
	})
	p.retryInterval = time.Millisecond

	c, err := p.Acquire(context.Background())
	require.NoError(t, err)
	assert.True(t, c.Connected())
	assert.Equal(t, int32(3), dials.Load())
}

func TestLinearBackOffSchedule(t *testing.T) {
	t.Parallel()

	b := &linearBackOff{interval: time.Second}
	assert.Equal(t, 1*time.Second, b.NextBackOff(), "2nd attempt deferred by ~1000ms")
	assert.Equal(t, 2*time.Second, b.NextBackOff(), "3rd attempt deferred by ~2000ms")
	assert.Equal(t, 3*time.Second, b.NextBackOff())

	b.Reset()
	assert.Equal(t, 1*time.Second, b.NextBackOff())
}

func TestCloseIsIdempotentAndForcesReconnect(t *testing.T) {
	t.Parallel()

	var dials atomic.Int32
	p := newPool(testConfig(0), func(*Config) (Conn, error) {
		dials.Add(1)
		return newFakeConn(), nil
	})
	p.retryInterval = time.Millisecond

	first, err := p.Acquire(context.Background())
	require.NoError(t, err)

	require.NoError(t, p.Close())
	require.NoError(t, p.Close())

	second, err := p.Acquire(context.Background())
	require.NoError(t, err)

	assert.NotSame(t, first, second, "a fresh connect must follow Close, not a stale handle")
	assert.Equal(t, int32(2), dials.Load())
}

func TestAcquireReplacesDisconnectedConnection(t *testing.T) {
	t.Parallel()

	var dials atomic.Int32
	p := newPool(testConfig(0), func(*Config) (Conn, error) {
		dials.Add(1)
		return newFakeConn(), nil
	})
	p.retryInterval = time.Millisecond

	first, err := p.Acquire(context.Background())
	require.NoError(t, err)
	first.(*fakeConn).connected.Store(false)

	second, err := p.Acquire(context.Background())
	require.NoError(t, err)
	assert.NotSame(t, first, second)
	assert.Equal(t, int32(2), dials.Load())
}

func TestConcurrentAcquireSharesOneDial(t *testing.T) {
	t.Parallel()

	var dials atomic.Int32
	p := newPool(testConfig(0), func(*Config) (Conn, error) {
		dials.Add(1)
		time.Sleep(50 * time.Millisecond) // hold the dial open so acquirers overlap
		return newFakeConn(), nil
	})
	p.retryInterval = time.Millisecond

	const callers = 8
	conns := make([]Conn, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c, err := p.Acquire(context.Background())
			require.NoError(t, err)
			conns[i] = c
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), dials.Load(), "interleaved acquirers must share a single connect sequence")
	for i := 1; i < callers; i++ {
		assert.Same(t, conns[0], conns[i])
	}
}
