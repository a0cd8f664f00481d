// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package sleepy

import (
	"context"
	"sync"
	"time"
)

// Counter is a mutex-protected event counter paired with a broadcast wait
// mechanism. Waiters block until the counter differs from a baseline value
// they observed earlier, and a single Advance releases all of them.
//
// A Counter must not be copied after first use.
type Counter struct {
	lock  sync.Mutex
	value uint64

	// changed is closed and replaced under lock on every Advance. Waiters
	// capture it in the same critical section that compares value against
	// their baseline, so a bump between the check and the block cannot be
	// missed.
	changed chan struct{}
}

func NewCounter() *Counter {
	return &Counter{
		changed: make(chan struct{}),
	}
}

// Snapshot returns the current counter value.
func (c *Counter) Snapshot() uint64 {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.value
}

// Advance increments the counter and releases every caller blocked in
// WaitUntilChanged. Safe to call with no waiters. Returns the new value.
func (c *Counter) Advance() uint64 {
	c.lock.Lock()
	defer c.lock.Unlock()

	c.value++
	close(c.changed)
	c.changed = make(chan struct{})

	return c.value
}

// WaitUntilChanged blocks until the counter differs from baseline, the
// timeout elapses, or ctx is cancelled, whichever happens first.
//
// When the counter changed, it returns the unexpired portion of the timeout
// (clamped to zero) and true. When the timeout elapsed first, it returns
// zero and false. When ctx was cancelled first, it returns ErrInterrupted.
// A non-positive timeout checks the predicate once and never blocks.
func (c *Counter) WaitUntilChanged(ctx context.Context, baseline uint64, timeout time.Duration) (time.Duration, bool, error) {
	start := time.Now()

	var timeoutC <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		timeoutC = timer.C
	}

	for {
		c.lock.Lock()
		if c.value != baseline {
			c.lock.Unlock()

			remaining := timeout - time.Since(start)
			if remaining < 0 {
				remaining = 0
			}
			return remaining, true, nil
		}
		changed := c.changed
		c.lock.Unlock()

		if timeout <= 0 {
			return 0, false, nil
		}

		select {
		case <-changed:
			// Woken; loop around and re-check under the lock. The counter
			// may have wrapped back to the baseline in the meantime.
		case <-timeoutC:
			return 0, false, nil
		case <-ctx.Done():
			return 0, false, ErrInterrupted
		}
	}
}
