// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package sleepy

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Device is one independently addressable wake-on-advance instance: an event
// counter that signalers advance and awaiters block on. Devices never share
// state with each other.
type Device struct {
	logger  Logger
	minor   uint32
	counter *Counter

	closeCtx context.Context
	closeFn  context.CancelFunc
}

func NewDevice(logger Logger, minor uint32) *Device {
	d := &Device{
		logger:  logger,
		minor:   minor,
		counter: NewCounter(),
	}
	d.closeCtx, d.closeFn = context.WithCancel(context.Background())

	return d
}

func (d *Device) Minor() uint32 {
	return d.minor
}

// Snapshot returns the device's current counter value.
func (d *Device) Snapshot() uint64 {
	return d.counter.Snapshot()
}

// Signal advances the counter and releases every caller blocked in Await.
// It returns immediately, with ErrClosed once the device has been closed.
func (d *Device) Signal() error {
	if d.closeCtx.Err() != nil {
		return ErrClosed
	}

	value := d.counter.Advance()
	d.logger.Debug("Signaled device",
		zap.Uint32("minor", d.minor),
		zap.Uint64("counter", value))

	return nil
}

// Await blocks until the counter changes, the requested duration elapses, or
// ctx is cancelled. The request must be an exact 4 byte little-endian signed
// seconds value; anything else fails with ErrMalformedRequest before the
// counter is read. On success it returns the unexpired portion of the
// request truncated to whole seconds, zero when the request timed out.
//
// Cancellation of ctx fails the wait with ErrInterrupted. Closing the device
// fails it with ErrClosed.
func (d *Device) Await(ctx context.Context, req []byte) (uint32, error) {
	timeout, err := ParseAwaitRequest(req)
	if err != nil {
		return 0, err
	}

	if d.closeCtx.Err() != nil {
		return 0, ErrClosed
	}

	baseline := d.counter.Snapshot()

	// The wait is cancelled either by the caller or by the device closing.
	waitCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(d.closeCtx, cancel)
	defer stop()

	remaining, changed, err := d.counter.WaitUntilChanged(waitCtx, baseline, timeout)
	if err != nil {
		if d.closeCtx.Err() != nil {
			return 0, ErrClosed
		}
		return 0, err
	}

	if !changed {
		d.logger.Debug("Await timed out",
			zap.Uint32("minor", d.minor),
			zap.Duration("timeout", timeout))
		return 0, nil
	}

	seconds := uint32(remaining / time.Second)
	d.logger.Debug("Await observed a change",
		zap.Uint32("minor", d.minor),
		zap.Uint64("baseline", baseline),
		zap.Uint32("remainingSeconds", seconds))

	return seconds, nil
}

// Close releases every caller still blocked in Await with ErrClosed and
// fails all further operations. It is idempotent.
func (d *Device) Close() {
	d.closeFn()
}
