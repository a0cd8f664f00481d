// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package sleepy_test

import (
	"context"
	"testing"
	"time"

	"github.com/ava-labs/sleepy"
	"github.com/ava-labs/sleepy/testutil"

	"github.com/stretchr/testify/require"
)

func TestDeviceSignal(t *testing.T) {
	dev := sleepy.NewDevice(testutil.MakeLogger(t), 0)
	defer dev.Close()

	require.Zero(t, dev.Snapshot())
	require.NoError(t, dev.Signal())
	require.Equal(t, uint64(1), dev.Snapshot())
	require.NoError(t, dev.Signal())
	require.Equal(t, uint64(2), dev.Snapshot())
}

func TestDeviceAwaitMalformedRequest(t *testing.T) {
	dev := sleepy.NewDevice(testutil.MakeLogger(t), 0)
	defer dev.Close()

	for _, buff := range [][]byte{nil, {1}, {1, 0, 0}, {1, 0, 0, 0, 0}} {
		start := time.Now()
		_, err := dev.Await(context.Background(), buff)
		require.ErrorIs(t, err, sleepy.ErrMalformedRequest)
		require.Less(t, time.Since(start), time.Second)
	}

	// A rejected request never touches the counter.
	require.Zero(t, dev.Snapshot())
}

func TestDeviceAwaitZeroDuration(t *testing.T) {
	dev := sleepy.NewDevice(testutil.MakeLogger(t), 0)
	defer dev.Close()

	start := time.Now()
	remaining, err := dev.Await(context.Background(), sleepy.EncodeAwaitRequest(0))
	require.NoError(t, err)
	require.Zero(t, remaining)
	require.Less(t, time.Since(start), time.Second)
}

func TestDeviceAwaitNegativeDuration(t *testing.T) {
	dev := sleepy.NewDevice(testutil.MakeLogger(t), 0)
	defer dev.Close()

	start := time.Now()
	remaining, err := dev.Await(context.Background(), sleepy.EncodeAwaitRequest(-5))
	require.NoError(t, err)
	require.Zero(t, remaining)
	require.Less(t, time.Since(start), time.Second)
}

func TestDeviceAwaitTimesOut(t *testing.T) {
	dev := sleepy.NewDevice(testutil.MakeLogger(t), 0)
	defer dev.Close()

	start := time.Now()
	remaining, err := dev.Await(context.Background(), sleepy.EncodeAwaitRequest(1))
	elapsed := time.Since(start)

	require.NoError(t, err)
	require.Zero(t, remaining)
	require.GreaterOrEqual(t, elapsed, time.Second)
	require.Less(t, elapsed, 3*time.Second)
}

func TestDeviceAwaitReleasedBySignal(t *testing.T) {
	dev := sleepy.NewDevice(testutil.MakeLogger(t), 0)
	defer dev.Close()

	type result struct {
		remaining uint32
		err       error
	}
	done := make(chan result, 1)

	go func() {
		remaining, err := dev.Await(context.Background(), sleepy.EncodeAwaitRequest(5))
		done <- result{remaining, err}
	}()

	// Signal after ~1.2s of a 5s request: just under 4s of the request is
	// left, which truncates to 3 whole seconds.
	time.Sleep(1200 * time.Millisecond)
	require.NoError(t, dev.Signal())

	select {
	case res := <-done:
		require.NoError(t, res.err)
		require.Equal(t, uint32(3), res.remaining)
	case <-time.After(5 * time.Second):
		require.FailNow(t, "signal did not release the awaiter")
	}
}

func TestDeviceAwaitInterrupted(t *testing.T) {
	dev := sleepy.NewDevice(testutil.MakeLogger(t), 0)
	defer dev.Close()

	ctx, cancel := context.WithCancel(context.Background())
	errs := make(chan error, 1)

	go func() {
		_, err := dev.Await(ctx, sleepy.EncodeAwaitRequest(30))
		errs <- err
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-errs:
		require.ErrorIs(t, err, sleepy.ErrInterrupted)
	case <-time.After(5 * time.Second):
		require.FailNow(t, "cancellation did not release the awaiter")
	}
}

func TestDeviceCloseReleasesAwaiter(t *testing.T) {
	dev := sleepy.NewDevice(testutil.MakeLogger(t), 0)

	errs := make(chan error, 1)
	go func() {
		_, err := dev.Await(context.Background(), sleepy.EncodeAwaitRequest(30))
		errs <- err
	}()

	time.Sleep(50 * time.Millisecond)
	dev.Close()

	select {
	case err := <-errs:
		require.ErrorIs(t, err, sleepy.ErrClosed)
	case <-time.After(5 * time.Second):
		require.FailNow(t, "close did not release the awaiter")
	}
}

func TestDeviceClosed(t *testing.T) {
	dev := sleepy.NewDevice(testutil.MakeLogger(t), 0)

	dev.Close()
	dev.Close()

	require.ErrorIs(t, dev.Signal(), sleepy.ErrClosed)

	_, err := dev.Await(context.Background(), sleepy.EncodeAwaitRequest(1))
	require.ErrorIs(t, err, sleepy.ErrClosed)

	// Malformed input is still rejected as malformed, not as closed.
	_, err = dev.Await(context.Background(), []byte{1, 2, 3})
	require.ErrorIs(t, err, sleepy.ErrMalformedRequest)
}

func TestDeviceIsolation(t *testing.T) {
	logger := testutil.MakeLogger(t)
	dev1 := sleepy.NewDevice(logger, 1)
	defer dev1.Close()
	dev2 := sleepy.NewDevice(logger, 2)
	defer dev2.Close()

	done := make(chan error, 1)
	go func() {
		_, err := dev1.Await(context.Background(), sleepy.EncodeAwaitRequest(30))
		done <- err
	}()

	// Signaling another device must not release this waiter.
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, dev2.Signal())

	select {
	case <-done:
		require.FailNow(t, "waiter was released by an unrelated device")
	case <-time.After(100 * time.Millisecond):
	}

	require.NoError(t, dev1.Signal())

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		require.FailNow(t, "signal did not release the awaiter")
	}
}
