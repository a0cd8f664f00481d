// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package sleepy

import "errors"

var (
	// ErrMalformedRequest is returned when an await request is not exactly
	// AwaitRequestSize bytes.
	ErrMalformedRequest = errors.New("await request must be exactly 4 bytes")

	// ErrInterrupted is returned when a blocked await is cancelled before the
	// counter changes or the timeout elapses.
	ErrInterrupted = errors.New("await interrupted")

	ErrNoSuchDevice = errors.New("no such device")

	ErrClosed = errors.New("device closed")
)
