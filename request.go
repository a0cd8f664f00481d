// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package sleepy

import (
	"encoding/binary"
	"fmt"
	"time"
)

// AwaitRequestSize is the exact length of an await request payload:
// a little-endian signed 32-bit count of seconds.
const AwaitRequestSize = 4

// ParseAwaitRequest decodes the requested wait duration from an await
// request. Payloads of any other length are rejected before any device state
// is touched. A non-positive seconds value decodes to a zero duration.
func ParseAwaitRequest(buff []byte) (time.Duration, error) {
	if len(buff) != AwaitRequestSize {
		return 0, fmt.Errorf("%w: got %d bytes", ErrMalformedRequest, len(buff))
	}

	seconds := int32(binary.LittleEndian.Uint32(buff))
	if seconds <= 0 {
		return 0, nil
	}

	return time.Duration(seconds) * time.Second, nil
}

// EncodeAwaitRequest encodes a requested wait duration in seconds into the
// wire form expected by ParseAwaitRequest.
func EncodeAwaitRequest(seconds int32) []byte {
	buff := make([]byte, AwaitRequestSize)
	binary.LittleEndian.PutUint32(buff, uint32(seconds))
	return buff
}
