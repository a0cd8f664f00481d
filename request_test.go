// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package sleepy_test

import (
	"testing"
	"time"

	"github.com/ava-labs/sleepy"

	"github.com/stretchr/testify/require"
)

func TestParseAwaitRequestLength(t *testing.T) {
	for _, tc := range []struct {
		name string
		buff []byte
	}{
		{name: "nil", buff: nil},
		{name: "empty", buff: []byte{}},
		{name: "too short", buff: []byte{1, 0, 0}},
		{name: "too long", buff: []byte{1, 0, 0, 0, 0}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := sleepy.ParseAwaitRequest(tc.buff)
			require.ErrorIs(t, err, sleepy.ErrMalformedRequest)
		})
	}
}

func TestParseAwaitRequestSeconds(t *testing.T) {
	for _, tc := range []struct {
		name     string
		seconds  int32
		expected time.Duration
	}{
		{name: "positive", seconds: 5, expected: 5 * time.Second},
		{name: "one", seconds: 1, expected: time.Second},
		{name: "zero", seconds: 0, expected: 0},
		{name: "negative", seconds: -3, expected: 0},
		{name: "min int32", seconds: -2147483648, expected: 0},
		{name: "max int32", seconds: 2147483647, expected: 2147483647 * time.Second},
	} {
		t.Run(tc.name, func(t *testing.T) {
			timeout, err := sleepy.ParseAwaitRequest(sleepy.EncodeAwaitRequest(tc.seconds))
			require.NoError(t, err)
			require.Equal(t, tc.expected, timeout)
		})
	}
}

func TestAwaitRequestLittleEndian(t *testing.T) {
	timeout, err := sleepy.ParseAwaitRequest([]byte{7, 0, 0, 0})
	require.NoError(t, err)
	require.Equal(t, 7*time.Second, timeout)

	require.Equal(t, []byte{7, 0, 0, 0}, sleepy.EncodeAwaitRequest(7))
}
