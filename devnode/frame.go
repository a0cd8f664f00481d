package devnode

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/ava-labs/sleepy"
)

// EncodeFrame prefixes the payload with a big-endian frame type.
func EncodeFrame(frameType uint16, payload []byte) []byte {
	buff := make([]byte, frameTypeLen+len(payload))
	binary.BigEndian.PutUint16(buff, frameType)
	copy(buff[frameTypeLen:], payload)

	return buff
}

// ParseFrame splits a frame into its type and payload.
func ParseFrame(buff []byte) (uint16, []byte, error) {
	if len(buff) < frameTypeLen {
		return 0, nil, errors.New("buffer too small to contain a frame type")
	}

	return binary.BigEndian.Uint16(buff), buff[frameTypeLen:], nil
}

// EncodeResultFrame encodes the result of a completed operation. The value is
// little-endian, matching the endianness of await request payloads.
func EncodeResultFrame(value uint32) []byte {
	payload := make([]byte, resultLen)
	binary.LittleEndian.PutUint32(payload, value)

	return EncodeFrame(ResultFrameType, payload)
}

func ParseResultFrame(buff []byte) (uint32, error) {
	frameType, payload, err := ParseFrame(buff)
	if err != nil {
		return 0, err
	}
	if frameType != ResultFrameType {
		return 0, fmt.Errorf("expected frame type %d, got %d", ResultFrameType, frameType)
	}
	if len(payload) != resultLen {
		return 0, fmt.Errorf("expected %d byte result, got %d bytes", resultLen, len(payload))
	}

	return binary.LittleEndian.Uint32(payload), nil
}

func EncodeErrorFrame(code uint8) []byte {
	return EncodeFrame(ErrorFrameType, []byte{code})
}

func ParseErrorFrame(buff []byte) (uint8, error) {
	frameType, payload, err := ParseFrame(buff)
	if err != nil {
		return 0, err
	}
	if frameType != ErrorFrameType {
		return 0, fmt.Errorf("expected frame type %d, got %d", ErrorFrameType, frameType)
	}
	if len(payload) != errorCodeLen {
		return 0, fmt.Errorf("expected %d byte error code, got %d bytes", errorCodeLen, len(payload))
	}

	return payload[0], nil
}

// ErrorCode maps an operation error onto its wire code. Errors that are not
// part of the device taxonomy are reported as closed.
func ErrorCode(err error) uint8 {
	switch {
	case errors.Is(err, sleepy.ErrMalformedRequest):
		return ErrCodeMalformed
	case errors.Is(err, sleepy.ErrInterrupted):
		return ErrCodeInterrupted
	case errors.Is(err, sleepy.ErrNoSuchDevice):
		return ErrCodeNoSuchDevice
	default:
		return ErrCodeClosed
	}
}

// ErrorFromCode is the client side inverse of ErrorCode.
func ErrorFromCode(code uint8) error {
	switch code {
	case ErrCodeMalformed:
		return sleepy.ErrMalformedRequest
	case ErrCodeInterrupted:
		return sleepy.ErrInterrupted
	case ErrCodeNoSuchDevice:
		return sleepy.ErrNoSuchDevice
	case ErrCodeClosed:
		return sleepy.ErrClosed
	default:
		return fmt.Errorf("unknown error code %d", code)
	}
}
