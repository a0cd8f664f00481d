package devnode

const (
	UndefinedFrameType uint16 = iota
	SignalFrameType
	AwaitFrameType
	ResultFrameType
	ErrorFrameType

	frameTypeLen = 2
	resultLen    = 4
	errorCodeLen = 1
)

// Error frame codes, errno flavored.
const (
	ErrCodeMalformed uint8 = iota + 1
	ErrCodeInterrupted
	ErrCodeNoSuchDevice
	ErrCodeClosed
)
