package devnode

import (
	"context"
	"sync"
	"time"

	"github.com/ava-labs/sleepy"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeTimeout     = 10 * time.Second
	maxPendingFrames = 16
)

// deviceConn is one open handle on a device. Frames are processed strictly
// in order, one operation at a time, so an await blocks the handle exactly
// like a blocking write on a device file. Dropping the connection cancels
// the operation in flight.
type deviceConn struct {
	logger   sleepy.Logger
	registry *sleepy.Registry
	minor    uint32
	conn     *websocket.Conn
	onClose  func(*deviceConn)

	ctx       context.Context
	cancel    context.CancelFunc
	frames    chan []byte
	closeOnce sync.Once
}

func newDeviceConn(logger sleepy.Logger, registry *sleepy.Registry, minor uint32, conn *websocket.Conn, onClose func(*deviceConn)) *deviceConn {
	ctx, cancel := context.WithCancel(context.Background())

	return &deviceConn{
		logger:   logger,
		registry: registry,
		minor:    minor,
		conn:     conn,
		onClose:  onClose,
		ctx:      ctx,
		cancel:   cancel,
		frames:   make(chan []byte, maxPendingFrames),
	}
}

// run processes frames until the client disconnects or the device node is
// revoked.
func (dc *deviceConn) run() {
	defer dc.onClose(dc)
	defer dc.close()

	go dc.readPump()

	for {
		select {
		case <-dc.ctx.Done():
			return
		case frame := <-dc.frames:
			if err := dc.dispatch(frame); err != nil {
				dc.logger.Debug("Closing device connection",
					zap.Uint32("minor", dc.minor),
					zap.Error(err))
				return
			}
		}
	}
}

// readPump feeds incoming frames to run. It owns all reads on the
// connection, so a client disconnect surfaces here and cancels whatever
// operation run is blocked on.
func (dc *deviceConn) readPump() {
	defer dc.cancel()

	for {
		_, frame, err := dc.conn.ReadMessage()
		if err != nil {
			return
		}

		select {
		case dc.frames <- frame:
		case <-dc.ctx.Done():
			return
		}
	}
}

func (dc *deviceConn) dispatch(frame []byte) error {
	frameType, payload, err := ParseFrame(frame)
	if err != nil {
		return dc.reply(EncodeErrorFrame(ErrCodeMalformed))
	}

	switch frameType {
	case SignalFrameType:
		return dc.handleSignal(payload)
	case AwaitFrameType:
		return dc.handleAwait(payload)
	default:
		dc.logger.Debug("Received unknown frame type",
			zap.Uint32("minor", dc.minor),
			zap.Uint16("frameType", frameType))
		return dc.reply(EncodeErrorFrame(ErrCodeMalformed))
	}
}

func (dc *deviceConn) handleSignal(payload []byte) error {
	if err := dc.registry.Signal(dc.minor); err != nil {
		return dc.reply(EncodeErrorFrame(ErrorCode(err)))
	}

	// A signal consumes every byte the caller offered.
	return dc.reply(EncodeResultFrame(uint32(len(payload))))
}

func (dc *deviceConn) handleAwait(payload []byte) error {
	remaining, err := dc.registry.AwaitChange(dc.ctx, dc.minor, payload)
	if err != nil {
		return dc.reply(EncodeErrorFrame(ErrorCode(err)))
	}

	return dc.reply(EncodeResultFrame(remaining))
}

func (dc *deviceConn) reply(frame []byte) error {
	dc.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return dc.conn.WriteMessage(websocket.BinaryMessage, frame)
}

// close severs the connection and cancels the operation in flight. It never
// blocks and is safe to call from any goroutine.
func (dc *deviceConn) close() {
	dc.closeOnce.Do(func() {
		dc.cancel()
		dc.conn.Close()
	})
}
