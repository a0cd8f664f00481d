package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strconv"

	"github.com/ava-labs/sleepy"
	"github.com/ava-labs/sleepy/devnode"
	"github.com/gorilla/websocket"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:8080", "Daemon address")
	device := flag.Uint("device", 0, "Device minor number")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		usage()
	}

	var err error
	switch args[0] {
	case "signal":
		err = signal(*addr, uint32(*device))
	case "await":
		if len(args) != 2 {
			usage()
		}
		var seconds int64
		seconds, err = strconv.ParseInt(args[1], 10, 32)
		if err != nil {
			fmt.Fprintf(os.Stderr, "sleepyctl: invalid seconds %q: %v\n", args[1], err)
			os.Exit(2)
		}
		err = await(*addr, uint32(*device), int32(seconds))
	case "list":
		err = list(*addr)
	default:
		usage()
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "sleepyctl: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: sleepyctl [-addr host:port] [-device N] signal | await <seconds> | list")
	os.Exit(2)
}

func dial(addr string, minor uint32) (*websocket.Conn, error) {
	url := fmt.Sprintf("ws://%s%s%d", addr, devnode.DevicePathPrefix, minor)
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", url, err)
	}

	return conn, nil
}

// roundTrip writes one frame and decodes the reply, surfacing error frames
// as their device errors.
func roundTrip(conn *websocket.Conn, frame []byte) (uint32, error) {
	if err := conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
		return 0, err
	}

	_, reply, err := conn.ReadMessage()
	if err != nil {
		return 0, err
	}

	frameType, _, err := devnode.ParseFrame(reply)
	if err != nil {
		return 0, err
	}

	switch frameType {
	case devnode.ResultFrameType:
		return devnode.ParseResultFrame(reply)
	case devnode.ErrorFrameType:
		code, err := devnode.ParseErrorFrame(reply)
		if err != nil {
			return 0, err
		}
		return 0, devnode.ErrorFromCode(code)
	default:
		return 0, fmt.Errorf("unexpected frame type %d", frameType)
	}
}

func signal(addr string, minor uint32) error {
	conn, err := dial(addr, minor)
	if err != nil {
		return err
	}
	defer conn.Close()

	consumed, err := roundTrip(conn, devnode.EncodeFrame(devnode.SignalFrameType, nil))
	if err != nil {
		return err
	}

	fmt.Printf("signaled device %d (%d bytes consumed)\n", minor, consumed)
	return nil
}

func await(addr string, minor uint32, seconds int32) error {
	conn, err := dial(addr, minor)
	if err != nil {
		return err
	}
	defer conn.Close()

	frame := devnode.EncodeFrame(devnode.AwaitFrameType, sleepy.EncodeAwaitRequest(seconds))
	remaining, err := roundTrip(conn, frame)
	if err != nil {
		return err
	}

	if remaining > 0 {
		fmt.Printf("device %d changed, %d seconds remaining\n", minor, remaining)
	} else {
		fmt.Printf("device %d wait finished\n", minor)
	}
	return nil
}

func list(addr string) error {
	url := fmt.Sprintf("http://%s/devices", addr)
	resp, err := http.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: %s", url, resp.Status)
	}

	var statuses []sleepy.DeviceStatus
	if err := json.NewDecoder(resp.Body).Decode(&statuses); err != nil {
		return err
	}

	for _, status := range statuses {
		fmt.Printf("%s%d\tcounter=%d\n", devnode.DevicePathPrefix, status.Minor, status.Counter)
	}
	return nil
}
