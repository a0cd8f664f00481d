// Copyright (C) 2019-2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package sleepy

import (
	"go.uber.org/zap"
)

type Logger interface {
	// Log that a fatal error has occurred. The program should likely exit soon
	// after this is called
	Fatal(msg string, fields ...zap.Field)
	// Log that an error has occurred. The program should be able to recover
	// from this error
	Error(msg string, fields ...zap.Field)
	// Log that an event has occurred that may indicate a future error or
	// vulnerability
	Warn(msg string, fields ...zap.Field)
	// Log an event that may be useful for a user to see to measure the progress
	// of the coordinator
	Info(msg string, fields ...zap.Field)
	// Log an event that may be useful for understanding the order of the
	// execution of the coordinator
	Trace(msg string, fields ...zap.Field)
	// Log an event that may be useful for a programmer to see when debuging the
	// execution of the coordinator
	Debug(msg string, fields ...zap.Field)
	// Log extremely detailed events that can be useful for inspecting every
	// aspect of the program
	Verbo(msg string, fields ...zap.Field)
}

// Registrar is the device-node machinery surrounding a Registry. The
// registry notifies it whenever a device becomes or stops being addressable,
// so it can publish or revoke whatever external endpoint exposes the device.
type Registrar interface {
	// RegisterInstance publishes an endpoint for the device under the given
	// minor number. An error aborts the device's registration.
	RegisterInstance(minor uint32) error

	// UnregisterInstance revokes the endpoint for the given minor number.
	UnregisterInstance(minor uint32) error
}
