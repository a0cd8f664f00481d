// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package sleepy

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/ava-labs/avalanchego/utils/wrappers"
	"go.uber.org/zap"
)

// DeviceStatus describes one registered device.
type DeviceStatus struct {
	Minor   uint32 `json:"minor"`
	Counter uint64 `json:"counter"`
}

// Registry owns the live devices and routes callers to them by minor number.
// It replaces ad-hoc global device tables: every device is created through
// Register, addressed through an opaque minor number, and torn down through
// Unregister or Close.
type Registry struct {
	logger    Logger
	registrar Registrar

	lock    sync.RWMutex
	devices map[uint32]*Device
	closed  bool
}

func NewRegistry(logger Logger) *Registry {
	return &Registry{
		logger:  logger,
		devices: make(map[uint32]*Device),
	}
}

// SetRegistrar configures the collaborator notified of device creation and
// destruction. Must be called before the first Register.
func (r *Registry) SetRegistrar(registrar Registrar) {
	r.registrar = registrar
}

// Register creates a device under the given minor number, with its counter
// at zero, and announces it to the registrar. If the registrar refuses the
// device, it is torn down and never becomes addressable.
func (r *Registry) Register(minor uint32) (*Device, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	if r.closed {
		return nil, ErrClosed
	}
	if _, exists := r.devices[minor]; exists {
		return nil, fmt.Errorf("device %d is already registered", minor)
	}

	dev := NewDevice(r.logger, minor)
	if r.registrar != nil {
		if err := r.registrar.RegisterInstance(minor); err != nil {
			dev.Close()
			return nil, fmt.Errorf("failed to register device %d: %w", minor, err)
		}
	}
	r.devices[minor] = dev

	r.logger.Info("Registered device", zap.Uint32("minor", minor))

	return dev, nil
}

// Unregister revokes the device from the registrar, releases any callers
// still blocked on it, and removes it from the registry.
func (r *Registry) Unregister(minor uint32) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	return r.unregister(minor)
}

func (r *Registry) unregister(minor uint32) error {
	dev, exists := r.devices[minor]
	if !exists {
		return ErrNoSuchDevice
	}

	var errs wrappers.Errs
	if r.registrar != nil {
		errs.Add(r.registrar.UnregisterInstance(minor))
	}
	dev.Close()
	delete(r.devices, minor)

	r.logger.Info("Unregistered device", zap.Uint32("minor", minor))

	return errs.Err
}

// Lookup resolves a minor number to its live device.
func (r *Registry) Lookup(minor uint32) (*Device, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	dev, exists := r.devices[minor]
	if !exists {
		return nil, ErrNoSuchDevice
	}

	return dev, nil
}

// Signal advances the counter of the device registered under minor and
// releases every caller blocked on it.
func (r *Registry) Signal(minor uint32) error {
	dev, err := r.Lookup(minor)
	if err != nil {
		return err
	}

	return dev.Signal()
}

// AwaitChange blocks until the counter of the device registered under minor
// differs from the value it holds when the wait begins, per Device.Await.
// The registry lock is not held while blocked.
func (r *Registry) AwaitChange(ctx context.Context, minor uint32, req []byte) (uint32, error) {
	dev, err := r.Lookup(minor)
	if err != nil {
		return 0, err
	}

	return dev.Await(ctx, req)
}

// Status reports every registered device, ordered by minor number.
func (r *Registry) Status() []DeviceStatus {
	r.lock.RLock()
	defer r.lock.RUnlock()

	minors := make([]uint32, 0, len(r.devices))
	for minor := range r.devices {
		minors = append(minors, minor)
	}
	slices.Sort(minors)

	statuses := make([]DeviceStatus, 0, len(minors))
	for _, minor := range minors {
		statuses = append(statuses, DeviceStatus{
			Minor:   minor,
			Counter: r.devices[minor].Snapshot(),
		})
	}

	return statuses
}

// Close unregisters every device, releasing all blocked callers. Further
// calls return ErrClosed.
func (r *Registry) Close() error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if r.closed {
		return ErrClosed
	}
	r.closed = true

	var errs wrappers.Errs
	for minor := range r.devices {
		errs.Add(r.unregister(minor))
	}

	return errs.Err
}
