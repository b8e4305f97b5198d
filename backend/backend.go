// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package backend

import (
	"errors"

	"github.com/gogpu/gpucontext"
)

// Common backend errors.
var (
	// ErrBackendNotAvailable is returned when a requested backend is not
	// registered or cannot run on this machine.
	ErrBackendNotAvailable = errors.New("backend: not available")

	// ErrNoDevice is returned by GPU backends created without a device.
	ErrNoDevice = errors.New("backend: no GPU device")
)

// Config carries what a factory needs to create a backend.
type Config struct {
	// Width and Height size the default framebuffer of backends that own
	// one. Zero leaves the default framebuffer unbound.
	Width, Height int

	// Provider supplies a shared GPU device. GPU backends fail with
	// ErrNoDevice when it is nil.
	Provider gpucontext.DeviceProvider
}
