// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package backend

import (
	"fmt"
	"sort"
	"sync"

	"github.com/gogpu/peel/raster"
)

// Factory creates a backend instance.
type Factory func(cfg Config) (raster.Backend, error)

var (
	registryMu sync.RWMutex
	factories  = make(map[string]Factory)
	// Priority order for Default (first one that starts wins).
	backendPriority = []string{"wgpu", "software"}
)

// Register registers a backend factory under name. Backend packages call
// it from init. A later registration replaces an earlier one.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	factories[name] = factory
}

// Unregister removes a backend. This is useful for testing.
func Unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(factories, name)
}

// Available returns the registered backend names in sorted order.
func Available() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsRegistered reports whether a backend is registered under name.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := factories[name]
	return ok
}

// Get creates the backend registered under name.
func Get(name string, cfg Config) (raster.Backend, error) {
	registryMu.RLock()
	factory, ok := factories[name]
	registryMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrBackendNotAvailable, name)
	}
	return factory(cfg)
}

// Default creates the first backend in priority order whose factory
// succeeds: wgpu, then software, then any other registered backend.
func Default(cfg Config) (raster.Backend, error) {
	tried := make(map[string]bool, len(backendPriority))
	for _, name := range backendPriority {
		tried[name] = true
		if !IsRegistered(name) {
			continue
		}
		if b, err := Get(name, cfg); err == nil {
			return b, nil
		}
	}
	for _, name := range Available() {
		if tried[name] {
			continue
		}
		if b, err := Get(name, cfg); err == nil {
			return b, nil
		}
	}
	return nil, ErrBackendNotAvailable
}
