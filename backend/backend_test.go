// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package backend

import (
	"errors"
	"slices"
	"testing"

	"github.com/gogpu/peel/raster"
)

// stubBackend embeds a nil raster.Backend; tests only check identity.
type stubBackend struct {
	raster.Backend
	name string
}

func TestRegistryGet(t *testing.T) {
	Register("stub", func(Config) (raster.Backend, error) {
		return &stubBackend{name: "stub"}, nil
	})
	defer Unregister("stub")

	if !IsRegistered("stub") {
		t.Fatal("stub not registered")
	}
	if !slices.Contains(Available(), "stub") {
		t.Errorf("Available() = %v, missing stub", Available())
	}

	b, err := Get("stub", Config{})
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if b.(*stubBackend).name != "stub" {
		t.Errorf("got %v", b)
	}
}

func TestRegistryGetUnknown(t *testing.T) {
	_, err := Get("does-not-exist", Config{})
	if !errors.Is(err, ErrBackendNotAvailable) {
		t.Errorf("err = %v, want ErrBackendNotAvailable", err)
	}
}

func TestDefaultSkipsFailingFactories(t *testing.T) {
	Register("wgpu", func(Config) (raster.Backend, error) {
		return nil, ErrNoDevice
	})
	Register("software", func(Config) (raster.Backend, error) {
		return &stubBackend{name: "software"}, nil
	})
	defer Unregister("wgpu")
	defer Unregister("software")

	b, err := Default(Config{})
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	if got := b.(*stubBackend).name; got != "software" {
		t.Errorf("Default picked %q, want software", got)
	}
}

func TestDefaultNothingRegistered(t *testing.T) {
	Register("broken", func(Config) (raster.Backend, error) {
		return nil, errors.New("broken")
	})
	defer Unregister("broken")

	for _, name := range Available() {
		if name != "broken" {
			t.Skipf("backend %q registered by another test", name)
		}
	}
	if _, err := Default(Config{}); !errors.Is(err, ErrBackendNotAvailable) {
		t.Errorf("err = %v, want ErrBackendNotAvailable", err)
	}
}
