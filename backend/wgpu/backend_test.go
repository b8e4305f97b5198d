// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"errors"
	"testing"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/peel/backend"
	"github.com/gogpu/peel/raster"
)

// plainProvider exposes no HAL handles.
type plainProvider struct {
	gpucontext.DeviceProvider
}

func TestNewRequiresDevice(t *testing.T) {
	if _, err := New(nil, nil); !errors.Is(err, backend.ErrNoDevice) {
		t.Errorf("New(nil, nil) error = %v, want ErrNoDevice", err)
	}
}

func TestRegistryWithoutProvider(t *testing.T) {
	if !backend.IsRegistered(Name) {
		t.Fatal("wgpu backend not registered")
	}
	if _, err := backend.Get(Name, backend.Config{Width: 4, Height: 4}); !errors.Is(err, backend.ErrNoDevice) {
		t.Errorf("Get error = %v, want ErrNoDevice", err)
	}
}

func TestNewFromProviderWithoutHal(t *testing.T) {
	if _, err := NewFromProvider(plainProvider{}); !errors.Is(err, ErrNotHalProvider) {
		t.Errorf("error = %v, want ErrNotHalProvider", err)
	}
}

func TestDepthState(t *testing.T) {
	if ds := depthState(pipelineKey{}); ds != nil {
		t.Errorf("no depth attachment should give nil state, got %+v", ds)
	}

	off := depthState(pipelineKey{hasDepth: true, depth: gputypes.TextureFormatDepth32Float, depthFunc: raster.DepthLess})
	if off.DepthWriteEnabled || off.DepthCompare != gputypes.CompareFunctionAlways {
		t.Errorf("disabled test = %+v, want Always without writes", off)
	}

	on := depthState(pipelineKey{hasDepth: true, depthTest: true, depthFunc: raster.DepthLess})
	if !on.DepthWriteEnabled || on.DepthCompare != gputypes.CompareFunctionLess {
		t.Errorf("enabled test = %+v, want Less with writes", on)
	}
}

func TestCompareFunction(t *testing.T) {
	tests := []struct {
		in   raster.DepthFunc
		want gputypes.CompareFunction
	}{
		{raster.DepthLess, gputypes.CompareFunctionLess},
		{raster.DepthAlways, gputypes.CompareFunctionAlways},
		{raster.DepthGreaterEqual, gputypes.CompareFunctionGreaterEqual},
		{raster.DepthNever, gputypes.CompareFunctionNever},
	}
	for _, tt := range tests {
		if got := compareFunction(tt.in); got != tt.want {
			t.Errorf("compareFunction(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
