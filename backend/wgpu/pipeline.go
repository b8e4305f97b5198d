// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/peel/raster"
)

// Vertex attribute blocks of a packed point buffer, one slot each.
const (
	coordStride = 12
	colorStride = 4
)

// quadVertices is the vertex count of the full-screen quad: two triangles
// generated from vertex_index.
const quadVertices = 6

// pipelineKey identifies one render pipeline variant.
type pipelineKey struct {
	program   raster.ProgramID
	primitive raster.Primitive
	depthTest bool
	depthFunc raster.DepthFunc
	color     gputypes.TextureFormat
	depth     gputypes.TextureFormat
	hasDepth  bool
}

// compileWGSL compiles WGSL to SPIR-V words.
func compileWGSL(source string) ([]uint32, error) {
	spirv, err := naga.Compile(source)
	if err != nil {
		return nil, fmt.Errorf("compile shader: %w", err)
	}
	words := make([]uint32, len(spirv)/4)
	for i := range words {
		words[i] = uint32(spirv[i*4]) |
			uint32(spirv[i*4+1])<<8 |
			uint32(spirv[i*4+2])<<16 |
			uint32(spirv[i*4+3])<<24
	}
	return words, nil
}

// createLayouts builds the bind group layout of a program: its uniform
// block at binding 0 and one texture per sampler declaration.
func (b *Backend) createLayouts(p *program) error {
	entries := []gputypes.BindGroupLayoutEntry{{
		Binding:    0,
		Visibility: gputypes.ShaderStageVertex | gputypes.ShaderStageFragment,
		Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
	}}
	for _, s := range p.desc.Samplers {
		sample := gputypes.TextureSampleTypeUnfilterableFloat
		if s.Depth {
			sample = gputypes.TextureSampleTypeDepth
		}
		entries = append(entries, gputypes.BindGroupLayoutEntry{
			Binding:    s.Binding,
			Visibility: gputypes.ShaderStageFragment,
			Texture: &gputypes.TextureBindingLayout{
				SampleType:    sample,
				ViewDimension: gputypes.TextureViewDimension2D,
			},
		})
	}

	bindLayout, err := b.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label:   p.desc.Label + "_layout",
		Entries: entries,
	})
	if err != nil {
		return fmt.Errorf("wgpu: program %q: create bind group layout: %w", p.desc.Label, err)
	}
	pipeLayout, err := b.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            p.desc.Label + "_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{bindLayout},
	})
	if err != nil {
		b.device.DestroyBindGroupLayout(bindLayout)
		return fmt.Errorf("wgpu: program %q: create pipeline layout: %w", p.desc.Label, err)
	}
	p.bindLayout, p.pipeLayout = bindLayout, pipeLayout
	return nil
}

func compareFunction(f raster.DepthFunc) gputypes.CompareFunction {
	switch f {
	case raster.DepthNever:
		return gputypes.CompareFunctionNever
	case raster.DepthLessEqual:
		return gputypes.CompareFunctionLessEqual
	case raster.DepthEqual:
		return gputypes.CompareFunctionEqual
	case raster.DepthGreater:
		return gputypes.CompareFunctionGreater
	case raster.DepthGreaterEqual:
		return gputypes.CompareFunctionGreaterEqual
	case raster.DepthNotEqual:
		return gputypes.CompareFunctionNotEqual
	case raster.DepthAlways:
		return gputypes.CompareFunctionAlways
	default:
		return gputypes.CompareFunctionLess
	}
}

// depthState maps the GL depth state onto a pipeline. A disabled depth
// test neither tests nor writes.
func depthState(key pipelineKey) *hal.DepthStencilState {
	if !key.hasDepth {
		return nil
	}
	keep := hal.StencilFaceState{
		Compare:     gputypes.CompareFunctionAlways,
		FailOp:      hal.StencilOperationKeep,
		DepthFailOp: hal.StencilOperationKeep,
		PassOp:      hal.StencilOperationKeep,
	}
	ds := &hal.DepthStencilState{
		Format:       key.depth,
		DepthCompare: gputypes.CompareFunctionAlways,
		StencilFront: keep,
		StencilBack:  keep,
	}
	if key.depthTest {
		ds.DepthWriteEnabled = true
		ds.DepthCompare = compareFunction(key.depthFunc)
	}
	return ds
}

// pipeline returns the cached pipeline for key, creating it on first use.
func (b *Backend) pipeline(key pipelineKey, p *program) (hal.RenderPipeline, error) {
	if pipe, ok := b.pipelines[key]; ok {
		return pipe, nil
	}

	vertex := hal.VertexState{Module: p.module, EntryPoint: "vs_main"}
	topology := gputypes.PrimitiveTopologyTriangleList
	if key.primitive == raster.PrimitivePoints {
		topology = gputypes.PrimitiveTopologyPointList
		vertex.Buffers = []gputypes.VertexBufferLayout{
			{
				ArrayStride: coordStride,
				StepMode:    gputypes.VertexStepModeVertex,
				Attributes: []gputypes.VertexAttribute{
					{Format: gputypes.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
				},
			},
			{
				ArrayStride: colorStride,
				StepMode:    gputypes.VertexStepModeVertex,
				Attributes: []gputypes.VertexAttribute{
					{Format: gputypes.VertexFormatUnorm8x4, Offset: 0, ShaderLocation: 1},
				},
			},
		}
	}

	pipe, err := b.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  p.desc.Label + "_pipeline",
		Layout: p.pipeLayout,
		Vertex: vertex,
		Fragment: &hal.FragmentState{
			Module:     p.module,
			EntryPoint: "fs_main",
			Targets: []gputypes.ColorTargetState{{
				Format:    key.color,
				WriteMask: gputypes.ColorWriteMaskAll,
			}},
		},
		DepthStencil: depthState(key),
		Multisample:  gputypes.MultisampleState{Count: 1, Mask: 0xFFFFFFFF},
		Primitive: gputypes.PrimitiveState{
			Topology: topology,
			CullMode: gputypes.CullModeNone,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: program %q: create pipeline: %w", p.desc.Label, err)
	}
	b.pipelines[key] = pipe
	slogger().Debug("wgpu: pipeline created",
		"program", p.desc.Label,
		"depth_test", key.depthTest,
		"depth_func", key.depthFunc.String())
	return pipe, nil
}
