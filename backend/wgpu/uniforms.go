// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/peel/raster"
)

// uniformField is the placement of one uniform in the uniform buffer.
type uniformField struct {
	decl   raster.UniformDecl
	offset int
}

// uniformBlock is the std140-like layout WGSL gives a uniform struct whose
// members are declared in the same order as the program's UniformDecls.
type uniformBlock struct {
	fields []uniformField
	index  map[string]int
	size   int
}

// alignSize returns the WGSL alignment and size of a uniform type.
// mat3x3<f32> is three vec3 columns padded to 16 bytes.
func alignSize(t raster.UniformType) (align, size int) {
	switch t {
	case raster.UniformFloat, raster.UniformInt:
		return 4, 4
	case raster.UniformVec3:
		return 16, 12
	case raster.UniformVec4:
		return 16, 16
	case raster.UniformMat3:
		return 16, 48
	case raster.UniformMat4:
		return 16, 64
	default:
		return 4, 0
	}
}

func roundUp(v, align int) int {
	return (v + align - 1) &^ (align - 1)
}

func layoutUniforms(decls []raster.UniformDecl) uniformBlock {
	blk := uniformBlock{index: make(map[string]int, len(decls))}
	off := 0
	for _, d := range decls {
		align, size := alignSize(d.Type)
		off = roundUp(off, align)
		blk.index[d.Name] = len(blk.fields)
		blk.fields = append(blk.fields, uniformField{decl: d, offset: off})
		off += size
	}
	blk.size = roundUp(max(off, 16), 16)
	return blk
}

// offset returns the byte offset of a uniform, or -1.
func (blk *uniformBlock) offset(name string) int {
	i, ok := blk.index[name]
	if !ok {
		return -1
	}
	return blk.fields[i].offset
}

// pack writes the values into a new buffer. Missing values stay zero.
func (blk *uniformBlock) pack(values map[string]any) ([]byte, error) {
	buf := make([]byte, blk.size)
	for _, f := range blk.fields {
		v, ok := values[f.decl.Name]
		if !ok {
			continue
		}
		if err := putUniform(buf[f.offset:], f.decl, v); err != nil {
			return nil, err
		}
	}
	return buf, nil
}

func putFloats(dst []byte, vs ...float32) {
	for i, v := range vs {
		binary.LittleEndian.PutUint32(dst[4*i:], math.Float32bits(v))
	}
}

func putUniform(dst []byte, d raster.UniformDecl, v any) error {
	mismatch := func() error {
		return fmt.Errorf("%w: %s wants %d, got %T", raster.ErrUniformType, d.Name, d.Type, v)
	}
	switch d.Type {
	case raster.UniformFloat:
		switch x := v.(type) {
		case float32:
			putFloats(dst, x)
		case int:
			putFloats(dst, float32(x))
		default:
			return mismatch()
		}
	case raster.UniformInt:
		switch x := v.(type) {
		case int32:
			binary.LittleEndian.PutUint32(dst, uint32(x))
		case int:
			binary.LittleEndian.PutUint32(dst, uint32(int32(x))) //nolint:gosec // unit numbers and sizes fit int32
		default:
			return mismatch()
		}
	case raster.UniformVec3:
		x, ok := v.(mgl32.Vec3)
		if !ok {
			return mismatch()
		}
		putFloats(dst, x[:]...)
	case raster.UniformVec4:
		x, ok := v.(mgl32.Vec4)
		if !ok {
			return mismatch()
		}
		putFloats(dst, x[:]...)
	case raster.UniformMat3:
		x, ok := v.(mgl32.Mat3)
		if !ok {
			return mismatch()
		}
		for col := range 3 {
			c := x.Col(col)
			putFloats(dst[16*col:], c[:]...)
		}
	case raster.UniformMat4:
		x, ok := v.(mgl32.Mat4)
		if !ok {
			return mismatch()
		}
		putFloats(dst, x[:]...)
	}
	return nil
}
