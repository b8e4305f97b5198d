// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package pointfile reads and writes point clouds as plain text.
//
// Each line holds one point: "x y z" or "x y z r g b". Fields are
// separated by spaces, tabs or commas. Blank lines and lines starting
// with '#' are skipped. Color fields written with a decimal point are
// normalized to [0, 1]; integer fields are 0-255. All points of a file
// must have the same number of fields. Files ending in .gz are
// decompressed transparently.
package pointfile

import (
	"bufio"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/gogpu/peel"
)

// ErrSyntax is returned for malformed lines.
var ErrSyntax = errors.New("pointfile: syntax error")

// DefaultColor is the color of points read without color fields.
var DefaultColor = [3]uint8{255, 255, 255}

func splitFields(line string) []string {
	return strings.FieldsFunc(line, func(r rune) bool {
		return r == ' ' || r == '\t' || r == ','
	})
}

func parseColor(field string) (uint8, error) {
	v, err := strconv.ParseFloat(field, 32)
	if err != nil {
		return 0, err
	}
	if strings.ContainsAny(field, ".eE") {
		v *= 255
	}
	if v < 0 || v > 255 || math.IsNaN(v) {
		return 0, fmt.Errorf("color %s out of range", field)
	}
	return uint8(math.Round(v)), nil
}

// Read parses a point cloud from r.
func Read(r io.Reader) (*peel.PointCloud, error) {
	sc := bufio.NewScanner(r)
	var coords []float32
	var colors []uint8
	fieldsPerLine := 0

	for lineNo := 1; sc.Scan(); lineNo++ {
		line := strings.TrimSpace(sc.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		fields := splitFields(line)
		if len(fields) != 3 && len(fields) != 6 {
			return nil, fmt.Errorf("%w: line %d: want 3 or 6 fields, got %d", ErrSyntax, lineNo, len(fields))
		}
		if fieldsPerLine == 0 {
			fieldsPerLine = len(fields)
		} else if len(fields) != fieldsPerLine {
			return nil, fmt.Errorf("%w: line %d: %d fields after lines of %d", ErrSyntax, lineNo, len(fields), fieldsPerLine)
		}

		for _, f := range fields[:3] {
			v, err := strconv.ParseFloat(f, 32)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrSyntax, lineNo, err)
			}
			coords = append(coords, float32(v))
		}
		for _, f := range fields[3:] {
			c, err := parseColor(f)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrSyntax, lineNo, err)
			}
			colors = append(colors, c)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("pointfile: read: %w", err)
	}

	if fieldsPerLine != 6 {
		colors = []uint8{DefaultColor[0], DefaultColor[1], DefaultColor[2]}
	}
	return peel.NewPointCloud(coords, colors), nil
}

// Load reads a point cloud file.
func Load(path string) (*peel.PointCloud, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("pointfile: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		zr, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("pointfile: %s: %w", path, err)
		}
		defer zr.Close()
		r = zr
	}
	pc, err := Read(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return pc, nil
}

// Write writes pc as "x y z r g b" lines.
func Write(w io.Writer, pc *peel.PointCloud) error {
	if err := pc.Validate(); err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	single := pc.IsSingleColor()
	for i := range pc.NumVertices() {
		c := pc.Colors
		if !single {
			c = pc.Colors[3*i : 3*i+3]
		}
		fmt.Fprintf(bw, "%g %g %g %d %d %d\n",
			pc.Coords[3*i], pc.Coords[3*i+1], pc.Coords[3*i+2], c[0], c[1], c[2])
	}
	return bw.Flush()
}
