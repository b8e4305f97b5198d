// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package layeravg

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"golang.org/x/image/bmp"
)

// LayerFileName returns the file name of a layer image. layer counts
// from 0; file numbers count from 1.
func LayerFileName(layer int) string {
	return fmt.Sprintf("LayerImage%d.bmp", layer+1)
}

// WriteLayer writes one layer image into dir as BMP.
func WriteLayer(dir string, layer int, img image.Image) error {
	f, err := os.Create(filepath.Join(dir, LayerFileName(layer)))
	if err != nil {
		return fmt.Errorf("layeravg: %w", err)
	}
	if err := bmp.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("layeravg: encode %s: %w", f.Name(), err)
	}
	return f.Close()
}

// ReadLayers reads n layer images from dir.
func ReadLayers(dir string, n int) ([]image.Image, error) {
	if n <= 0 {
		return nil, ErrNoLayers
	}
	layers := make([]image.Image, n)
	for i := range n {
		img, err := readBMP(filepath.Join(dir, LayerFileName(i)))
		if err != nil {
			return nil, err
		}
		layers[i] = img
	}
	return layers, nil
}

// CountLayers returns how many consecutive layer images dir holds.
func CountLayers(dir string) int {
	n := 0
	for {
		if _, err := os.Stat(filepath.Join(dir, LayerFileName(n))); err != nil {
			return n
		}
		n++
	}
}

func readBMP(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("layeravg: %w", err)
	}
	defer f.Close()
	img, err := bmp.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("layeravg: decode %s: %w", path, err)
	}
	return img, nil
}

// WritePNG writes img as PNG.
func WritePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("layeravg: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("layeravg: encode %s: %w", path, err)
	}
	return f.Close()
}
