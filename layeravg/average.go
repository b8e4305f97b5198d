// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package layeravg

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"slices"

	"github.com/chewxy/math32"

	"github.com/gogpu/peel/internal/parallel"
)

// DefaultReferenceLayers is the maximum number of layers the reference
// median is taken over.
const DefaultReferenceLayers = 20

var (
	// ErrNoLayers is returned when averaging an empty layer set.
	ErrNoLayers = errors.New("layeravg: no layer images")

	// ErrSizeMismatch is returned when layer images differ in size.
	ErrSizeMismatch = errors.New("layeravg: layer images differ in size")
)

// Result holds the averaged image and its by-products.
type Result struct {
	// Image is the averaged image.
	Image *image.RGBA

	// Reference is the per-channel median image.
	Reference *image.RGBA

	// Counts holds, per pixel, how many layers were averaged.
	Counts *image.Gray

	// MeanDistance holds, per pixel, the mean RGB distance of the layers
	// to the reference, row-major.
	MeanDistance []float32
}

// Option configures Average.
type Option func(*options)

type options struct {
	referenceLayers int
	workers         int
}

// WithReferenceLayers sets how many leading layers form the reference.
func WithReferenceLayers(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.referenceLayers = n
		}
	}
}

// WithWorkers sets the number of goroutines. Zero means GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// layerStack is the decoded RGB of every layer, pixel-major:
// rgb[(pixel*n + layer)*3 + channel].
type layerStack struct {
	w, h, n int
	rgb     []uint8
}

func stack(layers []image.Image) (*layerStack, error) {
	if len(layers) == 0 {
		return nil, ErrNoLayers
	}
	b := layers[0].Bounds()
	s := &layerStack{w: b.Dx(), h: b.Dy(), n: len(layers)}
	s.rgb = make([]uint8, s.w*s.h*s.n*3)
	for l, img := range layers {
		lb := img.Bounds()
		if lb.Dx() != s.w || lb.Dy() != s.h {
			return nil, fmt.Errorf("%w: layer %d is %dx%d, want %dx%d",
				ErrSizeMismatch, l+1, lb.Dx(), lb.Dy(), s.w, s.h)
		}
		for y := range s.h {
			for x := range s.w {
				c := color.RGBAModel.Convert(img.At(lb.Min.X+x, lb.Min.Y+y)).(color.RGBA)
				i := ((y*s.w+x)*s.n + l) * 3
				s.rgb[i], s.rgb[i+1], s.rgb[i+2] = c.R, c.G, c.B
			}
		}
	}
	return s, nil
}

// pixel returns the n RGB triples of one pixel.
func (s *layerStack) pixel(p int) []uint8 {
	return s.rgb[p*s.n*3 : (p+1)*s.n*3]
}

// median returns the median of vs truncated to uint8. vs is reordered.
func median(vs []float32) uint8 {
	slices.Sort(vs)
	m := len(vs) / 2
	if len(vs)%2 == 1 {
		return uint8(vs[m])
	}
	return uint8((vs[m-1] + vs[m]) / 2)
}

// Average runs adaptive layer averaging over layers, which must share one
// size.
func Average(layers []image.Image, opts ...Option) (*Result, error) {
	o := options{referenceLayers: DefaultReferenceLayers}
	for _, opt := range opts {
		opt(&o)
	}
	s, err := stack(layers)
	if err != nil {
		return nil, err
	}

	rect := image.Rect(0, 0, s.w, s.h)
	res := &Result{
		Image:        image.NewRGBA(rect),
		Reference:    image.NewRGBA(rect),
		Counts:       image.NewGray(rect),
		MeanDistance: make([]float32, s.w*s.h),
	}

	pool := parallel.NewWorkerPool(o.workers)
	defer pool.Close()

	refN := min(o.referenceLayers, s.n)
	work := make([]func(), s.h)
	for y := range s.h {
		work[y] = func() {
			scratch := make([]float32, refN)
			dists := make([]float32, s.n)
			for x := range s.w {
				s.averagePixel(res, x, y, refN, scratch, dists)
			}
		}
	}
	pool.ExecuteAll(work)
	return res, nil
}

func (s *layerStack) averagePixel(res *Result, x, y, refN int, scratch, dists []float32) {
	p := y*s.w + x
	px := s.pixel(p)

	var ref [3]uint8
	for ch := range 3 {
		for l := range refN {
			scratch[l] = float32(px[l*3+ch])
		}
		ref[ch] = median(scratch)
	}
	res.Reference.SetRGBA(x, y, color.RGBA{R: ref[0], G: ref[1], B: ref[2], A: 255})

	var mean float32
	for l := range s.n {
		var d2 float32
		for ch := range 3 {
			d := float32(px[l*3+ch]) - float32(ref[ch])
			d2 += d * d
		}
		dists[l] = math32.Sqrt(d2)
		mean += dists[l]
	}
	mean /= float32(s.n)
	res.MeanDistance[p] = mean

	var sum [3]int
	count, black := 0, 0
	for l := range s.n {
		if dists[l] > mean {
			continue
		}
		count++
		r, g, b := px[l*3], px[l*3+1], px[l*3+2]
		if r == 0 && g == 0 && b == 0 {
			black++
		}
		sum[0] += int(r)
		sum[1] += int(g)
		sum[2] += int(b)
	}

	res.Counts.SetGray(x, y, color.Gray{Y: uint8(min(count, math.MaxUint8))})
	if black == s.n || count == 0 {
		// Background everywhere, or nothing left to average.
		res.Image.SetRGBA(x, y, color.RGBA{A: 255})
		return
	}
	var avg [3]uint8
	for ch := range 3 {
		avg[ch] = uint8(math.RoundToEven(float64(sum[ch]) / float64(count)))
	}
	res.Image.SetRGBA(x, y, color.RGBA{R: avg[0], G: avg[1], B: avg[2], A: 255})
}
