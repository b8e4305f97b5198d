package main

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// drawCaption writes text in the bottom-left corner over a dark band.
func drawCaption(img *image.RGBA, text string) {
	face := basicfont.Face7x13
	metrics := face.Metrics()
	h := (metrics.Height + metrics.Descent).Ceil() + 4
	b := img.Bounds()
	band := image.Rect(b.Min.X, b.Max.Y-h, b.Max.X, b.Max.Y)
	draw.Draw(img, band, image.NewUniform(color.RGBA{A: 200}), image.Point{}, draw.Over)

	d := font.Drawer{
		Dst:  img,
		Src:  image.White,
		Face: face,
		Dot:  fixed.P(b.Min.X+4, b.Max.Y-metrics.Descent.Ceil()-2),
	}
	d.DrawString(text)
}
