// Command layeravg averages the LayerImage<N>.bmp files written by
// peeldemo -layers-dir into one image.
//
// Per pixel, layers far from the median of the leading layers are
// treated as noise and left out of the average.
package main

import (
	"flag"
	"log"
	"path/filepath"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/gogpu/peel/layeravg"
)

func main() {
	var (
		dir       = flag.String("dir", ".", "directory holding LayerImage<N>.bmp files")
		n         = flag.Int("n", 0, "number of layers (default: all consecutive files)")
		reference = flag.Int("reference", layeravg.DefaultReferenceLayers, "layers forming the median reference")
		output    = flag.String("o", "average.png", "output PNG file")
		extras    = flag.Bool("extras", false, "also write reference.png and counts.png next to the output")
		workers   = flag.Int("workers", 0, "worker goroutines (0: GOMAXPROCS)")
	)
	flag.Parse()

	count := *n
	if count == 0 {
		count = layeravg.CountLayers(*dir)
	}
	layers, err := layeravg.ReadLayers(*dir, count)
	if err != nil {
		log.Fatalf("Failed to read layers: %v", err)
	}

	res, err := layeravg.Average(layers,
		layeravg.WithReferenceLayers(*reference),
		layeravg.WithWorkers(*workers),
	)
	if err != nil {
		log.Fatalf("Averaging failed: %v", err)
	}

	if err := layeravg.WritePNG(*output, res.Image); err != nil {
		log.Fatalf("Failed to save: %v", err)
	}
	if *extras {
		base := filepath.Dir(*output)
		if err := layeravg.WritePNG(filepath.Join(base, "reference.png"), res.Reference); err != nil {
			log.Fatalf("Failed to save reference: %v", err)
		}
		if err := layeravg.WritePNG(filepath.Join(base, "counts.png"), res.Counts); err != nil {
			log.Fatalf("Failed to save counts: %v", err)
		}
	}

	b := res.Image.Bounds()
	message.NewPrinter(language.English).Printf("Averaged %d layers (%dx%d, %d pixels) into %s\n",
		count, b.Dx(), b.Dy(), b.Dx()*b.Dy(), *output)
}
