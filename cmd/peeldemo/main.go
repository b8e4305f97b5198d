// Command peeldemo renders a point cloud with depth peeling and writes
// the result as PNG.
//
// Usage:
//
//	peeldemo [-config demo.toml] [-input cloud.xyz] [-layers 4] [-o peel.png]
//
// Without -input a synthetic cloud of nested spheres is generated.
// -layers-dir dumps every peeled layer as LayerImage<N>.bmp for the
// layeravg tool. -watch re-renders whenever the input file changes.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"log"
	"log/slog"
	"os"
	"os/signal"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/gogpu/peel"
	"github.com/gogpu/peel/backend"
	"github.com/gogpu/peel/backend/software"
	_ "github.com/gogpu/peel/backend/wgpu"
	"github.com/gogpu/peel/internal/config"
	"github.com/gogpu/peel/layeravg"
	"github.com/gogpu/peel/pointfile"
	"github.com/gogpu/peel/raster"
)

func main() {
	var (
		configPath = flag.String("config", "", "TOML or YAML configuration file")
		width      = flag.Int("width", 0, "image width")
		height     = flag.Int("height", 0, "image height")
		layers     = flag.Int("layers", 0, "number of peeled layers")
		input      = flag.String("input", "", "point file (x y z [r g b] per line, .gz allowed)")
		points     = flag.Int("points", 0, "synthetic point count when no input is given")
		output     = flag.String("o", "", "output PNG file")
		layersDir  = flag.String("layers-dir", "", "directory for LayerImage<N>.bmp dumps")
		backendArg = flag.String("backend", "", "backend name (default: first available)")
		shading    = flag.String("shading", "", "none, lambert, phong or blinn-phong")
		mode       = flag.String("output", "", "accumulated or last-layer")
		background = flag.String("background", "", "background color, #rrggbb or r,g,b")
		ortho      = flag.Bool("ortho", false, "orthographic projection")
		caption    = flag.Bool("caption", false, "draw a caption with frame statistics")
		watch      = flag.Bool("watch", false, "re-render when the input file changes")
		verbose    = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	if *verbose {
		peel.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
	}

	// Flags given on the command line override the file.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "width":
			cfg.Width = *width
		case "height":
			cfg.Height = *height
		case "layers":
			cfg.Layers = *layers
		case "input":
			cfg.Input = *input
		case "points":
			cfg.Points = *points
		case "o":
			cfg.Image = *output
		case "layers-dir":
			cfg.LayersDir = *layersDir
		case "backend":
			cfg.Backend = *backendArg
		case "shading":
			cfg.Shading = *shading
		case "output":
			cfg.Output = *mode
		case "background":
			cfg.Background = *background
		case "ortho":
			cfg.Orthographic = *ortho
		case "caption":
			cfg.Caption = *caption
		}
	})
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	if *watch && cfg.Input == "" {
		log.Fatal("-watch needs an input file")
	}

	d, err := newDemo(&cfg)
	if err != nil {
		log.Fatalf("Failed to start: %v", err)
	}
	defer d.close()

	if err := d.renderFile(); err != nil {
		log.Fatalf("Render failed: %v", err)
	}
	if !*watch {
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := watchFile(ctx, cfg.Input, d.renderFile); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("Watch failed: %v", err)
	}
}

// demo owns the backend, renderer and camera across renders.
type demo struct {
	cfg      *config.Config
	backend  raster.Backend
	renderer *peel.Renderer
	camera   *peel.LookAtCamera
	printer  *message.Printer
}

func newDemo(cfg *config.Config) (*demo, error) {
	bcfg := backend.Config{Width: cfg.Width, Height: cfg.Height}
	var (
		b   raster.Backend
		err error
	)
	if cfg.Backend != "" {
		b, err = backend.Get(cfg.Backend, bcfg)
	} else {
		b, err = backend.Default(bcfg)
	}
	if err != nil {
		return nil, err
	}

	opts := cfg.RendererOptions()
	if cfg.LayersDir != "" {
		if err := os.MkdirAll(cfg.LayersDir, 0o755); err != nil {
			return nil, err
		}
		dir := cfg.LayersDir
		opts = append(opts, peel.WithLayerHook(func(layer int, img *image.RGBA) {
			if err := layeravg.WriteLayer(dir, layer, img); err != nil {
				log.Printf("layer %d: %v", layer, err)
			}
		}))
	}

	cam := peel.NewLookAtCamera(cfg.Width, cfg.Height)
	if cfg.Orthographic {
		cam.Projection = peel.Orthographic
	}
	log.Printf("Using %s backend", b.Name())
	return &demo{
		cfg:      cfg,
		backend:  b,
		renderer: peel.NewRenderer(raster.NewContext(b), opts...),
		camera:   cam,
		printer:  message.NewPrinter(language.English),
	}, nil
}

func (d *demo) close() {
	d.renderer.Release()
	if c, ok := d.backend.(interface{ Close() }); ok {
		c.Close()
	}
}

// load reads the input file, or generates the synthetic scene.
func (d *demo) load() (*peel.PointCloud, error) {
	if d.cfg.Input == "" {
		return generateShells(d.cfg.Points, d.cfg.Seed), nil
	}
	return pointfile.Load(d.cfg.Input)
}

// renderFile loads the cloud and renders one frame. Every call loads a
// new PointCloud, so the renderer rebuilds its dataset resources.
func (d *demo) renderFile() error {
	pc, err := d.load()
	if err != nil {
		return err
	}
	d.camera.Frame(pc)
	if err := d.renderer.Render(pc, d.camera, peel.DefaultLight()); err != nil {
		// A broken renderer only recovers through Release.
		d.renderer.Release()
		return err
	}
	if err := d.backend.Flush(); err != nil {
		return err
	}

	img, err := frameImage(d.backend)
	if err != nil {
		return err
	}
	st := d.renderer.Stats()
	if d.cfg.Caption {
		drawCaption(img, fmt.Sprintf("%d points  %d layers  %d passes",
			pc.NumVertices(), d.renderer.LayerCount(), st.Passes))
	}
	if err := layeravg.WritePNG(d.cfg.Image, img); err != nil {
		return err
	}
	d.printer.Printf("Rendered %d points, %d layers, %d passes in %v to %s\n",
		pc.NumVertices(), d.renderer.LayerCount(), st.Passes, st.LastFrame, d.cfg.Image)
	return nil
}

// frameImage returns the default framebuffer contents of b.
func frameImage(b raster.Backend) (*image.RGBA, error) {
	switch t := b.(type) {
	case interface{ ReadTarget() (*image.RGBA, error) }:
		return t.ReadTarget()
	case interface{ Target() *software.Target }:
		if tg := t.Target(); tg != nil {
			return tg.Image(), nil
		}
	}
	return nil, fmt.Errorf("backend %s has no readable framebuffer", b.Name())
}
