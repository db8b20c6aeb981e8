// Command warpdemo reprojects a synthetic or captured frame and writes the
// result as PNG.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"os"
	"runtime"
	"slices"
	"strings"

	"github.com/disintegration/imaging"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/term"

	"github.com/gogpu/warp"
	"github.com/gogpu/warp/capture"
	"github.com/gogpu/warp/texture"
)

func main() {
	var (
		width   = flag.Int("width", 320, "screen width of the synthetic scene")
		height  = flag.Int("height", 180, "screen height of the synthetic scene")
		mode    = flag.String("mode", "gather", "pipeline: scatter, gather-forward or gather")
		delta   = flag.Float64("delta", 0.5, "fraction of the frame interval to reproject by")
		input   = flag.String("capture", "", "load inputs from a capture file instead of synthesizing them")
		record  = flag.String("record", "", "write the inputs to a capture file")
		output  = flag.String("output", "warp.png", "output file")
		sheet   = flag.String("sheet", "", "write a contact sheet of inputs and debug views")
		workers = flag.Int("workers", runtime.GOMAXPROCS(0), "host worker count")
		backend = flag.String("backend", "host", "compute backend: "+backendNames())
		verbose = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	logger := newLogger(*verbose)
	warp.SetLogger(logger)

	if err := run(logger, config{
		width: *width, height: *height,
		mode: *mode, delta: float32(*delta),
		input: *input, record: *record,
		output: *output, sheet: *sheet,
		workers: *workers, backend: *backend,
	}); err != nil {
		logger.Error("warpdemo failed", "err", err, "code", warp.CodeOf(err))
		os.Exit(1)
	}
}

type config struct {
	width, height int
	mode          string
	delta         float32
	input, record string
	output, sheet string
	workers       int
	backend       string
}

// backends maps -backend values to the options selecting them. GPU builds
// register "gpu".
var backends = map[string]func(workers int) []warp.Option{
	"host": func(workers int) []warp.Option {
		return []warp.Option{warp.WithWorkers(workers)}
	},
}

func backendNames() string {
	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	slices.Sort(names)
	return strings.Join(names, ", ")
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if term.IsTerminal(int(os.Stderr.Fd())) {
		return slog.New(slog.NewTextHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, opts))
}

func run(logger *slog.Logger, cfg config) error {
	var (
		frame *capture.Frame
		err   error
	)
	if cfg.input != "" {
		frame, err = capture.Load(cfg.input)
		if err != nil {
			return err
		}
		frame.Delta = cfg.delta
	} else {
		frame = synthesize(cfg.width, cfg.height, cfg.delta)
	}
	logger.Info("frame", "id", frame.ID, "setup", frame.Setup, "delta", frame.Delta)

	if cfg.record != "" {
		if err := capture.Save(cfg.record, frame); err != nil {
			return err
		}
		logger.Info("capture written", "path", cfg.record)
	}

	name := cfg.backend
	if name == "" {
		name = "host"
	}
	opts, ok := backends[name]
	if !ok {
		return fmt.Errorf("unknown backend %q", name)
	}
	w := warp.New(opts(cfg.workers)...)
	defer w.Destroy()

	setup := frame.Setup
	out := texture.NewColor(int(setup.Width), int(setup.Height))
	switch cfg.mode {
	case "scatter":
		err = w.Scatter(setup, frame.Delta, true, frame.Color, frame.Depth, frame.Motion3D, out)
	case "gather-forward":
		err = w.GatherForwardOnly(setup, frame.Delta, frame.Color, frame.MotionForward, out)
	case "gather":
		err = w.Gather(setup, frame.Delta, warp.GatherInput{
			Color:               frame.Color,
			Depth:               frame.Depth,
			ColorPrev:           frame.ColorPrev,
			DepthPrev:           frame.DepthPrev,
			MotionForward:       frame.MotionForward,
			MotionBackward:      frame.MotionBackward,
			MotionDepthForward:  frame.MotionDepthForward,
			MotionDepthBackward: frame.MotionDepthBackward,
		}, out)
	default:
		return fmt.Errorf("unknown mode %q", cfg.mode)
	}
	if err != nil {
		return err
	}
	if err := imaging.Save(out, cfg.output); err != nil {
		return err
	}
	logger.Info("output written", "path", cfg.output, "mode", cfg.mode, "backend", name, "tile", w.Tile())

	if cfg.sheet == "" {
		return nil
	}
	views, err := debugViews(w, frame)
	if err != nil {
		return err
	}
	views = append([]image.Image{frame.Color, out}, views...)
	if err := imaging.Save(contactSheet(views, 2), cfg.sheet); err != nil {
		return err
	}
	logger.Info("contact sheet written", "path", cfg.sheet, "views", len(views))
	return nil
}

func debugViews(w *warp.Warper, f *capture.Frame) ([]image.Image, error) {
	setup := f.Setup
	newOut := func() *texture.Color { return texture.NewColor(int(setup.Width), int(setup.Height)) }

	var views []image.Image
	if f.Depth != nil {
		out := newOut()
		if err := w.DebugDepth(setup, f.Depth, out); err != nil {
			return nil, err
		}
		views = append(views, out)
	}
	if f.Motion3D != nil {
		out := newOut()
		if err := w.DebugMotion3D(setup, f.Motion3D, out); err != nil {
			return nil, err
		}
		views = append(views, out)
	}
	if f.MotionForward != nil {
		out := newOut()
		if err := w.DebugMotion2D(setup, f.MotionForward, out); err != nil {
			return nil, err
		}
		views = append(views, out)
	}
	if f.MotionDepthBackward != nil {
		out := newOut()
		if err := w.DebugMotionDepth(setup, f.MotionDepthBackward, out); err != nil {
			return nil, err
		}
		views = append(views, out)
	}
	return views, nil
}

// contactSheet lays views out on a grid at half size.
func contactSheet(views []image.Image, cols int) image.Image {
	b := views[0].Bounds()
	cw, ch := b.Dx()/2, b.Dy()/2
	rows := (len(views) + cols - 1) / cols
	dst := image.NewNRGBA(image.Rect(0, 0, cw*cols, ch*rows))
	xdraw.Draw(dst, dst.Bounds(), image.NewUniform(color.Black), image.Point{}, xdraw.Src)
	for i, v := range views {
		x, y := (i%cols)*cw, (i/cols)*ch
		xdraw.CatmullRom.Scale(dst, image.Rect(x, y, x+cw, y+ch), v, v.Bounds(), xdraw.Over, nil)
	}
	return dst
}
