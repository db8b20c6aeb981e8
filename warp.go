package warp

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/gogpu/warp/device"
	"github.com/gogpu/warp/internal/kernels"
	"github.com/gogpu/warp/internal/parallel"
	"github.com/gogpu/warp/internal/program"
	"github.com/gogpu/warp/internal/vmath"
	"github.com/gogpu/warp/texture"
)

// Warper owns the state shared by warp operations: the compute device, the
// program cache, the scratch depth buffer and the texture slots.
//
// All methods are safe for concurrent use; they are serialized by one lock.
// The zero value is not usable, create Warpers with New.
type Warper struct {
	mu   sync.Mutex
	opts options

	ready bool
	ctx   device.Context
	dev   device.Device
	queue device.Queue
	tile  parallel.TileSize
	cache *program.Cache

	depth    *kernels.DepthBuffer
	snapshot *texture.Color
	stats    kernels.Stats

	clearColor vmath.Vec4

	scatterSlots       scatterSlots
	gatherSlots        gatherSlots
	gatherForwardSlots gatherForwardSlots
}

// New creates a Warper. The compute backend is initialized lazily by the
// first operation.
func New(opts ...Option) *Warper {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Warper{opts: o}
}

// init brings up the backend. On failure everything is torn down again so
// the next call starts from scratch.
func (w *Warper) init() error {
	if w.ready {
		return nil
	}

	ctx := w.opts.context
	if ctx == nil {
		if w.opts.contextSet {
			return device.ErrNoContext
		}
		ctx = device.NewHostContext(w.opts.workers)
	}
	if err := ctx.Init(); err != nil {
		return fmt.Errorf("%w: %w", device.ErrInit, err)
	}
	dev := ctx.FastestDevice()
	if dev == nil {
		ctx.Close()
		return device.ErrNoDevice
	}
	queue, err := dev.CreateQueue()
	if err != nil {
		ctx.Close()
		return fmt.Errorf("%w: %w", device.ErrNoQueue, err)
	}

	info := dev.Info()
	tile := w.opts.tile
	if !tile.Valid() {
		tile = device.SelectTileSize(info)
	}
	compiler := w.opts.compiler
	if compiler == nil {
		compiler = &program.HostCompiler{EmitShaders: w.opts.emitShaders}
	}

	w.ctx, w.dev, w.queue, w.tile = ctx, dev, queue, tile
	w.cache = program.NewCache(compiler, tile)
	w.depth = kernels.NewDepthBuffer(0)
	w.ready = true

	Logger().Info("warp: initialized",
		slog.String("device", info.Name),
		slog.String("type", info.Type.String()),
		slog.String("tile", tile.String()),
		slog.Bool("shaders", w.opts.emitShaders))
	return nil
}

// prepare validates the screen, brings up the backend and fetches the
// compiled unit for setup. Zero dimensions are rejected before anything
// is compiled.
func (w *Warper) prepare(setup CameraSetup) (*program.Unit, error) {
	if !setup.HasValidScreen() {
		return nil, fmt.Errorf("%w: %dx%d", program.ErrInvalidScreen, setup.Width, setup.Height)
	}
	if err := w.init(); err != nil {
		return nil, err
	}
	return w.cache.Obtain(setup)
}

// checkTextures verifies every texture is present and matches the screen.
func checkTextures(setup CameraSetup, named ...namedTexture) error {
	for _, n := range named {
		if texture.IsNil(n.tex) {
			return fmt.Errorf("%w: %s", ErrMissingTexture, n.name)
		}
		if n.tex.Width() != int(setup.Width) || n.tex.Height() != int(setup.Height) {
			return fmt.Errorf("%w: %s is %dx%d, screen is %dx%d", texture.ErrWrap,
				n.name, n.tex.Width(), n.tex.Height(), setup.Width, setup.Height)
		}
	}
	return nil
}

type namedTexture struct {
	name string
	tex  texture.Texture
}

// ensureDepthBuffer grows the scratch buffer to the screen size. It never
// shrinks.
func (w *Warper) ensureDepthBuffer(setup CameraSetup) error {
	n := setup.Pixels()
	if n <= w.depth.Len() {
		return nil
	}
	limit := w.dev.Info().Limits.MaxBufferSize
	if need := uint64(n) * 4; limit > 0 && need > limit {
		return fmt.Errorf("%w: %d bytes exceeds device limit %d", ErrDepthBuffer, need, limit)
	}
	w.depth.Ensure(n)
	Logger().Debug("warp: depth buffer grown", slog.Int("pixels", n))
	return nil
}

// snapshotOf copies out into the reusable fixup snapshot.
func (w *Warper) snapshotOf(out *texture.Color) *texture.Color {
	if w.snapshot == nil || w.snapshot.Width() != out.Width() || w.snapshot.Height() != out.Height() {
		w.snapshot = texture.NewColor(out.Width(), out.Height())
	}
	w.snapshot.CopyFrom(out)
	return w.snapshot
}

// dispatch runs one kernel over the screen and waits for it to finish. A
// unit carrying a shader module runs on queues that load one; every other
// combination runs the host kernel.
func (w *Warper) dispatch(u *program.Unit, id kernels.ID, a *kernels.Args) error {
	c := u.Constants
	grid := parallel.NewGrid(c.Width, c.Height, c.Tile)
	if sq, ok := w.queue.(device.ShaderQueue); ok && u.SPIRV != nil {
		bindings := shaderBindings(a, c.Width*c.Height)
		if err := sq.RunShader(id.Name(), u.SPIRV, grid, bindings); err != nil {
			return err
		}
		readBindings(a, bindings, c.Width*c.Height)
		return nil
	}
	fn := u.Kernel(id)
	w.queue.Execute(id.Name(), grid, func(x, y int) {
		fn(c, a, x, y)
	})
	return nil
}

// run acquires the native resources of ts, calls body and releases them
// again, also when body panics. A release failure is reported only if body
// succeeded.
func run(body func() error, ts ...texture.Texture) (err error) {
	release, err := texture.Acquire(ts...)
	if err != nil {
		return err
	}
	defer func() {
		if rerr := release(); err == nil {
			err = rerr
		}
	}()
	return body()
}

// SetClearColor sets the color Scatter clears the output to. The validity
// channel is always cleared to 0.
func (w *Warper) SetClearColor(r, g, b float32) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.clearColor = vmath.V4(r, g, b, 0)
}

// Scatter reprojects color forward by delta along the 3D motion.
//
// If clearFrame is set the output is first cleared to the clear color and
// marked invalid. A depth pass then records the nearest surface landing on
// every destination, a color pass writes only those surfaces, and a fixup
// pass fills single-pixel holes from their valid neighbours.
func (w *Warper) Scatter(setup CameraSetup, delta float32, clearFrame bool,
	color *texture.Color, depth *texture.Depth, motion *texture.Motion, output *texture.Color,
) error {
	const op = "scatter"
	w.mu.Lock()
	defer w.mu.Unlock()

	unit, err := w.prepare(setup)
	if err != nil {
		return opError(op, err)
	}
	if err := checkTextures(setup,
		namedTexture{"color", color},
		namedTexture{"depth", depth},
		namedTexture{"motion", motion},
		namedTexture{"output", output},
	); err != nil {
		return opError(op, err)
	}
	if err := w.ensureDepthBuffer(setup); err != nil {
		return opError(op, err)
	}
	w.scatterSlots.assign(color, depth, motion, output)

	a := &kernels.Args{
		Delta:       delta,
		ClearColor:  w.clearColor,
		Color:       color,
		Depth:       depth,
		Motion:      motion,
		Output:      output,
		DepthBuffer: w.depth,
		Stats:       &w.stats,
	}
	err = run(func() error {
		if clearFrame {
			if err := w.dispatch(unit, kernels.Clear, a); err != nil {
				return err
			}
		}
		w.depth.Reset(setup.Pixels())
		if err := w.dispatch(unit, kernels.ScatterDepth, a); err != nil {
			return err
		}
		if err := w.dispatch(unit, kernels.ScatterColor, a); err != nil {
			return err
		}

		a.Snapshot = w.snapshotOf(output)
		w.stats.Holes.Store(0)
		if err := w.dispatch(unit, kernels.Fixup, a); err != nil {
			return err
		}
		if n := w.stats.Holes.Load(); n > 0 {
			Logger().Warn("warp: holes without valid neighbours", slog.Int64("pixels", n))
		}
		return nil
	}, color, depth, motion, output)
	return opError(op, err)
}

// GatherInput is the texture set of a bidirectional gather. The previous
// frame is at delta 0, the current frame at delta 1.
type GatherInput struct {
	Color     *texture.Color
	Depth     *texture.Depth
	ColorPrev *texture.Color
	DepthPrev *texture.Depth

	// MotionForward maps the previous frame onto the current one,
	// MotionBackward the current frame onto the previous one.
	MotionForward  *texture.Motion
	MotionBackward *texture.Motion

	// MotionDepthForward carries the forward depth delta of the previous
	// frame in X, MotionDepthBackward the backward delta of the current
	// frame in Y.
	MotionDepthForward  *texture.MotionDepth
	MotionDepthBackward *texture.MotionDepth
}

func (in *GatherInput) named() []namedTexture {
	return []namedTexture{
		{"color", in.Color},
		{"depth", in.Depth},
		{"color_prev", in.ColorPrev},
		{"depth_prev", in.DepthPrev},
		{"motion_forward", in.MotionForward},
		{"motion_backward", in.MotionBackward},
		{"motion_depth_forward", in.MotionDepthForward},
		{"motion_depth_backward", in.MotionDepthBackward},
	}
}

// Gather interpolates a frame at delta between the previous and the current
// frame.
func (w *Warper) Gather(setup CameraSetup, delta float32, in GatherInput, output *texture.Color) error {
	const op = "gather"
	w.mu.Lock()
	defer w.mu.Unlock()

	unit, err := w.prepare(setup)
	if err != nil {
		return opError(op, err)
	}
	named := append(in.named(), namedTexture{"output", output})
	if err := checkTextures(setup, named...); err != nil {
		return opError(op, err)
	}
	w.gatherSlots.assign(in, output)

	a := w.gatherSlots.args(delta)
	err = run(func() error {
		return w.dispatch(unit, kernels.Gather, a)
	}, in.Color, in.Depth, in.ColorPrev, in.DepthPrev,
		in.MotionForward, in.MotionBackward,
		in.MotionDepthForward, in.MotionDepthBackward, output)
	return opError(op, err)
}

// GatherForwardOnly extrapolates a frame at delta from color and its 2D
// forward motion.
func (w *Warper) GatherForwardOnly(setup CameraSetup, delta float32,
	color *texture.Color, motion *texture.Motion, output *texture.Color,
) error {
	const op = "gather forward"
	w.mu.Lock()
	defer w.mu.Unlock()

	unit, err := w.prepare(setup)
	if err != nil {
		return opError(op, err)
	}
	if err := checkTextures(setup,
		namedTexture{"color", color},
		namedTexture{"motion", motion},
		namedTexture{"output", output},
	); err != nil {
		return opError(op, err)
	}
	w.gatherForwardSlots.assign(color, motion, output)

	a := &kernels.Args{Delta: delta, Color: color, Motion: motion, Output: output}
	err = run(func() error {
		return w.dispatch(unit, kernels.GatherForward, a)
	}, color, motion, output)
	return opError(op, err)
}

// Prebuild compiles the program for setup without running anything.
func (w *Warper) Prebuild(setup CameraSetup) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, err := w.prepare(setup)
	return opError("prebuild", err)
}

// Cleanup drops compiled programs and texture slot references. The
// compute backend stays up.
func (w *Warper) Cleanup() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.cleanup()
}

func (w *Warper) cleanup() {
	if w.cache != nil {
		w.cache.Invalidate()
	}
	w.scatterSlots = scatterSlots{}
	w.gatherSlots = gatherSlots{}
	w.gatherForwardSlots = gatherForwardSlots{}
	w.snapshot = nil
}

// Destroy tears down all state. A later operation initializes again.
func (w *Warper) Destroy() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.ready {
		return
	}
	w.cleanup()
	w.queue.Close()
	w.ctx.Close()
	w.ctx, w.dev, w.queue, w.cache, w.depth = nil, nil, nil, nil, nil
	w.tile = parallel.TileSize{}
	w.ready = false
	Logger().Info("warp: destroyed")
}

// Tile returns the work-group size in use, or the zero size before the
// first operation.
func (w *Warper) Tile() device.TileSize {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.tile
}

// Programs returns the number of cached compiled programs.
func (w *Warper) Programs() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cache == nil {
		return 0
	}
	return w.cache.Len()
}
