package warp

import (
	"github.com/gogpu/warp/device"
	"github.com/gogpu/warp/internal/parallel"
	"github.com/gogpu/warp/internal/program"
)

// Option configures a Warper during creation.
//
// Example:
//
//	// Host compute with four workers and SPIR-V emission
//	w := warp.New(warp.WithWorkers(4), warp.WithShaderEmission(true))
type Option func(*options)

// options holds optional configuration for Warper creation.
type options struct {
	context     device.Context
	contextSet  bool
	workers     int
	tile        parallel.TileSize
	emitShaders bool
	compiler    program.Compiler
}

// defaultOptions returns the default Warper options.
func defaultOptions() options {
	return options{
		context: nil, // host context created on first use
		workers: 0,   // GOMAXPROCS
	}
}

// WithContext sets the compute backend. The Warper takes ownership and
// closes it on Destroy. A nil ctx makes every operation fail with
// CodeNoContext instead of falling back to the host.
func WithContext(ctx device.Context) Option {
	return func(o *options) {
		o.context = ctx
		o.contextSet = true
	}
}

// WithWorkers sets the worker count of the default host backend.
// Zero means GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(o *options) {
		if n >= 0 {
			o.workers = n
		}
	}
}

// WithTileSize overrides the work-group size chosen from device limits.
func WithTileSize(x, y int) Option {
	return func(o *options) {
		o.tile = parallel.TileSize{X: x, Y: y}
	}
}

// WithShaderEmission also compiles the kernels to a SPIR-V module for every
// camera setup, for GPU backends that load them.
func WithShaderEmission(enabled bool) Option {
	return func(o *options) {
		o.emitShaders = enabled
	}
}

// withCompiler replaces the program compiler.
func withCompiler(c program.Compiler) Option {
	return func(o *options) {
		o.compiler = c
	}
}
