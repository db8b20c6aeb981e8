package warp

import (
	"github.com/gogpu/warp/internal/kernels"
	"github.com/gogpu/warp/texture"
)

// DebugDepth renders linear depth modulo 1 as grey.
func (w *Warper) DebugDepth(setup CameraSetup, depth *texture.Depth, output *texture.Color) error {
	return w.debug("debug depth", setup, kernels.DebugDepth,
		&kernels.Args{Depth: depth, Output: output},
		namedTexture{"depth", depth}, namedTexture{"output", output})
}

// DebugMotion2D renders the magnitude of screen-space motion per axis.
func (w *Warper) DebugMotion2D(setup CameraSetup, motion *texture.Motion, output *texture.Color) error {
	return w.debug("debug motion 2d", setup, kernels.DebugMotion2D,
		&kernels.Args{Motion: motion, Output: output},
		namedTexture{"motion", motion}, namedTexture{"output", output})
}

// DebugMotion3D renders the magnitude of 3D motion per axis, scaled so the
// largest encodable motion is 1.
func (w *Warper) DebugMotion3D(setup CameraSetup, motion *texture.Motion, output *texture.Color) error {
	return w.debug("debug motion 3d", setup, kernels.DebugMotion3D,
		&kernels.Args{Motion: motion, Output: output},
		namedTexture{"motion", motion}, namedTexture{"output", output})
}

// DebugMotionDepth renders fine bands of both motion depth deltas.
func (w *Warper) DebugMotionDepth(setup CameraSetup, motionDepth *texture.MotionDepth, output *texture.Color) error {
	return w.debug("debug motion depth", setup, kernels.DebugMotionDepth,
		&kernels.Args{MotionDepth: motionDepth, Output: output},
		namedTexture{"motion_depth", motionDepth}, namedTexture{"output", output})
}

func (w *Warper) debug(op string, setup CameraSetup, id kernels.ID, a *kernels.Args, named ...namedTexture) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	unit, err := w.prepare(setup)
	if err != nil {
		return opError(op, err)
	}
	if err := checkTextures(setup, named...); err != nil {
		return opError(op, err)
	}
	ts := make([]texture.Texture, len(named))
	for i, n := range named {
		ts[i] = n.tex
	}
	err = run(func() error {
		return w.dispatch(unit, id, a)
	}, ts...)
	return opError(op, err)
}
