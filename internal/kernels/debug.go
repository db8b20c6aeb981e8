// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package kernels

import (
	"math"

	"github.com/gogpu/warp/internal/camera"
	"github.com/gogpu/warp/internal/motion"
	"github.com/gogpu/warp/internal/vmath"
)

// debugDepth shows linear depth modulo 1 as grey bands.
func debugDepth(c *Constants, a *Args, x, y int) {
	if c.outside(x, y) {
		return
	}
	d := c.Camera.Linearize(a.Depth.Pix[y*c.Width+x])
	d = float32(math.Mod(float64(d), 1))
	setColor(a.Output, x, y, vmath.V4(d, d, d, 1))
}

// debugMotion2D shows the magnitude of each screen-space motion component.
func debugMotion2D(c *Constants, a *Args, x, y int) {
	if c.outside(x, y) {
		return
	}
	m := motion.Decode2D(a.Motion.Pix[y*c.Width+x]).Abs()
	setColor(a.Output, x, y, vmath.V4(m.X, m.Y, 0, 1))
}

// debugMotion3D shows each 3D motion component relative to the largest
// encodable magnitude.
func debugMotion3D(c *Constants, a *Args, x, y int) {
	if c.outside(x, y) {
		return
	}
	m := motion.Decode3D(a.Motion.Pix[y*c.Width+x]).Mul(1 / motion.MaxMagnitude3D).Abs()
	setColor(a.Output, x, y, vmath.V4(m.X, m.Y, m.Z, 1))
}

// debugMotionDepth shows fine bands of both motion depth deltas.
func debugMotionDepth(c *Constants, a *Args, x, y int) {
	if c.outside(x, y) {
		return
	}
	fwd, bwd := a.MotionDepth.At(x, y)
	band := func(v float32) float32 {
		v = c.Camera.LinearizeAs(camera.DepthZDivW, v)
		return float32(math.Mod(float64(v), 0.0005)) * 2000
	}
	setColor(a.Output, x, y, vmath.V4(band(fwd), band(bwd), 0, 1))
}
