// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package kernels

import (
	"github.com/gogpu/warp/internal/camera"
	"github.com/gogpu/warp/internal/motion"
	"github.com/gogpu/warp/internal/vmath"
)

// candidate is the outcome of one search direction of the bidirectional
// gather.
type candidate struct {
	valid bool
	err   float32

	// depth is the linear depth of the surface, moved to the target time.
	depth float32
	// other is the same surface's depth as seen from the opposite frame.
	other float32

	// plain is the color at the search result. projected blends it with the
	// color the motion points at in the opposite frame.
	plain     vmath.Vec4
	projected vmath.Vec4
}

// resolve picks the output color from the two search results.
//
//   - Both valid at similar depth: the projected color with the lower error.
//   - Both valid at different depths: the nearer one, projected if the
//     opposite frame agrees on its depth and plain otherwise.
//   - One valid: its plain color.
//   - None valid: the plain colors blended by delta.
func resolve(fwd, bwd candidate, delta float32) vmath.Vec4 {
	switch {
	case fwd.valid && bwd.valid:
		if absf(fwd.depth-bwd.depth) < DepthEpsilon {
			if fwd.err < bwd.err {
				return fwd.projected
			}
			return bwd.projected
		}
		near := bwd
		if fwd.depth < bwd.depth {
			near = fwd
		}
		if absf(near.depth-near.other) < DepthEpsilon {
			return near.projected
		}
		return near.plain
	case fwd.valid:
		return fwd.plain
	case bwd.valid:
		return bwd.plain
	default:
		return fwd.plain.Lerp(bwd.plain, delta)
	}
}

// gather synthesizes a frame between the previous frame (delta 0) and the
// current one (delta 1). It searches the previous frame along the forward
// motion and the current frame along the backward motion, then resolves the
// two candidates by screen-space error and depth.
func gather(c *Constants, a *Args, x, y int) {
	if c.outside(x, y) {
		return
	}
	cam := &c.Camera
	t := a.Delta
	s := 1 - t

	pInit := cam.PixelCenter(x, y)
	pFwd := pInit.Add(motion.Decode2D(sampleMotion(a.MotionBackward, pInit)).Mul(t))
	pBwd := pInit.Add(motion.Decode2D(sampleMotion(a.MotionForward, pInit)).Mul(s))
	for range SearchIterations {
		pFwd = pInit.Sub(motion.Decode2D(sampleMotion(a.MotionForward, pFwd)).Mul(t))
	}
	for range SearchIterations {
		pBwd = pInit.Sub(motion.Decode2D(sampleMotion(a.MotionBackward, pBwd)).Mul(s))
	}

	mFwd := motion.Decode2D(sampleMotion(a.MotionForward, pFwd))
	mBwd := motion.Decode2D(sampleMotion(a.MotionBackward, pBwd))
	tipFwd := pFwd.Add(mFwd)
	tipBwd := pBwd.Add(mBwd)

	mdFwd, _ := sampleMotionDepth(a.MotionDepthForward, pFwd)
	_, mdBwd := sampleMotionDepth(a.MotionDepthBackward, pBwd)

	fwd := candidate{
		err:   searchError(pFwd, pInit, mFwd, t),
		depth: cam.Linearize(sampleDepth(a.DepthPrev, pFwd)) + t*cam.LinearizeAs(camera.DepthZDivW, mdFwd),
		plain: sampleLinear(a.ColorPrev, pFwd, true),
	}
	fwd.valid = fwd.err < screenEpsilonSq
	fwd.projected = fwd.plain.Lerp(sampleLinear(a.Color, tipFwd, true), t)

	bwd := candidate{
		err:   searchError(pBwd, pInit, mBwd, s),
		depth: cam.Linearize(sampleDepth(a.Depth, pBwd)) + s*cam.LinearizeAs(camera.DepthZDivW, mdBwd),
		plain: sampleLinear(a.Color, pBwd, true),
	}
	bwd.valid = bwd.err < screenEpsilonSq
	bwd.projected = sampleLinear(a.ColorPrev, tipBwd, true).Lerp(bwd.plain, t)

	if fwd.valid && bwd.valid {
		_, otherBwd := sampleMotionDepth(a.MotionDepthBackward, tipFwd)
		fwd.other = cam.Linearize(sampleDepth(a.Depth, tipFwd)) + s*cam.LinearizeAs(camera.DepthZDivW, otherBwd)
		otherFwd, _ := sampleMotionDepth(a.MotionDepthForward, tipBwd)
		bwd.other = cam.Linearize(sampleDepth(a.DepthPrev, tipBwd)) + t*cam.LinearizeAs(camera.DepthZDivW, otherFwd)
	}

	setColor(a.Output, x, y, resolve(fwd, bwd, t))
}

func absf(f float32) float32 {
	if f < 0 {
		return -f
	}
	return f
}
