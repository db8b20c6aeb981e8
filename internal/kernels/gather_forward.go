// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package kernels

import (
	"github.com/gogpu/warp/internal/motion"
	"github.com/gogpu/warp/internal/vmath"
)

// SearchIterations is the number of fixed-point steps of the gather search.
const SearchIterations = 6

// Thresholds of the gather passes.
const (
	// ScreenEpsilon is the largest screen-space error, in normalized units,
	// for which a search result is trusted. It is compared squared.
	ScreenEpsilon = 0.00025

	// DepthEpsilon is the largest linear depth difference treated as the
	// same surface.
	DepthEpsilon = 2.0

	// outOfBoundsPenalty is added to the error of a search that left the
	// screen so it never passes.
	outOfBoundsPenalty = 1e10
)

const screenEpsilonSq = ScreenEpsilon * ScreenEpsilon

// searchError is the squared residual of the fixed-point search plus the
// out-of-bounds penalty.
func searchError(p, pInit, m vmath.Vec2, t float32) float32 {
	e := p.Add(m.Mul(t)).Sub(pInit).LengthSq()
	if p.OutsideUnit() {
		e += outOfBoundsPenalty
	}
	return e
}

// gatherForward finds where the pixel came from in the current frame by
// inverting the forward motion, and reads the color there. If the search did
// not converge it falls back to a blur along the motion direction mixed with
// the average of the search samples.
func gatherForward(c *Constants, a *Args, x, y int) {
	if c.outside(x, y) {
		return
	}
	pInit := c.Camera.PixelCenter(x, y)
	p := pInit
	var fallback vmath.Vec4
	for range SearchIterations {
		m := motion.Decode2D(sampleMotion(a.Motion, p))
		p = pInit.Sub(m.Mul(a.Delta))
		fallback = fallback.Add(sampleLinear(a.Color, p, true).Mul(1.0 / SearchIterations))
	}

	m := motion.Decode2D(sampleMotion(a.Motion, p))
	if searchError(p, pInit, m, a.Delta) < screenEpsilonSq {
		setColor(a.Output, x, y, sampleLinear(a.Color, p, false))
		return
	}

	dir := m.Normalize()
	overlap := TapCount / 2
	var blur vmath.Vec4
	for i := -overlap; i <= overlap; i++ {
		ox := int(float32(i) * dir.X)
		oy := int(float32(i) * dir.Y)
		blur = blur.Add(readClamped(a.Color, x+ox, y+oy).Mul(c.Blur[overlap+i]))
	}
	setColor(a.Output, x, y, blur.Add(fallback).Mul(0.5))
}
