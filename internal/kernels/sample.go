// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package kernels

import (
	"math"

	"github.com/gogpu/warp/internal/vmath"
	"github.com/gogpu/warp/texture"
)

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// mirrorIndex applies mirrored-repeat addressing: -1 maps to 0 and n to n-1.
func mirrorIndex(i, n int) int {
	period := 2 * n
	m := i % period
	if m < 0 {
		m += period
	}
	if m >= n {
		m = period - 1 - m
	}
	return m
}

// texelIndex maps a normalized coordinate to the nearest texel, clamped.
func texelIndex(p float32, n int) int {
	f := float32(math.Floor(float64(p * float32(n))))
	if !(f >= 0) {
		return 0
	}
	if f >= float32(n) {
		return n - 1
	}
	return int(f)
}

func colorAt(c *texture.Color, x, y int) vmath.Vec4 {
	i := (y*c.Width() + x) * 4
	p := c.Pix[i : i+4 : i+4]
	return vmath.Vec4{X: p[0], Y: p[1], Z: p[2], W: p[3]}
}

func setColor(c *texture.Color, x, y int, v vmath.Vec4) {
	i := (y*c.Width() + x) * 4
	p := c.Pix[i : i+4 : i+4]
	p[0], p[1], p[2], p[3] = v.X, v.Y, v.Z, v.W
}

// readClamped reads texel (x, y) with clamp-to-edge addressing.
func readClamped(c *texture.Color, x, y int) vmath.Vec4 {
	return colorAt(c, clampIndex(x, c.Width()), clampIndex(y, c.Height()))
}

// readMirrored reads texel (x, y) with mirrored-repeat addressing.
func readMirrored(c *texture.Color, x, y int) vmath.Vec4 {
	return colorAt(c, mirrorIndex(x, c.Width()), mirrorIndex(y, c.Height()))
}

// sampleLinear bilinearly filters c at normalized coordinate p, using
// mirrored-repeat addressing if mirror is set and clamp-to-edge otherwise.
func sampleLinear(c *texture.Color, p vmath.Vec2, mirror bool) vmath.Vec4 {
	w, h := c.Width(), c.Height()
	u := guard(p.X*float32(w)-0.5, w)
	v := guard(p.Y*float32(h)-0.5, h)
	fx, fy := math.Floor(float64(u)), math.Floor(float64(v))
	x0, y0 := int(fx), int(fy)
	tx, ty := u-float32(fx), v-float32(fy)

	read := readClamped
	if mirror {
		read = readMirrored
	}
	top := read(c, x0, y0).Lerp(read(c, x0+1, y0), tx)
	bottom := read(c, x0, y0+1).Lerp(read(c, x0+1, y0+1), tx)
	return top.Lerp(bottom, ty)
}

// guard keeps a texel-space coordinate finite and within a few periods of
// the texture so the integer conversion is well defined.
func guard(u float32, n int) float32 {
	limit := float32(4 * n)
	if !(u > -limit) {
		return -limit
	}
	if u > limit {
		return limit
	}
	return u
}

// sampleNearest returns the color texel containing normalized p.
func sampleNearest(c *texture.Color, p vmath.Vec2) vmath.Vec4 {
	return colorAt(c, texelIndex(p.X, c.Width()), texelIndex(p.Y, c.Height()))
}

func sampleDepth(d *texture.Depth, p vmath.Vec2) float32 {
	return d.Pix[texelIndex(p.Y, d.Height())*d.Width()+texelIndex(p.X, d.Width())]
}

func sampleMotion(m *texture.Motion, p vmath.Vec2) uint32 {
	return m.Pix[texelIndex(p.Y, m.Height())*m.Width()+texelIndex(p.X, m.Width())]
}

func sampleMotionDepth(m *texture.MotionDepth, p vmath.Vec2) (fwd, bwd float32) {
	return m.At(texelIndex(p.X, m.Width()), texelIndex(p.Y, m.Height()))
}
