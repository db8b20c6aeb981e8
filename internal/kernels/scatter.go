// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package kernels

import (
	"github.com/gogpu/warp/internal/motion"
)

// scatterTarget moves pixel (x, y) along its 3D motion by delta and returns
// the destination pixel index and the source linear depth. ok is false when
// the destination falls outside the screen.
func scatterTarget(c *Constants, a *Args, x, y int) (dst int, depth float32, ok bool) {
	i := y*c.Width + x
	depth = c.Camera.Linearize(a.Depth.Pix[i])
	m := motion.Decode3D(a.Motion.Pix[i])
	pos := c.Camera.Reconstruct(x, y, depth).Add(m.Mul(a.Delta))
	p := c.Camera.Reproject(pos)
	if !(p.X >= 0 && p.X < float32(c.Width) && p.Y >= 0 && p.Y < float32(c.Height)) {
		return 0, depth, false
	}
	return int(p.Y)*c.Width + int(p.X), depth, true
}

// scatterDepth records the nearest linear depth landing on each destination.
func scatterDepth(c *Constants, a *Args, x, y int) {
	if c.outside(x, y) {
		return
	}
	dst, depth, ok := scatterTarget(c, a, x, y)
	if !ok {
		return
	}
	a.DepthBuffer.Min(dst, depth)
}

// scatterColor writes the source color to its destination if it is the
// nearest surface there. Ties go to whichever source claims the pixel first.
// The written pixel is marked valid.
func scatterColor(c *Constants, a *Args, x, y int) {
	if c.outside(x, y) {
		return
	}
	dst, depth, ok := scatterTarget(c, a, x, y)
	if !ok {
		return
	}
	if depth > a.DepthBuffer.Load(dst) {
		return
	}
	if !a.DepthBuffer.Claim(dst) {
		return
	}
	col := colorAt(a.Color, x, y)
	col.W = 1
	setColor(a.Output, dst%c.Width, dst/c.Width, col)
}

// clearImage fills the output with the clear color and marks it invalid.
func clearImage(c *Constants, a *Args, x, y int) {
	if c.outside(x, y) {
		return
	}
	col := a.ClearColor
	col.W = 0
	setColor(a.Output, x, y, col)
}

var fixupOffsets = [4][2]int{{0, -1}, {1, 0}, {0, 1}, {-1, 0}}

// fixup fills a pixel no scatter landed on with the average of its valid
// 4-neighbours. Neighbours are read from the snapshot with mirrored
// addressing. A pixel without valid neighbours is left as is and counted.
func fixup(c *Constants, a *Args, x, y int) {
	if c.outside(x, y) {
		return
	}
	if colorAt(a.Snapshot, x, y).W >= 1 {
		return
	}
	var r, g, b, sum float32
	for _, o := range fixupOffsets {
		n := readMirrored(a.Snapshot, x+o[0], y+o[1])
		r += n.X * n.W
		g += n.Y * n.W
		b += n.Z * n.W
		sum += n.W
	}
	if sum <= 0 {
		if a.Stats != nil {
			a.Stats.Holes.Add(1)
		}
		return
	}
	inv := 1 / sum
	a.Output.SetRGBA(x, y, r*inv, g*inv, b*inv, 1)
}
