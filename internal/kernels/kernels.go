// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package kernels contains the per-pixel warp kernels and the registry the
// program cache resolves them from.
//
// Every kernel is invoked once per invocation of a dispatch grid that is the
// screen rounded up to whole tiles, so each kernel first discards
// invocations outside the screen. Kernels never write a pixel other than
// their own, except the scatter color pass, whose writes are arbitrated by
// the scratch depth buffer and its claim flags.
package kernels

import (
	"sort"
	"sync/atomic"

	"github.com/gogpu/warp/internal/camera"
	"github.com/gogpu/warp/internal/parallel"
	"github.com/gogpu/warp/internal/vmath"
	"github.com/gogpu/warp/texture"
)

// Constants are the values a program is specialized on. They never change
// for the lifetime of a compiled unit.
type Constants struct {
	Setup  camera.Setup
	Width  int
	Height int
	Camera camera.Projection
	Tile   parallel.TileSize

	// Blur holds TapCount directional blur weights.
	Blur []float32
}

// NewConstants specializes the kernel constants for a camera setup.
func NewConstants(s camera.Setup, tile parallel.TileSize) *Constants {
	return &Constants{
		Setup:  s,
		Width:  int(s.Width),
		Height: int(s.Height),
		Camera: camera.NewProjection(s),
		Tile:   tile,
		Blur:   BlurCoefficients(TapCount),
	}
}

// outside reports whether an invocation lies in the grid padding.
func (c *Constants) outside(x, y int) bool {
	return x >= c.Width || y >= c.Height
}

// Args are the per-dispatch inputs of a kernel. Each kernel reads only the
// fields it needs.
type Args struct {
	Delta      float32
	ClearColor vmath.Vec4

	Color     *texture.Color
	ColorPrev *texture.Color
	Depth     *texture.Depth
	DepthPrev *texture.Depth

	// Motion is the 3D motion for scatter and the 2D forward motion for
	// gather forward-only and the debug views.
	Motion         *texture.Motion
	MotionForward  *texture.Motion
	MotionBackward *texture.Motion

	MotionDepth         *texture.MotionDepth
	MotionDepthForward  *texture.MotionDepth
	MotionDepthBackward *texture.MotionDepth

	Output *texture.Color

	// Snapshot is a copy of Output taken before the fixup pass.
	Snapshot *texture.Color

	DepthBuffer *DepthBuffer
	Stats       *Stats
}

// Stats collects counters updated by kernels.
type Stats struct {
	// Holes counts pixels the fixup pass could not fill.
	Holes atomic.Int64
}

// Func is the body of a kernel for a single invocation.
type Func func(c *Constants, a *Args, x, y int)

// ID identifies a kernel. IDs index a compiled unit's kernel table.
type ID int

// Kernel IDs.
const (
	ScatterDepth ID = iota
	ScatterColor
	Clear
	Fixup
	GatherForward
	Gather
	DebugDepth
	DebugMotion2D
	DebugMotion3D
	DebugMotionDepth

	// Count is the number of kernels.
	Count
)

var names = [Count]string{
	ScatterDepth:     "libwarp_warp_scatter_depth",
	ScatterColor:     "libwarp_warp_scatter_color",
	Clear:            "libwarp_img_clear",
	Fixup:            "libwarp_single_px_fixup",
	GatherForward:    "libwarp_warp_gather_forward",
	Gather:           "libwarp_warp_gather",
	DebugDepth:       "libwarp_debug_depth_output",
	DebugMotion2D:    "libwarp_debug_motion_2d_output",
	DebugMotion3D:    "libwarp_debug_motion_3d_output",
	DebugMotionDepth: "libwarp_debug_motion_depth_output",
}

// Name returns the entry point name of the kernel.
func (id ID) Name() string {
	if id < 0 || id >= Count {
		return ""
	}
	return names[id]
}

func (id ID) String() string { return id.Name() }

var registry = map[string]Func{
	names[ScatterDepth]:     scatterDepth,
	names[ScatterColor]:     scatterColor,
	names[Clear]:            clearImage,
	names[Fixup]:            fixup,
	names[GatherForward]:    gatherForward,
	names[Gather]:           gather,
	names[DebugDepth]:       debugDepth,
	names[DebugMotion2D]:    debugMotion2D,
	names[DebugMotion3D]:    debugMotion3D,
	names[DebugMotionDepth]: debugMotionDepth,
}

// Lookup returns the kernel registered under an entry point name.
func Lookup(name string) (Func, bool) {
	fn, ok := registry[name]
	return fn, ok
}

// Names returns all registered entry point names, sorted.
func Names() []string {
	out := make([]string, 0, len(registry))
	for n := range registry {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
