package warp

import "github.com/gogpu/warp/texture"

// std is the process-wide Warper behind the package-level functions.
var std = New()

// Default returns the process-wide Warper used by the package-level
// functions.
func Default() *Warper { return std }

// Scatter runs Warper.Scatter on the default Warper.
func Scatter(setup CameraSetup, delta float32, clearFrame bool,
	color *texture.Color, depth *texture.Depth, motion *texture.Motion, output *texture.Color,
) error {
	return std.Scatter(setup, delta, clearFrame, color, depth, motion, output)
}

// Gather runs Warper.Gather on the default Warper.
func Gather(setup CameraSetup, delta float32, in GatherInput, output *texture.Color) error {
	return std.Gather(setup, delta, in, output)
}

// GatherForwardOnly runs Warper.GatherForwardOnly on the default Warper.
func GatherForwardOnly(setup CameraSetup, delta float32,
	color *texture.Color, motion *texture.Motion, output *texture.Color,
) error {
	return std.GatherForwardOnly(setup, delta, color, motion, output)
}

// Prebuild compiles the program for setup on the default Warper.
func Prebuild(setup CameraSetup) error { return std.Prebuild(setup) }

// Cleanup drops the default Warper's compiled programs and slot references.
func Cleanup() { std.Cleanup() }

// Destroy tears down the default Warper. It initializes again on next use.
func Destroy() { std.Destroy() }
