package warp

import (
	"github.com/gogpu/warp/internal/camera"
	"github.com/gogpu/warp/internal/motion"
	"github.com/gogpu/warp/internal/vmath"
)

// CameraSetup describes the screen and camera a frame was rendered with.
// It is comparable; two setups select the same compiled program only if
// every field is equal.
type CameraSetup = camera.Setup

// DepthType is the convention of the values stored in depth textures.
type DepthType = camera.DepthType

// Depth conventions.
const (
	// DepthNormalized is a hardware depth buffer value in [0, 1].
	DepthNormalized = camera.DepthNormalized
	// DepthZDivW is z/w as written by a shader.
	DepthZDivW = camera.DepthZDivW
	// DepthLinear is the distance from the camera.
	DepthLinear = camera.DepthLinear
)

// EncodeMotion3D packs a camera-space motion vector for Scatter.
// Components are clamped to [-64, 64].
func EncodeMotion3D(x, y, z float32) uint32 {
	return motion.Encode3D(vmath.V3(x, y, z))
}

// DecodeMotion3D unpacks a word produced by EncodeMotion3D.
func DecodeMotion3D(word uint32) (x, y, z float32) {
	v := motion.Decode3D(word)
	return v.X, v.Y, v.Z
}

// EncodeMotion2D packs a screen-space motion for the gather pipelines.
// Components are fractions of the screen extent in [-0.5, 0.5].
func EncodeMotion2D(x, y float32) uint32 {
	return motion.Encode2D(vmath.V2(x, y))
}

// EncodeMotionNDC packs a motion given as an NDC delta in [-1, 1], the way
// a vertex shader computes it.
func EncodeMotionNDC(x, y float32) uint32 {
	return motion.EncodeNDC2D(vmath.V2(x, y))
}

// DecodeMotion2D unpacks a screen-space motion word.
func DecodeMotion2D(word uint32) (x, y float32) {
	v := motion.Decode2D(word)
	return v.X, v.Y
}
