// Package warp reprojects rendered frames using per-pixel depth and motion.
//
// # Overview
//
// Given a rendered frame with its depth and motion vectors, warp synthesizes
// a frame at a fractional time delta without re-rendering the scene. It is
// meant for real-time renderers that need to hide latency or raise the
// apparent frame rate, such as VR compositors.
//
// # Pipelines
//
// Three strategies are available:
//
//   - Scatter pushes every source pixel along its 3D camera-space motion.
//     The nearest surface wins each destination, and holes left by
//     disocclusion are filled from their neighbours.
//   - GatherForwardOnly pulls every destination pixel from one frame by
//     inverting its 2D screen-space motion.
//   - Gather interpolates between the previous and the current frame,
//     searching both along forward and backward motion and resolving
//     occlusion by depth.
//
// # Quick Start
//
//	setup := warp.CameraSetup{
//	    Width: 1280, Height: 720,
//	    FieldOfView: 72, NearPlane: 0.5, FarPlane: 500,
//	    DepthType: warp.DepthNormalized, OriginTopLeft: true,
//	}
//	out := texture.NewColor(1280, 720)
//	if err := warp.Scatter(setup, 0.5, true, color, depth, motion, out); err != nil {
//	    log.Printf("warp failed: %v (code %v)", err, warp.CodeOf(err))
//	}
//
// # Concurrency
//
// Operations on one Warper are serialized by a global lock. Parallelism
// happens inside an operation: every kernel is dispatched over a grid of
// tiles executed by the compute device. The package-level functions share
// a single default Warper.
//
// # Motion formats
//
// Scatter expects 3D motion packed with a logarithmic 10/9/10-bit layout;
// the gather pipelines expect 2D screen-space motion packed as two 16-bit
// signed normalized lanes. See the encoders in the motion helpers exported
// by this package.
package warp

// Version information
const (
	// Version is the current version of the library
	Version = "0.3.0-alpha.1"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 3

	// VersionPatch is the patch version
	VersionPatch = 0

	// VersionPrerelease is the prerelease identifier
	VersionPrerelease = "alpha.1"
)
