// Package camera holds the camera configuration that every warp kernel is
// specialised for, and the projection math derived from it.
//
// A Projection is computed once per Setup and then used read-only by every
// pixel invocation, so all terms that only depend on the setup are folded
// into it up front.
package camera

import (
	"fmt"
	"math"

	"github.com/gogpu/warp/internal/vmath"
)

// DepthType determines how values in a depth texture are interpreted.
type DepthType uint32

const (
	// DepthNormalized is a hardware depth buffer normalized to [0, 1]
	// (Metal/Vulkan default).
	DepthNormalized DepthType = iota

	// DepthZDivW is z/w written manually to a single-channel float texture.
	DepthZDivW

	// DepthLinear is linear depth in [0, far plane].
	DepthLinear
)

// String returns the depth type name.
func (t DepthType) String() string {
	switch t {
	case DepthNormalized:
		return "normalized"
	case DepthZDivW:
		return "z/w"
	case DepthLinear:
		return "linear"
	default:
		return fmt.Sprintf("DepthType(%d)", uint32(t))
	}
}

// Setup is the complete camera state warp kernels are specialised for.
// Two setups select the same compiled program only if every field is equal.
type Setup struct {
	Width       uint32
	Height      uint32
	FieldOfView float32 // vertical, in degrees
	NearPlane   float32
	FarPlane    float32
	DepthType   DepthType
	// OriginTopLeft is true when pixel (0, 0) is the top-left corner of the
	// screen (Metal/Vulkan). Otherwise the origin is bottom-left (OpenGL).
	OriginTopLeft bool
}

// Same reports whether s and o select the same compiled program. Float
// fields compare by bit pattern, so a NaN field matches itself and 0
// differs from -0.
func (s Setup) Same(o Setup) bool {
	return s.Width == o.Width &&
		s.Height == o.Height &&
		math.Float32bits(s.FieldOfView) == math.Float32bits(o.FieldOfView) &&
		math.Float32bits(s.NearPlane) == math.Float32bits(o.NearPlane) &&
		math.Float32bits(s.FarPlane) == math.Float32bits(o.FarPlane) &&
		s.DepthType == o.DepthType &&
		s.OriginTopLeft == o.OriginTopLeft
}

// HasValidScreen reports whether both screen dimensions are non-zero.
func (s Setup) HasValidScreen() bool {
	return s.Width != 0 && s.Height != 0
}

// Pixels returns Width*Height.
func (s Setup) Pixels() int {
	return int(s.Width) * int(s.Height)
}

// String returns a compact description, used in logs.
func (s Setup) String() string {
	origin := "bottom-left"
	if s.OriginTopLeft {
		origin = "top-left"
	}
	return fmt.Sprintf("%dx%d fov=%g near=%g far=%g depth=%s origin=%s",
		s.Width, s.Height, s.FieldOfView, s.NearPlane, s.FarPlane, s.DepthType, origin)
}

// Projection is the per-setup camera math.
type Projection struct {
	ScreenSize    vmath.Vec2
	InvScreenSize vmath.Vec2
	AspectRatio   float32
	RightVec      float32
	UpVec         float32 // negative for top-left origin
	Near, Far     float32
	DepthType     DepthType

	// near/far projection terms for normalized depth
	nearFarProj vmath.Vec2
	// reconstruct: coord*reconScale + reconBias, times linear depth
	reconScale vmath.Vec2
	reconBias  vmath.Vec2
	// reproject: 1/right, 1/up
	reprojScale vmath.Vec2
}

// NewProjection derives the projection terms for s.
func NewProjection(s Setup) Projection {
	w, h := float64(s.Width), float64(s.Height)
	aspect := w / h
	up := math.Tan(float64(s.FieldOfView) * math.Pi / 180 * 0.5)
	right := up * aspect
	if s.OriginTopLeft {
		up = -up
	}
	n, f := float64(s.NearPlane), float64(s.FarPlane)

	// Expands ((coord + 0.5) * 2 / size - 1) * (right, up).
	term1x, term1y := right/w, up/h

	return Projection{
		ScreenSize:    vmath.V2(float32(w), float32(h)),
		InvScreenSize: vmath.V2(float32(1/w), float32(1/h)),
		AspectRatio:   float32(aspect),
		RightVec:      float32(right),
		UpVec:         float32(up),
		Near:          s.NearPlane,
		Far:           s.FarPlane,
		DepthType:     s.DepthType,
		nearFarProj: vmath.V2(
			float32(-(f+n)/(n-f)),
			float32((2*f*n)/(n-f)),
		),
		reconScale:  vmath.V2(float32(2*term1x), float32(2*term1y)),
		reconBias:   vmath.V2(float32(term1x-right), float32(term1y-up)),
		reprojScale: vmath.V2(float32(1/right), float32(1/up)),
	}
}

// Linearize converts a depth sample in the setup's depth convention to
// linear distance from the camera.
func (p *Projection) Linearize(depth float32) float32 {
	return p.LinearizeAs(p.DepthType, depth)
}

// LinearizeAs converts a depth sample stored with convention t. Motion depth
// is always z/w regardless of the scene depth convention.
func (p *Projection) LinearizeAs(t DepthType, depth float32) float32 {
	switch t {
	case DepthNormalized:
		// clear/full depth is assumed to come from a normalized sky box
		if depth == 1 {
			return 1
		}
		return p.nearFarProj.Y / (depth - p.nearFarProj.X)
	case DepthZDivW:
		return depth + p.Near - depth*(p.Near/p.Far)
	default:
		return depth
	}
}

// Reconstruct returns the camera-space position of pixel (x, y) at the given
// linear depth. The pixel center is used.
func (p *Projection) Reconstruct(x, y int, linearDepth float32) vmath.Vec3 {
	xy := vmath.V2(float32(x), float32(y)).MulVec(p.reconScale).Add(p.reconBias).Mul(linearDepth)
	return vmath.Vec3{X: xy.X, Y: xy.Y, Z: -linearDepth}
}

// Reproject projects a camera-space position back to pixel coordinates.
// The result is not clamped; callers decide what out of bounds means.
func (p *Projection) Reproject(pos vmath.Vec3) vmath.Vec2 {
	ndc := pos.XY().MulVec(p.reprojScale).Mul(1 / -pos.Z)
	return ndc.Mul(0.5).Add(vmath.V2(0.5, 0.5)).MulVec(p.ScreenSize)
}

// PixelCenter returns the normalized [0, 1] screen position of the center
// of pixel (x, y).
func (p *Projection) PixelCenter(x, y int) vmath.Vec2 {
	return vmath.V2(float32(x)+0.5, float32(y)+0.5).MulVec(p.InvScreenSize)
}

// Terms are the precomputed projection factors, exposed for shader
// specialization.
type Terms struct {
	NearFar     vmath.Vec2
	ReconScale  vmath.Vec2
	ReconBias   vmath.Vec2
	ReprojScale vmath.Vec2
}

// Terms returns the precomputed projection factors.
func (p *Projection) Terms() Terms {
	return Terms{
		NearFar:     p.nearFarProj,
		ReconScale:  p.reconScale,
		ReconBias:   p.reconBias,
		ReprojScale: p.reprojScale,
	}
}
