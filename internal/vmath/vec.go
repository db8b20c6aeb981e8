// Package vmath provides the small float32 vector types shared by the
// per-pixel warp kernels.
//
// All types are plain values; every operation returns a new vector.
package vmath

import "math"

// Vec2 is a 2D float32 vector. It is used for screen-space positions
// (normalized [0, 1] or pixel units) and 2D motion.
type Vec2 struct {
	X, Y float32
}

// V2 is a convenience function to create a Vec2.
func V2(x, y float32) Vec2 {
	return Vec2{X: x, Y: y}
}

// Add returns the sum of two vectors.
func (v Vec2) Add(w Vec2) Vec2 {
	return Vec2{X: v.X + w.X, Y: v.Y + w.Y}
}

// Sub returns the difference of two vectors.
func (v Vec2) Sub(w Vec2) Vec2 {
	return Vec2{X: v.X - w.X, Y: v.Y - w.Y}
}

// Mul returns the vector scaled by a scalar.
func (v Vec2) Mul(s float32) Vec2 {
	return Vec2{X: v.X * s, Y: v.Y * s}
}

// MulVec returns the component-wise product.
func (v Vec2) MulVec(w Vec2) Vec2 {
	return Vec2{X: v.X * w.X, Y: v.Y * w.Y}
}

// Dot returns the dot product of two vectors.
func (v Vec2) Dot(w Vec2) float32 {
	return v.X*w.X + v.Y*w.Y
}

// LengthSq returns the squared length of the vector.
func (v Vec2) LengthSq() float32 {
	return v.X*v.X + v.Y*v.Y
}

// Length returns the length of the vector.
func (v Vec2) Length() float32 {
	return float32(math.Sqrt(float64(v.LengthSq())))
}

// Normalize returns a unit vector in the same direction.
// The zero vector normalizes to itself.
func (v Vec2) Normalize() Vec2 {
	l := v.Length()
	if l == 0 {
		return Vec2{}
	}
	return Vec2{X: v.X / l, Y: v.Y / l}
}

// Abs returns the component-wise absolute value.
func (v Vec2) Abs() Vec2 {
	return Vec2{X: abs(v.X), Y: abs(v.Y)}
}

// OutsideUnit reports whether any component lies outside [0, 1].
func (v Vec2) OutsideUnit() bool {
	return v.X < 0 || v.Y < 0 || v.X > 1 || v.Y > 1
}

// Approx reports whether v and w differ by at most epsilon per component.
func (v Vec2) Approx(w Vec2, epsilon float32) bool {
	return abs(v.X-w.X) <= epsilon && abs(v.Y-w.Y) <= epsilon
}

// Vec3 is a 3D float32 vector used for camera-space positions and 3D motion.
type Vec3 struct {
	X, Y, Z float32
}

// V3 is a convenience function to create a Vec3.
func V3(x, y, z float32) Vec3 {
	return Vec3{X: x, Y: y, Z: z}
}

// Add returns the sum of two vectors.
func (v Vec3) Add(w Vec3) Vec3 {
	return Vec3{X: v.X + w.X, Y: v.Y + w.Y, Z: v.Z + w.Z}
}

// Sub returns the difference of two vectors.
func (v Vec3) Sub(w Vec3) Vec3 {
	return Vec3{X: v.X - w.X, Y: v.Y - w.Y, Z: v.Z - w.Z}
}

// Mul returns the vector scaled by a scalar.
func (v Vec3) Mul(s float32) Vec3 {
	return Vec3{X: v.X * s, Y: v.Y * s, Z: v.Z * s}
}

// Abs returns the component-wise absolute value.
func (v Vec3) Abs() Vec3 {
	return Vec3{X: abs(v.X), Y: abs(v.Y), Z: abs(v.Z)}
}

// XY returns the first two components.
func (v Vec3) XY() Vec2 {
	return Vec2{X: v.X, Y: v.Y}
}

// Approx reports whether v and w differ by at most epsilon per component.
func (v Vec3) Approx(w Vec3, epsilon float32) bool {
	return abs(v.X-w.X) <= epsilon && abs(v.Y-w.Y) <= epsilon && abs(v.Z-w.Z) <= epsilon
}

// Vec4 is an RGBA color. W doubles as the validity channel in scatter output.
type Vec4 struct {
	X, Y, Z, W float32
}

// V4 is a convenience function to create a Vec4.
func V4(x, y, z, w float32) Vec4 {
	return Vec4{X: x, Y: y, Z: z, W: w}
}

// Add returns the sum of two vectors.
func (v Vec4) Add(w Vec4) Vec4 {
	return Vec4{X: v.X + w.X, Y: v.Y + w.Y, Z: v.Z + w.Z, W: v.W + w.W}
}

// Mul returns the vector scaled by a scalar.
func (v Vec4) Mul(s float32) Vec4 {
	return Vec4{X: v.X * s, Y: v.Y * s, Z: v.Z * s, W: v.W * s}
}

// Lerp linearly interpolates from v to w: v + (w-v)*t.
func (v Vec4) Lerp(w Vec4, t float32) Vec4 {
	return Vec4{
		X: v.X + (w.X-v.X)*t,
		Y: v.Y + (w.Y-v.Y)*t,
		Z: v.Z + (w.Z-v.Z)*t,
		W: v.W + (w.W-v.W)*t,
	}
}

// RGB returns the first three components.
func (v Vec4) RGB() Vec3 {
	return Vec3{X: v.X, Y: v.Y, Z: v.Z}
}

// Approx reports whether v and w differ by at most epsilon per component.
func (v Vec4) Approx(w Vec4, epsilon float32) bool {
	return abs(v.X-w.X) <= epsilon && abs(v.Y-w.Y) <= epsilon &&
		abs(v.Z-w.Z) <= epsilon && abs(v.W-w.W) <= epsilon
}

func abs(f float32) float32 {
	return math.Float32frombits(math.Float32bits(f) &^ (1 << 31))
}
