// Package motion packs 2D and 3D motion vectors into 32-bit words.
//
// 3D layout (scatter warping, camera-space world units):
//
//	[1-bit sign x][1-bit sign y][1-bit sign z][10-bit x][9-bit y][10-bit z]
//
// Each magnitude is log2(|v|+1) quantized over [0, MaxMagnitude3D], so small
// motions keep more precision than large ones.
//
// 2D layout (gather warping, normalized screen units):
//
//	[16-bit snorm y][16-bit snorm x]
//
// Decoding is total: every 32-bit pattern decodes to a finite vector.
package motion

import (
	"math"

	"github.com/gogpu/warp/internal/vmath"
)

// MaxMagnitude3D is the largest per-axis magnitude a 3D motion word can hold.
const MaxMagnitude3D = 64.0

// snormMax is the saturating lane factor for 2D motion. One below 2^15 so
// that +1 and -1 are symmetric.
const snormMax = 32767.0

// bit budgets of the 3D lanes
const (
	bitsX = 10
	bitsY = 9
	bitsZ = 10

	maskX = 1<<bitsX - 1
	maskY = 1<<bitsY - 1
	maskZ = 1<<bitsZ - 1

	shiftX = bitsY + bitsZ
	shiftY = bitsZ

	signX = 1 << 31
	signY = 1 << 30
	signZ = 1 << 29
)

var (
	log2Range = math.Log2(MaxMagnitude3D + 1)

	// quantization scale per axis: levels / log2(range+1)
	encodeScale = [3]float64{
		(maskX + 1) / log2Range,
		(maskY + 1) / log2Range,
		(maskZ + 1) / log2Range,
	}
	decodeScale = [3]float64{
		log2Range / (maskX + 1),
		log2Range / (maskY + 1),
		log2Range / (maskZ + 1),
	}
	maxLevel = [3]float64{maskX, maskY, maskZ}

	// indexed by the top three bits (x sign is the most significant)
	signsLookup = [8]vmath.Vec3{
		{X: 1, Y: 1, Z: 1},
		{X: 1, Y: 1, Z: -1},
		{X: 1, Y: -1, Z: 1},
		{X: 1, Y: -1, Z: -1},
		{X: -1, Y: 1, Z: 1},
		{X: -1, Y: 1, Z: -1},
		{X: -1, Y: -1, Z: 1},
		{X: -1, Y: -1, Z: -1},
	}
)

// Encode3D packs a camera-space motion vector. Magnitudes are clamped to
// [0, MaxMagnitude3D] per axis; NaN components encode as zero.
func Encode3D(v vmath.Vec3) uint32 {
	var word uint32
	if v.X < 0 {
		word |= signX
	}
	if v.Y < 0 {
		word |= signY
	}
	if v.Z < 0 {
		word |= signZ
	}
	word |= quantize(v.X, 0) << shiftX
	word |= quantize(v.Y, 1) << shiftY
	word |= quantize(v.Z, 2)
	return word
}

func quantize(c float32, axis int) uint32 {
	a := math.Abs(float64(c))
	if math.IsNaN(a) {
		return 0
	}
	a = math.Min(a, MaxMagnitude3D)
	q := math.Log2(a+1) * encodeScale[axis]
	q = math.Min(math.Max(q, 0), maxLevel[axis])
	return uint32(q)
}

// Decode3D unpacks a word produced by Encode3D. Any bit pattern is accepted.
func Decode3D(word uint32) vmath.Vec3 {
	signs := signsLookup[word>>29]
	return vmath.Vec3{
		X: signs.X * dequantize((word>>shiftX)&maskX, 0),
		Y: signs.Y * dequantize((word>>shiftY)&maskY, 1),
		Z: signs.Z * dequantize(word&maskZ, 2),
	}
}

func dequantize(level uint32, axis int) float32 {
	return float32(math.Exp2(float64(level)*decodeScale[axis]) - 1)
}

// Step3D returns the worst-case decode error bound for one axis
// (0 = x, 1 = y, 2 = z): MaxMagnitude3D * log2(range+1) / levels.
func Step3D(axis int) float32 {
	return float32(MaxMagnitude3D * decodeScale[axis])
}

// Encode2D packs a screen-space motion vector whose components are
// fractions of the screen extent in [-0.5, 0.5]. Larger values saturate.
func Encode2D(v vmath.Vec2) uint32 {
	return EncodeNDC2D(v.Mul(2))
}

// EncodeNDC2D packs a motion delta given in normalized device coordinates,
// which is what a vertex shader produces when subtracting two projected
// positions. Components saturate at +-1.
func EncodeNDC2D(v vmath.Vec2) uint32 {
	x := uint16(snorm(v.X))
	y := uint16(snorm(v.Y))
	return uint32(y)<<16 | uint32(x)
}

func snorm(c float32) int16 {
	f := float64(c) * snormMax
	if math.IsNaN(f) {
		return 0
	}
	f = math.Min(math.Max(f, -snormMax), snormMax)
	return int16(f)
}

// Decode2D unpacks a 2D motion word into normalized screen units.
func Decode2D(word uint32) vmath.Vec2 {
	return vmath.Vec2{
		X: unsnorm(int16(uint16(word))) * 0.5,
		Y: unsnorm(int16(uint16(word>>16))) * 0.5,
	}
}

func unsnorm(lane int16) float32 {
	return float32(math.Max(float64(lane)/snormMax, -1))
}

// Step2D is one fixed-point step of a 2D lane in normalized screen units.
const Step2D = 0.5 / snormMax
