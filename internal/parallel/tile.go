// Package parallel executes per-pixel kernels over a 2D grid split into
// fixed-size tiles, the host equivalent of a compute dispatch with a
// work-group size.
//
// A dispatch covers the screen rounded up to whole tiles. Invocations in the
// overhang are still issued; kernels are expected to discard coordinates
// outside the real screen.
package parallel

import "fmt"

// TileSize is the work-group size of a dispatch in pixels.
type TileSize struct {
	X, Y int
}

// Common tile sizes.
var (
	// TileSizeDefault is 512 invocations, supported everywhere.
	TileSizeDefault = TileSize{X: 32, Y: 16}

	// TileSizeLarge is 1024 invocations, used when the device allows it.
	TileSizeLarge = TileSize{X: 32, Y: 32}
)

// Invocations returns X*Y.
func (t TileSize) Invocations() int {
	return t.X * t.Y
}

// Valid reports whether both dimensions are positive.
func (t TileSize) Valid() bool {
	return t.X > 0 && t.Y > 0
}

// Divides reports whether the tile evenly divides a width x height screen,
// in which case no invocation falls outside the screen.
func (t TileSize) Divides(width, height int) bool {
	return width%t.X == 0 && height%t.Y == 0
}

func (t TileSize) String() string {
	return fmt.Sprintf("%dx%d", t.X, t.Y)
}

// RoundUp rounds v up to the next multiple of m.
func RoundUp(v, m int) int {
	return (v + m - 1) / m * m
}

// Tile is one work-group of a dispatch: a rectangle of invocations in
// global grid coordinates. Tiles are always full size, even at the screen
// edge.
type Tile struct {
	X, Y          int // tile index
	OriginX       int // first invocation x
	OriginY       int // first invocation y
	Width, Height int
}

// Contains reports whether the global invocation (gx, gy) belongs to t.
func (t Tile) Contains(gx, gy int) bool {
	return gx >= t.OriginX && gx < t.OriginX+t.Width &&
		gy >= t.OriginY && gy < t.OriginY+t.Height
}
