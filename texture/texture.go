// Package texture holds the images warp reads and writes.
//
// A texture is a tightly packed 2D array of pixels in row-major order with
// the origin at index 0. Kernels address texels by integer coordinates and
// never see padding. A texture may carry a Native handle: a resource owned
// by the caller's graphics API that must be acquired before kernels touch the
// texture and released afterwards.
package texture

import (
	"errors"
	"fmt"
)

// Errors reported by texture construction and interop.
var (
	// ErrWrap is returned when a buffer cannot be wrapped as a texture.
	ErrWrap = errors.New("texture: wrap failed")

	// ErrAcquire is returned when a native resource cannot be acquired.
	ErrAcquire = errors.New("texture: acquire failed")

	// ErrRelease is returned when a native resource cannot be released.
	ErrRelease = errors.New("texture: release failed")
)

// Format specifies the texel layout of a texture.
type Format uint32

// Texel formats used by warp.
const (
	// FormatRGBA32Float is four 32-bit float channels. Color textures.
	FormatRGBA32Float Format = iota + 1

	// FormatR32Float is one 32-bit float channel. Depth textures.
	FormatR32Float

	// FormatR32Uint is one packed 32-bit word. Motion textures.
	FormatR32Uint

	// FormatRG16Float is two 16-bit float channels. Motion depth textures.
	FormatRG16Float
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatRGBA32Float:
		return "RGBA32Float"
	case FormatR32Float:
		return "R32Float"
	case FormatR32Uint:
		return "R32Uint"
	case FormatRG16Float:
		return "RG16Float"
	default:
		return fmt.Sprintf("Format(%d)", uint32(f))
	}
}

// Native is an externally owned resource backing a texture.
//
// Acquire is called before the first kernel that touches the texture and
// Release after the last one, both under the warp global lock.
type Native interface {
	Acquire() error
	Release() error
}

// Texture is the behaviour shared by all texture kinds.
type Texture interface {
	Format() Format
	Width() int
	Height() int
	Native() Native
}

// binding stores the optional native resource of a texture.
type binding struct {
	native Native
}

// Native returns the bound native resource, or nil.
func (b *binding) Native() Native { return b.native }

// SetNative binds an externally owned resource to the texture.
func (b *binding) SetNative(n Native) { b.native = n }

func checkSize(kind string, width, height, got, perPixel int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %s %dx%d: non-positive size", ErrWrap, kind, width, height)
	}
	if want := width * height * perPixel; got != want {
		return fmt.Errorf("%w: %s %dx%d: buffer holds %d elements, want %d",
			ErrWrap, kind, width, height, got, want)
	}
	return nil
}

// Acquire acquires the native resources of ts in order. Textures without a
// native resource are skipped. If any acquisition fails, the resources
// already acquired are released in reverse order and the error is returned.
//
// The returned function releases everything acquired, in reverse order, and
// reports the first release failure.
func Acquire(ts ...Texture) (release func() error, err error) {
	held := make([]Native, 0, len(ts))
	releaseAll := func() error {
		var first error
		for i := len(held) - 1; i >= 0; i-- {
			if rerr := held[i].Release(); rerr != nil && first == nil {
				first = fmt.Errorf("%w: %w", ErrRelease, rerr)
			}
		}
		held = held[:0]
		return first
	}
	for _, t := range ts {
		if IsNil(t) {
			continue
		}
		n := t.Native()
		if n == nil {
			continue
		}
		if aerr := n.Acquire(); aerr != nil {
			_ = releaseAll()
			return nil, fmt.Errorf("%w: %w", ErrAcquire, aerr)
		}
		held = append(held, n)
	}
	return releaseAll, nil
}

// IsNil reports whether t is nil, including typed nil pointers.
func IsNil(t Texture) bool {
	switch v := t.(type) {
	case nil:
		return true
	case *Color:
		return v == nil
	case *Depth:
		return v == nil
	case *Motion:
		return v == nil
	case *MotionDepth:
		return v == nil
	}
	return false
}
