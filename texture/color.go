package texture

import (
	"image"
	"image/color"
	"math"
)

// Color is an RGBA float texture. Channel 3 is not opacity: warp uses it as
// the validity of a reprojected pixel, 1 for written and 0 for a hole.
type Color struct {
	binding
	width  int
	height int

	// Pix holds 4 floats per pixel, R G B W.
	Pix []float32
}

// NewColor allocates a zeroed color texture.
func NewColor(width, height int) *Color {
	return &Color{width: width, height: height, Pix: make([]float32, width*height*4)}
}

// WrapColor wraps an existing buffer of 4 floats per pixel.
func WrapColor(width, height int, pix []float32) (*Color, error) {
	if err := checkSize("color", width, height, len(pix), 4); err != nil {
		return nil, err
	}
	return &Color{width: width, height: height, Pix: pix}, nil
}

// Format returns FormatRGBA32Float.
func (c *Color) Format() Format { return FormatRGBA32Float }

// Width returns the width in pixels.
func (c *Color) Width() int { return c.width }

// Height returns the height in pixels.
func (c *Color) Height() int { return c.height }

// RGBA returns the four channels at (x, y). Out-of-range reads return zero.
func (c *Color) RGBA(x, y int) (r, g, b, w float32) {
	if x < 0 || x >= c.width || y < 0 || y >= c.height {
		return 0, 0, 0, 0
	}
	i := (y*c.width + x) * 4
	p := c.Pix[i : i+4 : i+4]
	return p[0], p[1], p[2], p[3]
}

// SetRGBA writes the four channels at (x, y). Out-of-range writes are dropped.
func (c *Color) SetRGBA(x, y int, r, g, b, w float32) {
	if x < 0 || x >= c.width || y < 0 || y >= c.height {
		return
	}
	i := (y*c.width + x) * 4
	p := c.Pix[i : i+4 : i+4]
	p[0], p[1], p[2], p[3] = r, g, b, w
}

// Fill sets every pixel to the given channels.
func (c *Color) Fill(r, g, b, w float32) {
	for i := 0; i < len(c.Pix); i += 4 {
		c.Pix[i+0] = r
		c.Pix[i+1] = g
		c.Pix[i+2] = b
		c.Pix[i+3] = w
	}
}

// Clone returns a deep copy without the native binding.
func (c *Color) Clone() *Color {
	pix := make([]float32, len(c.Pix))
	copy(pix, c.Pix)
	return &Color{width: c.width, height: c.height, Pix: pix}
}

// CopyFrom copies the pixels of src, which must have the same size.
func (c *Color) CopyFrom(src *Color) {
	copy(c.Pix, src.Pix)
}

// Valid reports whether the pixel at (x, y) was written by a warp pass.
func (c *Color) Valid(x, y int) bool {
	_, _, _, w := c.RGBA(x, y)
	return w > 0
}

// At implements image.Image. The validity channel maps to opaque or
// transparent so holes show through when composited.
func (c *Color) At(x, y int) color.Color {
	r, g, b, w := c.RGBA(x, y)
	a := uint8(0)
	if w > 0 {
		a = 255
	}
	return color.NRGBA{R: unorm8(r), G: unorm8(g), B: unorm8(b), A: a}
}

// Bounds implements image.Image.
func (c *Color) Bounds() image.Rectangle {
	return image.Rect(0, 0, c.width, c.height)
}

// ColorModel implements image.Image.
func (c *Color) ColorModel() color.Model {
	return color.NRGBAModel
}

// FromImage converts img to a color texture with every pixel marked valid.
func FromImage(img image.Image) *Color {
	b := img.Bounds()
	c := NewColor(b.Dx(), b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			n := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			c.SetRGBA(x-b.Min.X, y-b.Min.Y,
				float32(n.R)/255, float32(n.G)/255, float32(n.B)/255, 1)
		}
	}
	return c
}

func unorm8(v float32) uint8 {
	if !(v > 0) {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(math.Round(float64(v) * 255))
}
