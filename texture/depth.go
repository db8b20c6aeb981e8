package texture

// Depth is a single-channel float depth texture. The meaning of a value
// depends on the camera depth type.
type Depth struct {
	binding
	width  int
	height int

	Pix []float32
}

// NewDepth allocates a zeroed depth texture.
func NewDepth(width, height int) *Depth {
	return &Depth{width: width, height: height, Pix: make([]float32, width*height)}
}

// WrapDepth wraps an existing buffer of one float per pixel.
func WrapDepth(width, height int, pix []float32) (*Depth, error) {
	if err := checkSize("depth", width, height, len(pix), 1); err != nil {
		return nil, err
	}
	return &Depth{width: width, height: height, Pix: pix}, nil
}

// Format returns FormatR32Float.
func (d *Depth) Format() Format { return FormatR32Float }

// Width returns the width in pixels.
func (d *Depth) Width() int { return d.width }

// Height returns the height in pixels.
func (d *Depth) Height() int { return d.height }

// At returns the depth at (x, y), or 0 out of range.
func (d *Depth) At(x, y int) float32 {
	if x < 0 || x >= d.width || y < 0 || y >= d.height {
		return 0
	}
	return d.Pix[y*d.width+x]
}

// Set writes the depth at (x, y).
func (d *Depth) Set(x, y int, v float32) {
	if x < 0 || x >= d.width || y < 0 || y >= d.height {
		return
	}
	d.Pix[y*d.width+x] = v
}

// Fill sets every texel to v.
func (d *Depth) Fill(v float32) {
	for i := range d.Pix {
		d.Pix[i] = v
	}
}
