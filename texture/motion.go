package texture

import "github.com/x448/float16"

// Motion holds one packed motion word per pixel, either a 3D world-space
// motion or a 2D screen-space motion depending on the consumer.
type Motion struct {
	binding
	width  int
	height int

	Pix []uint32
}

// NewMotion allocates a zeroed motion texture. Zero decodes to no motion in
// both encodings.
func NewMotion(width, height int) *Motion {
	return &Motion{width: width, height: height, Pix: make([]uint32, width*height)}
}

// WrapMotion wraps an existing buffer of one word per pixel.
func WrapMotion(width, height int, pix []uint32) (*Motion, error) {
	if err := checkSize("motion", width, height, len(pix), 1); err != nil {
		return nil, err
	}
	return &Motion{width: width, height: height, Pix: pix}, nil
}

// Format returns FormatR32Uint.
func (m *Motion) Format() Format { return FormatR32Uint }

// Width returns the width in pixels.
func (m *Motion) Width() int { return m.width }

// Height returns the height in pixels.
func (m *Motion) Height() int { return m.height }

// At returns the packed word at (x, y), or 0 out of range.
func (m *Motion) At(x, y int) uint32 {
	if x < 0 || x >= m.width || y < 0 || y >= m.height {
		return 0
	}
	return m.Pix[y*m.width+x]
}

// Set writes the packed word at (x, y).
func (m *Motion) Set(x, y int, w uint32) {
	if x < 0 || x >= m.width || y < 0 || y >= m.height {
		return
	}
	m.Pix[y*m.width+x] = w
}

// MotionDepth holds two half-float depth deltas per pixel: X toward the next
// frame and Y toward the previous one. Deltas are in z/w depth units.
type MotionDepth struct {
	binding
	width  int
	height int

	Pix []float16.Float16
}

// NewMotionDepth allocates a zeroed motion depth texture.
func NewMotionDepth(width, height int) *MotionDepth {
	return &MotionDepth{width: width, height: height, Pix: make([]float16.Float16, width*height*2)}
}

// WrapMotionDepth wraps an existing buffer of two halves per pixel.
func WrapMotionDepth(width, height int, pix []float16.Float16) (*MotionDepth, error) {
	if err := checkSize("motion depth", width, height, len(pix), 2); err != nil {
		return nil, err
	}
	return &MotionDepth{width: width, height: height, Pix: pix}, nil
}

// Format returns FormatRG16Float.
func (m *MotionDepth) Format() Format { return FormatRG16Float }

// Width returns the width in pixels.
func (m *MotionDepth) Width() int { return m.width }

// Height returns the height in pixels.
func (m *MotionDepth) Height() int { return m.height }

// At returns both deltas at (x, y) widened to float32.
func (m *MotionDepth) At(x, y int) (fwd, bwd float32) {
	if x < 0 || x >= m.width || y < 0 || y >= m.height {
		return 0, 0
	}
	i := (y*m.width + x) * 2
	return m.Pix[i].Float32(), m.Pix[i+1].Float32()
}

// Set stores both deltas at (x, y), rounding to the nearest half.
func (m *MotionDepth) Set(x, y int, fwd, bwd float32) {
	if x < 0 || x >= m.width || y < 0 || y >= m.height {
		return
	}
	i := (y*m.width + x) * 2
	m.Pix[i] = float16.Fromfloat32(fwd)
	m.Pix[i+1] = float16.Fromfloat32(bwd)
}
