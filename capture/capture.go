// Package capture stores warp input frames on disk for replay and
// regression tests.
//
// A capture file is an 8-byte magic followed by a zstd stream holding a
// fixed little-endian header and the raw pixels of every present texture,
// in a fixed order.
package capture

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"

	"github.com/gogpu/warp/internal/camera"
	"github.com/gogpu/warp/texture"
)

// ErrFormat is returned for data that is not a valid capture.
var ErrFormat = errors.New("capture: invalid format")

var magic = [8]byte{'W', 'A', 'R', 'P', 'C', 'A', 'P', 1}

// maxPixels bounds the screen size accepted from a file.
const maxPixels = 1 << 26

// Frame is one captured set of warp inputs. Textures that were not
// captured are nil.
type Frame struct {
	ID    uuid.UUID
	Setup camera.Setup
	Delta float32

	Color    *texture.Color
	Depth    *texture.Depth
	Motion3D *texture.Motion

	ColorPrev           *texture.Color
	DepthPrev           *texture.Depth
	MotionForward       *texture.Motion
	MotionBackward      *texture.Motion
	MotionDepthForward  *texture.MotionDepth
	MotionDepthBackward *texture.MotionDepth
}

// New returns an empty frame with a fresh ID.
func New(setup camera.Setup, delta float32) *Frame {
	return &Frame{ID: uuid.New(), Setup: setup, Delta: delta}
}

type header struct {
	ID            [16]byte
	Width         uint32
	Height        uint32
	FieldOfView   float32
	NearPlane     float32
	FarPlane      float32
	DepthType     uint32
	OriginTopLeft uint8
	_             [3]byte
	Delta         float32
	Present       uint16
	_             [2]byte
}

// slot binds one texture field of a frame to its presence bit.
type slot struct {
	tex   func(f *Frame) texture.Texture
	alloc func(f *Frame, w, h int) any
	pix   func(f *Frame) any
}

var slots = []slot{
	{
		tex:   func(f *Frame) texture.Texture { return f.Color },
		alloc: func(f *Frame, w, h int) any { f.Color = texture.NewColor(w, h); return f.Color.Pix },
		pix:   func(f *Frame) any { return f.Color.Pix },
	},
	{
		tex:   func(f *Frame) texture.Texture { return f.Depth },
		alloc: func(f *Frame, w, h int) any { f.Depth = texture.NewDepth(w, h); return f.Depth.Pix },
		pix:   func(f *Frame) any { return f.Depth.Pix },
	},
	{
		tex:   func(f *Frame) texture.Texture { return f.Motion3D },
		alloc: func(f *Frame, w, h int) any { f.Motion3D = texture.NewMotion(w, h); return f.Motion3D.Pix },
		pix:   func(f *Frame) any { return f.Motion3D.Pix },
	},
	{
		tex:   func(f *Frame) texture.Texture { return f.ColorPrev },
		alloc: func(f *Frame, w, h int) any { f.ColorPrev = texture.NewColor(w, h); return f.ColorPrev.Pix },
		pix:   func(f *Frame) any { return f.ColorPrev.Pix },
	},
	{
		tex:   func(f *Frame) texture.Texture { return f.DepthPrev },
		alloc: func(f *Frame, w, h int) any { f.DepthPrev = texture.NewDepth(w, h); return f.DepthPrev.Pix },
		pix:   func(f *Frame) any { return f.DepthPrev.Pix },
	},
	{
		tex:   func(f *Frame) texture.Texture { return f.MotionForward },
		alloc: func(f *Frame, w, h int) any { f.MotionForward = texture.NewMotion(w, h); return f.MotionForward.Pix },
		pix:   func(f *Frame) any { return f.MotionForward.Pix },
	},
	{
		tex:   func(f *Frame) texture.Texture { return f.MotionBackward },
		alloc: func(f *Frame, w, h int) any { f.MotionBackward = texture.NewMotion(w, h); return f.MotionBackward.Pix },
		pix:   func(f *Frame) any { return f.MotionBackward.Pix },
	},
	{
		tex: func(f *Frame) texture.Texture { return f.MotionDepthForward },
		alloc: func(f *Frame, w, h int) any {
			f.MotionDepthForward = texture.NewMotionDepth(w, h)
			return f.MotionDepthForward.Pix
		},
		pix: func(f *Frame) any { return f.MotionDepthForward.Pix },
	},
	{
		tex: func(f *Frame) texture.Texture { return f.MotionDepthBackward },
		alloc: func(f *Frame, w, h int) any {
			f.MotionDepthBackward = texture.NewMotionDepth(w, h)
			return f.MotionDepthBackward.Pix
		},
		pix: func(f *Frame) any { return f.MotionDepthBackward.Pix },
	},
}

// Write encodes f to w. Every present texture must match the setup size.
func Write(w io.Writer, f *Frame) error {
	if !f.Setup.HasValidScreen() {
		return fmt.Errorf("capture: invalid screen %dx%d", f.Setup.Width, f.Setup.Height)
	}
	h := header{
		ID:          f.ID,
		Width:       f.Setup.Width,
		Height:      f.Setup.Height,
		FieldOfView: f.Setup.FieldOfView,
		NearPlane:   f.Setup.NearPlane,
		FarPlane:    f.Setup.FarPlane,
		DepthType:   uint32(f.Setup.DepthType),
		Delta:       f.Delta,
	}
	if f.Setup.OriginTopLeft {
		h.OriginTopLeft = 1
	}
	for i, s := range slots {
		t := s.tex(f)
		if texture.IsNil(t) {
			continue
		}
		if t.Width() != int(h.Width) || t.Height() != int(h.Height) {
			return fmt.Errorf("capture: texture %d is %dx%d, screen is %dx%d",
				i, t.Width(), t.Height(), h.Width, h.Height)
		}
		h.Present |= 1 << i
	}

	if _, err := w.Write(magic[:]); err != nil {
		return fmt.Errorf("capture: write magic: %w", err)
	}
	enc, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("capture: zstd: %w", err)
	}
	bw := bufio.NewWriter(enc)
	if err := binary.Write(bw, binary.LittleEndian, &h); err != nil {
		_ = enc.Close()
		return fmt.Errorf("capture: write header: %w", err)
	}
	for i, s := range slots {
		if h.Present&(1<<i) == 0 {
			continue
		}
		if err := binary.Write(bw, binary.LittleEndian, s.pix(f)); err != nil {
			_ = enc.Close()
			return fmt.Errorf("capture: write texture %d: %w", i, err)
		}
	}
	if err := bw.Flush(); err != nil {
		_ = enc.Close()
		return fmt.Errorf("capture: flush: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("capture: zstd close: %w", err)
	}
	return nil
}

// Read decodes a frame written by Write.
func Read(r io.Reader) (*Frame, error) {
	var m [8]byte
	if _, err := io.ReadFull(r, m[:]); err != nil {
		return nil, fmt.Errorf("%w: read magic: %w", ErrFormat, err)
	}
	if m != magic {
		return nil, fmt.Errorf("%w: bad magic %q", ErrFormat, m[:])
	}
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("capture: zstd: %w", err)
	}
	defer dec.Close()
	br := bufio.NewReader(dec)

	var h header
	if err := binary.Read(br, binary.LittleEndian, &h); err != nil {
		return nil, fmt.Errorf("%w: read header: %w", ErrFormat, err)
	}
	if h.Width == 0 || h.Height == 0 || uint64(h.Width)*uint64(h.Height) > maxPixels {
		return nil, fmt.Errorf("%w: screen %dx%d", ErrFormat, h.Width, h.Height)
	}
	if h.DepthType > uint32(camera.DepthLinear) {
		return nil, fmt.Errorf("%w: depth type %d", ErrFormat, h.DepthType)
	}

	f := &Frame{
		ID: h.ID,
		Setup: camera.Setup{
			Width:         h.Width,
			Height:        h.Height,
			FieldOfView:   h.FieldOfView,
			NearPlane:     h.NearPlane,
			FarPlane:      h.FarPlane,
			DepthType:     camera.DepthType(h.DepthType),
			OriginTopLeft: h.OriginTopLeft != 0,
		},
		Delta: h.Delta,
	}
	w, ht := int(h.Width), int(h.Height)
	for i, s := range slots {
		if h.Present&(1<<i) == 0 {
			continue
		}
		if err := binary.Read(br, binary.LittleEndian, s.alloc(f, w, ht)); err != nil {
			return nil, fmt.Errorf("%w: read texture %d: %w", ErrFormat, i, err)
		}
	}
	return f, nil
}

// Save writes f to a file.
func Save(path string, f *Frame) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(file, f); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

// Load reads a frame from a file.
func Load(path string) (*Frame, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return Read(bufio.NewReader(file))
}
