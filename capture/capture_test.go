package capture

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"

	"github.com/gogpu/warp/internal/camera"
	"github.com/gogpu/warp/texture"
)

func testFrame() *Frame {
	f := New(camera.Setup{
		Width: 4, Height: 3,
		FieldOfView: 72, NearPlane: 0.5, FarPlane: 500,
		DepthType:     camera.DepthZDivW,
		OriginTopLeft: true,
	}, 0.5)
	f.Color = texture.NewColor(4, 3)
	f.Color.SetRGBA(1, 2, 0.25, 0.5, 0.75, 1)
	f.Depth = texture.NewDepth(4, 3)
	f.Depth.Set(3, 0, 0.125)
	f.MotionForward = texture.NewMotion(4, 3)
	f.MotionForward.Set(2, 2, 0xdeadbeef)
	f.MotionDepthBackward = texture.NewMotionDepth(4, 3)
	f.MotionDepthBackward.Set(0, 1, 0.5, -2)
	return f
}

func TestRoundTrip(t *testing.T) {
	f := testFrame()
	var buf bytes.Buffer
	if err := Write(&buf, f); err != nil {
		t.Fatal(err)
	}
	got, err := Read(&buf)
	if err != nil {
		t.Fatal(err)
	}

	if got.ID != f.ID || got.Setup != f.Setup || got.Delta != f.Delta {
		t.Errorf("header = %v %v %v, want %v %v %v", got.ID, got.Setup, got.Delta, f.ID, f.Setup, f.Delta)
	}
	if got.Motion3D != nil || got.ColorPrev != nil || got.MotionDepthForward != nil {
		t.Error("absent textures were materialized")
	}
	if r, g, b, w := got.Color.RGBA(1, 2); r != 0.25 || g != 0.5 || b != 0.75 || w != 1 {
		t.Errorf("color = %v %v %v %v", r, g, b, w)
	}
	if d := got.Depth.At(3, 0); d != 0.125 {
		t.Errorf("depth = %v", d)
	}
	if m := got.MotionForward.At(2, 2); m != 0xdeadbeef {
		t.Errorf("motion = %#x", m)
	}
	if fwd, bwd := got.MotionDepthBackward.At(0, 1); fwd != 0.5 || bwd != -2 {
		t.Errorf("motion depth = %v %v", fwd, bwd)
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frame.wcap")
	f := testFrame()
	if err := Save(path, f); err != nil {
		t.Fatal(err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != f.ID {
		t.Errorf("ID = %v, want %v", got.ID, f.ID)
	}
}

func TestUniqueIDs(t *testing.T) {
	a, b := New(camera.Setup{}, 0), New(camera.Setup{}, 0)
	if a.ID == b.ID {
		t.Error("two captures share an ID")
	}
}

func TestReadInvalid(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"bad magic", []byte("NOTACAPTUREFILE")},
		{"no stream", magic[:]},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Read(bytes.NewReader(tt.data)); !errors.Is(err, ErrFormat) {
				t.Errorf("err = %v, want ErrFormat", err)
			}
		})
	}

	var buf bytes.Buffer
	if err := Write(&buf, testFrame()); err != nil {
		t.Fatal(err)
	}
	truncated := buf.Bytes()[:buf.Len()-8]
	if _, err := Read(bytes.NewReader(truncated)); err == nil {
		t.Error("truncated capture decoded")
	}
}

func TestWriteRejectsMismatch(t *testing.T) {
	f := testFrame()
	f.Depth = texture.NewDepth(2, 2)
	if err := Write(&bytes.Buffer{}, f); err == nil {
		t.Error("size mismatch accepted")
	}
	f = testFrame()
	f.Setup.Width = 0
	if err := Write(&bytes.Buffer{}, f); err == nil {
		t.Error("invalid screen accepted")
	}
}
