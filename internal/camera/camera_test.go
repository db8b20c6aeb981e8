package camera

import (
	"math"
	"testing"

	"github.com/gogpu/warp/internal/vmath"
)

func testSetup() Setup {
	return Setup{
		Width:         1280,
		Height:        720,
		FieldOfView:   72,
		NearPlane:     0.5,
		FarPlane:      500,
		DepthType:     DepthNormalized,
		OriginTopLeft: true,
	}
}

func TestProjection_RoundTrip(t *testing.T) {
	for _, topLeft := range []bool{true, false} {
		s := testSetup()
		s.OriginTopLeft = topLeft
		p := NewProjection(s)

		coords := [][2]int{{0, 0}, {1279, 719}, {640, 360}, {17, 701}, {1000, 3}}
		depths := []float32{0.5, 1, 7.25, 100, 499}
		for _, c := range coords {
			for _, d := range depths {
				got := p.Reproject(p.Reconstruct(c[0], c[1], d))
				want := vmath.V2(float32(c[0])+0.5, float32(c[1])+0.5)
				if !got.Approx(want, 1e-2) {
					t.Errorf("topLeft=%v: Reproject(Reconstruct(%v, %v)) = %v, want %v", topLeft, c, d, got, want)
				}
				if int(got.X) != c[0] || int(got.Y) != c[1] {
					t.Errorf("topLeft=%v: truncated %v != %v", topLeft, got, c)
				}
			}
		}
	}
}

func TestProjection_ReconstructDepth(t *testing.T) {
	p := NewProjection(testSetup())
	pos := p.Reconstruct(10, 20, 42)
	if pos.Z != -42 {
		t.Errorf("Reconstruct().Z = %v, want -42", pos.Z)
	}
}

func TestProjection_OriginFlip(t *testing.T) {
	s := testSetup()
	top := NewProjection(s)
	s.OriginTopLeft = false
	bottom := NewProjection(s)

	if y := top.Reconstruct(0, 0, 1).Y; y <= 0 {
		t.Errorf("top-left origin: row 0 camera y = %v, want > 0", y)
	}
	if y := bottom.Reconstruct(0, 0, 1).Y; y >= 0 {
		t.Errorf("bottom-left origin: row 0 camera y = %v, want < 0", y)
	}
	if top.Reconstruct(5, 0, 1).X != bottom.Reconstruct(5, 0, 1).X {
		t.Error("origin convention must not affect x")
	}
}

func TestLinearize(t *testing.T) {
	p := NewProjection(testSetup())
	tests := []struct {
		name  string
		typ   DepthType
		depth float32
		want  float32
	}{
		{"normalized far is sky", DepthNormalized, 1, 1},
		{"z/w zero is near", DepthZDivW, 0, 0.5},
		{"z/w one is far", DepthZDivW, 1, 1 + 0.5 - 0.5/500},
		{"linear passthrough", DepthLinear, 123.5, 123.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := p.LinearizeAs(tt.typ, tt.depth)
			if math.Abs(float64(got-tt.want)) > 1e-5 {
				t.Errorf("LinearizeAs(%v, %v) = %v, want %v", tt.typ, tt.depth, got, tt.want)
			}
		})
	}
}

func TestLinearize_NormalizedMonotonic(t *testing.T) {
	p := NewProjection(testSetup())
	prev := p.Linearize(0)
	for d := float32(0.01); d < 0.99; d += 0.01 {
		got := p.Linearize(d)
		if got <= prev {
			t.Fatalf("Linearize(%v) = %v, not increasing (prev %v)", d, got, prev)
		}
		prev = got
	}
}

func TestLinearize_UsesSetupType(t *testing.T) {
	s := testSetup()
	s.DepthType = DepthLinear
	p := NewProjection(s)
	if got := p.Linearize(3); got != 3 {
		t.Errorf("Linearize(3) with linear setup = %v, want 3", got)
	}
}

func TestSetup_Equality(t *testing.T) {
	a, b := testSetup(), testSetup()
	if a != b {
		t.Fatal("identical setups must compare equal")
	}
	b.Width++
	if a == b {
		t.Error("setups differing in width must not compare equal")
	}
}

func TestSetup_Same(t *testing.T) {
	nan := float32(math.NaN())
	withFOV := func(f float32) Setup {
		s := testSetup()
		s.FieldOfView = f
		return s
	}
	tests := []struct {
		name string
		a, b Setup
		want bool
	}{
		{"identical", testSetup(), testSetup(), true},
		{"nan fov", withFOV(nan), withFOV(nan), true},
		{"nan against number", withFOV(nan), withFOV(72), false},
		{"signed zero", withFOV(0), withFOV(float32(math.Copysign(0, -1))), false},
		{"width", testSetup(), Setup{Width: 1, Height: 720, FieldOfView: 72, NearPlane: 0.5, FarPlane: 500, OriginTopLeft: true}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Same(tt.b); got != tt.want {
				t.Errorf("Same() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSetup_HasValidScreen(t *testing.T) {
	s := testSetup()
	if !s.HasValidScreen() {
		t.Error("HasValidScreen() = false for 1280x720")
	}
	s.Height = 0
	if s.HasValidScreen() {
		t.Error("HasValidScreen() = true for zero height")
	}
}
