package kernels

import (
	"math"
	"sort"
	"sync"
	"testing"

	"github.com/gogpu/warp/internal/camera"
	"github.com/gogpu/warp/internal/motion"
	"github.com/gogpu/warp/internal/parallel"
	"github.com/gogpu/warp/internal/vmath"
	"github.com/gogpu/warp/texture"
)

func testSetup(w, h uint32) camera.Setup {
	return camera.Setup{
		Width:         w,
		Height:        h,
		FieldOfView:   90,
		NearPlane:     0.5,
		FarPlane:      100,
		DepthType:     camera.DepthLinear,
		OriginTopLeft: true,
	}
}

// runAll invokes fn over the whole padded grid, sequentially.
func runAll(fn Func, c *Constants, a *Args) {
	g := parallel.NewGrid(c.Width, c.Height, c.Tile)
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			fn(c, a, x, y)
		}
	}
}

func TestRegistry(t *testing.T) {
	for id := ID(0); id < Count; id++ {
		name := id.Name()
		if name == "" {
			t.Fatalf("kernel %d has no name", id)
		}
		if _, ok := Lookup(name); !ok {
			t.Errorf("Lookup(%q) failed", name)
		}
	}
	if _, ok := Lookup("libwarp_missing"); ok {
		t.Error("Lookup of unknown name succeeded")
	}
	if Count.Name() != "" || ID(-1).Name() != "" {
		t.Error("out of range ID has a name")
	}
	names := Names()
	if len(names) != int(Count) || !sort.StringsAreSorted(names) {
		t.Errorf("Names() = %v", names)
	}
}

func TestEffectiveN(t *testing.T) {
	tests := []struct {
		taps, want int
	}{
		{3, 3},
		{5, 5},
		{9, 11},
		{15, 29},
		{TapCount, 63},
		{25, 25}, // no row below 64 qualifies
	}
	for _, tt := range tests {
		if got := effectiveN(tt.taps); got != tt.want {
			t.Errorf("effectiveN(%d) = %d, want %d", tt.taps, got, tt.want)
		}
	}
}

func TestBlurCoefficients(t *testing.T) {
	w := BlurCoefficients(TapCount)
	if len(w) != TapCount {
		t.Fatalf("len = %d, want %d", len(w), TapCount)
	}
	var sum float64
	for i := range w {
		if w[i] != w[len(w)-1-i] {
			t.Errorf("weights not symmetric at %d: %v vs %v", i, w[i], w[len(w)-1-i])
		}
		sum += float64(w[i])
	}
	if w[0] <= minContribution {
		t.Errorf("outer weight %v below minimum contribution", w[0])
	}
	if w[TapCount/2] <= w[0] {
		t.Error("center weight should dominate")
	}
	if sum > 1 || sum < 0.99 {
		t.Errorf("sum = %v, want in [0.99, 1]", sum)
	}

	three := BlurCoefficients(3)
	if three[0] != 0.25 || three[1] != 0.5 || three[2] != 0.25 {
		t.Errorf("BlurCoefficients(3) = %v", three)
	}
	if BlurCoefficients(0) != nil {
		t.Error("BlurCoefficients(0) should be nil")
	}
}

func TestMirrorIndex(t *testing.T) {
	tests := []struct{ i, n, want int }{
		{-1, 4, 0},
		{-2, 4, 1},
		{0, 4, 0},
		{3, 4, 3},
		{4, 4, 3},
		{5, 4, 2},
		{8, 4, 0},
		{-1, 1, 0},
	}
	for _, tt := range tests {
		if got := mirrorIndex(tt.i, tt.n); got != tt.want {
			t.Errorf("mirrorIndex(%d, %d) = %d, want %d", tt.i, tt.n, got, tt.want)
		}
	}
}

func TestDepthBuffer(t *testing.T) {
	b := NewDepthBuffer(4)
	b.Reset(4)
	if !math.IsInf(float64(b.Load(0)), 1) {
		t.Fatalf("reset depth = %v, want +Inf", b.Load(0))
	}

	var wg sync.WaitGroup
	for i := 100; i > 0; i-- {
		wg.Add(1)
		go func(v float32) {
			defer wg.Done()
			b.Min(1, v)
		}(float32(i) * 0.5)
	}
	wg.Wait()
	if got := b.Load(1); got != 0.5 {
		t.Errorf("Min result = %v, want 0.5", got)
	}

	b.Min(1, float32(math.NaN()))
	if got := b.Load(1); got != 0.5 {
		t.Errorf("NaN replaced depth: %v", got)
	}

	if !b.Claim(2) || b.Claim(2) {
		t.Error("Claim should succeed exactly once")
	}
	b.Reset(4)
	if !b.Claim(2) {
		t.Error("Reset did not clear claims")
	}

	if b.Ensure(2) {
		t.Error("Ensure shrank the buffer")
	}
	if !b.Ensure(16) || b.Len() != 16 {
		t.Errorf("Ensure(16) len = %d", b.Len())
	}
}

// towards returns the 3D motion that moves pixel (sx, sy) at depth sd onto
// the view ray of pixel (dx, dy), keeping its depth.
func towards(p *camera.Projection, sx, sy int, sd float32, dx, dy int) vmath.Vec3 {
	src := p.Reconstruct(sx, sy, sd)
	dst := p.Reconstruct(dx, dy, sd)
	return dst.Sub(src)
}

func TestScatterNearestWins(t *testing.T) {
	s := testSetup(8, 8)
	c := NewConstants(s, parallel.TileSizeDefault)

	color := texture.NewColor(8, 8)
	depth := texture.NewDepth(8, 8)
	depth.Fill(5)
	mot := texture.NewMotion(8, 8)
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			color.SetRGBA(x, y, float32(x)/8, float32(y)/8, 0, 0.5)
		}
	}

	// pixel (2, 2) at depth 1 moves onto (3, 2), which sits at depth 5
	depth.Set(2, 2, 1)
	color.SetRGBA(2, 2, 1, 0, 1, 0.5)
	mot.Set(2, 2, motion.Encode3D(towards(&c.Camera, 2, 2, 1, 3, 2)))

	out := texture.NewColor(8, 8)
	db := NewDepthBuffer(64)
	db.Reset(64)
	a := &Args{Delta: 1, Color: color, Depth: depth, Motion: mot, Output: out, DepthBuffer: db,
		ClearColor: vmath.V4(0.2, 0.2, 0.2, 1)}

	runAll(clearImage, c, a)
	runAll(scatterDepth, c, a)
	runAll(scatterColor, c, a)

	if got := db.Load(2*8 + 3); got != 1 {
		t.Errorf("depth at destination = %v, want 1", got)
	}
	r, g, b, w := out.RGBA(3, 2)
	if r != 1 || g != 0 || b != 1 || w != 1 {
		t.Errorf("destination = %v %v %v %v, want the near source", r, g, b, w)
	}
	r, _, _, w = out.RGBA(2, 2)
	if w != 0 || r != 0.2 {
		t.Errorf("vacated pixel = %v w=%v, want clear color and invalid", r, w)
	}
	if _, _, _, w := out.RGBA(5, 5); w != 1 {
		t.Error("static pixel should map onto itself")
	}

	a.Snapshot = out.Clone()
	a.Stats = &Stats{}
	runAll(fixup, c, a)
	if !out.Valid(2, 2) {
		t.Error("fixup left the vacated pixel invalid")
	}
	if n := a.Stats.Holes.Load(); n != 0 {
		t.Errorf("holes = %d, want 0", n)
	}
}

func TestScatterOffscreenDropped(t *testing.T) {
	s := testSetup(4, 4)
	c := NewConstants(s, parallel.TileSizeDefault)
	depth := texture.NewDepth(4, 4)
	depth.Fill(2)
	mot := texture.NewMotion(4, 4)
	for i := range mot.Pix {
		mot.Pix[i] = motion.Encode3D(vmath.V3(60, 0, 0))
	}
	db := NewDepthBuffer(16)
	db.Reset(16)
	a := &Args{Delta: 1, Color: texture.NewColor(4, 4), Depth: depth, Motion: mot,
		Output: texture.NewColor(4, 4), DepthBuffer: db}
	runAll(scatterDepth, c, a)
	runAll(scatterColor, c, a)
	for i := 0; i < 16; i++ {
		if !math.IsInf(float64(db.Load(i)), 1) {
			t.Fatalf("depth %d written by off-screen source", i)
		}
	}
}

func TestFixup(t *testing.T) {
	c := NewConstants(testSetup(3, 3), parallel.TileSizeDefault)
	img := texture.NewColor(3, 3)
	img.SetRGBA(1, 0, 1, 0, 0, 1) // up
	img.SetRGBA(2, 1, 0, 1, 0, 1) // right
	img.SetRGBA(1, 2, 9, 9, 9, 0) // down, invalid
	img.SetRGBA(0, 1, 0, 0, 1, 1) // left
	a := &Args{Output: img, Snapshot: img.Clone(), Stats: &Stats{}}
	fixup(c, a, 1, 1)

	r, g, b, w := img.RGBA(1, 1)
	third := float32(1.0 / 3.0)
	got := vmath.V4(r, g, b, w)
	if !got.Approx(vmath.V4(third, third, third, 1), 1e-6) {
		t.Errorf("fixup = %+v", got)
	}

	// a lone invalid pixel mirrors onto itself and has no valid neighbour
	single := texture.NewColor(1, 1)
	single.SetRGBA(0, 0, 0.3, 0.3, 0.3, 0)
	c1 := NewConstants(testSetup(1, 1), parallel.TileSizeDefault)
	a1 := &Args{Output: single, Snapshot: single.Clone(), Stats: &Stats{}}
	runAll(fixup, c1, a1)
	if r, _, _, w := single.RGBA(0, 0); r != 0.3 || w != 0 {
		t.Errorf("unfixable pixel changed: r=%v w=%v", r, w)
	}
	if a1.Stats.Holes.Load() != 1 {
		t.Errorf("holes = %d, want 1", a1.Stats.Holes.Load())
	}
}

func TestFixupAllNeighbours(t *testing.T) {
	c := NewConstants(testSetup(3, 3), parallel.TileSizeDefault)
	img := texture.NewColor(3, 3)
	img.SetRGBA(1, 0, 1, 0, 0, 1)
	img.SetRGBA(2, 1, 0, 1, 0, 1)
	img.SetRGBA(1, 2, 0, 0, 1, 1)
	img.SetRGBA(0, 1, 1, 1, 1, 1)
	a := &Args{Output: img, Snapshot: img.Clone(), Stats: &Stats{}}
	fixup(c, a, 1, 1)

	r, g, b, w := img.RGBA(1, 1)
	if got := vmath.V4(r, g, b, w); !got.Approx(vmath.V4(0.5, 0.5, 0.5, 1), 1e-6) {
		t.Errorf("fixup = %+v, want the unweighted average", got)
	}
	if a.Stats.Holes.Load() != 0 {
		t.Errorf("holes = %d, want 0", a.Stats.Holes.Load())
	}
}

func TestResolve(t *testing.T) {
	fp := vmath.V4(1, 0, 0, 1)
	fpl := vmath.V4(0.5, 0, 0, 1)
	bp := vmath.V4(0, 1, 0, 1)
	bpl := vmath.V4(0, 0.5, 0, 1)
	mk := func(valid bool, err, depth, other float32, plain, proj vmath.Vec4) candidate {
		return candidate{valid: valid, err: err, depth: depth, other: other, plain: plain, projected: proj}
	}

	tests := []struct {
		name     string
		fwd, bwd candidate
		want     vmath.Vec4
	}{
		{"same depth lower fwd error", mk(true, 1e-9, 10, 0, fpl, fp), mk(true, 2e-9, 11, 0, bpl, bp), fp},
		{"same depth lower bwd error", mk(true, 3e-9, 10, 0, fpl, fp), mk(true, 2e-9, 11, 0, bpl, bp), bp},
		{"fwd nearer corroborated", mk(true, 0, 5, 5.5, fpl, fp), mk(true, 0, 20, 0, bpl, bp), fp},
		{"fwd nearer disputed", mk(true, 0, 5, 9, fpl, fp), mk(true, 0, 20, 0, bpl, bp), fpl},
		{"bwd nearer corroborated", mk(true, 0, 20, 0, fpl, fp), mk(true, 0, 5, 4, bpl, bp), bp},
		{"bwd nearer disputed", mk(true, 0, 20, 0, fpl, fp), mk(true, 0, 5, 40, bpl, bp), bpl},
		{"only fwd", mk(true, 0, 5, 0, fpl, fp), mk(false, 1, 5, 0, bpl, bp), fpl},
		{"only bwd", mk(false, 1, 5, 0, fpl, fp), mk(true, 0, 5, 0, bpl, bp), bpl},
		{"neither", mk(false, 1, 5, 0, fpl, fp), mk(false, 1, 5, 0, bpl, bp), fpl.Lerp(bpl, 0.25)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := resolve(tt.fwd, tt.bwd, 0.25); got != tt.want {
				t.Errorf("resolve = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestGatherForwardStatic(t *testing.T) {
	c := NewConstants(testSetup(16, 8), parallel.TileSizeDefault)
	color := texture.NewColor(16, 8)
	for y := 0; y < 8; y++ {
		for x := 0; x < 16; x++ {
			color.SetRGBA(x, y, float32(x)/16, float32(y)/8, 0.5, 1)
		}
	}
	out := texture.NewColor(16, 8)
	a := &Args{Delta: 0.5, Color: color, Motion: texture.NewMotion(16, 8), Output: out}
	runAll(gatherForward, c, a)
	for y := 0; y < 8; y++ {
		for x := 0; x < 16; x++ {
			if !colorAt(out, x, y).Approx(colorAt(color, x, y), 1e-4) {
				t.Fatalf("pixel (%d,%d) = %+v, want %+v", x, y, colorAt(out, x, y), colorAt(color, x, y))
			}
		}
	}
}

func TestGatherForwardBlurFallback(t *testing.T) {
	c := NewConstants(testSetup(8, 8), parallel.TileSizeDefault)
	color := texture.NewColor(8, 8)
	color.Fill(0.25, 0.5, 0.75, 1)
	mot := texture.NewMotion(8, 8)
	// motion pushes every search off screen
	for i := range mot.Pix {
		mot.Pix[i] = motion.Encode2D(vmath.V2(0.5, 0))
	}
	out := texture.NewColor(8, 8)
	a := &Args{Delta: 1, Color: color, Motion: mot, Output: out}
	gatherForward(c, a, 1, 4)

	var sum float32
	for _, w := range c.Blur {
		sum += w
	}
	want := vmath.V4(0.25, 0.5, 0.75, 1).Mul((sum + 1) * 0.5)
	if got := colorAt(out, 1, 4); !got.Approx(want, 1e-4) {
		t.Errorf("fallback = %+v, want %+v", got, want)
	}
}

func TestGatherStaticBlend(t *testing.T) {
	c := NewConstants(testSetup(8, 8), parallel.TileSizeDefault)
	prev := texture.NewColor(8, 8)
	prev.Fill(1, 0, 0, 1)
	cur := texture.NewColor(8, 8)
	cur.Fill(0, 0, 1, 1)
	depth := texture.NewDepth(8, 8)
	depth.Fill(10)
	out := texture.NewColor(8, 8)
	a := &Args{
		Delta:               0.5,
		Color:               cur,
		ColorPrev:           prev,
		Depth:               depth,
		DepthPrev:           depth,
		MotionForward:       texture.NewMotion(8, 8),
		MotionBackward:      texture.NewMotion(8, 8),
		MotionDepthForward:  texture.NewMotionDepth(8, 8),
		MotionDepthBackward: texture.NewMotionDepth(8, 8),
		Output:              out,
	}
	runAll(gather, c, a)
	want := vmath.V4(0.5, 0, 0.5, 1)
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			if got := colorAt(out, x, y); !got.Approx(want, 1e-5) {
				t.Fatalf("pixel (%d,%d) = %+v, want %+v", x, y, got, want)
			}
		}
	}
}

// TestGatherNearerMovingSurface covers two valid candidates at different
// depths. The previous frame moves a near surface two pixels right while
// the current frame reports a static far background, so the forward
// candidate is nearer and the current frame's depth at the tip of its
// motion decides between the projected and the plain color.
func TestGatherNearerMovingSurface(t *testing.T) {
	const w, h = 16, 8
	const x, y = 8, 4
	tests := []struct {
		name     string
		tipDepth float32
		want     vmath.Vec4
	}{
		{"corroborated", 5, vmath.V4(0.5, 0, 0.5, 1)},
		{"disputed", 20, vmath.V4(1, 0, 0, 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewConstants(testSetup(w, h), parallel.TileSizeDefault)
			prev := texture.NewColor(w, h)
			prev.Fill(1, 0, 0, 1)
			cur := texture.NewColor(w, h)
			cur.Fill(0, 0, 1, 1)
			depthPrev := texture.NewDepth(w, h)
			depthPrev.Fill(5)
			depth := texture.NewDepth(w, h)
			depth.Fill(20)
			// the forward motion lands one pixel right of (x, y) at delta 0.5
			depth.Set(x+1, y, tt.tipDepth)

			fwd := texture.NewMotion(w, h)
			for i := range fwd.Pix {
				fwd.Pix[i] = motion.Encode2D(vmath.V2(2.0/w, 0))
			}
			out := texture.NewColor(w, h)
			a := &Args{
				Delta:               0.5,
				Color:               cur,
				ColorPrev:           prev,
				Depth:               depth,
				DepthPrev:           depthPrev,
				MotionForward:       fwd,
				MotionBackward:      texture.NewMotion(w, h),
				MotionDepthForward:  texture.NewMotionDepth(w, h),
				MotionDepthBackward: texture.NewMotionDepth(w, h),
				Output:              out,
			}
			gather(c, a, x, y)
			if got := colorAt(out, x, y); !got.Approx(tt.want, 1e-4) {
				t.Errorf("pixel = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestDebugKernels(t *testing.T) {
	c := NewConstants(testSetup(2, 1), parallel.TileSizeDefault)
	out := texture.NewColor(2, 1)

	depth := texture.NewDepth(2, 1)
	depth.Set(0, 0, 2.25)
	runAll(debugDepth, c, &Args{Depth: depth, Output: out})
	if r, g, _, w := out.RGBA(0, 0); r != 0.25 || g != 0.25 || w != 1 {
		t.Errorf("depth view = %v %v w=%v", r, g, w)
	}

	m2 := texture.NewMotion(2, 1)
	m2.Set(0, 0, motion.Encode2D(vmath.V2(0.1, -0.2)))
	runAll(debugMotion2D, c, &Args{Motion: m2, Output: out})
	r, g, b, _ := out.RGBA(0, 0)
	if !vmath.V3(r, g, b).Approx(vmath.V3(0.1, 0.2, 0), 1e-4) {
		t.Errorf("motion 2D view = %v %v %v", r, g, b)
	}

	m3 := texture.NewMotion(2, 1)
	m3.Set(0, 0, motion.Encode3D(vmath.V3(32, 0, -16)))
	runAll(debugMotion3D, c, &Args{Motion: m3, Output: out})
	r, g, b, _ = out.RGBA(0, 0)
	if !vmath.V3(r, g, b).Approx(vmath.V3(0.5, 0, 0.25), 0.01) {
		t.Errorf("motion 3D view = %v %v %v", r, g, b)
	}

	md := texture.NewMotionDepth(2, 1)
	runAll(debugMotionDepth, c, &Args{MotionDepth: md, Output: out})
	r, g, _, w := out.RGBA(1, 0)
	if w != 1 || r < 0 || r > 1.01 || g < 0 || g > 1.01 {
		t.Errorf("motion depth view = %v %v w=%v", r, g, w)
	}
}
