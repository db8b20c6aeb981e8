package parallel

import (
	"sync"
	"testing"
)

func TestRoundUp(t *testing.T) {
	tests := []struct{ v, m, want int }{
		{0, 16, 0},
		{1, 16, 16},
		{16, 16, 16},
		{17, 16, 32},
		{720, 16, 720},
		{1080, 32, 1088},
	}
	for _, tt := range tests {
		if got := RoundUp(tt.v, tt.m); got != tt.want {
			t.Errorf("RoundUp(%d, %d) = %d, want %d", tt.v, tt.m, got, tt.want)
		}
	}
}

func TestTileSize_Divides(t *testing.T) {
	if !TileSizeDefault.Divides(1280, 720) {
		t.Error("32x16 should divide 1280x720")
	}
	if TileSizeLarge.Divides(1920, 1080) {
		t.Error("32x32 should not divide 1920x1080")
	}
}

func TestNewGrid(t *testing.T) {
	g := NewGrid(100, 50, TileSizeDefault)
	if g.Width != 128 || g.Height != 64 {
		t.Errorf("grid = %dx%d, want 128x64", g.Width, g.Height)
	}
	if g.TilesX() != 4 || g.TilesY() != 4 || g.TileCount() != 16 {
		t.Errorf("tiles = %dx%d (%d), want 4x4 (16)", g.TilesX(), g.TilesY(), g.TileCount())
	}

	last := g.TileAt(3, 3)
	if last.OriginX != 96 || last.OriginY != 48 || last.Width != 32 || last.Height != 16 {
		t.Errorf("TileAt(3,3) = %+v", last)
	}
	if !last.Contains(127, 63) || last.Contains(128, 63) {
		t.Error("Contains() mismatch at grid edge")
	}
}

func TestNewGrid_Empty(t *testing.T) {
	for _, g := range []Grid{
		NewGrid(0, 10, TileSizeDefault),
		NewGrid(10, 0, TileSizeDefault),
		NewGrid(10, 10, TileSize{}),
	} {
		if g.TileCount() != 0 {
			t.Errorf("TileCount() = %d, want 0", g.TileCount())
		}
	}
}

func TestDispatch_VisitsEveryInvocationOnce(t *testing.T) {
	pool := NewWorkerPool(4)
	defer pool.Close()

	g := NewGrid(70, 33, TileSize{X: 8, Y: 8})
	var mu sync.Mutex
	seen := make(map[[2]int]int)
	Dispatch(pool, g, func(x, y int) {
		mu.Lock()
		seen[[2]int{x, y}]++
		mu.Unlock()
	})

	if want := g.Width * g.Height; len(seen) != want {
		t.Fatalf("visited %d invocations, want %d", len(seen), want)
	}
	for c, n := range seen {
		if n != 1 {
			t.Errorf("invocation %v visited %d times", c, n)
		}
	}
	// The overhang past the real screen is part of the grid.
	if seen[[2]int{71, 39}] != 1 {
		t.Error("overhang invocation (71,39) not dispatched")
	}
}
