package parallel

import (
	"testing"
)

// =============================================================================
// Component Benchmarks - Grid
// =============================================================================

// BenchmarkGrid_Tiles_HD benchmarks building the work-group list for HD.
func BenchmarkGrid_Tiles_HD(b *testing.B) {
	g := NewGrid(1920, 1080, TileSizeDefault)

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		_ = g.Tiles()
	}
}

// BenchmarkGrid_Tiles_4K benchmarks building the work-group list for 4K.
func BenchmarkGrid_Tiles_4K(b *testing.B) {
	g := NewGrid(3840, 2160, TileSizeLarge)

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		_ = g.Tiles()
	}
}

// =============================================================================
// Component Benchmarks - WorkerPool
// =============================================================================

// BenchmarkWorkerPool_Create benchmarks creating a worker pool.
func BenchmarkWorkerPool_Create(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		pool := NewWorkerPool(0) // Use GOMAXPROCS
		pool.Close()
	}
}

// BenchmarkWorkerPool_ExecuteAll_10 benchmarks executing 10 work items.
func BenchmarkWorkerPool_ExecuteAll_10(b *testing.B) {
	pool := NewWorkerPool(0)
	defer pool.Close()

	work := make([]func(), 10)
	for i := range work {
		work[i] = func() {
			// Minimal work
		}
	}

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		pool.ExecuteAll(work)
	}
}

// BenchmarkWorkerPool_ExecuteAll_100 benchmarks executing 100 work items.
func BenchmarkWorkerPool_ExecuteAll_100(b *testing.B) {
	pool := NewWorkerPool(0)
	defer pool.Close()

	work := make([]func(), 100)
	for i := range work {
		work[i] = func() {
			// Minimal work
		}
	}

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		pool.ExecuteAll(work)
	}
}

// BenchmarkWorkerPool_ExecuteAll_1000 benchmarks executing 1000 work items.
func BenchmarkWorkerPool_ExecuteAll_1000(b *testing.B) {
	pool := NewWorkerPool(0)
	defer pool.Close()

	work := make([]func(), 1000)
	for i := range work {
		work[i] = func() {
			// Minimal work
		}
	}

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		pool.ExecuteAll(work)
	}
}

// BenchmarkWorkerPool_ExecuteAll_WithWork benchmarks executing with actual workload.
func BenchmarkWorkerPool_ExecuteAll_WithWork(b *testing.B) {
	pool := NewWorkerPool(0)
	defer pool.Close()

	// One full RGBA32F tile per item
	buffers := make([][]float32, 100)
	for i := range buffers {
		buffers[i] = make([]float32, TileSizeDefault.Invocations()*4)
	}

	work := make([]func(), 100)
	for i := range work {
		buf := buffers[i]
		work[i] = func() {
			// Simulate clear operation
			clear(buf)
		}
	}

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		pool.ExecuteAll(work)
	}
}

// =============================================================================
// Hot Path Benchmarks - Dispatch
// =============================================================================

func benchmarkDispatch(b *testing.B, width, height int, tile TileSize) {
	pool := NewWorkerPool(0)
	defer pool.Close()

	g := NewGrid(width, height, tile)
	out := make([]float32, g.Width*g.Height)

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		Dispatch(pool, g, func(x, y int) {
			out[y*g.Width+x] = float32(x ^ y)
		})
	}
}

// BenchmarkDispatch_HD_Default benchmarks a trivial kernel over HD with 32x16 tiles.
func BenchmarkDispatch_HD_Default(b *testing.B) {
	benchmarkDispatch(b, 1920, 1080, TileSizeDefault)
}

// BenchmarkDispatch_HD_Large benchmarks a trivial kernel over HD with 32x32 tiles.
func BenchmarkDispatch_HD_Large(b *testing.B) {
	benchmarkDispatch(b, 1920, 1080, TileSizeLarge)
}

// BenchmarkDispatch_4K_Default benchmarks a trivial kernel over 4K.
func BenchmarkDispatch_4K_Default(b *testing.B) {
	benchmarkDispatch(b, 3840, 2160, TileSizeDefault)
}
