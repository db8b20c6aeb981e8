package device

import (
	"log/slog"
	"runtime"
	"sync"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/warp/internal/parallel"
)

// HostContext runs kernels on a goroutine worker pool.
type HostContext struct {
	workers int

	mu   sync.Mutex
	pool *parallel.WorkerPool
	dev  *HostDevice
}

// NewHostContext creates a host context using the given number of workers
// (0 means GOMAXPROCS).
func NewHostContext(workers int) *HostContext {
	return &HostContext{workers: workers}
}

// Init starts the worker pool. It is a no-op when already initialized.
func (c *HostContext) Init() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pool != nil {
		return nil
	}
	c.pool = parallel.NewWorkerPool(c.workers)

	limits := gputypes.DefaultLimits()
	// the host has no work-group limits of its own, report what it will use
	limits.MaxComputeWorkgroupSizeX = uint32(parallel.TileSizeDefault.X)
	limits.MaxComputeWorkgroupSizeY = uint32(parallel.TileSizeDefault.Y)
	limits.MaxComputeInvocationsPerWorkgroup = uint32(parallel.TileSizeDefault.Invocations())

	c.dev = &HostDevice{
		info: Info{
			Name:   runtime.GOARCH + " host",
			Type:   TypeHost,
			Limits: limits,
		},
		pool: c.pool,
	}
	slogger().Info("warp: host compute initialized",
		slog.Int("workers", c.pool.Workers()),
		slog.String("device", c.dev.info.Name))
	return nil
}

// FastestDevice returns the host device, or nil before Init.
func (c *HostContext) FastestDevice() Device {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.dev == nil {
		return nil
	}
	return c.dev
}

// Close stops the worker pool.
func (c *HostContext) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pool != nil {
		c.pool.Close()
	}
	c.pool = nil
	c.dev = nil
}

// HostDevice is the CPU device of a HostContext.
type HostDevice struct {
	info Info
	pool *parallel.WorkerPool
}

// Info returns the device description.
func (d *HostDevice) Info() Info {
	return d.info
}

// CreateQueue returns a queue dispatching onto the context's worker pool.
func (d *HostDevice) CreateQueue() (Queue, error) {
	if d.pool == nil || !d.pool.IsRunning() {
		return nil, ErrNoQueue
	}
	return &hostQueue{pool: d.pool}, nil
}

type hostQueue struct {
	pool *parallel.WorkerPool
}

func (q *hostQueue) Execute(label string, grid Grid, kernel func(x, y int)) {
	slogger().Debug("warp: dispatch",
		slog.String("kernel", label),
		slog.Int("grid_w", grid.Width),
		slog.Int("grid_h", grid.Height),
		slog.String("tile", grid.Tile.String()))
	parallel.Dispatch(q.pool, grid, kernel)
}

func (q *hostQueue) Close() {}
