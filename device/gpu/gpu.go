//go:build !nogpu

// Package gpu runs warp programs on a GPU through the wgpu HAL.
//
// A Context opens the first discrete or integrated adapter of a HAL backend
// (Vulkan by default). Its queues implement device.ShaderQueue: they load
// the SPIR-V module of a compiled unit and dispatch its entry points. Units
// compiled without a shader module fall back to the host worker pool.
//
// Usage:
//
//	w := warp.New(warp.WithContext(gpu.NewContext(0)), warp.WithShaderEmission(true))
package gpu

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	_ "github.com/gogpu/wgpu/hal/vulkan" // register the Vulkan backend

	"github.com/gogpu/warp/device"
	"github.com/gogpu/warp/internal/parallel"
)

// Errors returned by Init.
var (
	ErrUnavailable = errors.New("gpu: backend not available")
	ErrNoAdapter   = errors.New("gpu: no adapters found")
)

// storageBindings is the number of storage buffers the warp shader binds.
const storageBindings = 12

// Backend creates HAL instances. Registered HAL backends and noop.API
// satisfy it.
type Backend interface {
	CreateInstance(desc *hal.InstanceDescriptor) (hal.Instance, error)
}

// Context is a device.Context on a HAL backend.
type Context struct {
	backend Backend
	workers int

	mu       sync.Mutex
	instance hal.Instance
	dev      *Device
}

// NewContext creates a context on the Vulkan backend. workers sizes the
// host pool used for units without a shader module (0 means GOMAXPROCS).
func NewContext(workers int) *Context {
	return &Context{workers: workers}
}

// NewContextWithBackend creates a context on the given backend.
func NewContextWithBackend(b Backend, workers int) *Context {
	return &Context{backend: b, workers: workers}
}

// Init opens the device. It is a no-op when already initialized.
func (c *Context) Init() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.dev != nil {
		return nil
	}

	backend := c.backend
	if backend == nil {
		b, ok := hal.GetBackend(gputypes.BackendVulkan)
		if !ok {
			return fmt.Errorf("%w: vulkan", ErrUnavailable)
		}
		backend = b
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return fmt.Errorf("create instance: %w", err)
	}

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return ErrNoAdapter
	}
	var selected *hal.ExposedAdapter
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	if selected == nil {
		selected = &adapters[0]
	}

	// Ask for 32x32 work-groups first, then settle for 32x16.
	limits := requiredLimits(parallel.TileSizeLarge)
	openDev, err := selected.Adapter.Open(gputypes.Features(0), limits)
	if err != nil {
		limits = requiredLimits(parallel.TileSizeDefault)
		openDev, err = selected.Adapter.Open(gputypes.Features(0), limits)
	}
	if err != nil {
		instance.Destroy()
		return fmt.Errorf("open device: %w", err)
	}

	c.instance = instance
	c.dev = &Device{
		info: device.Info{
			Name:   selected.Info.Name,
			Type:   device.TypeGPU,
			Limits: limits,
		},
		device: openDev.Device,
		queue:  openDev.Queue,
		pool:   parallel.NewWorkerPool(c.workers),
	}
	device.Logger().Info("warp: gpu compute initialized",
		slog.String("adapter", selected.Info.Name),
		slog.Int("invocations", int(limits.MaxComputeInvocationsPerWorkgroup)))
	return nil
}

// requiredLimits returns the WebGPU defaults raised to what the warp
// shader needs with work-groups of the given tile size.
func requiredLimits(tile parallel.TileSize) gputypes.Limits {
	l := gputypes.DefaultLimits()
	l.MaxStorageBuffersPerShaderStage = max(l.MaxStorageBuffersPerShaderStage, storageBindings)
	l.MaxComputeInvocationsPerWorkgroup = uint32(tile.Invocations()) //nolint:gosec // tile sizes are small constants
	l.MaxComputeWorkgroupSizeX = max(l.MaxComputeWorkgroupSizeX, uint32(tile.X))
	l.MaxComputeWorkgroupSizeY = max(l.MaxComputeWorkgroupSizeY, uint32(tile.Y))
	return l
}

// FastestDevice returns the opened device, or nil before Init.
func (c *Context) FastestDevice() device.Device {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.dev == nil {
		return nil
	}
	return c.dev
}

// Close destroys the device and the instance.
func (c *Context) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.dev != nil {
		c.dev.pool.Close()
		c.dev.device.Destroy()
		c.dev = nil
	}
	if c.instance != nil {
		c.instance.Destroy()
		c.instance = nil
	}
}

// Device is an opened HAL device.
type Device struct {
	info   device.Info
	device hal.Device
	queue  hal.Queue
	pool   *parallel.WorkerPool
}

// Info returns the device description.
func (d *Device) Info() device.Info {
	return d.info
}

// CreateQueue returns a queue submitting to the device's queue.
func (d *Device) CreateQueue() (device.Queue, error) {
	if d.device == nil || d.queue == nil || !d.pool.IsRunning() {
		return nil, device.ErrNoQueue
	}
	return &Queue{
		device:    d.device,
		queue:     d.queue,
		pool:      d.pool,
		pipelines: make(map[string]hal.ComputePipeline),
	}, nil
}
