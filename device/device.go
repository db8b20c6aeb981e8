// Package device models the compute backend warp kernels run on: a context
// that hands out devices, devices that report their limits and create
// queues, and queues that execute a kernel over a 2D grid.
//
// The host (CPU) implementation lives here. Package device/gpu runs the
// compiled SPIR-V module on a wgpu HAL device; its queues implement
// ShaderQueue.
package device

import (
	"errors"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/warp/internal/parallel"
)

// Errors returned while setting up a compute backend.
var (
	ErrNoContext = errors.New("device: no compute context")
	ErrNoDevice  = errors.New("device: no compute device")
	ErrNoQueue   = errors.New("device: failed to create queue")
	ErrInit      = errors.New("device: backend initialization failed")
	ErrDispatch  = errors.New("device: dispatch failed")
)

// Type identifies the kind of compute device.
type Type int

const (
	// TypeHost executes kernels on CPU goroutines.
	TypeHost Type = iota
	// TypeGPU executes kernels on a GPU.
	TypeGPU
)

func (t Type) String() string {
	if t == TypeHost {
		return "host"
	}
	return "gpu"
}

// TileSize is the work-group size of a dispatch.
type TileSize = parallel.TileSize

// Grid is the global invocation space of a dispatch, the screen rounded up
// to whole tiles.
type Grid = parallel.Grid

// Info describes a device.
type Info struct {
	Name   string
	Type   Type
	Limits gputypes.Limits
}

// Context is the entry point of a compute backend.
type Context interface {
	// Init prepares the backend. It is called once before any device is
	// requested and may be called again after a failed attempt.
	Init() error
	// FastestDevice returns the preferred device, or nil if there is none.
	FastestDevice() Device
	// Close releases backend resources.
	Close()
}

// Device is a compute device.
type Device interface {
	Info() Info
	CreateQueue() (Queue, error)
}

// Queue executes kernels. Execute must not return before every invocation
// of the grid has completed, so consecutive dispatches observe each other's
// writes.
type Queue interface {
	Execute(label string, grid Grid, kernel func(x, y int))
	Close()
}

// BindingKind is the access a shader has to a bound buffer.
type BindingKind int

const (
	// BindUniform is a read-only uniform buffer.
	BindUniform BindingKind = iota
	// BindRead is a read-only storage buffer.
	BindRead
	// BindReadWrite is a storage buffer whose contents are copied back into
	// Data once the dispatch completes.
	BindReadWrite
)

// Binding is one buffer of a shader dispatch, bound at its index in the
// bindings slice.
type Binding struct {
	Kind BindingKind
	Data []byte
}

// ShaderQueue is a queue that can run an entry point of a compiled SPIR-V
// module. RunShader dispatches one work-group per grid tile and does not
// return before BindReadWrite bindings hold the results.
type ShaderQueue interface {
	Queue
	RunShader(entry string, module []uint32, grid Grid, bindings []Binding) error
}

// SelectTileSize picks the work-group size for a device: 32x32 when the
// device supports 1024 invocations per group with at least 32 in x and y,
// otherwise 32x16. Host devices always use the default, the host scheduler
// gains nothing from larger groups.
func SelectTileSize(info Info) TileSize {
	lim := info.Limits
	if info.Type != TypeHost &&
		lim.MaxComputeInvocationsPerWorkgroup == 1024 &&
		lim.MaxComputeWorkgroupSizeX >= 32 &&
		lim.MaxComputeWorkgroupSizeY >= 32 {
		return parallel.TileSizeLarge
	}
	return parallel.TileSizeDefault
}
