//go:build !nogpu

package gpu

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/warp/device"
	"github.com/gogpu/warp/internal/parallel"
)

// minBufferSize keeps bindings of absent textures valid.
const minBufferSize = 16

// waitTimeout bounds the fence wait of one dispatch.
const waitTimeout = 5 * time.Second

// Queue implements device.ShaderQueue. The shader module, its layouts and
// one pipeline per entry point are cached until a different module is run.
type Queue struct {
	device hal.Device
	queue  hal.Queue
	pool   *parallel.WorkerPool

	mu         sync.Mutex
	module     *uint32
	kinds      []device.BindingKind
	shader     hal.ShaderModule
	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	pipelines  map[string]hal.ComputePipeline
}

var _ device.ShaderQueue = (*Queue)(nil)

// Execute runs kernel on the host pool, for units without a shader module.
func (q *Queue) Execute(label string, grid device.Grid, kernel func(x, y int)) {
	device.Logger().Debug("warp: host fallback dispatch",
		slog.String("kernel", label),
		slog.Int("grid_w", grid.Width),
		slog.Int("grid_h", grid.Height))
	parallel.Dispatch(q.pool, grid, kernel)
}

// RunShader dispatches entry of module with one work-group per grid tile
// and copies BindReadWrite bindings back into their Data.
func (q *Queue) RunShader(entry string, module []uint32, grid device.Grid, bindings []device.Binding) error {
	if len(module) == 0 {
		return fmt.Errorf("%w: %s: empty shader module", device.ErrDispatch, entry)
	}
	q.mu.Lock()
	defer q.mu.Unlock()

	pipeline, err := q.pipeline(entry, module, bindings)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", device.ErrDispatch, entry, err)
	}

	buffers, err := q.upload(bindings)
	defer q.destroyBuffers(buffers)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", device.ErrDispatch, entry, err)
	}

	entries := make([]gputypes.BindGroupEntry, len(bindings))
	for i, b := range buffers {
		entries[i] = gputypes.BindGroupEntry{
			Binding:  uint32(i), //nolint:gosec // binding count is small
			Resource: gputypes.BufferBinding{Buffer: b.buffer.NativeHandle(), Offset: 0, Size: b.size},
		}
	}
	bg, err := q.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:   "warp_bind_group",
		Layout:  q.bindLayout,
		Entries: entries,
	})
	if err != nil {
		return fmt.Errorf("%w: %s: create bind group: %w", device.ErrDispatch, entry, err)
	}
	defer q.device.DestroyBindGroup(bg)

	if err := q.submit(entry, pipeline, bg, grid, buffers); err != nil {
		return fmt.Errorf("%w: %s: %w", device.ErrDispatch, entry, err)
	}

	for i, b := range buffers {
		if b.staging == nil {
			continue
		}
		readback := make([]byte, b.size)
		if err := q.queue.ReadBuffer(b.staging, 0, readback); err != nil {
			return fmt.Errorf("%w: %s: readback: %w", device.ErrDispatch, entry, err)
		}
		copy(bindings[i].Data, readback)
	}

	device.Logger().Debug("warp: gpu dispatch",
		slog.String("kernel", entry),
		slog.Int("groups_x", grid.TilesX()),
		slog.Int("groups_y", grid.TilesY()))
	return nil
}

func (q *Queue) submit(entry string, pipeline hal.ComputePipeline, bg hal.BindGroup,
	grid device.Grid, buffers []boundBuffer,
) error {
	encoder, err := q.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "warp_encoder"})
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding(entry); err != nil {
		return fmt.Errorf("begin encoding: %w", err)
	}

	pass := encoder.BeginComputePass(&hal.ComputePassDescriptor{Label: entry})
	pass.SetPipeline(pipeline)
	pass.SetBindGroup(0, bg, nil)
	pass.Dispatch(uint32(grid.TilesX()), uint32(grid.TilesY()), 1) //nolint:gosec // grid fits uint32
	pass.End()

	for _, b := range buffers {
		if b.staging == nil {
			continue
		}
		encoder.CopyBufferToBuffer(b.buffer, b.staging, []hal.BufferCopy{
			{SrcOffset: 0, DstOffset: 0, Size: b.size},
		})
	}

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("end encoding: %w", err)
	}
	defer q.device.FreeCommandBuffer(cmdBuf)

	fence, err := q.device.CreateFence()
	if err != nil {
		return fmt.Errorf("create fence: %w", err)
	}
	defer q.device.DestroyFence(fence)
	if err := q.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	ok, err := q.device.Wait(fence, 1, waitTimeout)
	if err != nil || !ok {
		return fmt.Errorf("wait for GPU: ok=%v err=%w", ok, err)
	}
	return nil
}

// boundBuffer is the device copy of one binding. staging is set for
// BindReadWrite bindings only.
type boundBuffer struct {
	buffer  hal.Buffer
	staging hal.Buffer
	size    uint64
}

// upload creates one buffer per binding and writes its data. The returned
// slice holds everything created so far, also on error.
func (q *Queue) upload(bindings []device.Binding) ([]boundBuffer, error) {
	buffers := make([]boundBuffer, 0, len(bindings))
	for i, b := range bindings {
		size := bufferSize(len(b.Data))
		usage := gputypes.BufferUsageStorage | gputypes.BufferUsageCopyDst
		switch b.Kind {
		case device.BindUniform:
			usage = gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst
		case device.BindReadWrite:
			usage |= gputypes.BufferUsageCopySrc
		}
		buf, err := q.device.CreateBuffer(&hal.BufferDescriptor{
			Label: fmt.Sprintf("warp_binding_%d", i),
			Size:  size,
			Usage: usage,
		})
		if err != nil {
			return buffers, fmt.Errorf("create buffer %d: %w", i, err)
		}
		bb := boundBuffer{buffer: buf, size: size}
		if b.Kind == device.BindReadWrite {
			staging, err := q.device.CreateBuffer(&hal.BufferDescriptor{
				Label: fmt.Sprintf("warp_staging_%d", i),
				Size:  size,
				Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
			})
			if err != nil {
				buffers = append(buffers, bb)
				return buffers, fmt.Errorf("create staging buffer %d: %w", i, err)
			}
			bb.staging = staging
		}
		buffers = append(buffers, bb)

		if len(b.Data) > 0 {
			q.queue.WriteBuffer(buf, 0, padded(b.Data, size))
		}
	}
	return buffers, nil
}

func (q *Queue) destroyBuffers(buffers []boundBuffer) {
	for _, b := range buffers {
		if b.staging != nil {
			q.device.DestroyBuffer(b.staging)
		}
		q.device.DestroyBuffer(b.buffer)
	}
}

// bufferSize rounds n up to whole words, at least minBufferSize bytes.
func bufferSize(n int) uint64 {
	return uint64(max(parallel.RoundUp(n, 4), minBufferSize)) //nolint:gosec // n is a byte length
}

// padded returns data extended with zeros to size bytes.
func padded(data []byte, size uint64) []byte {
	if uint64(len(data)) == size {
		return data
	}
	p := make([]byte, size)
	copy(p, data)
	return p
}

// pipeline returns the compute pipeline of entry, rebuilding the cached
// module and layouts when module or the binding kinds changed.
func (q *Queue) pipeline(entry string, module []uint32, bindings []device.Binding) (hal.ComputePipeline, error) {
	kinds := make([]device.BindingKind, len(bindings))
	for i, b := range bindings {
		kinds[i] = b.Kind
	}
	if q.module != &module[0] || !slices.Equal(q.kinds, kinds) {
		q.release()
		if err := q.load(module, kinds); err != nil {
			q.release()
			return nil, err
		}
	}
	if p, ok := q.pipelines[entry]; ok {
		return p, nil
	}
	p, err := q.device.CreateComputePipeline(&hal.ComputePipelineDescriptor{
		Label:   entry,
		Layout:  q.pipeLayout,
		Compute: hal.ComputeState{Module: q.shader, EntryPoint: entry},
	})
	if err != nil {
		return nil, fmt.Errorf("create pipeline: %w", err)
	}
	q.pipelines[entry] = p
	return p, nil
}

func (q *Queue) load(module []uint32, kinds []device.BindingKind) error {
	shader, err := q.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "warp_shader",
		Source: hal.ShaderSource{SPIRV: module},
	})
	if err != nil {
		return fmt.Errorf("create shader module: %w", err)
	}
	q.shader = shader

	entries := make([]gputypes.BindGroupLayoutEntry, len(kinds))
	for i, k := range kinds {
		typ := gputypes.BufferBindingTypeReadOnlyStorage
		switch k {
		case device.BindUniform:
			typ = gputypes.BufferBindingTypeUniform
		case device.BindReadWrite:
			typ = gputypes.BufferBindingTypeStorage
		}
		entries[i] = gputypes.BindGroupLayoutEntry{
			Binding:    uint32(i), //nolint:gosec // binding count is small
			Visibility: gputypes.ShaderStageCompute,
			Buffer:     &gputypes.BufferBindingLayout{Type: typ},
		}
	}
	bindLayout, err := q.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label:   "warp_bind_layout",
		Entries: entries,
	})
	if err != nil {
		return fmt.Errorf("create bind group layout: %w", err)
	}
	q.bindLayout = bindLayout

	pipeLayout, err := q.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "warp_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{bindLayout},
	})
	if err != nil {
		return fmt.Errorf("create pipeline layout: %w", err)
	}
	q.pipeLayout = pipeLayout
	q.module = &module[0]
	q.kinds = kinds
	return nil
}

// release destroys the cached module, layouts and pipelines.
func (q *Queue) release() {
	for entry, p := range q.pipelines {
		q.device.DestroyComputePipeline(p)
		delete(q.pipelines, entry)
	}
	if q.pipeLayout != nil {
		q.device.DestroyPipelineLayout(q.pipeLayout)
		q.pipeLayout = nil
	}
	if q.bindLayout != nil {
		q.device.DestroyBindGroupLayout(q.bindLayout)
		q.bindLayout = nil
	}
	if q.shader != nil {
		q.device.DestroyShaderModule(q.shader)
		q.shader = nil
	}
	q.module = nil
	q.kinds = nil
}

// Pipelines returns the number of cached compute pipelines.
func (q *Queue) Pipelines() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pipelines)
}

// Close destroys the cached GPU objects.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.release()
}
