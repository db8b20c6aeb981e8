// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package program

import (
	"errors"
	"fmt"

	"github.com/gogpu/warp/internal/camera"
	"github.com/gogpu/warp/internal/kernels"
	"github.com/gogpu/warp/internal/parallel"
)

// Errors returned while building units.
var (
	ErrInvalidScreen  = errors.New("program: invalid screen dimensions")
	ErrCompilation    = errors.New("program: compilation failed")
	ErrKernelNotFound = errors.New("program: kernel not found")
)

// Unit is a compiled program: all kernels specialized for one setup.
type Unit struct {
	Constants *kernels.Constants
	kernels   [kernels.Count]kernels.Func

	// SPIRV is the compiled shader module, nil unless shader emission is
	// enabled.
	SPIRV []uint32
}

// Setup returns the camera setup the unit was built for.
func (u *Unit) Setup() camera.Setup { return u.Constants.Setup }

// Kernel returns the kernel with the given ID.
func (u *Unit) Kernel(id kernels.ID) kernels.Func {
	if id < 0 || id >= kernels.Count {
		return nil
	}
	return u.kernels[id]
}

// Compiler builds units.
type Compiler interface {
	Compile(s camera.Setup, tile parallel.TileSize) (*Unit, error)
}

// HostCompiler builds units that run on the host. Kernels are resolved by
// entry point name through Lookup.
type HostCompiler struct {
	// Lookup resolves an entry point. Defaults to kernels.Lookup.
	Lookup func(name string) (kernels.Func, bool)

	// EmitShaders enables WGSL generation and SPIR-V compilation.
	EmitShaders bool
}

// Compile specializes every kernel for s. A kernel that cannot be resolved
// fails the whole unit.
func (hc *HostCompiler) Compile(s camera.Setup, tile parallel.TileSize) (*Unit, error) {
	if !s.HasValidScreen() {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidScreen, s.Width, s.Height)
	}
	lookup := hc.Lookup
	if lookup == nil {
		lookup = kernels.Lookup
	}

	u := &Unit{Constants: kernels.NewConstants(s, tile)}
	if hc.EmitShaders {
		spirv, err := CompileShader(u.Constants)
		if err != nil {
			return nil, err
		}
		present := make(map[string]bool)
		for _, name := range EntryPoints(spirv) {
			present[name] = true
		}
		for id := kernels.ID(0); id < kernels.Count; id++ {
			if !present[id.Name()] {
				return nil, fmt.Errorf("%w: %s missing from shader module", ErrKernelNotFound, id.Name())
			}
		}
		u.SPIRV = spirv
	}

	for id := kernels.ID(0); id < kernels.Count; id++ {
		fn, ok := lookup(id.Name())
		if !ok || fn == nil {
			return nil, fmt.Errorf("%w: %s", ErrKernelNotFound, id.Name())
		}
		u.kernels[id] = fn
	}
	return u, nil
}
