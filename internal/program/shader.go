// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package program

import (
	_ "embed"
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"
	"text/template"

	"github.com/gogpu/naga"

	"github.com/gogpu/warp/internal/camera"
	"github.com/gogpu/warp/internal/kernels"
	"github.com/gogpu/warp/internal/vmath"
)

//go:embed shaders/warp.wgsl
var warpShaderWGSL string

var warpShader = template.Must(template.New("warp.wgsl").
	Funcs(template.FuncMap{"f32": formatF32}).
	Parse(warpShaderWGSL))

// shaderParams are the literals substituted into the shader source.
type shaderParams struct {
	Width, Height    uint32
	ScreenSize       vmath.Vec2
	InvScreenSize    vmath.Vec2
	Near, Far        float32
	DepthType        uint32
	Terms            camera.Terms
	TileX, TileY     int
	SearchIterations int
	ScreenEpsilonSq  float32
	DepthEpsilon     float32
	Log2Range        float32
	Blur             []float32
	BlurOverlap      int
}

// formatF32 renders f as a WGSL float literal.
func formatF32(f float32) string {
	if math.IsInf(float64(f), 0) || math.IsNaN(float64(f)) {
		return "0.0"
	}
	s := strconv.FormatFloat(float64(f), 'g', -1, 32)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

// GenerateShader returns the WGSL source of all kernels specialized for c.
func GenerateShader(c *kernels.Constants) (string, error) {
	p := shaderParams{
		Width:            c.Setup.Width,
		Height:           c.Setup.Height,
		ScreenSize:       c.Camera.ScreenSize,
		InvScreenSize:    c.Camera.InvScreenSize,
		Near:             c.Camera.Near,
		Far:              c.Camera.Far,
		DepthType:        uint32(c.Camera.DepthType),
		Terms:            c.Camera.Terms(),
		TileX:            c.Tile.X,
		TileY:            c.Tile.Y,
		SearchIterations: kernels.SearchIterations,
		ScreenEpsilonSq:  kernels.ScreenEpsilon * kernels.ScreenEpsilon,
		DepthEpsilon:     kernels.DepthEpsilon,
		Log2Range:        float32(math.Log2(65)),
		Blur:             c.Blur,
		BlurOverlap:      len(c.Blur) / 2,
	}
	var sb strings.Builder
	if err := warpShader.Execute(&sb, p); err != nil {
		return "", fmt.Errorf("%w: generate shader: %w", ErrCompilation, err)
	}
	return sb.String(), nil
}

// CompileShader generates and compiles the shader module for c.
func CompileShader(c *kernels.Constants) ([]uint32, error) {
	src, err := GenerateShader(c)
	if err != nil {
		return nil, err
	}
	spirvBytes, err := naga.Compile(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCompilation, err)
	}
	if len(spirvBytes)%4 != 0 {
		return nil, fmt.Errorf("%w: SPIR-V length %d is not word aligned", ErrCompilation, len(spirvBytes))
	}

	// SPIR-V is little-endian 32-bit words
	words := make([]uint32, len(spirvBytes)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(spirvBytes[i*4:])
	}
	slogger().Debug("program: shader compiled", "setup", c.Setup.String(), "words", len(words))
	return words, nil
}

const (
	spirvMagic        = 0x07230203
	spirvHeaderWords  = 5
	opEntryPoint      = 15
	entryPointNameOff = 3
)

// EntryPoints lists the entry point names declared in a SPIR-V module.
func EntryPoints(words []uint32) []string {
	if len(words) < spirvHeaderWords || words[0] != spirvMagic {
		return nil
	}
	var names []string
	for i := spirvHeaderWords; i < len(words); {
		count := int(words[i] >> 16)
		op := words[i] & 0xFFFF
		if count == 0 || i+count > len(words) {
			break
		}
		if op == opEntryPoint && count > entryPointNameOff {
			names = append(names, literalString(words[i+entryPointNameOff:i+count]))
		}
		i += count
	}
	return names
}

// literalString decodes a nul-terminated SPIR-V string literal.
func literalString(words []uint32) string {
	var sb strings.Builder
	for _, w := range words {
		for shift := 0; shift < 32; shift += 8 {
			b := byte(w >> shift)
			if b == 0 {
				return sb.String()
			}
			sb.WriteByte(b)
		}
	}
	return sb.String()
}
