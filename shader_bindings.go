package warp

import (
	"encoding/binary"
	"math"

	"github.com/gogpu/warp/device"
	"github.com/gogpu/warp/internal/kernels"
	"github.com/gogpu/warp/texture"
)

// Binding indices of the warp shader.
const (
	bindParams = iota
	bindColor
	bindDepth
	bindColorPrev
	bindDepthPrev
	bindMotion
	bindMotionBackward
	bindMotionDepthForward
	bindMotionDepthBackward
	bindOutput
	bindDepthBuffer
	bindClaims
	bindSnapshot

	bindCount
)

// paramsSize is the size of the shader's uniform block: delta, three pad
// floats and the clear color.
const paramsSize = 32

// shaderBindings packs a into the buffers of the warp shader. Absent
// textures get empty bindings. n is the screen size in pixels.
func shaderBindings(a *kernels.Args, n int) []device.Binding {
	b := make([]device.Binding, bindCount)
	for i := range b {
		b[i].Kind = device.BindRead
	}

	params := make([]byte, paramsSize)
	binary.LittleEndian.PutUint32(params[0:], math.Float32bits(a.Delta))
	cc := a.ClearColor
	for i, v := range []float32{cc.X, cc.Y, cc.Z, cc.W} {
		binary.LittleEndian.PutUint32(params[16+4*i:], math.Float32bits(v))
	}
	b[bindParams] = device.Binding{Kind: device.BindUniform, Data: params}

	b[bindColor].Data = colorBytes(a.Color)
	b[bindDepth].Data = depthBytes(a.Depth)
	b[bindColorPrev].Data = colorBytes(a.ColorPrev)
	b[bindDepthPrev].Data = depthBytes(a.DepthPrev)

	motion := a.Motion
	if motion == nil {
		motion = a.MotionForward
	}
	b[bindMotion].Data = motionBytes(motion)
	b[bindMotionBackward].Data = motionBytes(a.MotionBackward)

	motionDepth := a.MotionDepthForward
	if motionDepth == nil {
		motionDepth = a.MotionDepth
	}
	b[bindMotionDepthForward].Data = motionDepthBytes(motionDepth)
	b[bindMotionDepthBackward].Data = motionDepthBytes(a.MotionDepthBackward)

	b[bindOutput] = device.Binding{Kind: device.BindReadWrite, Data: colorBytes(a.Output)}
	b[bindDepthBuffer].Kind = device.BindReadWrite
	b[bindClaims].Kind = device.BindReadWrite
	if a.DepthBuffer != nil {
		depth, claims := a.DepthBuffer.Words(n)
		b[bindDepthBuffer].Data = wordBytes(depth)
		b[bindClaims].Data = wordBytes(claims)
	}
	b[bindSnapshot].Data = colorBytes(a.Snapshot)
	return b
}

// readBindings copies the writable bindings back into a.
func readBindings(a *kernels.Args, b []device.Binding, n int) {
	if a.Output != nil {
		putFloats(a.Output.Pix, b[bindOutput].Data)
	}
	if a.DepthBuffer != nil {
		depth, claims := a.DepthBuffer.Words(n)
		putWords(depth, b[bindDepthBuffer].Data)
		putWords(claims, b[bindClaims].Data)
	}
}

func colorBytes(c *texture.Color) []byte {
	if c == nil {
		return nil
	}
	return floatBytes(c.Pix)
}

func depthBytes(d *texture.Depth) []byte {
	if d == nil {
		return nil
	}
	return floatBytes(d.Pix)
}

func motionBytes(m *texture.Motion) []byte {
	if m == nil {
		return nil
	}
	return wordBytes(m.Pix)
}

// motionDepthBytes widens the half-float pairs to the vec2<f32> the shader
// reads.
func motionDepthBytes(m *texture.MotionDepth) []byte {
	if m == nil {
		return nil
	}
	out := make([]byte, 4*len(m.Pix))
	for i, h := range m.Pix {
		binary.LittleEndian.PutUint32(out[4*i:], math.Float32bits(h.Float32()))
	}
	return out
}

func floatBytes(fs []float32) []byte {
	out := make([]byte, 4*len(fs))
	for i, f := range fs {
		binary.LittleEndian.PutUint32(out[4*i:], math.Float32bits(f))
	}
	return out
}

func wordBytes(ws []uint32) []byte {
	out := make([]byte, 4*len(ws))
	for i, w := range ws {
		binary.LittleEndian.PutUint32(out[4*i:], w)
	}
	return out
}

func putFloats(dst []float32, src []byte) {
	for i := range min(len(dst), len(src)/4) {
		dst[i] = math.Float32frombits(binary.LittleEndian.Uint32(src[4*i:]))
	}
}

func putWords(dst []uint32, src []byte) {
	for i := range min(len(dst), len(src)/4) {
		dst[i] = binary.LittleEndian.Uint32(src[4*i:])
	}
}
