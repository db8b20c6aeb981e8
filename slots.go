package warp

import (
	"github.com/gogpu/warp/internal/kernels"
	"github.com/gogpu/warp/texture"
)

// Texture slots remember which textures the last call of each pipeline was
// bound to. They only hold references; the caller owns the textures.

type scatterSlots struct {
	color  *texture.Color
	depth  *texture.Depth
	motion *texture.Motion
	output *texture.Color
}

func (s *scatterSlots) assign(color *texture.Color, depth *texture.Depth, motion *texture.Motion, output *texture.Color) {
	s.color, s.depth, s.motion, s.output = color, depth, motion, output
}

type gatherForwardSlots struct {
	color  *texture.Color
	motion *texture.Motion
	output *texture.Color
}

func (s *gatherForwardSlots) assign(color *texture.Color, motion *texture.Motion, output *texture.Color) {
	s.color, s.motion, s.output = color, motion, output
}

// gatherSlots holds two texture sets. Renderers usually ping-pong two
// frames, so a gather whose current color is not the one bound in set 0
// binds into set 1: the previous call's current frame then stays in place
// as this call's previous frame.
type gatherSlots struct {
	set         int
	color       [2]*texture.Color
	depth       [2]*texture.Depth
	motion      [4]*texture.Motion // forward/backward per set
	motionDepth [2]*texture.MotionDepth
	output      *texture.Color
}

func (s *gatherSlots) assign(in GatherInput, output *texture.Color) {
	s.set = 0
	if s.color[0] != nil && s.color[0] != in.Color {
		s.set = 1
	}
	cur, prev := s.set, 1-s.set
	s.color[cur], s.color[prev] = in.Color, in.ColorPrev
	s.depth[cur], s.depth[prev] = in.Depth, in.DepthPrev
	s.motion[cur*2], s.motion[cur*2+1] = in.MotionForward, in.MotionBackward
	s.motionDepth[cur], s.motionDepth[prev] = in.MotionDepthForward, in.MotionDepthBackward
	s.output = output
}

// args builds the kernel arguments from the active set.
func (s *gatherSlots) args(delta float32) *kernels.Args {
	cur, prev := s.set, 1-s.set
	return &kernels.Args{
		Delta:               delta,
		Color:               s.color[cur],
		Depth:               s.depth[cur],
		ColorPrev:           s.color[prev],
		DepthPrev:           s.depth[prev],
		MotionForward:       s.motion[cur*2],
		MotionBackward:      s.motion[cur*2+1],
		MotionDepthForward:  s.motionDepth[cur],
		MotionDepthBackward: s.motionDepth[prev],
		Output:              s.output,
	}
}
