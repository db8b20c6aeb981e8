package main

import (
	"github.com/gogpu/warp"
	"github.com/gogpu/warp/capture"
	"github.com/gogpu/warp/texture"
)

const (
	backgroundDepth = 40
	boxDepth        = 8

	// boxSpeed is the horizontal box motion per frame as a fraction of the
	// screen width.
	boxSpeed = 0.06
)

// synthesize renders a box sliding right over a gradient backdrop, for the
// previous and current frame.
func synthesize(width, height int, delta float32) *capture.Frame {
	f := capture.New(warp.CameraSetup{
		Width:         uint32(width),
		Height:        uint32(height),
		FieldOfView:   60,
		NearPlane:     0.1,
		FarPlane:      100,
		DepthType:     warp.DepthLinear,
		OriginTopLeft: true,
	}, delta)

	shift := int(boxSpeed * float32(width))
	x0 := width/3 - shift/2
	f.ColorPrev, f.DepthPrev = render(width, height, x0)
	f.Color, f.Depth = render(width, height, x0+shift)

	f.MotionForward = texture.NewMotion(width, height)
	f.MotionBackward = texture.NewMotion(width, height)
	f.Motion3D = texture.NewMotion(width, height)
	f.MotionDepthForward = texture.NewMotionDepth(width, height)
	f.MotionDepthBackward = texture.NewMotionDepth(width, height)

	still := warp.EncodeMotion2D(0, 0)
	fwd := warp.EncodeMotion2D(boxSpeed, 0)
	bwd := warp.EncodeMotion2D(-boxSpeed, 0)

	// View-space width of the screen at the box's depth, for 3D motion.
	viewWidth := float32(2*boxDepth) * 0.57735 * float32(width) / float32(height)
	moved := warp.EncodeMotion3D(boxSpeed*viewWidth, 0, 0)
	static := warp.EncodeMotion3D(0, 0, 0)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			f.MotionForward.Set(x, y, still)
			f.MotionBackward.Set(x, y, still)
			f.Motion3D.Set(x, y, static)
			if f.DepthPrev.At(x, y) == boxDepth {
				f.MotionForward.Set(x, y, fwd)
			}
			if f.Depth.At(x, y) == boxDepth {
				f.MotionBackward.Set(x, y, bwd)
				f.Motion3D.Set(x, y, moved)
			}
		}
	}
	return f
}

func render(width, height, boxX int) (*texture.Color, *texture.Depth) {
	c := texture.NewColor(width, height)
	d := texture.NewDepth(width, height)
	side := height / 3
	y0 := height / 3
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			t := float32(x) / float32(width)
			s := float32(y) / float32(height)
			c.SetRGBA(x, y, 0.1+0.4*t, 0.2+0.3*s, 0.5, 1)
			d.Set(x, y, backgroundDepth)
			if x >= boxX && x < boxX+side && y >= y0 && y < y0+side {
				checker := float32(((x-boxX)/8+(y-y0)/8)%2) * 0.3
				c.SetRGBA(x, y, 0.9, 0.3+checker, 0.2, 1)
				d.Set(x, y, boxDepth)
			}
		}
	}
	return c, d
}
