//go:build !nogpu

package main

import (
	"github.com/gogpu/warp"
	"github.com/gogpu/warp/device/gpu"
)

func init() {
	backends["gpu"] = func(workers int) []warp.Option {
		return []warp.Option{
			warp.WithContext(gpu.NewContext(workers)),
			warp.WithShaderEmission(true),
		}
	}
}
