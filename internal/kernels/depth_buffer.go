// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package kernels

import (
	"math"
	"sync/atomic"
)

var inf32 = math.Float32bits(float32(math.Inf(1)))

// DepthBuffer is the scratch buffer of the scatter passes: one atomically
// min-updated linear depth per destination pixel plus a claim flag that
// lets exactly one color write land on each pixel.
type DepthBuffer struct {
	bits   []uint32
	claims []uint32
}

// NewDepthBuffer allocates a buffer for n pixels.
func NewDepthBuffer(n int) *DepthBuffer {
	b := &DepthBuffer{}
	b.Ensure(n)
	return b
}

// Len returns the capacity in pixels.
func (b *DepthBuffer) Len() int { return len(b.bits) }

// Ensure grows the buffer to hold n pixels and reports whether it had to
// reallocate. The buffer never shrinks.
func (b *DepthBuffer) Ensure(n int) bool {
	if n <= len(b.bits) {
		return false
	}
	b.bits = make([]uint32, n)
	b.claims = make([]uint32, n)
	return true
}

// Reset fills the first n depths with +Inf and clears their claims.
func (b *DepthBuffer) Reset(n int) {
	n = min(n, len(b.bits))
	for i := range b.bits[:n] {
		b.bits[i] = inf32
	}
	clear(b.claims[:n])
}

// Min lowers the depth at i to v if v is smaller. NaN never wins.
func (b *DepthBuffer) Min(i int, v float32) {
	p := &b.bits[i]
	for {
		old := atomic.LoadUint32(p)
		if !(v < math.Float32frombits(old)) {
			return
		}
		if atomic.CompareAndSwapUint32(p, old, math.Float32bits(v)) {
			return
		}
	}
}

// Load returns the depth at i.
func (b *DepthBuffer) Load(i int) float32 {
	return math.Float32frombits(atomic.LoadUint32(&b.bits[i]))
}

// Claim marks pixel i as written and reports whether the caller is the first.
func (b *DepthBuffer) Claim(i int) bool {
	return atomic.CompareAndSwapUint32(&b.claims[i], 0, 1)
}

// Words returns the raw depth bits and claim flags of the first n pixels.
// The slices alias the buffer; they must not be touched while a kernel runs.
func (b *DepthBuffer) Words(n int) (depth, claims []uint32) {
	n = min(n, len(b.bits))
	return b.bits[:n], b.claims[:n]
}
