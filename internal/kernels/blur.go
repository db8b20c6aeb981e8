// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package kernels

import "math"

// TapCount is the number of directional blur taps.
const TapCount = 21

// minContribution is the smallest weight a full-white tap needs to change
// an 8-bit result.
const minContribution = 1.0 / 255.0

// effectiveN finds the shortest row of Pascal's triangle, at least taps long
// and stepping by two, whose central taps values all weigh more than
// minContribution. Rows beyond 64 are not searched; if none qualifies the
// tap count itself is used.
func effectiveN(taps int) int {
	for count := taps; count < 64; count += 2 {
		scale := math.Ldexp(1, -(count - 1))
		c := 1.0
		for i := 0; i <= count; i++ {
			if scale*c > minContribution {
				if count-2*i < taps {
					break
				}
				return count
			}
			c = c * float64(count-1-i) / float64(i+1)
		}
	}
	return taps
}

// BlurCoefficients returns the binomial blur weights for taps samples: the
// middle taps values of row effectiveN(taps) of Pascal's triangle, each
// divided by the row sum. The weights sum to at most 1.
func BlurCoefficients(taps int) []float32 {
	if taps <= 0 {
		return nil
	}
	n := effectiveN(taps)
	scale := math.Ldexp(1, -(n - 1))
	out := make([]float32, taps)
	k := (n - taps) / 2
	for i := range out {
		out[i] = float32(scale * binomial(n-1, k+i))
	}
	return out
}

func binomial(n, k int) float64 {
	if k < 0 || k > n {
		return 0
	}
	k = min(k, n-k)
	c := 1.0
	for i := 0; i < k; i++ {
		c = c * float64(n-i) / float64(i+1)
	}
	return c
}
