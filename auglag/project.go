// Copyright ©2025 Egmara. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package auglag

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// ProjectedStep computes the projected gradient step
//
//	𝚐𝚙 = P(𝐱 - 𝚐𝚕, 𝒍, 𝒖) - 𝐱
//
// where 𝚐𝚕 is the Lagrangian gradient 𝜵𝒇(𝐱) - 𝐉(𝐱)ᵀ𝐲, and returns ‖𝚐𝚙‖₂.
//
// The step vanishes exactly at a box-constrained first-order stationary point
// and reduces to -𝚐𝚕 when both bounds are infinite. A fixed variable
// (lᵢ = uᵢ) contributes a zero component, and infinite bounds clip nothing.
func ProjectedStep(gp, x, gl, lower, upper []float64) float64 {
	n := len(x)
	if n > len(gl) || n > len(gp) || n > len(lower) || n > len(upper) {
		panic("bound check error")
	}
	for i := 0; i < n; i++ {
		if lower[i] == upper[i] {
			gp[i] = zero
			continue
		}
		gp[i] = math.Min(math.Max(x[i]-gl[i], lower[i]), upper[i]) - x[i]
	}
	return floats.Norm(gp, 2)
}

// projInit limits x to the feasible box component-wise.
func projInit(x, lower, upper []float64) {
	for i, v := range x {
		x[i] = math.Min(math.Max(v, lower[i]), upper[i])
	}
}
