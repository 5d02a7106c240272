// Copyright ©2025 Egmara. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tron

import (
	"gonum.org/v1/gonum/floats"
)

// cauchyPoint searches the projected gradient path for a Cauchy step
//
//	sᶜ(ɑ) = P(𝐱 - ɑg, 𝒍, 𝒖) - 𝐱
//
// satisfying the sufficient decrease condition on the quadratic model
//
//	q(s) = gᵀs + ½ sᵀ𝐇s ≤ μ₀·gᵀs  (μ₀ = 10⁻²)
//
// within the trust region ‖s‖₂ ≤ Δ. The step size ɑ starts at Δ/‖g‖ and is
// halved until the condition holds, or doubled while it keeps holding.
//
// The step is left in ctx.s with 𝐇s in ctx.hs, and the model value q(s) is
// returned.
func (d *iterDriver) cauchyPoint(delta float64) (q float64) {

	spec, ctx, loc := &d.optimizer.iterSpec, &d.workspace.iterCtx, d.location
	x, g, s := loc.x, loc.g, ctx.s

	gnorm := floats.Norm(g, 2)
	if gnorm == zero {
		for i := range s {
			s[i] = zero
		}
		return zero
	}

	trial := func(alpha float64) (q, gs, snorm float64) {
		for i := range s {
			s[i] = clamp(x[i]-alpha*g[i], spec.lower[i], spec.upper[i]) - x[i]
		}
		spec.hprod(x, s, ctx.hs)
		gs = floats.Dot(g, s)
		q = gs + half*floats.Dot(s, ctx.hs)
		snorm = floats.Norm(s, 2)
		return
	}

	alpha := delta / gnorm
	q, gs, snorm := trial(alpha)

	if !(snorm <= delta && q <= cauchyDec*gs) {
		// Interpolate: shrink ɑ until the step fits and decreases the model.
		for k := 0; k < cauchyBack; k++ {
			alpha *= half
			q, gs, snorm = trial(alpha)
			if snorm <= delta && q <= cauchyDec*gs {
				break
			}
		}
		return q
	}

	// Extrapolate: grow ɑ while the larger step keeps the decrease.
	best, bestQ := alpha, q
	for k := 0; k < cauchyBack; k++ {
		alpha *= two
		q, gs, snorm = trial(alpha)
		if !(snorm <= delta && q <= cauchyDec*gs && q < bestQ) {
			break
		}
		best, bestQ = alpha, q
	}
	if alpha != best {
		q, _, _ = trial(best)
	}
	return q
}
