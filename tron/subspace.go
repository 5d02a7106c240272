// Copyright ©2025 Egmara. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tron

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// refineSubspace improves the Cauchy step by a truncated conjugate-gradient
// minimization of the model over the free variables at 𝐱 + s:
//
//	𝓕 = { i : 𝒍ᵢ < xᵢ + sᵢ < 𝒖ᵢ }
//	minimize q(s + d߮) = (g + 𝐇s)ᵀd߮ + ½ d߮ᵀ𝐇d߮   (d߮ᵢ = 0 ∀ i ∉ 𝓕)
//
// The CG iteration is truncated when the residual drops by cgRelTol, when the
// step reaches the trust-region boundary, or when it hits a bound or a
// direction of nonpositive curvature.
//
// ctx.s and ctx.hs are updated in place and the refined model value q(s) is
// returned.
func (d *iterDriver) refineSubspace(delta float64, q float64) float64 {

	spec, ctx, loc := &d.optimizer.iterSpec, &d.workspace.iterCtx, d.location
	x, g := loc.x, loc.g
	s, hs, p, hp, r, fv := ctx.s, ctx.hs, ctx.p, ctx.hp, ctx.r, ctx.fv

	free := 0
	for i := range fv {
		fv[i] = spec.lower[i] < x[i]+s[i] && x[i]+s[i] < spec.upper[i]
		if fv[i] {
			free++
		}
	}
	if free == 0 {
		return q
	}

	// r = -(g + 𝐇s) restricted to the free set
	for i := range r {
		if fv[i] {
			r[i] = -(g[i] + hs[i])
		} else {
			r[i] = zero
		}
	}
	rr := floats.Dot(r, r)
	bound := cgRelTol * math.Sqrt(rr)
	if math.Sqrt(rr) <= bound || rr == zero {
		return q
	}

	copy(p, r)
	advance := func(tau float64) {
		floats.AddScaled(s, tau, p)
		floats.AddScaled(hs, tau, hp)
	}

	for k := 0; k < spec.n; k++ {
		spec.hprod(x, p, hp)
		for i := range hp {
			if !fv[i] {
				hp[i] = zero
			}
		}
		curv := floats.Dot(p, hp)

		// Largest feasible CG step before a bound or the radius.
		tauMax := math.Min(stepToBounds(x, s, p, spec.lower, spec.upper, fv),
			stepToRadius(s, p, delta))

		if curv <= zero {
			advance(tauMax)
			break
		}

		alpha := rr / curv
		if alpha >= tauMax {
			advance(tauMax)
			break
		}
		advance(alpha)
		floats.AddScaled(r, -alpha, hp)
		next := floats.Dot(r, r)
		if math.Sqrt(next) <= bound {
			break
		}
		beta := next / rr
		rr = next
		for i, ri := range r {
			p[i] = ri + beta*p[i]
		}
	}

	return floats.Dot(g, s) + half*floats.Dot(s, hs)
}
