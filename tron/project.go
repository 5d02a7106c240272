// Copyright ©2025 Egmara. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tron

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// clamp limits v to the range [lower, upper].
func clamp(v, lower, upper float64) float64 {
	return math.Min(math.Max(v, lower), upper)
}

// projInitX projects the initial point into the feasible box:
//
//	𝚙𝚛𝚘𝚓 xᵢ = uᵢ    if xᵢ > uᵢ
//	𝚙𝚛𝚘𝚓 xᵢ = lᵢ    if xᵢ < lᵢ
//	𝚙𝚛𝚘𝚓 xᵢ = xᵢ    otherwise
func projInitX(x []float64, spec *iterSpec) {
	for i, v := range x {
		x[i] = clamp(v, spec.lower[i], spec.upper[i])
	}
}

// projGradStep computes the projected gradient step
//
//	𝚐𝚙 = P(𝐱 - g, 𝒍, 𝒖) - 𝐱
//
// and returns its 2-norm. A fixed variable (lᵢ = uᵢ) contributes nothing.
func projGradStep(gp, x, g, lower, upper []float64) float64 {
	n := len(x)
	if n > len(g) || n > len(gp) || n > len(lower) || n > len(upper) {
		panic("bound check error")
	}
	for i := 0; i < n; i++ {
		if lower[i] == upper[i] {
			gp[i] = zero
			continue
		}
		gp[i] = clamp(x[i]-g[i], lower[i], upper[i]) - x[i]
	}
	return floats.Norm(gp, 2)
}

// stepToBounds returns the largest τ ≥ 0 keeping x + s + τ·d inside the box,
// considering only free components of d.
func stepToBounds(x, s, d, lower, upper []float64, fv []bool) float64 {
	tau := math.Inf(1)
	for i, di := range d {
		if !fv[i] || di == zero {
			continue
		}
		w := x[i] + s[i]
		var t float64
		if di > zero {
			t = (upper[i] - w) / di
		} else {
			t = (lower[i] - w) / di
		}
		if t < tau {
			tau = t
		}
	}
	return math.Max(tau, zero)
}

// stepToRadius returns the largest τ ≥ 0 keeping ‖s + τ·d‖₂ ≤ delta.
func stepToRadius(s, d []float64, delta float64) float64 {
	dd := floats.Dot(d, d)
	if dd == zero {
		return zero
	}
	sd := floats.Dot(s, d)
	ss := floats.Dot(s, s)
	rad := sd*sd + dd*(delta*delta-ss)
	if rad < zero {
		rad = zero
	}
	return (math.Sqrt(rad) - sd) / dd
}
