// Copyright ©2025 Egmara. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package nlp

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

var (
	sqrtEps = math.Sqrt(math.Nextafter(1, 2) - 1)
	cubeEps = math.Pow(math.Nextafter(1, 2)-1, float64(1)/3)
)

// diffStep selects the forward-difference step for component x:
// h = 𝚌𝚘𝚙𝚢𝚜𝚒𝚐𝚗(√ε, x) × 𝚖𝚊𝚡(1, |x|)
func diffStep(x float64) float64 {
	return math.Copysign(sqrtEps, x) * math.Max(1, math.Abs(x))
}

// dirStep selects the step for a forward difference along direction v at x.
func dirStep(x, v []float64) float64 {
	nv := floats.Norm(v, math.Inf(1))
	if nv == 0 {
		return sqrtEps
	}
	return sqrtEps * (1 + floats.Norm(x, math.Inf(1))) / nv
}

// fillDerivatives replaces missing derivative closures with forward-difference
// approximations over the user-supplied evaluations.
func (p *funcProblem) fillDerivatives() {

	if p.grad == nil {
		obj := p.obj
		p.grad = func(x, g []float64) {
			xt := append([]float64(nil), x...)
			f0 := obj(xt)
			for i := range g {
				h := diffStep(xt[i])
				t := xt[i]
				xt[i] = t + h
				g[i] = (obj(xt) - f0) / h
				xt[i] = t
			}
		}
	}

	if p.m == 0 {
		if p.hlag == nil {
			p.hlag = p.diffHLag()
		}
		return
	}

	if p.jprod == nil {
		cons, m := p.cons, p.m
		p.jprod = func(x, v, jv []float64) {
			h := dirStep(x, v)
			xt := append([]float64(nil), x...)
			c0 := make([]float64, m)
			cons(xt, c0)
			floats.AddScaled(xt, h, v)
			cons(xt, jv)
			for j := range jv {
				jv[j] = (jv[j] - c0[j]) / h
			}
		}
	}

	if p.jtp == nil {
		// The transpose product has no directional shortcut: build the dense
		// Jacobian column by column and contract against v.
		cons, m := p.cons, p.m
		p.jtp = func(x, v, jtv []float64) {
			xt := append([]float64(nil), x...)
			c0 := make([]float64, m)
			ci := make([]float64, m)
			cons(xt, c0)
			for i := range jtv {
				h := diffStep(xt[i])
				t := xt[i]
				xt[i] = t + h
				cons(xt, ci)
				xt[i] = t
				s := 0.0
				for j := range ci {
					s += v[j] * (ci[j] - c0[j]) / h
				}
				jtv[i] = s
			}
		}
	}

	if p.hlag == nil {
		p.hlag = p.diffHLag()
	}
}

// diffHLag approximates the Lagrangian Hessian product by differencing the
// Lagrangian gradient 𝜵ℒ(𝐱,𝐲) = 𝒇′(𝐱) - 𝐉(𝐱)ᵀ𝐲 along v. The step uses ∛ε
// because the differenced gradient may itself carry forward-difference noise.
func (p *funcProblem) diffHLag() func(x, y, v, hv []float64) {
	return func(x, y, v, hv []float64) {
		n := p.n
		h := dirStep(x, v) * (cubeEps / sqrtEps)
		xt := append([]float64(nil), x...)
		g0 := make([]float64, n)
		jt := make([]float64, n)
		lagGrad := func(out []float64) {
			p.grad(xt, out)
			if p.m > 0 {
				p.jtp(xt, y, jt)
				floats.Sub(out, jt)
			}
		}
		lagGrad(g0)
		floats.AddScaled(xt, h, v)
		lagGrad(hv)
		for i := range hv {
			hv[i] = (hv[i] - g0[i]) / h
		}
	}
}
