// Copyright ©2025 Egmara. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package auglag

import (
	"slices"

	"gonum.org/v1/gonum/floats"

	"github.com/Egmara/Augmented-Lagrangian/nlp"
	"github.com/Egmara/Augmented-Lagrangian/tron"
)

// alModel is the bound-constrained surrogate of the constrained problem for a
// fixed multiplier vector 𝐲 and penalty μ:
//
//	𝓛ᴬ(𝐱) = 𝒇(𝐱) - 𝐲ᵀ𝒄(𝐱) + (μ/2)‖𝒄(𝐱)‖²
//	𝜵𝓛ᴬ(𝐱) = 𝜵𝒇(𝐱) - 𝐉(𝐱)ᵀ(𝐲 - μ𝒄(𝐱))
//	𝜵²𝓛ᴬ(𝐱)·v = 𝜵²ℒ(𝐱, 𝐲 - μ𝒄(𝐱))·v + μ𝐉(𝐱)ᵀ(𝐉(𝐱)v)
//
// Bounds are inherited unchanged. A model value is immutable: the outer loop
// constructs a fresh one for each (𝐲, μ) pair, so the inner solver never sees
// multiplier or penalty changes mid-solve. Every evaluation recomputes 𝒄(𝐱)
// from scratch; no quantity is cached across calls.
type alModel struct {
	p  nlp.Problem
	y  []float64
	mu float64

	// evaluation scratch, reused within a single inner solve
	cx, yc, jv, jtv []float64
}

func newALModel(p nlp.Problem, y []float64, mu float64) *alModel {
	m := p.NumCons()
	return &alModel{
		p:  p,
		y:  slices.Repeat(y, 1),
		mu: mu,
		cx: make([]float64, m),
		yc: make([]float64, m),
		jv: make([]float64, m),
		jtv: make([]float64, p.Dim()),
	}
}

// eval computes 𝓛ᴬ(𝐱) and its gradient.
func (m *alModel) eval(x, g []float64) (f float64) {
	m.p.Cons(x, m.cx)
	f = m.p.Obj(x) - floats.Dot(m.y, m.cx) + half*m.mu*floats.Dot(m.cx, m.cx)

	// 𝜵𝓛ᴬ = 𝜵𝒇 - 𝐉ᵀ(𝐲 - μ𝒄)
	for j, c := range m.cx {
		m.yc[j] = m.y[j] - m.mu*c
	}
	m.p.Grad(x, g)
	m.p.JTProd(x, m.yc, m.jtv)
	floats.Sub(g, m.jtv)
	return
}

// hprod computes 𝜵²𝓛ᴬ(𝐱)·v with the shifted multiplier 𝐲 - μ𝒄(𝐱) plus the
// Gauss-Newton term μ𝐉ᵀ(𝐉v).
func (m *alModel) hprod(x, v, hv []float64) {
	m.p.Cons(x, m.cx)
	for j, c := range m.cx {
		m.yc[j] = m.y[j] - m.mu*c
	}
	m.p.HLagProd(x, m.yc, v, hv)
	m.p.JProd(x, v, m.jv)
	m.p.JTProd(x, m.jv, m.jtv)
	floats.AddScaled(hv, m.mu, m.jtv)
}

// subProblem presents the model to the inner solver with the problem's own
// bounds and the given stopping budgets.
func (m *alModel) subProblem(stop tron.Termination) *tron.Problem {
	lower, upper := m.p.Bounds()
	bounds := make([]tron.Bound, m.p.Dim())
	for i := range bounds {
		bounds[i] = tron.Bound{Lower: lower[i], Upper: upper[i]}
	}
	return &tron.Problem{
		N:      m.p.Dim(),
		Eval:   m.eval,
		HProd:  m.hprod,
		Stop:   stop,
		Bounds: bounds,
	}
}
