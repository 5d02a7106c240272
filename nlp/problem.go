// Copyright ©2025 Egmara. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package nlp defines the differentiable problem model consumed by the solvers.
//
// A problem has the form
//
//	minimize 𝒇(𝐱) subject to
//	  - equality constraints: 𝒄(𝐱) = 0 (𝒄 : ℝⁿ → ℝᵐ)
//	  - boundaries: 𝒍ᵢ ≤ 𝐱ᵢ ≤ 𝒖ᵢ (i = 1 ··· n)
//
// The model is matrix-free: the constraint Jacobian 𝐉(𝐱) is only ever
// touched through 𝐉𝐯 and 𝐉ᵀ𝐯 products.
package nlp

import (
	"errors"
	"fmt"
	"math"
	"slices"
)

// Problem exposes the evaluation surface of a differentiable optimization problem.
// Implementations must treat x as read-only and write results into the
// caller-provided output slices.
type Problem interface {
	// Dim returns the number of variables n.
	Dim() int
	// NumCons returns the number of equality constraints m.
	NumCons() int
	// Init returns the initial point (length n).
	Init() []float64
	// Bounds returns the lower and upper bound vectors (length n each).
	// Absent bounds are ±Inf.
	Bounds() (lower, upper []float64)
	// Obj evaluates the objective 𝒇(𝐱).
	Obj(x []float64) float64
	// Grad evaluates the gradient 𝒇′(𝐱) into g (length n).
	Grad(x, g []float64)
	// Cons evaluates the constraints 𝒄(𝐱) into c (length m).
	Cons(x, c []float64)
	// JProd evaluates jv = 𝐉(𝐱)·v (v length n, jv length m).
	JProd(x, v, jv []float64)
	// JTProd evaluates jtv = 𝐉(𝐱)ᵀ·v (v length m, jtv length n).
	JTProd(x, v, jtv []float64)
	// HLagProd evaluates hv = (𝒇″(𝐱) - ∑ⱼ yⱼ𝒄ⱼ″(𝐱))·v for the Lagrangian
	// ℒ(𝐱,𝐲) = 𝒇(𝐱) - 𝐲ᵀ𝒄(𝐱). Both v and hv have length n.
	HLagProd(x, y, v, hv []float64)
}

// Funcs specifies a problem through plain closures.
// Object and, when M > 0, Constraint are required; every derivative closure
// may be left nil and is then supplied by finite differences (see diff.go).
type Funcs struct {
	N  int       // The problem dimension
	M  int       // The number of equality constraints
	X0 []float64 // Initial point (zero vector when nil)

	Lower, Upper []float64 // Optional bounds (±Inf when nil)

	Object       func(x []float64) float64  // 𝒇(𝐱)
	Gradient     func(x, g []float64)       // 𝒇′(𝐱)
	Constraint   func(x, c []float64)       // 𝒄(𝐱)
	JacProd      func(x, v, jv []float64)   // 𝐉(𝐱)·v
	JacTransProd func(x, v, jtv []float64)  // 𝐉(𝐱)ᵀ·v
	LagHessProd  func(x, y, v, hv []float64) // (𝒇″ - ∑yⱼ𝒄ⱼ″)·v
}

// New validates the specification and returns the problem model.
// Missing derivative closures are replaced by finite-difference fallbacks.
func (f *Funcs) New() (Problem, error) {

	n, m := f.N, f.M

	var err error
	switch {
	case n <= 0:
		err = errors.New("problem dimension must greater than 0")
	case m < 0:
		err = errors.New("constraint number must not less than 0")
	case f.Object == nil:
		err = errors.New("objective function is required")
	case m > 0 && f.Constraint == nil:
		err = errors.New("constraint function is required")
	case f.X0 != nil && len(f.X0) != n:
		err = errors.New("initial point size must equal to n")
	case f.Lower != nil && len(f.Lower) != n:
		err = errors.New("lower bound size must equal to n")
	case f.Upper != nil && len(f.Upper) != n:
		err = errors.New("upper bound size must equal to n")
	}
	if err != nil {
		return nil, err
	}

	x0 := f.X0
	if x0 == nil {
		x0 = make([]float64, n)
	}

	lower, upper := f.Lower, f.Upper
	if lower == nil {
		lower = make([]float64, n)
		for i := range lower {
			lower[i] = math.Inf(-1)
		}
	}
	if upper == nil {
		upper = make([]float64, n)
		for i := range upper {
			upper[i] = math.Inf(1)
		}
	}

	for k := 0; k < n; k++ {
		l, u := lower[k], upper[k]
		if math.IsNaN(l) || math.IsNaN(u) || l > u {
			return nil, fmt.Errorf("bound range at %d has no feasible solution", k)
		}
	}

	p := &funcProblem{
		n: n, m: m,
		x0:    slices.Repeat(x0, 1),
		lower: slices.Repeat(lower, 1),
		upper: slices.Repeat(upper, 1),
		obj:   f.Object,
		grad:  f.Gradient,
		cons:  f.Constraint,
		jprod: f.JacProd,
		jtp:   f.JacTransProd,
		hlag:  f.LagHessProd,
	}
	p.fillDerivatives()
	return p, nil
}

// funcProblem is the closure-backed Problem implementation.
type funcProblem struct {
	n, m         int
	x0           []float64
	lower, upper []float64

	obj   func(x []float64) float64
	grad  func(x, g []float64)
	cons  func(x, c []float64)
	jprod func(x, v, jv []float64)
	jtp   func(x, v, jtv []float64)
	hlag  func(x, y, v, hv []float64)
}

func (p *funcProblem) Dim() int     { return p.n }
func (p *funcProblem) NumCons() int { return p.m }

func (p *funcProblem) Init() []float64 { return slices.Repeat(p.x0, 1) }

func (p *funcProblem) Bounds() (lower, upper []float64) { return p.lower, p.upper }

func (p *funcProblem) Obj(x []float64) float64 { return p.obj(x) }

func (p *funcProblem) Grad(x, g []float64) { p.grad(x, g) }

func (p *funcProblem) Cons(x, c []float64) {
	if p.m == 0 {
		return
	}
	p.cons(x, c)
}

func (p *funcProblem) JProd(x, v, jv []float64) {
	if p.m == 0 {
		return
	}
	p.jprod(x, v, jv)
}

func (p *funcProblem) JTProd(x, v, jtv []float64) {
	if p.m == 0 {
		for i := range jtv {
			jtv[i] = 0
		}
		return
	}
	p.jtp(x, v, jtv)
}

func (p *funcProblem) HLagProd(x, y, v, hv []float64) { p.hlag(x, y, v, hv) }
