// Copyright ©2025 Egmara. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package tron minimizes a smooth function subject to box constraints with a
// trust-region Newton method.
//
//	minimize 𝒇(𝐱) subject to 𝒍ᵢ ≤ 𝐱ᵢ ≤ 𝒖ᵢ (i = 1 ··· n)
//
// Each iteration combines a projected Cauchy point along the gradient with a
// truncated conjugate-gradient refinement on the free variables, so only
// gradients and Hessian-vector products of 𝒇 are required.
//
// # Reference
//
// Chih-Jen Lin, Jorge J. Moré: "Newton's method for large bound-constrained
// optimization problems". SIAM Journal on Optimization 9(4), 1999.
package tron

import (
	"errors"
	"math"
	"slices"
	"time"

	"github.com/rs/zerolog"
)

// Bound represents the bounds for an optimization variable.
// Absent bounds may be given as ±Inf or NaN.
type Bound struct {
	Lower, Upper float64
}

// Evaluation is a function type for evaluating the objective function and gradient.
type Evaluation func(x []float64, g []float64) (f float64)

// HessianProduct evaluates hv = 𝒇″(𝐱)·v.
type HessianProduct func(x, v, hv []float64)

// Termination specifies the stopping criteria for the optimization algorithm.
type Termination struct {
	// The iteration stop when the number of iteration exceeds limit.
	MaxIterations int
	// The iteration stop when the wall-clock time exceeds limit (≤ 0 means no limit).
	MaxSeconds float64
	// The iteration will stop when the projected gradient satisfied:
	//   ‖ P(𝐱 - g, 𝒍, 𝒖) - 𝐱 ‖₂ ≤ 𝚊𝚝𝚘𝚕 + 𝚛𝚝𝚘𝚕 × ‖ P(𝐱₀ - g₀, 𝒍, 𝒖) - 𝐱₀ ‖₂
	AbsTolerance float64
	RelTolerance float64
}

// Problem specifies the problem for the TRON optimizer.
type Problem struct {
	N      int            // The problem dimension
	Eval   Evaluation     // Objective function and gradient
	HProd  HessianProduct // Hessian-vector product
	Stop   Termination    // Stop condition
	Bounds []Bound        // Optional bounds
}

// New creates a new TRON optimizer for given problem.
// The logger receives one debug event per iteration; pass a disabled logger
// to keep nested solves quiet.
func (p *Problem) New(log zerolog.Logger) (optimizer *Optimizer, err error) {

	n := p.N
	stop := p.Stop

	switch {
	case n <= 0:
		err = errors.New("problem dimension must greater than 0")
	case p.Eval == nil:
		err = errors.New("evaluation target is required")
	case p.HProd == nil:
		err = errors.New("hessian product is required")
	case stop.MaxIterations <= 0:
		err = errors.New("max iteration must greater than 1")
	case stop.AbsTolerance < zero || stop.RelTolerance < zero:
		err = errors.New("tolerance must not less than 0")
	case p.Bounds != nil && len(p.Bounds) != n:
		err = errors.New("bounds size must equal to n")
	}
	if err != nil {
		return
	}

	lower := make([]float64, n)
	upper := make([]float64, n)
	for i := range lower {
		lower[i] = math.Inf(-1)
		upper[i] = math.Inf(1)
	}
	for k, b := range p.Bounds {
		if !math.IsNaN(b.Lower) {
			lower[k] = b.Lower
		}
		if !math.IsNaN(b.Upper) {
			upper[k] = b.Upper
		}
		if lower[k] > upper[k] {
			return nil, errors.New("bound range has no feasible solution")
		}
	}

	optimizer = &Optimizer{
		iterSpec{
			n:      n,
			eval:   p.Eval,
			hprod:  p.HProd,
			stop:   stop,
			lower:  lower,
			upper:  upper,
			logger: log,
		},
	}
	return
}

type iterSpec struct {
	n            int
	eval         Evaluation
	hprod        HessianProduct
	stop         Termination
	lower, upper []float64
	logger       zerolog.Logger
}

// Optimizer implemented using the TRON algorithm.
type Optimizer struct {
	iterSpec
}

// Workspace contains the state and context of the optimization process.
// Separate workspaces must be created for concurrent fits, but one workspace
// may be reused across sequential fits of equal dimension.
type Workspace struct {
	n int
	iterCtx
}

type iterCtx struct {
	start    time.Time
	iter     int
	numEval  int
	dualFeas float64

	gp []float64 // projected gradient step
	s  []float64 // trial step
	hs []float64 // 𝐇·s
	p  []float64 // CG direction
	hp []float64 // 𝐇·p
	r  []float64 // CG residual
	xt []float64 // trial point
	gt []float64 // trial gradient
	fv []bool    // free variable mask
}

func (c *iterCtx) init(n int) {
	buf := make([]float64, 8*n)
	c.gp, buf = buf[:n], buf[n:]
	c.s, buf = buf[:n], buf[n:]
	c.hs, buf = buf[:n], buf[n:]
	c.p, buf = buf[:n], buf[n:]
	c.hp, buf = buf[:n], buf[n:]
	c.r, buf = buf[:n], buf[n:]
	c.xt, buf = buf[:n], buf[n:]
	c.gt = buf[:n]
	c.fv = make([]bool, n)
}

func (c *iterCtx) reset() {
	c.start = time.Time{}
	c.iter, c.numEval = 0, 0
	c.dualFeas = 0
}

func (c *iterCtx) elapsed() time.Duration { return time.Since(c.start) }

type iterLoc struct {
	f    float64
	x, g []float64
}

// Result contains the final result of the optimization process.
type Result struct {
	OK      bool      // Whether the optimization was converged.
	F       float64   // Final function value.
	X, G    []float64 // Final solution and gradient.
	Summary           // Optimization summary.
}

// Summary contains a summary of the optimization process.
type Summary struct {
	Status   Status        // Final task status after optimization.
	NumIter  int           // Number of iterations performed.
	NumEval  int           // Number of function and gradient evaluations performed.
	DualFeas float64       // Final projected gradient norm.
	Elapsed  time.Duration // Wall-clock time of the fit.
}

// Init allocate the workspace for TRON optimizer.
func (o *Optimizer) Init() *Workspace {
	w := new(Workspace)
	w.n = o.n
	w.init(w.n)
	return w
}

// Fit runs the optimization process using the initial guess x and workspace w.
// The initial point is projected into the box before the first evaluation.
func (o *Optimizer) Fit(x []float64, w *Workspace) *Result {

	if len(x) != o.n {
		panic("initial x dimension not match spec")
	}
	if w.n != o.n {
		panic("workspace dimension not match spec")
	}

	loc := iterLoc{
		x: slices.Repeat(x, 1),
		g: make([]float64, len(x)),
	}

	driver := iterDriver{
		optimizer: o,
		workspace: w,
		location:  &loc,
	}

	res := driver.mainLoop()
	return &Result{
		OK: res&iterConv > 0,
		X:  loc.x, F: loc.f, G: loc.g,
		Summary: Summary{
			Status:   res,
			NumIter:  w.iter,
			NumEval:  w.numEval,
			DualFeas: w.dualFeas,
			Elapsed:  w.elapsed(),
		},
	}
}
