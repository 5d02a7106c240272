// Copyright ©2025 Egmara. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package auglag

import (
	"math"
	"time"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/floats"

	"github.com/Egmara/Augmented-Lagrangian/lsq"
	"github.com/Egmara/Augmented-Lagrangian/nlp"
	"github.com/Egmara/Augmented-Lagrangian/tron"
)

// tolerance of the initial multiplier least-squares solve
const lsTol = 1.0e-8

// outerDriver owns the state of the outer iteration: the primal point, the
// multiplier estimate, the penalty parameter and the inner tolerance. Nothing
// else mutates them.
type outerDriver struct {
	spec *solverSpec
	log  iterLogger

	start time.Time
	iter  int

	x, y    []float64
	mu, eta float64

	lower, upper        []float64
	cx, gx, gl, gp, jtv []float64

	fx, normgp, normcx, tol float64

	inner tron.Status
	ws    *tron.Workspace
}

func (d *outerDriver) elapsed() time.Duration { return time.Since(d.start) }

// mainLoop runs the augmented Lagrangian outer iteration from x0.
func (d *outerDriver) mainLoop(x0 []float64) *Result {

	p, stop := d.spec.problem, d.spec.stop
	n, m := p.Dim(), p.NumCons()

	d.start = time.Now()
	d.lower, d.upper = p.Bounds()

	d.x = append([]float64(nil), x0...)
	projInit(d.x, d.lower, d.upper)

	d.cx = make([]float64, m)
	d.gx = make([]float64, n)
	d.gl = make([]float64, n)
	d.gp = make([]float64, n)
	d.jtv = make([]float64, n)

	// INIT: evaluate the problem at x₀, estimate the multipliers from the
	// stationarity condition 𝜵𝒇 - 𝐉ᵀ𝐲 ≈ 0, and measure both feasibilities.
	p.Grad(d.x, d.gx)
	p.Cons(d.x, d.cx)
	d.mu = muInit
	d.y = d.initMultipliers(p)
	d.eta = etaInit
	d.normcx = floats.Norm(d.cx, 2)
	d.stationarity(p)
	d.tol = stop.AbsTolerance + stop.RelTolerance*d.normgp
	d.fx = p.Obj(d.x)

	d.log.header()
	d.log.row(0, d.fx, d.normgp, d.normcx)

	var status Status
	for {
		if d.normgp <= d.tol && d.normcx <= feasTol {
			status = FirstOrder
			break
		}
		tired := false
		if d.iter >= stop.MaxIterations {
			status = MaxIter
			tired = true
		}
		if d.elapsed().Seconds() > stop.MaxSeconds {
			// MAX_TIME takes precedence when both budgets are exhausted.
			status = MaxTime
			tired = true
		}
		if tired {
			break
		}

		d.solveSubproblem(p)
		p.Cons(d.x, d.cx)
		d.normcx = floats.Norm(d.cx, 2)

		if d.normcx <= d.eta {
			// Feasibility acceptable: refine the multiplier estimate and
			// tighten the acceptance threshold.
			floats.AddScaled(d.y, -d.mu, d.cx)
			d.eta /= math.Pow(d.mu, etaAcceptExp)
		} else {
			// Feasibility stalled: let the penalty dominate and retie the
			// threshold to the new, larger μ.
			d.mu *= muGrow
			d.eta = one / math.Pow(d.mu, etaRejectExp)
		}

		p.Grad(d.x, d.gx)
		d.stationarity(p)
		d.fx = p.Obj(d.x)

		d.iter++
		d.log.row(d.iter, d.fx, d.normgp, d.normcx)
	}
	d.log.exit(status, d.iter)

	return &Result{
		Status:      status,
		Inner:       d.inner,
		X:           d.x,
		F:           d.fx,
		DualFeas:    d.normgp,
		PrimalFeas:  d.normcx,
		Multipliers: d.y,
		Penalty:     d.mu,
		NumIter:     d.iter,
		Elapsed:     d.elapsed(),
	}
}

// stationarity recomputes the projected gradient step of the Lagrangian
// 𝚐𝚕 = 𝜵𝒇(𝐱) - 𝐉(𝐱)ᵀ𝐲 at the current point with the current multiplier.
// d.gx must already hold 𝜵𝒇(𝐱).
func (d *outerDriver) stationarity(p nlp.Problem) {
	p.JTProd(d.x, d.y, d.jtv)
	for i, g := range d.gx {
		d.gl[i] = g - d.jtv[i]
	}
	d.normgp = ProjectedStep(d.gp, d.x, d.gl, d.lower, d.upper)
}

// solveSubproblem minimizes the current augmented Lagrangian model with the
// inner solver, warm-started from the current point. The inner solve inherits
// the caller's tolerances and the remaining wall-clock budget, and its own
// logging stays disabled.
func (d *outerDriver) solveSubproblem(p nlp.Problem) {
	stop := d.spec.stop

	remaining := stop.MaxSeconds - d.elapsed().Seconds()
	if remaining <= 0 {
		remaining = math.SmallestNonzeroFloat64
	}

	model := newALModel(p, d.y, d.mu)
	sub := model.subProblem(tron.Termination{
		MaxIterations: innerIterations,
		MaxSeconds:    remaining,
		AbsTolerance:  stop.AbsTolerance,
		RelTolerance:  stop.RelTolerance,
	})

	inner, err := sub.New(zerolog.Nop())
	if err != nil {
		panic(err)
	}
	if d.ws == nil {
		d.ws = inner.Init()
	}

	// Whatever point the inner solver returns is adopted, converged or not.
	res := inner.Fit(d.x, d.ws)
	copy(d.x, res.X)
	d.inner = res.Status
}

// jacTransOp presents 𝐀 = 𝐉(𝐱)ᵀ ∈ ℝⁿˣᵐ as a matrix-free operator.
type jacTransOp struct {
	p nlp.Problem
	x []float64
}

func (a *jacTransOp) Rows() int { return a.p.Dim() }
func (a *jacTransOp) Cols() int { return a.p.NumCons() }

func (a *jacTransOp) Apply(v, out []float64)      { a.p.JTProd(a.x, v, out) }
func (a *jacTransOp) ApplyTrans(v, out []float64) { a.p.JProd(a.x, v, out) }

// initMultipliers estimates 𝐲₀ from the linear least-squares problem
//
//	𝚖𝚒𝚗 ‖𝐉(𝐱₀)ᵀ𝐲 - 𝜵𝒇(𝐱₀)‖₂
//
// which approximates the stationarity condition at the starting point.
func (d *outerDriver) initMultipliers(p nlp.Problem) []float64 {
	y, _ := lsq.CGLS(&jacTransOp{p: p, x: d.x}, d.gx, lsTol, 0)
	return y
}
